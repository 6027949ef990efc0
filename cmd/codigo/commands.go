package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/hochfrequenz/codigo-course-studio/internal/config"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursegen"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursestore"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	"github.com/hochfrequenz/codigo-course-studio/internal/launch"
	"github.com/hochfrequenz/codigo-course-studio/internal/llm"
	"github.com/hochfrequenz/codigo-course-studio/internal/notify"
	"github.com/hochfrequenz/codigo-course-studio/internal/prompts"
	"github.com/hochfrequenz/codigo-course-studio/internal/retention"
	"github.com/hochfrequenz/codigo-course-studio/web/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	servePort int

	genReq  domain.CourseRequest
	genUser string
	genSave bool
	genJSON bool

	guideProgress string

	coursesUser string

	pruneDays int
)

func init() {
	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)

	// plan command
	planCmd := &cobra.Command{
		Use:   "plan [DESCRIPTION...]",
		Short: "Recommend launch tasks for a stage description",
		RunE:  runPlan,
	}
	rootCmd.AddCommand(planCmd)

	// greet command
	greetCmd := &cobra.Command{
		Use:   "greet",
		Short: "Print Valeria's greeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(launch.Greeting())
			return nil
		},
	}
	rootCmd.AddCommand(greetCmd)

	// generate command
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a personalized course outline",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&genReq.Skills, "skills", "", "your skills")
	generateCmd.Flags().StringVar(&genReq.Knowledge, "knowledge", "", "what you know")
	generateCmd.Flags().StringVar(&genReq.Passions, "passions", "", "what you love")
	generateCmd.Flags().StringVar(&genReq.Niche, "niche", "", "who the course is for")
	generateCmd.Flags().StringVar(&genReq.Language, "language", "Español", "course language")
	generateCmd.Flags().StringVar(&genUser, "user", "", "user ID for auditing and --save")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "save the course for --user")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the course as JSON")
	rootCmd.AddCommand(generateCmd)

	// guide command
	guideCmd := &cobra.Command{
		Use:   "guide QUESTION...",
		Short: "Ask the CÓDIGO guidance agent",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGuide,
	}
	guideCmd.Flags().StringVar(&guideProgress, "progress", "", "where you are in the method")
	rootCmd.AddCommand(guideCmd)

	// courses command
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage saved courses",
	}
	coursesCmd.PersistentFlags().StringVar(&coursesUser, "user", "", "owner of the courses")
	coursesCmd.MarkPersistentFlagRequired("user")
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved courses",
		RunE:  runCoursesList,
	})
	coursesCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved course",
		Args:  cobra.ExactArgs(1),
		RunE:  runCoursesDelete,
	})
	rootCmd.AddCommand(coursesCmd)

	// stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show generation statistics",
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	// prune command
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old generation records",
		RunE:  runPrune,
	}
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "keep this many days (overrides config)")
	rootCmd.AddCommand(pruneCmd)

	// prompts command
	promptsCmd := &cobra.Command{
		Use:   "prompts",
		Short: "List prompt templates",
		RunE:  runPrompts,
	}
	rootCmd.AddCommand(promptsCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithLocalFallback(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*coursestore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.General.DatabasePath), 0755); err != nil {
		return nil, err
	}
	return coursestore.New(cfg.General.DatabasePath)
}

func newLoader(cfg *config.Config) *prompts.Loader {
	return prompts.NewLoader(cfg.Prompts.OverrideDir)
}

func newNotifier(cfg *config.Config) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if cfg.Notifications.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.Notifications.SlackWebhook))
	}
	return notify.NewMultiNotifier(notifiers...)
}

func newService(ctx context.Context, cfg *config.Config, loader *prompts.Loader, store *coursestore.Store) (*coursegen.Service, error) {
	client, err := llm.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		return nil, err
	}
	return coursegen.NewService(client, loader, logger,
		coursegen.WithRecorder(store),
		coursegen.WithNotifier(newNotifier(cfg)),
	), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Web.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	loader := newLoader(cfg)
	svc, err := newService(ctx, cfg, loader, store)
	if err != nil {
		return err
	}

	server := api.NewServer(svc, store, api.Options{
		Addr:           cfg.Web.Addr(),
		UserHeader:     cfg.Auth.UserHeader,
		AllowedOrigins: cfg.Web.AllowedOrigins,
	}, logger)

	sched, err := retention.NewScheduler(store, cfg.Retention, logger)
	if err != nil {
		server.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	if sched != nil {
		g.Go(func() error {
			return sched.Run(ctx)
		})
	}

	if cfg.Prompts.Watch {
		watcher, err := prompts.NewWatcher(loader, logger)
		if err != nil {
			logger.Warn("prompt hot reload disabled", zap.Error(err))
		} else {
			g.Go(func() error {
				return watcher.Run(ctx)
			})
		}
	}

	fmt.Printf("Serving CÓDIGO Course Studio at http://%s\n", cfg.Web.Addr())
	return g.Wait()
}

func runPlan(cmd *cobra.Command, args []string) error {
	desc := strings.Join(args, " ")
	stage := launch.Classify(desc)
	tasks := launch.Plan(desc)

	fmt.Printf("Stage: %s\n\n", stage)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTASK\tPRIORITY\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Order, t.Name, t.Priority, t.Description)
	}
	return w.Flush()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genSave && genUser == "" {
		return fmt.Errorf("--save requires --user")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := newService(cmd.Context(), cfg, newLoader(cfg), store)
	if err != nil {
		return err
	}

	course, err := svc.GenerateCourse(cmd.Context(), genUser, genReq)
	if err != nil {
		return err
	}
	if course.Failed() {
		return fmt.Errorf("the model did not return a usable course outline, try again")
	}

	if genJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(course); err != nil {
			return err
		}
	} else {
		if err := printMarkdown(courseMarkdown(course)); err != nil {
			return err
		}
	}

	if genSave {
		uc := &domain.UserCourse{
			UserID:      genUser,
			Title:       course.CourseTitle,
			Description: course.CourseDescription,
			Skills:      genReq.Skills,
			Knowledge:   genReq.Knowledge,
			Passions:    genReq.Passions,
			Niche:       genReq.Niche,
			Language:    genReq.Language,
			Modules:     course.Modules,
		}
		if err := store.SaveCourse(cmd.Context(), uc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved as %s\n", uc.ID)
	}
	return nil
}

func courseMarkdown(c *domain.Course) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", c.CourseTitle, c.CourseDescription)
	for i, m := range c.Modules {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, m.ModuleTitle)
		if m.ModuleDescription != "" {
			fmt.Fprintf(&b, "%s\n\n", m.ModuleDescription)
		}
		for _, l := range m.Lessons {
			fmt.Fprintf(&b, "- **%s**", l.LessonTitle)
			if len(l.Topics) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(l.Topics, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func printMarkdown(md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runGuide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := newService(cmd.Context(), cfg, newLoader(cfg), store)
	if err != nil {
		return err
	}

	g, err := svc.Guidance(cmd.Context(), "", domain.GuidanceRequest{
		UserInput:    strings.Join(args, " "),
		UserProgress: guideProgress,
	})
	if err != nil {
		return err
	}
	if g.Empty() {
		return fmt.Errorf("the guidance agent did not answer, try again")
	}
	return printMarkdown(g.Guidance)
}

func runCoursesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	courses, err := store.ListCourses(cmd.Context(), coursesUser)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Println("No saved courses")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMODULES\tLESSONS\tUPDATED")
	for _, c := range courses {
		course := domain.Course{Modules: c.Modules}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			c.ID, truncate(c.Title, 40), len(c.Modules), course.LessonCount(), humanize.Time(c.UpdatedAt))
	}
	return w.Flush()
}

func runCoursesDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteCourse(cmd.Context(), coursesUser, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GenerationStats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Generations: %s total | %s ok | %s empty | %s error\n",
		humanize.Comma(int64(stats.Total)), humanize.Comma(int64(stats.OK)),
		humanize.Comma(int64(stats.Empty)), humanize.Comma(int64(stats.Error)))

	recent, err := store.ListGenerations(cmd.Context(), 10)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tSTATUS\tUSER\tDURATION")
	for _, r := range recent {
		user := r.UserID
		if user == "" {
			user = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt), r.Kind, r.Status, user,
			(time.Duration(r.DurationMs) * time.Millisecond).String())
	}
	return w.Flush()
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if pruneDays > 0 {
		cfg.Retention.Days = pruneDays
	}
	if cfg.Retention.Days <= 0 {
		return fmt.Errorf("retention.days not configured, pass --days")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().AddDate(0, 0, -cfg.Retention.Days)
	n, err := store.PruneGenerations(cmd.Context(), cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %s generation records older than %s\n", humanize.Comma(n), humanize.Time(cutoff))
	return nil
}

func runPrompts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templates, err := newLoader(cfg).List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, truncate(t.Description, 60))
	}
	return w.Flush()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
