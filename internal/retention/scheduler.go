// Package retention prunes the generation audit log on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hochfrequenz/codigo-course-studio/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes audit entries older than a cutoff
type Pruner interface {
	PruneGenerations(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler runs the pruner periodically
type Scheduler struct {
	pruner   Pruner
	schedule cron.Schedule
	maxAge   time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	pruned  int64
}

// ParseCron parses a standard five-field cron expression
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// NewScheduler creates a scheduler from the retention config.
// It returns nil when retention is disabled (no cron or no max age).
func NewScheduler(p Pruner, cfg config.RetentionConfig, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Cron == "" || cfg.Days <= 0 {
		return nil, nil
	}
	sched, err := ParseCron(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return &Scheduler{
		pruner:   p,
		schedule: sched,
		maxAge:   time.Duration(cfg.Days) * 24 * time.Hour,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Cutoff returns the time before which entries are pruned
func (s *Scheduler) Cutoff() time.Time {
	return s.now().Add(-s.maxAge)
}

// NextRun returns the next scheduled prune after from
func (s *Scheduler) NextRun(from time.Time) time.Time {
	return s.schedule.Next(from)
}

// RunOnce prunes all entries older than the configured age
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	n, err := s.pruner.PruneGenerations(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning generations before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.pruned += n
	s.mu.Unlock()

	s.logger.Info("pruned generation log",
		zap.Int64("deleted", n),
		zap.Time("cutoff", cutoff))
	return n, nil
}

// Stats returns when the last prune ran and how many entries were removed in total
func (s *Scheduler) Stats() (time.Time, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.pruned
}

// Run schedules RunOnce until ctx is cancelled, then waits for a running prune to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("retention run failed", zap.Error(err))
		}
	}))

	s.logger.Info("retention scheduler started",
		zap.Duration("max_age", s.maxAge),
		zap.Time("next_run", s.NextRun(s.now())))

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	lastRun, pruned := s.Stats()
	fields := []zap.Field{zap.Int64("deleted_total", pruned)}
	if !lastRun.IsZero() {
		fields = append(fields, zap.Time("last_run", lastRun))
	}
	s.logger.Info("retention scheduler stopped", fields...)
	return nil
}
