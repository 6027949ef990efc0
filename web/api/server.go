// Package api serves the course studio over HTTP, with live events over SSE and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	"github.com/hochfrequenz/codigo-course-studio/internal/session"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; course outlines are a few KB
const maxBodyBytes = 1 << 20

// Generator runs the generation flows
type Generator interface {
	GenerateCourse(ctx context.Context, userID string, req domain.CourseRequest) (*domain.Course, error)
	LearningPath(ctx context.Context, userID string, req domain.LearningPathRequest) (domain.LearningPath, error)
	Guidance(ctx context.Context, userID string, req domain.GuidanceRequest) (domain.Guidance, error)
}

// Store interface for database operations
type Store interface {
	SaveCourse(ctx context.Context, c *domain.UserCourse) error
	GetCourse(ctx context.Context, userID, id string) (*domain.UserCourse, error)
	ListCourses(ctx context.Context, userID string) ([]*domain.UserCourse, error)
	UpdateCourse(ctx context.Context, c *domain.UserCourse) error
	DeleteCourse(ctx context.Context, userID, id string) error
	GenerationStats(ctx context.Context) (domain.GenerationStats, error)
}

// Options configures a Server
type Options struct {
	Addr       string
	UserHeader string
	// AllowedOrigins lists browser origins allowed on the event streams;
	// empty means same-origin only and "*" allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP API server
type Server struct {
	gen        Generator
	store      Store
	logger     *zap.Logger
	addr       string
	userHeader string
	origins    map[string]bool
	mux        *http.ServeMux
	hub        *EventHub
	upgrader   websocket.Upgrader
}

// NewServer creates a new API server and starts its event hub.
// Call Close (or Run) to release it.
func NewServer(gen Generator, store Store, opts Options, logger *zap.Logger) *Server {
	if opts.UserHeader == "" {
		opts.UserHeader = session.DefaultHeader
	}
	s := &Server{
		gen:        gen,
		store:      store,
		logger:     logger,
		addr:       opts.Addr,
		userHeader: opts.UserHeader,
		origins:    make(map[string]bool),
		mux:        http.NewServeMux(),
		hub:        NewEventHub(),
	}
	for _, o := range opts.AllowedOrigins {
		s.origins[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.originAllowed}
	s.setupRoutes()
	go s.hub.Run()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.healthHandler())
	s.mux.HandleFunc("/api/valeria/greeting", s.greetingHandler())
	s.mux.HandleFunc("/api/launch-plan", s.launchPlanHandler())
	s.mux.HandleFunc("/api/generate-course", s.generateCourseHandler())
	s.mux.HandleFunc("/api/learning-path", s.learningPathHandler())
	s.mux.HandleFunc("/api/guidance", s.guidanceHandler())
	s.mux.HandleFunc("/api/courses", s.coursesHandler())
	s.mux.HandleFunc("/api/courses/", s.courseHandler())
	s.mux.HandleFunc("/api/stats", s.statsHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
	s.mux.HandleFunc("/api/ws", s.wsHandler())
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves HTTP until ctx is cancelled, then disconnects event clients and shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Streams only end when the hub closes their channels.
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close stops the event hub, ending all live streams
func (s *Server) Close() {
	s.hub.Stop()
}

// Broadcast sends an event to all SSE and WebSocket clients
func (s *Server) Broadcast(event Event) {
	s.hub.Broadcast(event)
}

// originAllowed reports whether a browser on the request's Origin may
// subscribe to events. Requests without an Origin header are not from browsers.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if s.origins["*"] || s.origins[strings.TrimRight(strings.ToLower(origin), "/")] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// session extracts the caller or writes 401
func (s *Server) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := session.FromRequest(r, s.userHeader)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return session.Session{}, false
	}
	return sess, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
