// Package coursegen drafts course outlines, learning paths and guidance through
// an external text generator, normalizing whatever comes back.
package coursegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	"github.com/hochfrequenz/codigo-course-studio/internal/notify"
	"github.com/hochfrequenz/codigo-course-studio/internal/prompts"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrMissingField is returned when a required request field is blank
var ErrMissingField = errors.New("missing required input field")

// Generator produces JSON text constrained by a response schema.
// An empty result with a nil error means the model produced no output.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Model() string
}

// Recorder persists generation audit records
type Recorder interface {
	RecordGeneration(ctx context.Context, rec *domain.GenerationRecord) error
}

// Service runs the generation flows
type Service struct {
	gen      Generator
	prompts  *prompts.Loader
	logger   *zap.Logger
	recorder Recorder
	notifier notify.Notifier
	newID    IDFunc
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRecorder stores an audit record for every generation attempt
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithNotifier sends a notification whenever course generation fails
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithIDFunc overrides the random part of module and lesson IDs
func WithIDFunc(f IDFunc) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a Service
func NewService(gen Generator, loader *prompts.Loader, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		gen:      gen,
		prompts:  loader,
		logger:   logger,
		notifier: notify.NoopNotifier{},
		newID:    NewID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCourse drafts a course outline for req.
//
// A generator that returns nothing usable yields domain.FailedCourse() and a nil
// error; callers must check Course.Failed(). Only transport failures are errors.
func (s *Service) GenerateCourse(ctx context.Context, userID string, req domain.CourseRequest) (*domain.Course, error) {
	if field := req.MissingField(); field != "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	prompt, err := s.prompts.BuildCoursePrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build course prompt: %w", err)
	}

	start := s.now()
	raw, err := s.gen.GenerateJSON(ctx, prompt, CourseSchema)
	if err != nil {
		s.finish(ctx, userID, domain.KindCourse, start, err)
		return nil, fmt.Errorf("generate course: %w", err)
	}

	course, err := DecodeCourse(raw)
	if err != nil {
		s.finish(ctx, userID, domain.KindCourse, start, err)
		return domain.FailedCourse(), nil
	}

	AssignIDs(course.Modules, s.newID)
	s.finish(ctx, userID, domain.KindCourse, start, nil)

	s.logger.Info("course generated",
		zap.String("user", userID),
		zap.String("title", course.CourseTitle),
		zap.Int("modules", len(course.Modules)),
		zap.Int("lessons", course.LessonCount()))

	return course, nil
}

// LearningPath picks courses for the user; an unusable model reply yields an empty path.
func (s *Service) LearningPath(ctx context.Context, userID string, req domain.LearningPathRequest) (domain.LearningPath, error) {
	if field := req.MissingField(); field != "" {
		return domain.LearningPath{}, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	prompt, err := s.prompts.BuildLearningPathPrompt(req)
	if err != nil {
		return domain.LearningPath{}, fmt.Errorf("build learning path prompt: %w", err)
	}

	start := s.now()
	raw, err := s.gen.GenerateJSON(ctx, prompt, LearningPathSchema)
	if err != nil {
		s.finish(ctx, userID, domain.KindLearningPath, start, err)
		return domain.LearningPath{}, fmt.Errorf("generate learning path: %w", err)
	}

	path, err := DecodeLearningPath(raw)
	s.finish(ctx, userID, domain.KindLearningPath, start, err)
	return path, nil
}

// Guidance answers a question about the CÓDIGO method; an unusable reply yields empty guidance.
func (s *Service) Guidance(ctx context.Context, userID string, req domain.GuidanceRequest) (domain.Guidance, error) {
	if field := req.MissingField(); field != "" {
		return domain.Guidance{}, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	prompt, err := s.prompts.BuildGuidancePrompt(req)
	if err != nil {
		return domain.Guidance{}, fmt.Errorf("build guidance prompt: %w", err)
	}

	start := s.now()
	raw, err := s.gen.GenerateJSON(ctx, prompt, GuidanceSchema)
	if err != nil {
		s.finish(ctx, userID, domain.KindGuidance, start, err)
		return domain.Guidance{}, fmt.Errorf("generate guidance: %w", err)
	}

	g, err := DecodeGuidance(raw)
	s.finish(ctx, userID, domain.KindGuidance, start, err)
	return g, nil
}

// finish classifies the outcome, records it and notifies on course failures
func (s *Service) finish(ctx context.Context, userID string, kind domain.GenerationKind, start time.Time, err error) {
	status := domain.GenerationOK
	switch {
	case errors.Is(err, ErrEmptyOutput), errors.Is(err, ErrSchemaMismatch):
		status = domain.GenerationEmpty
	case err != nil:
		status = domain.GenerationError
	}

	rec := &domain.GenerationRecord{
		UserID:     userID,
		Kind:       kind,
		Status:     status,
		Model:      s.gen.Model(),
		DurationMs: s.now().Sub(start).Milliseconds(),
		CreatedAt:  s.now(),
	}
	if err != nil {
		rec.Error = err.Error()
		s.logger.Warn("generation did not produce a result",
			zap.String("kind", string(kind)),
			zap.String("status", string(status)),
			zap.String("user", userID),
			zap.Error(err))
	}

	if s.recorder != nil {
		if rerr := s.recorder.RecordGeneration(context.WithoutCancel(ctx), rec); rerr != nil {
			s.logger.Error("failed to record generation", zap.Error(rerr))
		}
	}

	if kind == domain.KindCourse && status != domain.GenerationOK {
		n := notify.Notification{
			Title:   "Course generation failed",
			Message: rec.Error,
			Type:    notify.NotifyError,
			UserID:  userID,
			Kind:    string(kind),
		}
		if status == domain.GenerationEmpty {
			n.Title = "Course generation returned no usable outline"
			n.Type = notify.NotifyWarning
		}
		if nerr := s.notifier.Send(context.WithoutCancel(ctx), n); nerr != nil {
			s.logger.Warn("failed to send notification", zap.Error(nerr))
		}
	}
}
