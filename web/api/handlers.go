package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hochfrequenz/codigo-course-studio/internal/coursegen"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursestore"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	"github.com/hochfrequenz/codigo-course-studio/internal/launch"
	"github.com/hochfrequenz/codigo-course-studio/internal/session"
	"go.uber.org/zap"
)

const msgMissingFields = "Missing required input fields."

// LaunchPlanRequest is the body of POST /api/launch-plan
type LaunchPlanRequest struct {
	StageDescription string `json:"stageDescription"`
}

// LaunchPlanResponse is the API response for a launch plan
type LaunchPlanResponse struct {
	Stage domain.Stage        `json:"stage"`
	Tasks []domain.LaunchTask `json:"tasks"`
}

// DataResponse wraps successful generation results
type DataResponse struct {
	Data any `json:"data"`
}

// FailureResponse is returned when a generator call fails
type FailureResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SaveCourseRequest is the body of POST /api/courses
type SaveCourseRequest struct {
	domain.CourseRequest
	domain.Course
}

// UpdateCourseRequest is the body of PUT /api/courses/{id}
type UpdateCourseRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Modules     []domain.Module `json:"modules"`
}

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) greetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": launch.Greeting()})
	}
}

func (s *Server) launchPlanHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req LaunchPlanRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		writeJSON(w, http.StatusOK, LaunchPlanResponse{
			Stage: launch.Classify(req.StageDescription),
			Tasks: launch.Plan(req.StageDescription),
		})
	}
}

func (s *Server) generateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req domain.CourseRequest
		if err := decodeBody(w, r, &req); err != nil {
			s.generationFailed(w, "Failed to generate course", fmt.Errorf("reading request body: %w", err))
			return
		}
		if req.MissingField() != "" {
			writeError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		userID := s.optionalUser(r)
		course, err := s.gen.GenerateCourse(r.Context(), userID, req)
		if err != nil {
			s.generationFailed(w, "Failed to generate course", err)
			return
		}

		if !course.Failed() {
			s.Broadcast(Event{Type: EventCourseGenerated, Data: CourseEvent{UserID: userID, Title: course.CourseTitle}})
		}
		writeJSON(w, http.StatusOK, DataResponse{Data: course})
	}
}

func (s *Server) learningPathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req domain.LearningPathRequest
		if err := decodeBody(w, r, &req); err != nil {
			s.generationFailed(w, "Failed to generate learning path", fmt.Errorf("reading request body: %w", err))
			return
		}
		if req.MissingField() != "" {
			writeError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		path, err := s.gen.LearningPath(r.Context(), s.optionalUser(r), req)
		if err != nil {
			s.generationFailed(w, "Failed to generate learning path", err)
			return
		}
		writeJSON(w, http.StatusOK, DataResponse{Data: path})
	}
}

func (s *Server) guidanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req domain.GuidanceRequest
		if err := decodeBody(w, r, &req); err != nil {
			s.generationFailed(w, "Failed to generate guidance", fmt.Errorf("reading request body: %w", err))
			return
		}
		if req.MissingField() != "" {
			writeError(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		g, err := s.gen.Guidance(r.Context(), s.optionalUser(r), req)
		if err != nil {
			s.generationFailed(w, "Failed to generate guidance", err)
			return
		}
		writeJSON(w, http.StatusOK, DataResponse{Data: g})
	}
}

func (s *Server) coursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sess, ok := s.session(w, r)
			if !ok {
				return
			}
			courses, err := s.store.ListCourses(r.Context(), sess.UserID)
			if err != nil {
				s.internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, DataResponse{Data: courses})

		case http.MethodPost:
			sess, ok := s.session(w, r)
			if !ok {
				return
			}
			var req SaveCourseRequest
			if err := decodeBody(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if strings.TrimSpace(req.CourseTitle) == "" || req.Failed() {
				writeError(w, http.StatusBadRequest, "course title is required")
				return
			}

			c := &domain.UserCourse{
				UserID:      sess.UserID,
				Title:       req.CourseTitle,
				Description: req.CourseDescription,
				Skills:      req.Skills,
				Knowledge:   req.Knowledge,
				Passions:    req.Passions,
				Niche:       req.Niche,
				Language:    req.Language,
				Modules:     req.Modules,
			}
			if err := s.store.SaveCourse(r.Context(), c); err != nil {
				s.internalError(w, err)
				return
			}

			s.Broadcast(Event{Type: EventCourseSaved, Data: CourseEvent{ID: c.ID, UserID: c.UserID, Title: c.Title}})
			writeJSON(w, http.StatusCreated, DataResponse{Data: c})

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) courseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/courses/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodPut, http.MethodDelete:
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		sess, ok := s.session(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			c, err := s.store.GetCourse(r.Context(), sess.UserID, id)
			if err != nil {
				s.storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, DataResponse{Data: c})

		case http.MethodPut:
			var req UpdateCourseRequest
			if err := decodeBody(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if strings.TrimSpace(req.Title) == "" {
				writeError(w, http.StatusBadRequest, "course title is required")
				return
			}

			c := &domain.UserCourse{
				ID:          id,
				UserID:      sess.UserID,
				Title:       req.Title,
				Description: req.Description,
				Modules:     req.Modules,
			}
			if err := s.store.UpdateCourse(r.Context(), c); err != nil {
				s.storeError(w, err)
				return
			}

			s.Broadcast(Event{Type: EventCourseSaved, Data: CourseEvent{ID: c.ID, UserID: c.UserID, Title: c.Title}})
			writeJSON(w, http.StatusOK, DataResponse{Data: c})

		case http.MethodDelete:
			if err := s.store.DeleteCourse(r.Context(), sess.UserID, id); err != nil {
				s.storeError(w, err)
				return
			}
			s.Broadcast(Event{Type: EventCourseDeleted, Data: CourseEvent{ID: id, UserID: sess.UserID}})
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		stats, err := s.store.GenerationStats(r.Context())
		if err != nil {
			s.internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// optionalUser returns the caller's ID for auditing, or "" for anonymous generation
func (s *Server) optionalUser(r *http.Request) string {
	sess, _ := session.FromRequest(r, s.userHeader)
	if sess.Anonymous() {
		return ""
	}
	return sess.UserID
}

func (s *Server) generationFailed(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, coursegen.ErrMissingField) {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	s.logger.Error(message, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, FailureResponse{Error: message, Details: err.Error()})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, coursestore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	s.internalError(w, err)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
