package domain

import (
	"strings"
	"time"
)

// FailedCourseTitle marks a course that could not be generated
const FailedCourseTitle = "Error"

// CourseRequest holds the user's self-description used to draft a course
type CourseRequest struct {
	Skills    string `json:"skills"`
	Knowledge string `json:"knowledge"`
	Passions  string `json:"passions"`
	Niche     string `json:"niche"`
	Language  string `json:"language"`
}

// MissingField returns the JSON name of the first blank field, or "" if complete
func (r CourseRequest) MissingField() string {
	fields := []struct {
		name, value string
	}{
		{"skills", r.Skills},
		{"knowledge", r.Knowledge},
		{"passions", r.Passions},
		{"niche", r.Niche},
		{"language", r.Language},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// Lesson is a single lesson of a course module
type Lesson struct {
	ID          string   `json:"id"`
	LessonTitle string   `json:"lessonTitle"`
	Topics      []string `json:"topics"`
}

// Module groups lessons of a course
type Module struct {
	ID                string   `json:"id"`
	ModuleTitle       string   `json:"moduleTitle"`
	ModuleDescription string   `json:"moduleDescription"`
	Lessons           []Lesson `json:"lessons"`
}

// Course is a generated course outline
type Course struct {
	CourseTitle       string   `json:"courseTitle"`
	CourseDescription string   `json:"courseDescription"`
	Modules           []Module `json:"modules"`
}

// FailedCourse returns the sentinel substituted when generation yields no usable output
func FailedCourse() *Course {
	return &Course{
		CourseTitle: FailedCourseTitle,
		Modules:     []Module{},
	}
}

// Failed reports whether c is the generation failure sentinel
func (c *Course) Failed() bool {
	return c == nil || (c.CourseTitle == FailedCourseTitle && len(c.Modules) == 0)
}

// LessonCount returns the total number of lessons across all modules
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// UserCourse is a course saved by a user, together with the inputs that produced it
type UserCourse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      string    `json:"skills"`
	Knowledge   string    `json:"knowledge"`
	Passions    string    `json:"passions"`
	Niche       string    `json:"niche"`
	Language    string    `json:"language"`
	Modules     []Module  `json:"modules"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
