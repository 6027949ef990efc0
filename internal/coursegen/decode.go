package coursegen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
)

var (
	// ErrEmptyOutput means the model returned nothing
	ErrEmptyOutput = errors.New("model returned no output")
	// ErrSchemaMismatch means the model output did not match the expected shape
	ErrSchemaMismatch = errors.New("model output does not match schema")
)

type wireLesson struct {
	LessonTitle string   `json:"lessonTitle"`
	Topics      []string `json:"topics"`
}

type wireModule struct {
	ModuleTitle       string       `json:"moduleTitle"`
	ModuleDescription string       `json:"moduleDescription"`
	Lessons           []wireLesson `json:"lessons"`
}

type wireCourse struct {
	CourseTitle       string        `json:"courseTitle"`
	CourseDescription string        `json:"courseDescription"`
	Modules           *[]wireModule `json:"modules"`
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown fields
func decodeStrict(raw string, v any) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyOutput
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrSchemaMismatch)
	}
	return nil
}

// DecodeCourse validates raw model output and converts it to a course without IDs.
func DecodeCourse(raw string) (*domain.Course, error) {
	var wc wireCourse
	if err := decodeStrict(raw, &wc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(wc.CourseTitle) == "" {
		return nil, fmt.Errorf("%w: missing courseTitle", ErrSchemaMismatch)
	}
	if wc.Modules == nil {
		return nil, fmt.Errorf("%w: missing modules", ErrSchemaMismatch)
	}

	course := &domain.Course{
		CourseTitle:       wc.CourseTitle,
		CourseDescription: wc.CourseDescription,
		Modules:           make([]domain.Module, 0, len(*wc.Modules)),
	}
	for i, wm := range *wc.Modules {
		if strings.TrimSpace(wm.ModuleTitle) == "" {
			return nil, fmt.Errorf("%w: module %d has no title", ErrSchemaMismatch, i)
		}
		m := domain.Module{
			ModuleTitle:       wm.ModuleTitle,
			ModuleDescription: wm.ModuleDescription,
			Lessons:           make([]domain.Lesson, 0, len(wm.Lessons)),
		}
		for j, wl := range wm.Lessons {
			if strings.TrimSpace(wl.LessonTitle) == "" {
				return nil, fmt.Errorf("%w: module %d lesson %d has no title", ErrSchemaMismatch, i, j)
			}
			topics := wl.Topics
			if topics == nil {
				topics = []string{}
			}
			m.Lessons = append(m.Lessons, domain.Lesson{LessonTitle: wl.LessonTitle, Topics: topics})
		}
		course.Modules = append(course.Modules, m)
	}
	return course, nil
}

// DecodeLearningPath validates raw model output for the learning path flow.
func DecodeLearningPath(raw string) (domain.LearningPath, error) {
	var p domain.LearningPath
	if err := decodeStrict(raw, &p); err != nil {
		return domain.LearningPath{}, err
	}
	if p.Empty() {
		return domain.LearningPath{}, ErrEmptyOutput
	}
	return p, nil
}

// DecodeGuidance validates raw model output for the guidance flow.
func DecodeGuidance(raw string) (domain.Guidance, error) {
	var g domain.Guidance
	if err := decodeStrict(raw, &g); err != nil {
		return domain.Guidance{}, err
	}
	if g.Empty() {
		return domain.Guidance{}, ErrEmptyOutput
	}
	return g, nil
}
