package coursegen

import (
	"github.com/google/uuid"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
)

// IDFunc produces the random part of a synthetic identifier
type IDFunc func() string

// NewID returns a fresh random identifier
func NewID() string {
	return uuid.NewString()
}

// AssignIDs gives every module a "mod-" and every lesson a "les-" identifier.
// Existing IDs are kept unless they repeat an ID already seen in modules, so
// edited outlines keep stable references while new entries get fresh ones.
func AssignIDs(modules []domain.Module, newID IDFunc) {
	if newID == nil {
		newID = NewID
	}
	seen := make(map[string]bool)
	claim := func(current, prefix string) string {
		if current != "" && !seen[current] {
			seen[current] = true
			return current
		}
		for {
			id := prefix + newID()
			if !seen[id] {
				seen[id] = true
				return id
			}
		}
	}

	for i := range modules {
		modules[i].ID = claim(modules[i].ID, "mod-")
		for j := range modules[i].Lessons {
			modules[i].Lessons[j].ID = claim(modules[i].Lessons[j].ID, "les-")
		}
	}
}
