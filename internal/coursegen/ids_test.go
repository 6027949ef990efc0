package coursegen

import (
	"testing"

	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
)

func TestAssignIDs_KeepsExistingAndFillsMissing(t *testing.T) {
	modules := []domain.Module{
		{ID: "mod-keep", Lessons: []domain.Lesson{{ID: "les-keep"}, {}}},
		{Lessons: []domain.Lesson{{}}},
	}

	AssignIDs(modules, counterIDs())

	if modules[0].ID != "mod-keep" {
		t.Errorf("existing module ID changed to %q", modules[0].ID)
	}
	if modules[0].Lessons[0].ID != "les-keep" {
		t.Errorf("existing lesson ID changed to %q", modules[0].Lessons[0].ID)
	}
	if modules[0].Lessons[1].ID != "les-1" {
		t.Errorf("new lesson ID = %q, want les-1", modules[0].Lessons[1].ID)
	}
	if modules[1].ID != "mod-2" {
		t.Errorf("new module ID = %q, want mod-2", modules[1].ID)
	}
	if modules[1].Lessons[0].ID != "les-3" {
		t.Errorf("new lesson ID = %q, want les-3", modules[1].Lessons[0].ID)
	}
}

func TestAssignIDs_ReplacesDuplicates(t *testing.T) {
	modules := []domain.Module{
		{ID: "mod-x"},
		{ID: "mod-x"},
	}

	AssignIDs(modules, counterIDs())

	if modules[0].ID != "mod-x" {
		t.Errorf("first ID = %q, want mod-x", modules[0].ID)
	}
	if modules[1].ID == "mod-x" {
		t.Error("duplicate module ID was not replaced")
	}
}

func TestAssignIDs_DefaultGenerator(t *testing.T) {
	modules := []domain.Module{{}, {}}
	AssignIDs(modules, nil)
	if modules[0].ID == "" || modules[0].ID == modules[1].ID {
		t.Errorf("IDs not unique: %q %q", modules[0].ID, modules[1].ID)
	}
}
