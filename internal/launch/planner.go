// Package launch maps a free-text description of launch progress to a fixed,
// ordered checklist of recommended tasks.
package launch

import (
	"strings"

	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
)

const greeting = "Hola, soy Valeria. ¿En qué te puedo ayudar hoy?"

// rule pairs a stage with the predicate that selects it
type rule struct {
	stage   domain.Stage
	matches func(desc string) bool
}

// rules are evaluated in order and the first match wins. The order is load-bearing:
// a description mentioning both an early and a late milestone resolves to the earlier stage.
var rules = []rule{
	{domain.StageNothingStarted, containsAny("no tengo nada", "cero", "inicio")},
	{domain.StageLandingReady, containsAny("landing", "página de ventas", "pagina de ventas")},
	{domain.StageContentReady, func(d string) bool {
		return (strings.Contains(d, "contenido") && strings.Contains(d, "listo")) ||
			strings.Contains(d, "curso creado")
	}},
	{domain.StageLaunched, containsAny("lanzado", "vendiendo")},
}

func containsAny(keywords ...string) func(string) bool {
	return func(desc string) bool {
		for _, k := range keywords {
			if strings.Contains(desc, k) {
				return true
			}
		}
		return false
	}
}

// Classify returns the launch stage described by desc.
// Descriptions that match no keyword set are StageUnclear.
func Classify(desc string) domain.Stage {
	desc = strings.ToLower(desc)
	for _, r := range rules {
		if r.matches(desc) {
			return r.stage
		}
	}
	return domain.StageUnclear
}

// Plan returns the ordered task list for the stage described by desc.
// It never returns an empty list.
func Plan(desc string) []domain.LaunchTask {
	return TasksFor(Classify(desc))
}

// TasksFor returns a copy of the task table for stage.
// Unknown stages get the fallback table.
func TasksFor(stage domain.Stage) []domain.LaunchTask {
	table, ok := tables[stage]
	if !ok {
		table = tables[domain.StageUnclear]
	}
	out := make([]domain.LaunchTask, len(table))
	copy(out, table)
	return out
}

// Stages lists every stage in classification order, fallback last
func Stages() []domain.Stage {
	stages := make([]domain.Stage, 0, len(rules)+1)
	for _, r := range rules {
		stages = append(stages, r.stage)
	}
	return append(stages, domain.StageUnclear)
}

// Greeting is Valeria's opening line
func Greeting() string {
	return greeting
}
