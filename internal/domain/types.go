package domain

// Priority represents launch task priority
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the enumerated priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Stage is a coarse bucket describing how far a user is from launching a course
type Stage string

const (
	StageNothingStarted Stage = "nothing_started"
	StageLandingReady   Stage = "landing_ready"
	StageContentReady   Stage = "content_ready"
	StageLaunched       Stage = "launched"
	StageUnclear        Stage = "unclear"
)

// GenerationKind identifies which generation flow produced an audit record
type GenerationKind string

const (
	KindCourse       GenerationKind = "course"
	KindLearningPath GenerationKind = "learning_path"
	KindGuidance     GenerationKind = "guidance"
)

// GenerationStatus represents the outcome of a generation attempt
type GenerationStatus string

const (
	GenerationOK    GenerationStatus = "ok"
	GenerationEmpty GenerationStatus = "empty"
	GenerationError GenerationStatus = "error"
)
