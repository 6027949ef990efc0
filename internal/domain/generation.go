package domain

import "time"

// GenerationRecord is an audit entry for a single generation attempt
type GenerationRecord struct {
	ID         int64
	UserID     string
	Kind       GenerationKind
	Status     GenerationStatus
	Model      string
	DurationMs int64
	Error      string
	CreatedAt  time.Time
}

// GenerationStats counts generation attempts by status
type GenerationStats struct {
	Total int `json:"total"`
	OK    int `json:"ok"`
	Empty int `json:"empty"`
	Error int `json:"error"`
}
