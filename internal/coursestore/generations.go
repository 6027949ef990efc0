package coursestore

import (
	"context"
	"time"

	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
)

// RecordGeneration appends an audit entry and sets rec.ID
func (s *Store) RecordGeneration(ctx context.Context, rec *domain.GenerationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (user_id, kind, status, model, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.UserID,
		string(rec.Kind),
		string(rec.Status),
		rec.Model,
		rec.DurationMs,
		rec.Error,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// ListGenerations returns the most recent audit entries, newest first
func (s *Store) ListGenerations(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, status, model, duration_ms, error, created_at
		FROM generations ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.GenerationRecord
	for rows.Next() {
		var rec domain.GenerationRecord
		var kind, status string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.UserID, &kind, &status, &rec.Model, &rec.DurationMs, &rec.Error, &createdAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.GenerationKind(kind)
		rec.Status = domain.GenerationStatus(status)
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// GenerationStats counts all recorded attempts by status
func (s *Store) GenerationStats(ctx context.Context) (domain.GenerationStats, error) {
	var stats domain.GenerationStats

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM generations GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.Total += count
		switch domain.GenerationStatus(status) {
		case domain.GenerationOK:
			stats.OK = count
		case domain.GenerationEmpty:
			stats.Empty = count
		case domain.GenerationError:
			stats.Error = count
		}
	}
	return stats, rows.Err()
}

// PruneGenerations deletes audit entries created before the cutoff and
// returns how many were removed
func (s *Store) PruneGenerations(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
