// Package coursestore persists saved courses and the generation audit log in SQLite.
package coursestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursegen"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a course does not exist or belongs to another user
var ErrNotFound = errors.New("course not found")

// Store provides SQLite-backed course persistence
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID coursegen.IDFunc
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: coursegen.NewID,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

const courseColumns = `id, user_id, title, description, skills, knowledge, passions, niche, language, modules, created_at, updated_at`

// SaveCourse stores a new course for c.UserID. Missing course, module and
// lesson IDs are filled in; timestamps are set to now.
func (s *Store) SaveCourse(ctx context.Context, c *domain.UserCourse) error {
	if c.UserID == "" {
		return errors.New("course has no owner")
	}
	if c.ID == "" {
		c.ID = "course-" + uuid.NewString()
	}
	if c.Modules == nil {
		c.Modules = []domain.Module{}
	}
	coursegen.AssignIDs(c.Modules, s.newID)

	modulesJSON, err := json.Marshal(c.Modules)
	if err != nil {
		return err
	}

	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.UserID,
		c.Title,
		c.Description,
		c.Skills,
		c.Knowledge,
		c.Passions,
		c.Niche,
		c.Language,
		string(modulesJSON),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting course %s: %w", c.ID, err)
	}
	return nil
}

// GetCourse retrieves a course owned by userID
func (s *Store) GetCourse(ctx context.Context, userID, id string) (*domain.UserCourse, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ? AND user_id = ?`, id, userID)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// ListCourses returns the user's courses, newest first
func (s *Store) ListCourses(ctx context.Context, userID string) ([]*domain.UserCourse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+courseColumns+` FROM courses
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []*domain.UserCourse{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// UpdateCourse replaces the title, description and modules of an existing course.
// Existing module and lesson IDs are preserved; new entries receive fresh IDs.
func (s *Store) UpdateCourse(ctx context.Context, c *domain.UserCourse) error {
	if c.Modules == nil {
		c.Modules = []domain.Module{}
	}
	coursegen.AssignIDs(c.Modules, s.newID)

	modulesJSON, err := json.Marshal(c.Modules)
	if err != nil {
		return err
	}

	c.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE courses SET title = ?, description = ?, modules = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, c.Title, c.Description, string(modulesJSON), c.UpdatedAt, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("updating course %s: %w", c.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	updated, err := s.GetCourse(ctx, c.UserID, c.ID)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

// DeleteCourse removes a course owned by userID
func (s *Store) DeleteCourse(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting course %s: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*domain.UserCourse, error) {
	var c domain.UserCourse
	var description, skills, knowledge, passions, niche, language sql.NullString
	var modulesJSON string

	err := row.Scan(&c.ID, &c.UserID, &c.Title, &description, &skills, &knowledge, &passions, &niche, &language, &modulesJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.Skills = skills.String
	c.Knowledge = knowledge.String
	c.Passions = passions.String
	c.Niche = niche.String
	c.Language = language.String

	c.Modules = []domain.Module{}
	if modulesJSON != "" && modulesJSON != "null" {
		if err := json.Unmarshal([]byte(modulesJSON), &c.Modules); err != nil {
			return nil, fmt.Errorf("decoding modules of %s: %w", c.ID, err)
		}
	}

	return &c, nil
}
