package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
)

const timetableColumns = `id, name, seed, quality, demand_units, placed_units, dropped_units, days, config, created_by, created_at, updated_at`

const timetableEntryColumns = `id, timetable_id, day, period_number, start_time, duration_min, class_id, class_name, class_grade, subject_id, subject_name, teacher_id, teacher_name`

// TimetableRepository persists saved timetables and their lessons.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BeginTxx starts a transaction spanning a timetable and its entries.
func (r *TimetableRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// Create inserts the timetable header row.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	const query = `
INSERT INTO timetables (` + timetableColumns + `)
VALUES (:id, :name, :seed, :quality, :demand_units, :placed_units, :dropped_units, :days, :config, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// CreateEntries inserts the lessons of a timetable.
func (r *TimetableRepository) CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO timetable_entries (` + timetableEntryColumns + `)
VALUES (:id, :timetable_id, :day, :period_number, :start_time, :duration_min, :class_id, :class_name, :class_grade, :subject_id, :subject_name, :teacher_id, :teacher_name)`

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("create timetable entry: %w", err)
		}
	}
	return nil
}

// List returns saved timetables, newest first, with the total row count.
func (r *TimetableRepository) List(ctx context.Context, limit, offset int) ([]models.Timetable, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM timetables`); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	const query = `SELECT ` + timetableColumns + ` FROM timetables ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, total, nil
}

// FindByID loads a timetable header. It returns sql.ErrNoRows when missing.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListEntries returns a timetable's lessons ordered by day, period and class.
func (r *TimetableRepository) ListEntries(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	const query = `SELECT ` + timetableEntryColumns + ` FROM timetable_entries WHERE timetable_id = $1 ORDER BY day ASC, period_number ASC, class_id ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// Delete removes a timetable; entries and export jobs cascade.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
