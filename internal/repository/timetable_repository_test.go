package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "seed", "quality", "demand_units", "placed_units", "dropped_units", "days", "config", "created_by", "created_at", "updated_at"})
}

func TestTimetableRepositoryCreateInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "Term 1", int64(42), 120, 10, 9, 1, "SUNDAY,MONDAY", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "SUNDAY", 1, "08:00", 45, 1, "10A", "10", 2, "Math", 3, "Sita").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.BeginTxx(ctx, nil)
	require.NoError(t, err)

	timetable := &models.Timetable{
		Name:         "Term 1",
		Seed:         42,
		Quality:      120,
		DemandUnits:  10,
		PlacedUnits:  9,
		DroppedUnits: 1,
		Days:         models.DayList{"SUNDAY", "MONDAY"},
		Settings:     models.TimetableSettings{SchoolStart: "08:00", SchoolEnd: "15:00", PeriodDuration: 45},
	}
	require.NoError(t, repo.Create(ctx, tx, timetable))
	assert.NotEmpty(t, timetable.ID)

	entries := []models.TimetableEntry{{
		TimetableID:  timetable.ID,
		Day:          "SUNDAY",
		PeriodNumber: 1,
		StartTime:    "08:00",
		DurationMin:  45,
		ClassID:      1,
		ClassName:    "10A",
		ClassGrade:   "10",
		SubjectID:    2,
		SubjectName:  "Math",
		TeacherID:    3,
		TeacherName:  "Sita",
	}}
	require.NoError(t, repo.CreateEntries(ctx, tx, entries))
	assert.NotEmpty(t, entries[0].ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateEntriesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	require.NoError(t, repo.CreateEntries(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + timetableColumns + " FROM timetables ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(20, 0).
		WillReturnRows(timetableRows().AddRow("tt-1", "Term 1", 42, 120, 10, 9, 1, "SUNDAY,MONDAY", `{"schoolStart":"08:00","periodDuration":45}`, nil, time.Now(), time.Now()))

	timetables, total, err := repo.List(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, timetables, 1)
	assert.Equal(t, models.DayList{"SUNDAY", "MONDAY"}, timetables[0].Days)
	assert.Equal(t, 45, timetables[0].Settings.PeriodDuration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByIDAndEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + timetableColumns + " FROM timetables WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	entryRows := sqlmock.NewRows([]string{"id", "timetable_id", "day", "period_number", "start_time", "duration_min", "class_id", "class_name", "class_grade", "subject_id", "subject_name", "teacher_id", "teacher_name"}).
		AddRow("e-1", "tt-1", "SUNDAY", 1, "08:00", 45, 1, "10A", "10", 2, "Math", 3, "Sita")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + timetableEntryColumns + " FROM timetable_entries WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(entryRows)

	entries, err := repo.ListEntries(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Sita", entries[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "tt-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "tt-2"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
