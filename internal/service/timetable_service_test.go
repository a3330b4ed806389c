package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

type timetableRepoStub struct {
	db         *sqlx.DB
	timetables map[string]*models.Timetable
	entries    map[string][]models.TimetableEntry
	entriesErr error
}

func newTimetableRepoStub(db *sqlx.DB) *timetableRepoStub {
	return &timetableRepoStub{
		db:         db,
		timetables: map[string]*models.Timetable{},
		entries:    map[string][]models.TimetableEntry{},
	}
}

func (r *timetableRepoStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

func (r *timetableRepoStub) Create(_ context.Context, _ sqlx.ExtContext, t *models.Timetable) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.timetables[t.ID] = t
	return nil
}

func (r *timetableRepoStub) CreateEntries(_ context.Context, _ sqlx.ExtContext, entries []models.TimetableEntry) error {
	if r.entriesErr != nil {
		return r.entriesErr
	}
	for _, e := range entries {
		r.entries[e.TimetableID] = append(r.entries[e.TimetableID], e)
	}
	return nil
}

func (r *timetableRepoStub) List(_ context.Context, limit, offset int) ([]models.Timetable, int, error) {
	out := make([]models.Timetable, 0, len(r.timetables))
	for _, t := range r.timetables {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (r *timetableRepoStub) FindByID(_ context.Context, id string) (*models.Timetable, error) {
	t, ok := r.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *timetableRepoStub) ListEntries(_ context.Context, id string) ([]models.TimetableEntry, error) {
	return r.entries[id], nil
}

func (r *timetableRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := r.timetables[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.timetables, id)
	delete(r.entries, id)
	return nil
}

func sampleGenerateRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		Name: "Term 1",
		Subjects: []dto.SubjectInput{
			{ID: 1, Name: "Mathematics"},
			{ID: 2, Name: "Science"},
		},
		Teachers: []dto.TeacherInput{
			{ID: 1, Name: "Ana Putri", SubjectIDs: []int{1}},
			{ID: 2, Name: "Budi Santoso", SubjectIDs: []int{2}},
		},
		Classes: []dto.ClassInput{
			{ID: 1, Name: "7A", Grade: "7"},
			{ID: 2, Name: "7B", Grade: "7"},
		},
	}
}

func seedPtr(v int64) *int64 { return &v }

func newTimetableServiceForTest(t *testing.T) (*TimetableService, *timetableRepoStub, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newTimetableRepoStub(sqlx.NewDb(db, "sqlmock"))
	svc := NewTimetableService(repo, NewMemoryProposalStore(time.Hour), NewMetricsService(), nil, zap.NewNop(), TimetableServiceConfig{
		ProposalTTL: time.Hour,
		MaxClasses:  10,
		MaxTeachers: 10,
		Defaults:    config.TimetableDefaults{Days: []string{"SUNDAY", "MONDAY", "TUESDAY"}},
	})
	return svc, repo, mock
}

func TestTimetableServiceGenerate(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)
	req := sampleGenerateRequest()
	req.Seed = seedPtr(42)

	proposal, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, proposal.ProposalID)
	assert.Equal(t, "Term 1", proposal.Name)
	assert.Equal(t, []string{"SUNDAY", "MONDAY", "TUESDAY"}, proposal.Days)
	assert.Equal(t, int64(42), proposal.Report.Seed)
	assert.NotEmpty(t, proposal.Slots)
	assert.Len(t, proposal.Entries, proposal.Report.Placed)
	assert.Equal(t, proposal.Report.DemandUnits, proposal.Report.Placed+len(proposal.Report.Dropped))
	assert.True(t, proposal.ExpiresAt.After(proposal.GeneratedAt))

	for _, e := range proposal.Entries {
		switch e.SubjectID {
		case 1:
			assert.Equal(t, 1, e.TeacherID)
		case 2:
			assert.Equal(t, 2, e.TeacherID)
		}
	}

	stored, err := svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{})
	require.NoError(t, err)
	assert.Equal(t, proposal.Entries, stored.Entries)
}

func TestTimetableServiceGenerateIsReproducible(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)
	req := sampleGenerateRequest()
	req.Seed = seedPtr(7)

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ProposalID, second.ProposalID)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Report, second.Report)
}

func TestTimetableServiceGenerateValidation(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)

	cases := map[string]func(*dto.GenerateTimetableRequest){
		"no teachers":     func(r *dto.GenerateTimetableRequest) { r.Teachers = nil },
		"no classes":      func(r *dto.GenerateTimetableRequest) { r.Classes = nil },
		"unknown subject": func(r *dto.GenerateTimetableRequest) { r.Teachers[0].SubjectIDs = []int{99} },
		"bad day":         func(r *dto.GenerateTimetableRequest) { r.Timing.Days = []string{"FUNDAY"} },
		"bad clock":       func(r *dto.GenerateTimetableRequest) { r.Timing.SchoolStart = "25:99" },
		"end before start": func(r *dto.GenerateTimetableRequest) {
			r.Timing.SchoolStart = "14:00"
			r.Timing.SchoolEnd = "09:00"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := sampleGenerateRequest()
			mutate(&req)
			_, err := svc.Generate(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation), "got %v", err)
		})
	}
}

func TestTimetableServiceGenerateEnforcesLimits(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)
	svc.cfg.MaxClasses = 1

	_, err := svc.Generate(context.Background(), sampleGenerateRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceRegenerate(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)
	req := sampleGenerateRequest()
	req.Seed = seedPtr(1)

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	regenerated, err := svc.Regenerate(context.Background(), first.ProposalID, dto.RegenerateRequest{Seed: seedPtr(99)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ProposalID, regenerated.ProposalID)
	assert.Equal(t, int64(99), regenerated.Report.Seed)
	assert.Equal(t, first.Name, regenerated.Name)

	again, err := svc.Generate(context.Background(), func() dto.GenerateTimetableRequest {
		r := sampleGenerateRequest()
		r.Seed = seedPtr(99)
		return r
	}())
	require.NoError(t, err)
	assert.Equal(t, again.Entries, regenerated.Entries)

	_, err = svc.Regenerate(context.Background(), "missing", dto.RegenerateRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceGetProposalFilters(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)
	req := sampleGenerateRequest()
	req.Seed = seedPtr(3)
	proposal, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	byClass, err := svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{ClassID: 2})
	require.NoError(t, err)
	require.NotEmpty(t, byClass.Entries)
	for _, e := range byClass.Entries {
		assert.Equal(t, 2, e.ClassID)
	}
	require.Len(t, byClass.Grids, 1)
	assert.Equal(t, "7B (Grade 7)", byClass.Grids[0].Title)
	assert.Equal(t, proposal.Days, byClass.Grids[0].Days)

	byTeacher, err := svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{TeacherID: 1})
	require.NoError(t, err)
	for _, e := range byTeacher.Entries {
		assert.Equal(t, 1, e.TeacherID)
		assert.Equal(t, 1, e.SubjectID)
	}
	require.Len(t, byTeacher.Grids, 1)
	assert.Equal(t, "Ana Putri", byTeacher.Grids[0].Title)

	full, err := svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{})
	require.NoError(t, err)
	assert.Len(t, full.Entries, len(proposal.Entries), "filtering must not mutate the stored proposal")

	_, err = svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{ClassID: 1, TeacherID: 1})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{ClassID: 42})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.GetProposal(context.Background(), "unknown", dto.ProposalQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceSave(t *testing.T) {
	svc, repo, mock := newTimetableServiceForTest(t)
	req := sampleGenerateRequest()
	req.Seed = seedPtr(5)
	proposal, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: proposal.ProposalID}, "admin-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Term 1", saved.Name)
	assert.Equal(t, int64(5), saved.Seed)
	assert.Equal(t, proposal.Report.Placed, saved.PlacedUnits)
	assert.Equal(t, models.DayList{"SUNDAY", "MONDAY", "TUESDAY"}, saved.Days)
	assert.Equal(t, "08:00", saved.Settings.SchoolStart)
	require.NotNil(t, saved.CreatedBy)
	assert.Equal(t, "admin-1", *saved.CreatedBy)
	assert.Len(t, repo.entries[saved.ID], len(proposal.Entries))

	_, err = svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound), "saved proposals are dropped from the store")

	loaded, err := svc.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, len(proposal.Entries))
}

func TestTimetableServiceSaveRollsBack(t *testing.T) {
	svc, repo, mock := newTimetableServiceForTest(t)
	repo.entriesErr = errors.New("insert failed")
	proposal, err := svc.Generate(context.Background(), sampleGenerateRequest())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: proposal.ProposalID, Name: "Draft"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = svc.GetProposal(context.Background(), proposal.ProposalID, dto.ProposalQuery{})
	assert.NoError(t, err, "proposal survives a failed save")
}

func TestTimetableServiceSaveValidation(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest(t)

	_, err := svc.Save(context.Background(), dto.SaveTimetableRequest{}, "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: "gone"}, "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceListGetDelete(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest(t)
	repo.timetables["tt-1"] = &models.Timetable{ID: "tt-1", Name: "Term 1"}

	items, pagination, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, pagination)

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), "tt-1"))
	err = svc.Delete(context.Background(), "tt-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
