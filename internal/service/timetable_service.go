package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

type timetableRepository interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
	List(ctx context.Context, limit, offset int) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListEntries(ctx context.Context, timetableID string) ([]models.TimetableEntry, error)
	Delete(ctx context.Context, id string) error
}

// TimetableServiceConfig governs generation limits and defaults.
type TimetableServiceConfig struct {
	ProposalTTL time.Duration
	MaxClasses  int
	MaxTeachers int
	Defaults    config.TimetableDefaults
}

// TimetableService generates timetable proposals and manages saved timetables.
type TimetableService struct {
	repo      timetableRepository
	proposals ProposalStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig
	now       func() time.Time
	seed      func() int64
}

// NewTimetableService wires the timetable dependencies. A nil proposal store
// falls back to an in-memory store.
func NewTimetableService(repo timetableRepository, proposals ProposalStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg TimetableServiceConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if proposals == nil {
		proposals = NewMemoryProposalStore(cfg.ProposalTTL)
	}
	return &TimetableService{
		repo:      repo,
		proposals: proposals,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		seed:      func() int64 { return time.Now().UnixNano() },
	}
}

// Generate runs the generator for the request and stores the result as a proposal.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableProposal, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.ObserveInvalidGeneration()
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	if s.cfg.MaxClasses > 0 && len(req.Classes) > s.cfg.MaxClasses {
		s.metrics.ObserveInvalidGeneration()
		return nil, invalid("at most %d classes can be scheduled at once", s.cfg.MaxClasses)
	}
	if s.cfg.MaxTeachers > 0 && len(req.Teachers) > s.cfg.MaxTeachers {
		s.metrics.ObserveInvalidGeneration()
		return nil, invalid("at most %d teachers can be scheduled at once", s.cfg.MaxTeachers)
	}

	genCfg, err := BuildGeneratorConfig(req, s.cfg.Defaults)
	if err != nil {
		s.metrics.ObserveInvalidGeneration()
		return nil, err
	}

	seed := s.seed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	req.Seed = &seed

	generator := timetable.NewGenerator(genCfg, timetable.WithSeed(seed), timetable.WithLogger(s.logger))
	started := time.Now()
	result := generator.Generate()
	s.metrics.ObserveGeneration(result.Report.Placed, len(result.Report.Dropped), time.Since(started))

	generatedAt := s.now().UTC()
	proposal := dto.TimetableProposal{
		ProposalID:  uuid.NewString(),
		Name:        req.Name,
		Days:        dayNames(genCfg.Days),
		Slots:       slotViews(generator.TimeSlots()),
		Entries:     entryViews(result.Schedule.Entries()),
		Report:      reportView(seed, result.Report),
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(s.cfg.ProposalTTL),
	}
	if err := s.proposals.Save(ctx, ProposalRecord{Proposal: proposal, Request: req}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable proposal")
	}

	s.logger.Info("timetable proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.Int64("seed", seed),
		zap.Int("classes", len(genCfg.Classes)),
		zap.Int("teachers", len(genCfg.Teachers)),
		zap.Int("placed", result.Report.Placed),
		zap.Int("dropped", len(result.Report.Dropped)),
	)
	return &proposal, nil
}

// Regenerate re-runs a stored proposal's request on a fresh schedule. The
// previous proposal stays available until it expires.
func (s *TimetableService) Regenerate(ctx context.Context, proposalID string, req dto.RegenerateRequest) (*dto.TimetableProposal, error) {
	record, err := s.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	request := record.Request
	request.Seed = req.Seed
	return s.Generate(ctx, request)
}

// GetProposal returns a stored proposal, optionally narrowed to one class or
// one teacher together with that week's grid.
func (s *TimetableService) GetProposal(ctx context.Context, proposalID string, query dto.ProposalQuery) (*dto.TimetableProposal, error) {
	record, err := s.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	proposal := record.Proposal
	if query.ClassID == 0 && query.TeacherID == 0 {
		return &proposal, nil
	}
	if query.ClassID != 0 && query.TeacherID != 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId and teacherId cannot be combined")
	}

	schedule, err := scheduleFromViews(proposal.Days, proposal.Entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored proposal is inconsistent")
	}
	slots, err := slotsFromViews(proposal.Slots)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored proposal is inconsistent")
	}

	var (
		entries []timetable.Entry
		grid    timetable.Grid
	)
	switch {
	case query.ClassID != 0:
		class, ok := findClass(record.Request, query.ClassID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class is not part of this proposal")
		}
		entries = schedule.EntriesForClass(class)
		grid = timetable.ClassGrid(schedule, class, slots)
	default:
		teacher, ok := findTeacher(record.Request, query.TeacherID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher is not part of this proposal")
		}
		entries = schedule.EntriesForTeacher(teacher)
		grid = timetable.TeacherGrid(schedule, teacher, slots)
	}

	proposal.Entries = entryViews(entries)
	proposal.Grids = []dto.GridView{gridView(grid)}
	return &proposal, nil
}

// Save persists a proposal and its lessons in one transaction, then drops the proposal.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest, actorID string) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	record, err := s.loadProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	genCfg, err := BuildGeneratorConfig(record.Request, s.cfg.Defaults)
	if err != nil {
		return nil, err
	}

	proposal := record.Proposal
	name := req.Name
	if name == "" {
		name = proposal.Name
	}
	if name == "" {
		name = "Timetable " + proposal.GeneratedAt.Format("2006-01-02 15:04")
	}
	saved := &models.Timetable{
		Name:         name,
		Seed:         proposal.Report.Seed,
		Quality:      proposal.Report.Quality,
		DemandUnits:  proposal.Report.DemandUnits,
		PlacedUnits:  proposal.Report.Placed,
		DroppedUnits: len(proposal.Report.Dropped),
		Days:         models.DayList(proposal.Days),
		Settings:     settingsFromConfig(genCfg),
	}
	if actorID != "" {
		saved.CreatedBy = &actorID
	}

	tx, err := s.repo.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.Create(ctx, tx, saved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	entries := entryModels(saved.ID, proposal.Entries)
	if err = s.repo.CreateEntries(ctx, tx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}

	if delErr := s.proposals.Delete(ctx, req.ProposalID); delErr != nil {
		s.logger.Warn("failed to drop saved proposal", zap.String("proposal_id", req.ProposalID), zap.Error(delErr))
	}
	saved.Entries = entries
	s.logger.Info("timetable saved", zap.String("timetable_id", saved.ID), zap.Int("entries", len(entries)))
	return saved, nil
}

// List returns saved timetables without their lessons.
func (s *TimetableService) List(ctx context.Context, page, pageSize int) ([]models.Timetable, *models.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	timetables, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return timetables, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get loads a saved timetable with its lessons.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}
	record.Entries = entries
	return record, nil
}

// Delete removes a saved timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.logger.Info("timetable deleted", zap.String("timetable_id", id))
	return nil
}

func (s *TimetableService) loadProposal(ctx context.Context, id string) (*ProposalRecord, error) {
	record, ok, err := s.proposals.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable proposal")
	}
	s.metrics.RecordProposalLookup(ok)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return record, nil
}

func findClass(req dto.GenerateTimetableRequest, id int) (timetable.ClassInfo, bool) {
	for _, c := range req.Classes {
		if c.ID == id {
			return timetable.ClassInfo{ID: c.ID, Name: strings.TrimSpace(c.Name), Grade: strings.TrimSpace(c.Grade)}, true
		}
	}
	return timetable.ClassInfo{}, false
}

func findTeacher(req dto.GenerateTimetableRequest, id int) (timetable.Teacher, bool) {
	for _, t := range req.Teachers {
		if t.ID == id {
			return timetable.NewTeacher(t.ID, strings.TrimSpace(t.Name)), true
		}
	}
	return timetable.Teacher{}, false
}
