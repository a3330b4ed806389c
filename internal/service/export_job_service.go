package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/repository"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/export"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/jobs"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/storage"
)

// ExportJobType tags export jobs on the shared queue.
const ExportJobType = "timetable_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type timetableLoader interface {
	Get(ctx context.Context, id string) (*models.Timetable, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type timetableRenderer interface {
	Render(t *models.Timetable, format models.ExportFormat, view models.ExportView) (*RenderedExport, error)
}

// ExportJobServiceConfig governs download links and cleanup.
type ExportJobServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobService orchestrates asynchronous timetable exports.
type ExportJobService struct {
	repo       exportJobStore
	timetables timetableLoader
	queue      jobDispatcher
	storage    fileStorage
	signer     *storage.SignedURLSigner
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ExportJobServiceConfig
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo exportJobStore, timetables timetableLoader, queue jobDispatcher, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportJobServiceConfig) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{
		repo:       repo,
		timetables: timetables,
		queue:      queue,
		storage:    files,
		signer:     signer,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// CreateJob validates the request, persists a QUEUED job and enqueues it.
func (s *ExportJobService) CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if req.View == "" {
		req.View = models.ExportViewEntries
	}
	if _, err := s.timetables.Get(ctx, req.TimetableID); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		TimetableID: req.TimetableID,
		Format:      req.Format,
		View:        req.View,
		Status:      models.ExportStatusQueued,
	}
	if actorID != "" {
		job.CreatedBy = &actorID
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		s.metrics.RecordExportJob(string(job.Format), string(status))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.metrics.RecordExportJob(string(job.Format), string(job.Status))
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata. Teachers only see their own jobs. Finished
// jobs carry a freshly signed download link.
func (s *ExportJobService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == models.RoleTeacher && (job.CreatedBy == nil || *job.CreatedBy != actorID) {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ExportStatusResponse{
		ID:          job.ID,
		TimetableID: job.TimetableID,
		Format:      job.Format,
		View:        job.View,
		Status:      job.Status,
		Progress:    job.Progress,
	}
	if job.Status == models.ExportStatusFinished && job.ResultPath != nil && *job.ResultPath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, *job.ResultPath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
		}
		url := strings.TrimRight(s.cfg.APIPrefix, "/") + "/export/" + token
		resp.DownloadURL = &url
		resp.ExpiresAt = &expiresAt
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultPath == nil || *job.ResultPath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file has expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    fmt.Sprintf("timetable-%s.%s", job.View, job.Format),
		ContentType: export.ContentType(string(job.Format)),
		ExpiresAt:   expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending export", "job_id", job.ID, "error", err)
		}
	}
	if len(pending) > 0 {
		s.logger.Info("requeued pending exports", zap.Int("count", len(pending)))
	}
}

// StartCleanup boots a goroutine that purges expired export files periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range expired {
		if job.ResultPath == nil || *job.ResultPath == "" {
			continue
		}
		if err := s.storage.Delete(*job.ResultPath); err != nil {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ExportJobService) loadJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// ExportWorker bridges queue jobs to the renderer and file storage.
type ExportWorker struct {
	repo       exportJobStore
	timetables timetableLoader
	renderer   timetableRenderer
	storage    fileStorage
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, timetables timetableLoader, renderer timetableRenderer, files fileStorage, metrics *MetricsService, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{
		repo:       repo,
		timetables: timetables,
		renderer:   renderer,
		storage:    files,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle processes one export job. A returned error makes the queue retry.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if record.Status == models.ExportStatusFinished {
		return nil
	}

	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}

	relPath, err := w.produce(ctx, record)
	if err != nil {
		queued := models.ExportStatusQueued
		reset := 0
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark export queued", "job_id", job.ID, "error", updateErr)
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := w.now().UTC()
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultPath:   &relPath,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export finished", "job_id", job.ID, "error", err)
		return err
	}
	w.metrics.RecordExportJob(string(record.Format), string(finished))
	w.logger.Info("timetable export finished", zap.String("job_id", job.ID), zap.String("path", relPath))
	return nil
}

// GiveUp marks a job FAILED once the queue has exhausted its retries.
func (w *ExportWorker) GiveUp(ctx context.Context, job jobs.Job, cause error) {
	failed := models.ExportStatusFailed
	progress := 100
	now := w.now().UTC()
	msg := "export failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export failed", "job_id", job.ID, "error", err)
		return
	}
	format := ""
	if record, err := w.repo.GetByID(ctx, job.ID); err == nil {
		format = string(record.Format)
	}
	w.metrics.RecordExportJob(format, string(failed))
}

func (w *ExportWorker) produce(ctx context.Context, record *models.ExportJob) (string, error) {
	t, err := w.timetables.Get(ctx, record.TimetableID)
	if err != nil {
		return "", err
	}
	rendered, err := w.renderer.Render(t, record.Format, record.View)
	if err != nil {
		return "", err
	}
	relPath := fmt.Sprintf("timetables/%s/%s.%s", record.TimetableID, record.ID, record.Format)
	if _, err := w.storage.Save(relPath, rendered.Payload); err != nil {
		return "", err
	}
	return relPath, nil
}
