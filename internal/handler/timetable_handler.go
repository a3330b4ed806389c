package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/service"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableProposal, error)
	Regenerate(ctx context.Context, proposalID string, req dto.RegenerateRequest) (*dto.TimetableProposal, error)
	GetProposal(ctx context.Context, proposalID string, query dto.ProposalQuery) (*dto.TimetableProposal, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest, actorID string) (*models.Timetable, error)
	List(ctx context.Context, page, pageSize int) ([]models.Timetable, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
}

type timetableRenderer interface {
	Render(t *models.Timetable, format models.ExportFormat, view models.ExportView) (*service.RenderedExport, error)
}

// TimetableHandler exposes timetable generation and storage endpoints.
type TimetableHandler struct {
	timetables timetableService
	exporter   timetableRenderer
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetables timetableService, exporter timetableRenderer) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exporter: exporter}
}

// Generate godoc
// @Summary Generate a timetable proposal
// @Description Runs the randomized generator and keeps the result as a short-lived proposal.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation input"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid generation payload"))
		return
	}
	proposal, err := h.timetables.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Regenerate godoc
// @Summary Regenerate a proposal
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.RegenerateRequest false "Optional seed"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/proposals/{id}/regenerate [post]
func (h *TimetableHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid regenerate payload"))
		return
	}
	proposal, err := h.timetables.Regenerate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// GetProposal godoc
// @Summary Get a proposal
// @Description Optionally narrows the proposal to one class or one teacher and adds that week's grid.
// @Tags Timetables
// @Produce json
// @Param id path string true "Proposal ID"
// @Param classId query int false "Class ID"
// @Param teacherId query int false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/proposals/{id} [get]
func (h *TimetableHandler) GetProposal(c *gin.Context) {
	var query dto.ProposalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid proposal filter"))
		return
	}
	proposal, err := h.timetables.GetProposal(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Save godoc
// @Summary Save a proposal
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Proposal to persist"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid save payload"))
		return
	}
	actorID, _ := actorFromContext(c)
	saved, err := h.timetables.Save(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// List godoc
// @Summary List saved timetables
// @Tags Timetables
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	items, pagination, err := h.timetables.List(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "pageSize", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a saved timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.timetables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete a saved timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download a saved timetable
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param view query string false "entries, grid or teacher-grid" default(entries)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export query"))
		return
	}
	if query.Format == "" {
		query.Format = models.ExportFormatCSV
	}
	timetable, err := h.timetables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	rendered, err := h.exporter.Render(timetable, query.Format, query.View)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, rendered.Filename, rendered.ContentType, rendered.Payload)
}
