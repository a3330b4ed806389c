package dto

import (
	"time"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
)

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	TimetableID string              `json:"timetableId" validate:"required,uuid"`
	Format      models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	View        models.ExportView   `json:"view" validate:"omitempty,oneof=entries grid teacher-grid"`
}

// ExportQuery selects format and layout for synchronous exports.
type ExportQuery struct {
	Format models.ExportFormat `form:"format"`
	View   models.ExportView   `form:"view"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress and, once finished, a signed link.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	TimetableID string              `json:"timetableId"`
	Format      models.ExportFormat `json:"format"`
	View        models.ExportView   `json:"view"`
	Status      models.ExportStatus `json:"status"`
	Progress    int                 `json:"progress"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
