package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportView selects the layout of an export.
type ExportView string

const (
	// ExportViewEntries is a flat list of lessons.
	ExportViewEntries ExportView = "entries"
	// ExportViewGrid renders one period by day grid per class.
	ExportViewGrid ExportView = "grid"
	// ExportViewTeacherGrid renders one grid per teacher.
	ExportViewTeacherGrid ExportView = "teacher-grid"
)

// Valid reports whether the view is supported.
func (v ExportView) Valid() bool {
	switch v {
	case ExportViewEntries, ExportViewGrid, ExportViewTeacherGrid:
		return true
	default:
		return false
	}
}

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is the persisted state of an asynchronous timetable export.
type ExportJob struct {
	ID           string       `db:"id" json:"id"`
	TimetableID  string       `db:"timetable_id" json:"timetableId"`
	Format       ExportFormat `db:"format" json:"format"`
	View         ExportView   `db:"view" json:"view"`
	Status       ExportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	ResultPath   *string      `db:"result_path" json:"-"`
	ErrorMessage *string      `db:"error" json:"error,omitempty"`
	CreatedBy    *string      `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finishedAt,omitempty"`
}
