package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/export"
)

type csvRenderer interface {
	Render(tables ...export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, tables ...export.Table) ([]byte, error)
}

var entryHeaders = []string{"Day", "Period", "Start", "End", "Class", "Grade", "Subject", "Teacher"}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// RenderedExport is a rendered timetable document.
type RenderedExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService turns schedules into CSV or PDF documents.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render rebuilds a saved timetable and renders it.
func (s *ExportService) Render(t *models.Timetable, format models.ExportFormat, view models.ExportView) (*RenderedExport, error) {
	if t == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	cfg, err := configFromSettings(t.Days, t.Settings)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored timetable settings are invalid")
	}
	schedule, err := scheduleFromViews(t.Days, entryViewsFromModels(t.Entries))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored timetable entries are inconsistent")
	}
	slots := timetable.NewGenerator(cfg).TimeSlots()
	return s.RenderSchedule(t.Name, schedule, slots, format, view)
}

// RenderSchedule renders a schedule in the requested layout. An empty view
// defaults to the flat entry list.
func (s *ExportService) RenderSchedule(title string, schedule *timetable.Schedule, slots []timetable.TimeSlot, format models.ExportFormat, view models.ExportView) (*RenderedExport, error) {
	if view == "" {
		view = models.ExportViewEntries
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if !view.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export view")
	}
	if title == "" {
		title = "Timetable"
	}

	var tables []export.Table
	switch view {
	case models.ExportViewGrid:
		for _, class := range scheduleClasses(schedule) {
			tables = append(tables, gridTable(timetable.ClassGrid(schedule, class, slots)))
		}
	case models.ExportViewTeacherGrid:
		for _, teacher := range scheduleTeachers(schedule) {
			tables = append(tables, gridTable(timetable.TeacherGrid(schedule, teacher, slots)))
		}
	default:
		tables = []export.Table{entriesTable(schedule)}
	}
	if len(tables) == 0 {
		tables = []export.Table{{Data: export.Dataset{Headers: entryHeaders}}}
	}

	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(title, tables...)
	default:
		payload, err = s.csv.Render(tables...)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	s.logger.Debug("timetable rendered",
		zap.String("format", string(format)),
		zap.String("view", string(view)),
		zap.Int("tables", len(tables)),
		zap.Int("bytes", len(payload)),
	)
	return &RenderedExport{
		Filename:    exportFilename(title, view, format),
		ContentType: export.ContentType(string(format)),
		Payload:     payload,
	}, nil
}

func entriesTable(schedule *timetable.Schedule) export.Table {
	views := entryViews(schedule.Entries())
	rows := make([]map[string]string, len(views))
	for i, v := range views {
		rows[i] = map[string]string{
			"Day":     v.Day,
			"Period":  strconv.Itoa(v.PeriodNumber),
			"Start":   v.StartTime,
			"End":     v.EndTime,
			"Class":   v.ClassName,
			"Grade":   v.ClassGrade,
			"Subject": v.SubjectName,
			"Teacher": v.TeacherName,
		}
	}
	return export.Table{Data: export.Dataset{Headers: entryHeaders, Rows: rows}}
}

func gridTable(grid timetable.Grid) export.Table {
	headers := []string{"Period", "Time"}
	for _, day := range grid.Days {
		headers = append(headers, day.Title())
	}
	rows := make([]map[string]string, len(grid.Rows))
	for i, row := range grid.Rows {
		values := map[string]string{
			"Period": strconv.Itoa(row.Period),
			"Time":   row.Time,
		}
		for j, day := range grid.Days {
			values[day.Title()] = row.Cells[j]
		}
		rows[i] = values
	}
	return export.Table{Title: grid.Title, Data: export.Dataset{Headers: headers, Rows: rows}}
}

func scheduleClasses(schedule *timetable.Schedule) []timetable.ClassInfo {
	seen := make(map[int]timetable.ClassInfo)
	for _, e := range schedule.Entries() {
		seen[e.Class.ID] = e.Class
	}
	classes := make([]timetable.ClassInfo, 0, len(seen))
	for _, class := range seen {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func scheduleTeachers(schedule *timetable.Schedule) []timetable.Teacher {
	seen := make(map[int]timetable.Teacher)
	for _, e := range schedule.Entries() {
		seen[e.Teacher.ID] = e.Teacher
	}
	teachers := make([]timetable.Teacher, 0, len(seen))
	for _, teacher := range seen {
		teachers = append(teachers, teacher)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}

func exportFilename(title string, view models.ExportView, format models.ExportFormat) string {
	base := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "timetable"
	}
	return fmt.Sprintf("%s-%s.%s", base, view, format)
}
