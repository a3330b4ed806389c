package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/export"
)

func sampleTimetable() *models.Timetable {
	cfg := timetable.DefaultConfig()
	cfg.Days = []timetable.Weekday{timetable.Sunday, timetable.Monday}
	return &models.Timetable{
		ID:       "7d0a4c5e-8f0b-4a4e-9d1a-2f3c4b5a6d7e",
		Name:     "Term 1",
		Days:     models.DayList{"SUNDAY", "MONDAY"},
		Settings: settingsFromConfig(cfg),
		Entries: []models.TimetableEntry{
			{Day: "SUNDAY", PeriodNumber: 1, StartTime: "08:00", DurationMin: 45, ClassID: 1, ClassName: "7A", ClassGrade: "7", SubjectID: 1, SubjectName: "Mathematics", TeacherID: 1, TeacherName: "Ana Putri"},
			{Day: "SUNDAY", PeriodNumber: 1, StartTime: "08:00", DurationMin: 45, ClassID: 2, ClassName: "7B", ClassGrade: "7", SubjectID: 2, SubjectName: "Science", TeacherID: 2, TeacherName: "Budi Santoso"},
			{Day: "MONDAY", PeriodNumber: 2, StartTime: "08:45", DurationMin: 45, ClassID: 1, ClassName: "7A", ClassGrade: "7", SubjectID: 2, SubjectName: "Science", TeacherID: 2, TeacherName: "Budi Santoso"},
		},
	}
}

func TestExportServiceRenderEntriesCSV(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())

	rendered, err := svc.Render(sampleTimetable(), models.ExportFormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, "term-1-entries.csv", rendered.Filename)
	assert.Equal(t, "text/csv", rendered.ContentType)

	lines := strings.Split(strings.TrimSpace(string(rendered.Payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Day,Period,Start,End,Class,Grade,Subject,Teacher", lines[0])
	assert.Equal(t, "SUNDAY,1,08:00,08:45,7A,7,Mathematics,Ana Putri", lines[1])
	assert.Equal(t, "MONDAY,2,08:45,09:30,7A,7,Science,Budi Santoso", lines[3])
}

func TestExportServiceRenderGrids(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())

	rendered, err := svc.Render(sampleTimetable(), models.ExportFormatCSV, models.ExportViewGrid)
	require.NoError(t, err)
	body := string(rendered.Payload)
	assert.Contains(t, body, "7A (Grade 7)")
	assert.Contains(t, body, "7B (Grade 7)")
	assert.Contains(t, body, "Period,Time,Sunday,Monday")
	assert.Contains(t, body, "Mathematics (Ana Putri)")
	assert.Contains(t, body, timetable.BreakLabel)

	rendered, err = svc.Render(sampleTimetable(), models.ExportFormatCSV, models.ExportViewTeacherGrid)
	require.NoError(t, err)
	body = string(rendered.Payload)
	assert.True(t, strings.Index(body, "Ana Putri") < strings.Index(body, "Budi Santoso"))
	assert.Contains(t, body, "Science / 7B")
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())

	rendered, err := svc.Render(sampleTimetable(), models.ExportFormatPDF, models.ExportViewGrid)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", rendered.ContentType)
	assert.True(t, bytes.HasPrefix(rendered.Payload, []byte("%PDF")))
}

func TestExportServiceRenderEmptySchedule(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())
	empty := sampleTimetable()
	empty.Entries = nil

	rendered, err := svc.Render(empty, models.ExportFormatCSV, models.ExportViewGrid)
	require.NoError(t, err)
	assert.Equal(t, "Day,Period,Start,End,Class,Grade,Subject,Teacher", strings.TrimSpace(string(rendered.Payload)))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())

	_, err := svc.Render(sampleTimetable(), models.ExportFormat("xlsx"), models.ExportViewEntries)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Render(sampleTimetable(), models.ExportFormatCSV, models.ExportView("calendar"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Render(nil, models.ExportFormatCSV, models.ExportViewEntries)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

type failingRenderer struct{}

func (failingRenderer) Render(...export.Table) ([]byte, error) { return nil, errors.New("boom") }

func TestExportServiceWrapsRendererErrors(t *testing.T) {
	svc := NewExportService(failingRenderer{}, nil, zap.NewNop())

	_, err := svc.Render(sampleTimetable(), models.ExportFormatCSV, models.ExportViewEntries)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
