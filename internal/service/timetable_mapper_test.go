package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestBuildGeneratorConfigDefaults(t *testing.T) {
	cfg, err := BuildGeneratorConfig(sampleGenerateRequest(), config.TimetableDefaults{})
	require.NoError(t, err)

	base := timetable.DefaultConfig()
	assert.Equal(t, base.Days, cfg.Days)
	assert.Equal(t, base.SchoolStart, cfg.SchoolStart)
	assert.Equal(t, base.SchoolEnd, cfg.SchoolEnd)
	assert.Equal(t, base.PeriodDuration, cfg.PeriodDuration)
	assert.Equal(t, base.MaxPeriodsPerTeacherPerDay, cfg.MaxPeriodsPerTeacherPerDay)

	require.Len(t, cfg.Teachers, 2)
	assert.True(t, cfg.Teachers[0].TeachesSubject(timetable.Subject{ID: 1, Name: "Mathematics"}))
	assert.False(t, cfg.Teachers[0].TeachesSubject(timetable.Subject{ID: 2, Name: "Science"}))
	assert.Len(t, cfg.Subjects, 2)
	assert.Len(t, cfg.Classes, 2)
}

func TestBuildGeneratorConfigPrecedence(t *testing.T) {
	req := sampleGenerateRequest()
	req.Timing = dto.TimingInput{
		Days:           []string{"monday", "Wednesday"},
		SchoolStart:    "07:30",
		PeriodDuration: intPtr(40),
		BreakDuration:  intPtr(0),
	}
	defaults := config.TimetableDefaults{
		Days:           []string{"SUNDAY"},
		SchoolStart:    "09:00",
		SchoolEnd:      "13:00",
		PeriodDuration: 50,
		LunchDuration:  20,
	}

	cfg, err := BuildGeneratorConfig(req, defaults)
	require.NoError(t, err)
	assert.Equal(t, []timetable.Weekday{timetable.Monday, timetable.Wednesday}, cfg.Days)
	assert.Equal(t, timetable.NewClock(7, 30), cfg.SchoolStart)
	assert.Equal(t, timetable.NewClock(13, 0), cfg.SchoolEnd)
	assert.Equal(t, 40, cfg.PeriodDuration)
	assert.Equal(t, 0, cfg.BreakDuration, "explicit zero disables the break")
	assert.Equal(t, 20, cfg.LunchDuration)
}

func TestBuildGeneratorConfigRejects(t *testing.T) {
	cases := map[string]func(*dto.GenerateTimetableRequest){
		"duplicate subject": func(r *dto.GenerateTimetableRequest) { r.Subjects = append(r.Subjects, r.Subjects[0]) },
		"duplicate teacher": func(r *dto.GenerateTimetableRequest) { r.Teachers = append(r.Teachers, r.Teachers[0]) },
		"duplicate class":   func(r *dto.GenerateTimetableRequest) { r.Classes = append(r.Classes, r.Classes[1]) },
		"duplicate day":     func(r *dto.GenerateTimetableRequest) { r.Timing.Days = []string{"MONDAY", "monday"} },
		"bad lunch":         func(r *dto.GenerateTimetableRequest) { r.Timing.LunchStart = "noon" },
		"zero length day": func(r *dto.GenerateTimetableRequest) {
			r.Timing.SchoolStart = "10:00"
			r.Timing.SchoolEnd = "10:00"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := sampleGenerateRequest()
			mutate(&req)
			_, err := BuildGeneratorConfig(req, config.TimetableDefaults{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	cfg := timetable.DefaultConfig()
	settings := settingsFromConfig(cfg)
	assert.Equal(t, "10:15", settings.BreakStart)

	rebuilt, err := configFromSettings(dayNames(cfg.Days), settings)
	require.NoError(t, err)
	assert.Equal(t, cfg.Days, rebuilt.Days)
	assert.Equal(t, cfg.SchoolStart, rebuilt.SchoolStart)
	assert.Equal(t, cfg.LunchStart, rebuilt.LunchStart)
	assert.Equal(t, timetable.NewGenerator(cfg).TimeSlots(), timetable.NewGenerator(rebuilt).TimeSlots())
}

func TestScheduleFromViewsRejectsConflicts(t *testing.T) {
	view := dto.TimetableEntryView{
		Day: "MONDAY", PeriodNumber: 1, StartTime: "08:00", DurationMinutes: 45,
		ClassID: 1, ClassName: "7A", SubjectID: 1, SubjectName: "Mathematics", TeacherID: 1, TeacherName: "Ana Putri",
	}
	clash := view
	clash.ClassID, clash.ClassName = 2, "7B"

	schedule, err := scheduleFromViews([]string{"MONDAY"}, []dto.TimetableEntryView{view})
	require.NoError(t, err)
	assert.Equal(t, 1, schedule.Len())

	_, err = scheduleFromViews([]string{"MONDAY"}, []dto.TimetableEntryView{view, clash})
	assert.ErrorIs(t, err, timetable.ErrTeacherConflict)
}

func TestEntryModelsRoundTrip(t *testing.T) {
	views := []dto.TimetableEntryView{
		{Day: "TUESDAY", PeriodNumber: 2, StartTime: "08:45", EndTime: "09:30", DurationMinutes: 45, ClassID: 1, ClassName: "7A", SubjectID: 1, SubjectName: "Mathematics", TeacherID: 1, TeacherName: "Ana Putri"},
		{Day: "SUNDAY", PeriodNumber: 1, StartTime: "08:00", EndTime: "08:45", DurationMinutes: 45, ClassID: 2, ClassName: "7B", SubjectID: 2, SubjectName: "Science", TeacherID: 2, TeacherName: "Budi Santoso"},
	}
	modelsOut := entryModels("tt-1", views)
	require.Len(t, modelsOut, 2)
	assert.Equal(t, "tt-1", modelsOut[0].TimetableID)

	back := entryViewsFromModels(modelsOut)
	assert.Equal(t, "SUNDAY", back[0].Day, "views are sorted by weekday")
	assert.Equal(t, views[1], back[0])
	assert.Equal(t, views[0], back[1])
}
