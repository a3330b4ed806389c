package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AayusX/Smart-Mavi-sub000/internal/dto"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/timetable"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

// BuildGeneratorConfig resolves a generate request against the configured
// timing defaults into a generator configuration. Every problem with the
// request is reported as a validation error.
func BuildGeneratorConfig(req dto.GenerateTimetableRequest, defaults config.TimetableDefaults) (timetable.Config, error) {
	cfg := timetable.Config{}

	subjects := make(map[int]timetable.Subject, len(req.Subjects))
	for _, in := range req.Subjects {
		if _, dup := subjects[in.ID]; dup {
			return cfg, invalid("duplicate subject id %d", in.ID)
		}
		subject := timetable.Subject{ID: in.ID, Name: strings.TrimSpace(in.Name)}
		subjects[in.ID] = subject
		cfg.Subjects = append(cfg.Subjects, subject)
	}

	seenTeachers := make(map[int]struct{}, len(req.Teachers))
	for _, in := range req.Teachers {
		if _, dup := seenTeachers[in.ID]; dup {
			return cfg, invalid("duplicate teacher id %d", in.ID)
		}
		seenTeachers[in.ID] = struct{}{}
		teacher := timetable.NewTeacher(in.ID, strings.TrimSpace(in.Name))
		for _, subjectID := range in.SubjectIDs {
			subject, ok := subjects[subjectID]
			if !ok {
				return cfg, invalid("teacher %d references unknown subject %d", in.ID, subjectID)
			}
			teacher = teacher.AddSubject(subject)
		}
		cfg.Teachers = append(cfg.Teachers, teacher)
	}

	seenClasses := make(map[int]struct{}, len(req.Classes))
	for _, in := range req.Classes {
		if _, dup := seenClasses[in.ID]; dup {
			return cfg, invalid("duplicate class id %d", in.ID)
		}
		seenClasses[in.ID] = struct{}{}
		cfg.Classes = append(cfg.Classes, timetable.ClassInfo{ID: in.ID, Name: strings.TrimSpace(in.Name), Grade: strings.TrimSpace(in.Grade)})
	}

	if err := applyTiming(&cfg, req.Timing, defaults); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyTiming(cfg *timetable.Config, in dto.TimingInput, defaults config.TimetableDefaults) error {
	base := timetable.DefaultConfig()

	days := in.Days
	if len(days) == 0 {
		days = defaults.Days
	}
	if len(days) == 0 {
		cfg.Days = base.Days
	} else {
		parsed, err := parseDays(days)
		if err != nil {
			return err
		}
		cfg.Days = parsed
	}

	var err error
	if cfg.SchoolStart, err = clockOr(in.SchoolStart, defaults.SchoolStart, base.SchoolStart, "schoolStart"); err != nil {
		return err
	}
	if cfg.SchoolEnd, err = clockOr(in.SchoolEnd, defaults.SchoolEnd, base.SchoolEnd, "schoolEnd"); err != nil {
		return err
	}
	if cfg.BreakStart, err = clockOr(in.BreakStart, defaults.BreakStart, base.BreakStart, "breakStart"); err != nil {
		return err
	}
	if cfg.LunchStart, err = clockOr(in.LunchStart, defaults.LunchStart, base.LunchStart, "lunchStart"); err != nil {
		return err
	}

	cfg.PeriodDuration = intOr(in.PeriodDuration, defaults.PeriodDuration, base.PeriodDuration)
	cfg.BreakDuration = intOr(in.BreakDuration, defaults.BreakDuration, base.BreakDuration)
	cfg.LunchDuration = intOr(in.LunchDuration, defaults.LunchDuration, base.LunchDuration)
	cfg.MaxPeriodsPerDay = intOr(in.MaxPeriodsPerDay, defaults.MaxPeriodsPerDay, base.MaxPeriodsPerDay)
	cfg.MaxPeriodsPerTeacherPerDay = intOr(in.MaxPeriodsPerTeacherPerDay, defaults.MaxPeriodsPerTeacherPerDay, base.MaxPeriodsPerTeacherPerDay)

	if cfg.SchoolEnd <= cfg.SchoolStart {
		return invalid("schoolEnd %s must be after schoolStart %s", cfg.SchoolEnd, cfg.SchoolStart)
	}
	if cfg.PeriodDuration <= 0 {
		return invalid("periodDuration must be positive")
	}
	if cfg.BreakDuration < 0 || cfg.LunchDuration < 0 {
		return invalid("break durations must not be negative")
	}
	return nil
}

func parseDays(raw []string) ([]timetable.Weekday, error) {
	days := make([]timetable.Weekday, 0, len(raw))
	seen := make(map[timetable.Weekday]struct{}, len(raw))
	for _, name := range raw {
		day, err := timetable.ParseWeekday(name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		if _, dup := seen[day]; dup {
			return nil, invalid("day %s listed twice", day)
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, nil
}

func clockOr(value, fallback string, base timetable.Clock, field string) (timetable.Clock, error) {
	raw := value
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		return base, nil
	}
	clock, err := timetable.ParseClock(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s", field))
	}
	return clock, nil
}

func intOr(value *int, fallback, base int) int {
	if value != nil {
		return *value
	}
	if fallback != 0 {
		return fallback
	}
	return base
}

func invalid(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(format, args...))
}

// settingsFromConfig captures the timing parameters of a generator config.
func settingsFromConfig(cfg timetable.Config) models.TimetableSettings {
	return models.TimetableSettings{
		SchoolStart:                cfg.SchoolStart.String(),
		SchoolEnd:                  cfg.SchoolEnd.String(),
		PeriodDuration:             cfg.PeriodDuration,
		BreakStart:                 cfg.BreakStart.String(),
		BreakDuration:              cfg.BreakDuration,
		LunchStart:                 cfg.LunchStart.String(),
		LunchDuration:              cfg.LunchDuration,
		MaxPeriodsPerDay:           cfg.MaxPeriodsPerDay,
		MaxPeriodsPerTeacherPerDay: cfg.MaxPeriodsPerTeacherPerDay,
	}
}

// configFromSettings rebuilds the timing part of a config from stored settings,
// enough to lay out the day skeleton again.
func configFromSettings(days []string, settings models.TimetableSettings) (timetable.Config, error) {
	cfg := timetable.Config{
		PeriodDuration:             settings.PeriodDuration,
		BreakDuration:              settings.BreakDuration,
		LunchDuration:              settings.LunchDuration,
		MaxPeriodsPerDay:           settings.MaxPeriodsPerDay,
		MaxPeriodsPerTeacherPerDay: settings.MaxPeriodsPerTeacherPerDay,
	}
	parsed, err := parseDays(days)
	if err != nil {
		return cfg, err
	}
	cfg.Days = parsed
	clocks := []struct {
		raw    string
		target *timetable.Clock
		field  string
	}{
		{settings.SchoolStart, &cfg.SchoolStart, "schoolStart"},
		{settings.SchoolEnd, &cfg.SchoolEnd, "schoolEnd"},
		{settings.BreakStart, &cfg.BreakStart, "breakStart"},
		{settings.LunchStart, &cfg.LunchStart, "lunchStart"},
	}
	for _, c := range clocks {
		if *c.target, err = clockOr(c.raw, "", 0, c.field); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func dayNames(days []timetable.Weekday) []string {
	names := make([]string, len(days))
	for i, day := range days {
		names[i] = string(day)
	}
	return names
}

func slotViews(slots []timetable.TimeSlot) []dto.TimeSlotView {
	views := make([]dto.TimeSlotView, len(slots))
	for i, slot := range slots {
		views[i] = dto.TimeSlotView{
			Day:             string(slot.Day),
			PeriodNumber:    slot.Period,
			StartTime:       slot.Start.String(),
			EndTime:         slot.End().String(),
			DurationMinutes: slot.Duration,
			IsBreak:         slot.IsBreak,
		}
	}
	return views
}

func slotsFromViews(views []dto.TimeSlotView) ([]timetable.TimeSlot, error) {
	slots := make([]timetable.TimeSlot, 0, len(views))
	for _, view := range views {
		start, err := timetable.ParseClock(view.StartTime)
		if err != nil {
			return nil, err
		}
		if view.DurationMinutes <= 0 {
			return nil, fmt.Errorf("slot %s period %d has no duration", view.Day, view.PeriodNumber)
		}
		slots = append(slots, timetable.NewTimeSlot(timetable.Weekday(view.Day), start, view.DurationMinutes, view.PeriodNumber, view.IsBreak))
	}
	return slots, nil
}

func entryView(e timetable.Entry) dto.TimetableEntryView {
	return dto.TimetableEntryView{
		Day:             string(e.Slot.Day),
		PeriodNumber:    e.Slot.Period,
		StartTime:       e.Slot.Start.String(),
		EndTime:         e.Slot.End().String(),
		DurationMinutes: e.Slot.Duration,
		ClassID:         e.Class.ID,
		ClassName:       e.Class.Name,
		ClassGrade:      e.Class.Grade,
		SubjectID:       e.Subject.ID,
		SubjectName:     e.Subject.Name,
		TeacherID:       e.Teacher.ID,
		TeacherName:     e.Teacher.Name,
	}
}

func entryViews(entries []timetable.Entry) []dto.TimetableEntryView {
	views := make([]dto.TimetableEntryView, len(entries))
	for i, e := range entries {
		views[i] = entryView(e)
	}
	sortEntryViews(views)
	return views
}

// sortEntryViews orders lessons by weekday, period, then class.
func sortEntryViews(views []dto.TimetableEntryView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if da, db := timetable.Weekday(a.Day).Index(), timetable.Weekday(b.Day).Index(); da != db {
			return da < db
		}
		if a.PeriodNumber != b.PeriodNumber {
			return a.PeriodNumber < b.PeriodNumber
		}
		return a.ClassID < b.ClassID
	})
}

func entryFromView(view dto.TimetableEntryView) (timetable.Entry, error) {
	start, err := timetable.ParseClock(view.StartTime)
	if err != nil {
		return timetable.Entry{}, err
	}
	if view.DurationMinutes <= 0 {
		return timetable.Entry{}, fmt.Errorf("entry %s period %d has no duration", view.Day, view.PeriodNumber)
	}
	return timetable.Entry{
		Teacher: timetable.NewTeacher(view.TeacherID, view.TeacherName),
		Subject: timetable.Subject{ID: view.SubjectID, Name: view.SubjectName},
		Class:   timetable.ClassInfo{ID: view.ClassID, Name: view.ClassName, Grade: view.ClassGrade},
		Slot:    timetable.NewTimeSlot(timetable.Weekday(view.Day), start, view.DurationMinutes, view.PeriodNumber, false),
	}, nil
}

// scheduleFromViews replays stored lessons into a schedule. A conflicting
// lesson means the stored data is corrupt and is reported as an error.
func scheduleFromViews(days []string, views []dto.TimetableEntryView) (*timetable.Schedule, error) {
	weekdays := make([]timetable.Weekday, len(days))
	for i, day := range days {
		weekdays[i] = timetable.Weekday(day)
	}
	schedule := timetable.NewSchedule(weekdays...)
	for _, view := range views {
		entry, err := entryFromView(view)
		if err != nil {
			return nil, err
		}
		if err := schedule.AddEntry(entry); err != nil {
			return nil, err
		}
	}
	return schedule, nil
}

func entryViewsFromModels(entries []models.TimetableEntry) []dto.TimetableEntryView {
	views := make([]dto.TimetableEntryView, len(entries))
	for i, e := range entries {
		start, err := timetable.ParseClock(e.StartTime)
		end := e.StartTime
		if err == nil {
			end = start.Add(e.DurationMin).String()
		}
		views[i] = dto.TimetableEntryView{
			Day:             e.Day,
			PeriodNumber:    e.PeriodNumber,
			StartTime:       e.StartTime,
			EndTime:         end,
			DurationMinutes: e.DurationMin,
			ClassID:         e.ClassID,
			ClassName:       e.ClassName,
			ClassGrade:      e.ClassGrade,
			SubjectID:       e.SubjectID,
			SubjectName:     e.SubjectName,
			TeacherID:       e.TeacherID,
			TeacherName:     e.TeacherName,
		}
	}
	sortEntryViews(views)
	return views
}

func entryModels(timetableID string, views []dto.TimetableEntryView) []models.TimetableEntry {
	entries := make([]models.TimetableEntry, len(views))
	for i, v := range views {
		entries[i] = models.TimetableEntry{
			TimetableID:  timetableID,
			Day:          v.Day,
			PeriodNumber: v.PeriodNumber,
			StartTime:    v.StartTime,
			DurationMin:  v.DurationMinutes,
			ClassID:      v.ClassID,
			ClassName:    v.ClassName,
			ClassGrade:   v.ClassGrade,
			SubjectID:    v.SubjectID,
			SubjectName:  v.SubjectName,
			TeacherID:    v.TeacherID,
			TeacherName:  v.TeacherName,
		}
	}
	return entries
}

func gridView(grid timetable.Grid) dto.GridView {
	rows := make([]dto.GridRowView, len(grid.Rows))
	for i, row := range grid.Rows {
		rows[i] = dto.GridRowView{Period: row.Period, Time: row.Time, Cells: row.Cells}
	}
	return dto.GridView{Title: grid.Title, Days: dayNames(grid.Days), Rows: rows}
}

func reportView(seed int64, report timetable.Report) dto.GenerationReport {
	dropped := make([]dto.DroppedDemand, len(report.Dropped))
	for i, unit := range report.Dropped {
		dropped[i] = dto.DroppedDemand{
			ClassID:     unit.Class.ID,
			ClassName:   unit.Class.Name,
			SubjectID:   unit.Subject.ID,
			SubjectName: unit.Subject.Name,
		}
	}
	return dto.GenerationReport{
		Seed:        seed,
		DemandUnits: report.DemandUnits,
		Placed:      report.Placed,
		Dropped:     dropped,
		Quality:     report.Quality,
	}
}
