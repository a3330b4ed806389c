package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayList persists an ordered weekday list as a comma separated column.
type DayList []string

// Value joins the days for persistence.
func (d DayList) Value() (driver.Value, error) {
	return strings.Join(d, ","), nil
}

// Scan splits the stored column back into weekday names.
func (d *DayList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for DayList", value)
	}
	if raw == "" {
		*d = nil
		return nil
	}
	*d = strings.Split(raw, ",")
	return nil
}

// TimetableSettings records the timing parameters a timetable was generated with.
type TimetableSettings struct {
	SchoolStart                string `json:"schoolStart"`
	SchoolEnd                  string `json:"schoolEnd"`
	PeriodDuration             int    `json:"periodDuration"`
	BreakStart                 string `json:"breakStart"`
	BreakDuration              int    `json:"breakDuration"`
	LunchStart                 string `json:"lunchStart"`
	LunchDuration              int    `json:"lunchDuration"`
	MaxPeriodsPerDay           int    `json:"maxPeriodsPerDay"`
	MaxPeriodsPerTeacherPerDay int    `json:"maxPeriodsPerTeacherPerDay"`
}

// Value marshals settings to JSON for persistence.
func (s TimetableSettings) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal timetable settings: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the settings struct.
func (s *TimetableSettings) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = TimetableSettings{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for TimetableSettings", value)
	}
	if len(data) == 0 {
		*s = TimetableSettings{}
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("unmarshal timetable settings: %w", err)
	}
	return nil
}

// Timetable is a saved generated schedule.
type Timetable struct {
	ID           string            `db:"id" json:"id"`
	Name         string            `db:"name" json:"name"`
	Seed         int64             `db:"seed" json:"seed"`
	Quality      int               `db:"quality" json:"quality"`
	DemandUnits  int               `db:"demand_units" json:"demandUnits"`
	PlacedUnits  int               `db:"placed_units" json:"placedUnits"`
	DroppedUnits int               `db:"dropped_units" json:"droppedUnits"`
	Days         DayList           `db:"days" json:"days"`
	Settings     TimetableSettings `db:"config" json:"settings"`
	CreatedBy    *string           `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updatedAt"`
	Entries      []TimetableEntry  `db:"-" json:"entries,omitempty"`
}

// TimetableEntry is one persisted lesson of a saved timetable. Names are
// denormalised so a saved timetable stays readable on its own.
type TimetableEntry struct {
	ID           string `db:"id" json:"id"`
	TimetableID  string `db:"timetable_id" json:"timetableId"`
	Day          string `db:"day" json:"day"`
	PeriodNumber int    `db:"period_number" json:"periodNumber"`
	StartTime    string `db:"start_time" json:"startTime"`
	DurationMin  int    `db:"duration_min" json:"durationMinutes"`
	ClassID      int    `db:"class_id" json:"classId"`
	ClassName    string `db:"class_name" json:"className"`
	ClassGrade   string `db:"class_grade" json:"classGrade"`
	SubjectID    int    `db:"subject_id" json:"subjectId"`
	SubjectName  string `db:"subject_name" json:"subjectName"`
	TeacherID    int    `db:"teacher_id" json:"teacherId"`
	TeacherName  string `db:"teacher_name" json:"teacherName"`
}
