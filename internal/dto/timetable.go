package dto

import "time"

// SubjectInput declares one subject of the school.
type SubjectInput struct {
	ID   int    `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required,max=100"`
}

// TeacherInput declares a teacher and the subjects they can teach.
type TeacherInput struct {
	ID         int    `json:"id" validate:"required,min=1"`
	Name       string `json:"name" validate:"required,max=100"`
	SubjectIDs []int  `json:"subjectIds" validate:"omitempty,dive,min=1"`
}

// ClassInput declares a class section.
type ClassInput struct {
	ID    int    `json:"id" validate:"required,min=1"`
	Name  string `json:"name" validate:"required,max=100"`
	Grade string `json:"grade" validate:"max=20"`
}

// TimingInput overrides the configured timetable defaults. Omitted fields
// keep the default; a zero break or lunch duration disables that break.
type TimingInput struct {
	Days                       []string `json:"days,omitempty" validate:"omitempty,max=7,dive,required"`
	SchoolStart                string   `json:"schoolStart,omitempty"`
	SchoolEnd                  string   `json:"schoolEnd,omitempty"`
	PeriodDuration             *int     `json:"periodDuration,omitempty" validate:"omitempty,min=5,max=240"`
	BreakStart                 string   `json:"breakStart,omitempty"`
	BreakDuration              *int     `json:"breakDuration,omitempty" validate:"omitempty,min=0,max=120"`
	LunchStart                 string   `json:"lunchStart,omitempty"`
	LunchDuration              *int     `json:"lunchDuration,omitempty" validate:"omitempty,min=0,max=120"`
	MaxPeriodsPerDay           *int     `json:"maxPeriodsPerDay,omitempty" validate:"omitempty,min=1,max=16"`
	MaxPeriodsPerTeacherPerDay *int     `json:"maxPeriodsPerTeacherPerDay,omitempty" validate:"omitempty,min=1,max=16"`
}

// GenerateTimetableRequest instructs the generator to build a weekly proposal.
type GenerateTimetableRequest struct {
	Name     string         `json:"name" validate:"omitempty,max=120"`
	Seed     *int64         `json:"seed,omitempty"`
	Subjects []SubjectInput `json:"subjects" validate:"required,min=1,dive"`
	Teachers []TeacherInput `json:"teachers" validate:"required,min=1,dive"`
	Classes  []ClassInput   `json:"classes" validate:"required,min=1,dive"`
	Timing   TimingInput    `json:"timing"`
}

// RegenerateRequest re-runs a stored proposal, optionally pinning the seed.
type RegenerateRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

// ProposalQuery narrows a proposal to one class or one teacher.
type ProposalQuery struct {
	ClassID   int `form:"classId" json:"classId"`
	TeacherID int `form:"teacherId" json:"teacherId"`
}

// SaveTimetableRequest persists a proposal.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Name       string `json:"name" validate:"omitempty,max=120"`
}

// TimeSlotView is one period of the generated day skeleton.
type TimeSlotView struct {
	Day             string `json:"day"`
	PeriodNumber    int    `json:"periodNumber"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	IsBreak         bool   `json:"isBreak"`
}

// TimetableEntryView is one placed lesson.
type TimetableEntryView struct {
	Day             string `json:"day"`
	PeriodNumber    int    `json:"periodNumber"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	ClassID         int    `json:"classId"`
	ClassName       string `json:"className"`
	ClassGrade      string `json:"classGrade,omitempty"`
	SubjectID       int    `json:"subjectId"`
	SubjectName     string `json:"subjectName"`
	TeacherID       int    `json:"teacherId"`
	TeacherName     string `json:"teacherName"`
}

// DroppedDemand is a weekly lesson the generator could not place.
type DroppedDemand struct {
	ClassID     int    `json:"classId"`
	ClassName   string `json:"className"`
	SubjectID   int    `json:"subjectId"`
	SubjectName string `json:"subjectName"`
}

// GenerationReport summarises one generation run.
type GenerationReport struct {
	Seed        int64           `json:"seed"`
	DemandUnits int             `json:"demandUnits"`
	Placed      int             `json:"placed"`
	Dropped     []DroppedDemand `json:"dropped"`
	Quality     int             `json:"quality"`
}

// GridRowView is one period across the school days.
type GridRowView struct {
	Period int      `json:"period"`
	Time   string   `json:"time"`
	Cells  []string `json:"cells"`
}

// GridView is a period by day table for one class or teacher.
type GridView struct {
	Title string        `json:"title"`
	Days  []string      `json:"days"`
	Rows  []GridRowView `json:"rows"`
}

// TimetableProposal is an unsaved generated timetable.
type TimetableProposal struct {
	ProposalID  string               `json:"proposalId"`
	Name        string               `json:"name,omitempty"`
	Days        []string             `json:"days"`
	Slots       []TimeSlotView       `json:"slots"`
	Entries     []TimetableEntryView `json:"entries"`
	Report      GenerationReport     `json:"report"`
	Grids       []GridView           `json:"grids,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
	ExpiresAt   time.Time            `json:"expiresAt"`
}
