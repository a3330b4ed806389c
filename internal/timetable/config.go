package timetable

// Config is the input to one generation run. Callers must not mutate the
// slices after handing the config to a Generator.
type Config struct {
	Teachers []Teacher
	Subjects []Subject
	Classes  []ClassInfo
	Days     []Weekday

	SchoolStart    Clock
	SchoolEnd      Clock
	PeriodDuration int

	BreakStart    Clock
	BreakDuration int
	LunchStart    Clock
	LunchDuration int

	MaxPeriodsPerDay           int
	MaxPeriodsPerTeacherPerDay int
}

// DefaultConfig returns the timing defaults offered by the setup wizard.
// Entity lists are left empty.
func DefaultConfig() Config {
	return Config{
		Days:                       SchoolWeek(),
		SchoolStart:                NewClock(8, 0),
		SchoolEnd:                  NewClock(15, 0),
		PeriodDuration:             45,
		BreakStart:                 NewClock(10, 15),
		BreakDuration:              15,
		LunchStart:                 NewClock(12, 0),
		LunchDuration:              30,
		MaxPeriodsPerDay:           8,
		MaxPeriodsPerTeacherPerDay: 6,
	}
}

// DemandUnit is one weekly occurrence of a subject that a class needs.
type DemandUnit struct {
	Class   ClassInfo `json:"class"`
	Subject Subject   `json:"subject"`
}
