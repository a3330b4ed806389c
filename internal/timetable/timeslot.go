package timetable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Weekday names a school day.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

var weekdayIndex = map[Weekday]int{
	Sunday:    1,
	Monday:    2,
	Tuesday:   3,
	Wednesday: 4,
	Thursday:  5,
	Friday:    6,
	Saturday:  7,
}

// SchoolWeek is the default Sunday to Friday teaching week.
func SchoolWeek() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}
}

// ParseWeekday accepts any casing of a weekday name.
func ParseWeekday(raw string) (Weekday, error) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := weekdayIndex[day]; !ok {
		return "", fmt.Errorf("unknown weekday %q", raw)
	}
	return day, nil
}

// Index returns 1 for Sunday through 7 for Saturday, 0 when unknown.
func (d Weekday) Index() int {
	return weekdayIndex[d]
}

// Title renders the day as "Sunday".
func (d Weekday) Title() string {
	if d == "" {
		return ""
	}
	lower := strings.ToLower(string(d))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Clock is a time of day expressed in minutes after midnight.
type Clock int

// NewClock builds a clock value from hours and minutes.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(raw string) (Clock, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return NewClock(hour, minute), nil
}

// MustParseClock is ParseClock for literals; it panics on bad input.
func MustParseClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Add advances the clock by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON encodes the clock as "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes "HH:MM".
func (c *Clock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeSlot is one period of a school day. Values are immutable once built.
type TimeSlot struct {
	Day      Weekday `json:"day"`
	Start    Clock   `json:"startTime"`
	Duration int     `json:"durationMinutes"`
	Period   int     `json:"periodNumber"`
	IsBreak  bool    `json:"isBreak"`
}

// NewTimeSlot builds a slot. A non-positive duration is a programming error.
func NewTimeSlot(day Weekday, start Clock, duration, period int, isBreak bool) TimeSlot {
	if duration <= 0 {
		panic(fmt.Sprintf("timetable: slot duration must be positive, got %d", duration))
	}
	return TimeSlot{Day: day, Start: start, Duration: duration, Period: period, IsBreak: isBreak}
}

// End is the exclusive end of the slot.
func (s TimeSlot) End() Clock {
	return s.Start.Add(s.Duration)
}

// Overlaps reports whether both slots share any instant on the same day.
// Intervals are half-open, so back-to-back slots do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Day != other.Day {
		return false
	}
	return !(s.End() <= other.Start || s.Start >= other.End())
}

// Equal compares day, start time and duration.
func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.Day == other.Day && s.Start == other.Start && s.Duration == other.Duration
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s P%d %s-%s", s.Day.Title(), s.Period, s.Start, s.End())
}
