package timetable

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is the parent of every double-booking rejection.
	ErrConflict = errors.New("schedule conflict")
	// ErrTeacherConflict means the teacher already teaches at an overlapping slot.
	ErrTeacherConflict = fmt.Errorf("%w: teacher already booked", ErrConflict)
	// ErrClassConflict means the class already has a lesson at an overlapping slot.
	ErrClassConflict = fmt.Errorf("%w: class already booked", ErrConflict)
)

// Schedule is an ordered set of entries in which no teacher and no class is
// ever booked twice for overlapping slots.
type Schedule struct {
	entries []Entry
	days    []Weekday
}

// NewSchedule creates an empty schedule for the given days.
func NewSchedule(days ...Weekday) *Schedule {
	s := &Schedule{}
	s.SetDays(days)
	return s
}

// AddEntry inserts the entry when it does not conflict. A rejected entry
// leaves the schedule untouched and returns ErrTeacherConflict or
// ErrClassConflict.
func (s *Schedule) AddEntry(entry Entry) error {
	if !s.IsTeacherAvailable(entry.Teacher, entry.Slot) {
		return ErrTeacherConflict
	}
	if !s.IsClassroomAvailable(entry.Class, entry.Slot) {
		return ErrClassConflict
	}
	s.entries = append(s.entries, entry)
	return nil
}

// RemoveEntry deletes the first structurally equal entry and reports whether
// one was found.
func (s *Schedule) RemoveEntry(entry Entry) bool {
	for i, existing := range s.entries {
		if existing.Equal(entry) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// HasConflict reports whether AddEntry would reject the entry.
func (s *Schedule) HasConflict(entry Entry) bool {
	return !s.IsTeacherAvailable(entry.Teacher, entry.Slot) ||
		!s.IsClassroomAvailable(entry.Class, entry.Slot)
}

// IsTeacherAvailable is true when no entry of the teacher touches the slot.
func (s *Schedule) IsTeacherAvailable(teacher Teacher, slot TimeSlot) bool {
	for _, e := range s.entries {
		if e.Teacher.Equal(teacher) && slotsCollide(e.Slot, slot) {
			return false
		}
	}
	return true
}

// IsClassroomAvailable is true when no entry of the class touches the slot.
func (s *Schedule) IsClassroomAvailable(class ClassInfo, slot TimeSlot) bool {
	for _, e := range s.entries {
		if e.Class.Equal(class) && slotsCollide(e.Slot, slot) {
			return false
		}
	}
	return true
}

func slotsCollide(a, b TimeSlot) bool {
	return a.Equal(b) || a.Overlaps(b)
}

// TeacherLoad counts the teacher's non-break periods on a day.
func (s *Schedule) TeacherLoad(teacher Teacher, day Weekday) int {
	count := 0
	for _, e := range s.entries {
		if e.Slot.Day == day && !e.Slot.IsBreak && e.Teacher.Equal(teacher) {
			count++
		}
	}
	return count
}

// Entries returns a copy of every entry in insertion order.
func (s *Schedule) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntriesForClass returns the class's entries in insertion order.
func (s *Schedule) EntriesForClass(class ClassInfo) []Entry {
	return s.filter(func(e Entry) bool { return e.Class.Equal(class) })
}

// EntriesForTeacher returns the teacher's entries in insertion order.
func (s *Schedule) EntriesForTeacher(teacher Teacher) []Entry {
	return s.filter(func(e Entry) bool { return e.Teacher.Equal(teacher) })
}

// EntriesForTimeSlot returns entries whose slot equals the given one.
func (s *Schedule) EntriesForTimeSlot(slot TimeSlot) []Entry {
	return s.filter(func(e Entry) bool { return e.Slot.Equal(slot) })
}

func (s *Schedule) filter(keep func(Entry) bool) []Entry {
	out := make([]Entry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Days returns the ordered weekday list.
func (s *Schedule) Days() []Weekday {
	out := make([]Weekday, len(s.days))
	copy(out, s.days)
	return out
}

// SetDays replaces the ordered weekday list.
func (s *Schedule) SetDays(days []Weekday) {
	s.days = make([]Weekday, len(days))
	copy(s.days, days)
}

// Len returns the number of entries.
func (s *Schedule) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether no entry was placed.
func (s *Schedule) IsEmpty() bool {
	return len(s.entries) == 0
}

// Clear drops every entry but keeps the day list.
func (s *Schedule) Clear() {
	s.entries = nil
}
