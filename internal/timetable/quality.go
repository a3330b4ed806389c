package timetable

import (
	"fmt"
	"sort"
)

// Quality scores a schedule: 10 per entry, 5 per teacher with at least one
// lesson, plus the per-class entry counts. The score is informational.
func Quality(s *Schedule) int {
	if s == nil {
		return 0
	}
	score := s.Len() * 10

	teachers := make(map[identity]struct{})
	classes := make(map[identity]int)
	for _, e := range s.entries {
		teachers[identity{e.Teacher.ID, e.Teacher.Name}] = struct{}{}
		classes[identity{e.Class.ID, e.Class.Name}]++
	}
	score += len(teachers) * 5
	for _, count := range classes {
		score += count
	}
	return score
}

// Grid is a period-by-day view of one class or teacher.
type Grid struct {
	Title string
	Days  []Weekday
	Rows  []GridRow
}

// GridRow holds one period across all days. Cells follow Grid.Days.
type GridRow struct {
	Period int
	Time   string
	Cells  []string
}

// BreakLabel marks break and lunch cells.
const BreakLabel = "BREAK"

// ClassGrid renders the class's week as "Subject (Teacher)" cells.
func ClassGrid(s *Schedule, class ClassInfo, slots []TimeSlot) Grid {
	title := class.Name
	if class.Grade != "" {
		title = fmt.Sprintf("%s (Grade %s)", class.Name, class.Grade)
	}
	return buildGrid(s.Days(), title, slots, s.EntriesForClass(class), func(e Entry) string {
		return fmt.Sprintf("%s (%s)", e.Subject.Name, e.Teacher.Name)
	})
}

// TeacherGrid renders the teacher's week as "Subject / Class" cells.
func TeacherGrid(s *Schedule, teacher Teacher, slots []TimeSlot) Grid {
	return buildGrid(s.Days(), teacher.Name, slots, s.EntriesForTeacher(teacher), func(e Entry) string {
		return fmt.Sprintf("%s / %s", e.Subject.Name, e.Class.Name)
	})
}

type gridKey struct {
	day    Weekday
	period int
}

func buildGrid(days []Weekday, title string, slots []TimeSlot, entries []Entry, label func(Entry) string) Grid {
	dayColumn := make(map[Weekday]int, len(days))
	for i, day := range days {
		dayColumn[day] = i
	}

	rows := make(map[int]*GridRow)
	cells := make(map[gridKey]string)
	for _, slot := range slots {
		if _, ok := dayColumn[slot.Day]; !ok {
			continue
		}
		if _, ok := rows[slot.Period]; !ok {
			rows[slot.Period] = &GridRow{
				Period: slot.Period,
				Time:   fmt.Sprintf("%s-%s", slot.Start, slot.End()),
				Cells:  make([]string, len(days)),
			}
		}
		if slot.IsBreak {
			cells[gridKey{slot.Day, slot.Period}] = BreakLabel
		}
	}
	for _, e := range entries {
		cells[gridKey{e.Slot.Day, e.Slot.Period}] = label(e)
		if _, ok := rows[e.Slot.Period]; !ok {
			rows[e.Slot.Period] = &GridRow{
				Period: e.Slot.Period,
				Time:   fmt.Sprintf("%s-%s", e.Slot.Start, e.Slot.End()),
				Cells:  make([]string, len(days)),
			}
		}
	}

	periods := make([]int, 0, len(rows))
	for period := range rows {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	grid := Grid{Title: title, Days: days, Rows: make([]GridRow, 0, len(periods))}
	for _, period := range periods {
		row := rows[period]
		for key, value := range cells {
			if key.period != period {
				continue
			}
			if col, ok := dayColumn[key.day]; ok {
				row.Cells[col] = value
			}
		}
		grid.Rows = append(grid.Rows, *row)
	}
	return grid
}
