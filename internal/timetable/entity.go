package timetable

// Subject is a taught subject. IDs are handed out in creation order.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Equal compares id and name.
func (s Subject) Equal(other Subject) bool {
	return s.ID == other.ID && s.Name == other.Name
}

// NewSubjectCatalog creates subjects numbered 1..n in the given order.
func NewSubjectCatalog(names ...string) []Subject {
	subjects := make([]Subject, 0, len(names))
	for i, name := range names {
		subjects = append(subjects, Subject{ID: i + 1, Name: name})
	}
	return subjects
}

// ClassInfo is one class section that needs a full week of periods.
type ClassInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// Equal compares id and name.
func (c ClassInfo) Equal(other ClassInfo) bool {
	return c.ID == other.ID && c.Name == other.Name
}

// Teacher carries the subjects the teacher is qualified for.
type Teacher struct {
	ID       int
	Name     string
	subjects []Subject
}

// NewTeacher builds a teacher with an initial qualification set.
func NewTeacher(id int, name string, subjects ...Subject) Teacher {
	t := Teacher{ID: id, Name: name}
	for _, subject := range subjects {
		t = t.AddSubject(subject)
	}
	return t
}

// AddSubject returns a copy of the teacher qualified for one more subject.
func (t Teacher) AddSubject(subject Subject) Teacher {
	if t.TeachesSubject(subject) {
		return t
	}
	next := make([]Subject, len(t.subjects), len(t.subjects)+1)
	copy(next, t.subjects)
	t.subjects = append(next, subject)
	return t
}

// TeachesSubject reports whether the subject is in the qualification set.
func (t Teacher) TeachesSubject(subject Subject) bool {
	for _, s := range t.subjects {
		if s.Equal(subject) {
			return true
		}
	}
	return false
}

// Subjects returns a copy of the qualification set.
func (t Teacher) Subjects() []Subject {
	out := make([]Subject, len(t.subjects))
	copy(out, t.subjects)
	return out
}

// Equal compares id and name.
func (t Teacher) Equal(other Teacher) bool {
	return t.ID == other.ID && t.Name == other.Name
}

// Entry assigns a teacher and subject to a class at a time slot.
type Entry struct {
	Teacher Teacher
	Subject Subject
	Class   ClassInfo
	Slot    TimeSlot
}

// Equal is structural equality over all four components.
func (e Entry) Equal(other Entry) bool {
	return e.Teacher.Equal(other.Teacher) &&
		e.Subject.Equal(other.Subject) &&
		e.Class.Equal(other.Class) &&
		e.Slot.Equal(other.Slot)
}
