package timetable

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	minWeeklyPeriods = 2
	maxWeeklyPeriods = 4
)

// Generator builds randomized, conflict-free weekly schedules with a single
// greedy pass. It owns its random source; a Generator must not be shared
// between goroutines.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	logger *zap.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithSeed pins the random stream for reproducible output.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a caller-owned random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithLogger attaches a logger for run summaries.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator prepares a generator for cfg. Without WithSeed or WithRand the
// random stream is seeded from the wall clock.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// SetSeed restarts the random stream from seed.
func (g *Generator) SetSeed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Report summarises how much of the weekly demand was placed.
type Report struct {
	DemandUnits int          `json:"demandUnits"`
	Placed      int          `json:"placed"`
	Dropped     []DemandUnit `json:"dropped"`
	Quality     int          `json:"quality"`
}

// Result pairs a generated schedule with its report.
type Result struct {
	Schedule *Schedule
	Report   Report
}

// TimeSlots lays out every period of every configured day in chronological
// order. Breaks are inserted when the clock hits BreakStart or LunchStart
// exactly and consume a period number. A teaching period must end by
// SchoolEnd.
func (g *Generator) TimeSlots() []TimeSlot {
	cfg := g.cfg
	slots := make([]TimeSlot, 0)
	if cfg.PeriodDuration <= 0 {
		return slots
	}
	for _, day := range cfg.Days {
		clock := cfg.SchoolStart
	periods:
		for period := 1; period <= cfg.MaxPeriodsPerDay && clock < cfg.SchoolEnd; period++ {
			switch {
			case cfg.BreakDuration > 0 && clock == cfg.BreakStart:
				slots = append(slots, NewTimeSlot(day, clock, cfg.BreakDuration, period, true))
				clock = clock.Add(cfg.BreakDuration)
			case cfg.LunchDuration > 0 && clock == cfg.LunchStart:
				slots = append(slots, NewTimeSlot(day, clock, cfg.LunchDuration, period, true))
				clock = clock.Add(cfg.LunchDuration)
			default:
				if clock.Add(cfg.PeriodDuration) > cfg.SchoolEnd {
					break periods
				}
				slots = append(slots, NewTimeSlot(day, clock, cfg.PeriodDuration, period, false))
				clock = clock.Add(cfg.PeriodDuration)
			}
		}
	}
	return slots
}

// GenerateSchedule runs one generation pass and returns the schedule.
// Demand that cannot be placed is silently dropped.
func (g *Generator) GenerateSchedule() *Schedule {
	return g.Generate().Schedule
}

// Generate runs one generation pass and also reports dropped demand.
func (g *Generator) Generate() Result {
	schedule := NewSchedule(g.cfg.Days...)
	teaching := teachingSlots(g.TimeSlots())

	work := g.demand()
	g.rng.Shuffle(len(work), func(i, j int) { work[i], work[j] = work[j], work[i] })

	state := newPlacementState()
	report := Report{DemandUnits: len(work), Dropped: make([]DemandUnit, 0)}
	for _, unit := range work {
		if g.place(schedule, state, teaching, unit) {
			report.Placed++
			continue
		}
		report.Dropped = append(report.Dropped, unit)
	}
	report.Quality = Quality(schedule)

	g.logger.Debug("timetable generated",
		zap.Int("slots", len(teaching)),
		zap.Int("demand_units", report.DemandUnits),
		zap.Int("placed", report.Placed),
		zap.Int("dropped", len(report.Dropped)),
		zap.Int("quality", report.Quality),
	)
	return Result{Schedule: schedule, Report: report}
}

// demand expands every (class, subject) pair into 2-4 weekly units.
func (g *Generator) demand() []DemandUnit {
	work := make([]DemandUnit, 0)
	for _, class := range g.cfg.Classes {
		for _, subject := range g.cfg.Subjects {
			count := minWeeklyPeriods + g.rng.Intn(maxWeeklyPeriods-minWeeklyPeriods+1)
			for i := 0; i < count; i++ {
				work = append(work, DemandUnit{Class: class, Subject: subject})
			}
		}
	}
	return work
}

func (g *Generator) place(schedule *Schedule, state *placementState, teaching []TimeSlot, unit DemandUnit) bool {
	order := make([]TimeSlot, len(teaching))
	copy(order, teaching)
	g.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, slot := range order {
		if !state.classFree(unit.Class, slot) {
			continue
		}
		candidates := make([]Teacher, 0, len(g.cfg.Teachers))
		for _, teacher := range g.cfg.Teachers {
			if !teacher.TeachesSubject(unit.Subject) {
				continue
			}
			if !state.teacherFree(teacher, slot) {
				continue
			}
			if state.load(teacher, slot.Day) >= g.cfg.MaxPeriodsPerTeacherPerDay {
				continue
			}
			candidates = append(candidates, teacher)
		}
		if len(candidates) == 0 {
			continue
		}
		teacher := candidates[g.rng.Intn(len(candidates))]
		entry := Entry{Teacher: teacher, Subject: unit.Subject, Class: unit.Class, Slot: slot}
		if err := schedule.AddEntry(entry); err != nil {
			g.logger.Debug("entry rejected", zap.Error(err), zap.Stringer("slot", slot))
			return false
		}
		state.reserve(entry)
		return true
	}
	return false
}

func teachingSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsBreak {
			out = append(out, slot)
		}
	}
	return out
}

// --- Placement bookkeeping ---

type identity struct {
	ID   int
	Name string
}

type dayLoadKey struct {
	who identity
	day Weekday
}

// placementState indexes reserved slots per teacher and class so that
// candidate checks do not rescan the whole schedule.
type placementState struct {
	teacherSlots map[identity][]TimeSlot
	classSlots   map[identity][]TimeSlot
	dayLoad      map[dayLoadKey]int
}

func newPlacementState() *placementState {
	return &placementState{
		teacherSlots: make(map[identity][]TimeSlot),
		classSlots:   make(map[identity][]TimeSlot),
		dayLoad:      make(map[dayLoadKey]int),
	}
}

func (p *placementState) teacherFree(t Teacher, slot TimeSlot) bool {
	return !anyCollides(p.teacherSlots[identity{t.ID, t.Name}], slot)
}

func (p *placementState) classFree(c ClassInfo, slot TimeSlot) bool {
	return !anyCollides(p.classSlots[identity{c.ID, c.Name}], slot)
}

func (p *placementState) load(t Teacher, day Weekday) int {
	return p.dayLoad[dayLoadKey{identity{t.ID, t.Name}, day}]
}

func (p *placementState) reserve(e Entry) {
	teacher := identity{e.Teacher.ID, e.Teacher.Name}
	class := identity{e.Class.ID, e.Class.Name}
	p.teacherSlots[teacher] = append(p.teacherSlots[teacher], e.Slot)
	p.classSlots[class] = append(p.classSlots[class], e.Slot)
	if !e.Slot.IsBreak {
		p.dayLoad[dayLoadKey{teacher, e.Slot.Day}]++
	}
}

func anyCollides(reserved []TimeSlot, slot TimeSlot) bool {
	for _, r := range reserved {
		if slotsCollide(r, slot) {
			return true
		}
	}
	return false
}
