// Package planner turns an ordered concept list into a dated revision plan:
// priority-weighted learning sessions, spaced reviews that slide forward when
// a day is full, and practice sessions in the final stretch before the exam.
package planner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabvrl/revisor/internal/analyzer"
)

// SessionKind discriminates the three session types a plan can contain.
type SessionKind string

const (
	KindLearning SessionKind = "learning"
	KindReview   SessionKind = "review"
	KindPractice SessionKind = "practice"
)

// DateLayout is the wire format for plan dates.
const DateLayout = "2006-01-02"

const (
	baseSessionMinutes = 60
	minSessionMinutes  = 30
	maxSessionMinutes  = 120
	practiceMinutes    = 90
	practiceWindowDays = 14
)

// Session is one scheduled block of study time.
type Session struct {
	ID              string            `json:"id"`
	Date            string            `json:"date"`
	Kind            SessionKind       `json:"type"`
	Concept         string            `json:"concept,omitempty"`
	Module          string            `json:"module,omitempty"`
	DurationMinutes int               `json:"duration_minutes"`
	Priority        analyzer.Priority `json:"importance,omitempty"`
	Objective       string            `json:"objective"`
	Completed       bool              `json:"completed"`
}

// Milestone marks a checkpoint on the way to the exam.
type Milestone struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Plan is the full revision calendar between the start date and the exam.
type Plan struct {
	GeneratedAt      time.Time   `json:"generated_at"`
	StartDate        string      `json:"start_date"`
	ExamDate         string      `json:"exam_date"`
	Sessions         []Session   `json:"sessions"`
	Milestones       []Milestone `json:"milestones"`
	TotalMinutes     int         `json:"total_minutes"`
	LearningSessions int         `json:"learning_sessions"`
	ReviewSessions   int         `json:"review_sessions"`
	PracticeSessions int         `json:"practice_sessions"`
	Unscheduled      []string    `json:"unscheduled_concepts,omitempty"`
}

// Settings carries everything Build needs from configuration. Start and Exam
// are interpreted at day granularity; CourseDates lists days (DateLayout)
// that already carry course sessions and get no revision capacity.
type Settings struct {
	Start           time.Time
	Exam            time.Time
	WeekdayMinutes  int
	WeekendMinutes  int
	ReviewMinutes   int
	ReviewIntervals []int
	CourseDates     map[string]struct{}
}

// Logger is the subset of the project logger the planner reports through.
type Logger interface {
	Printf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Planner builds revision plans. Construct with New; the zero value is not
// usable.
type Planner struct {
	settings Settings
	logger   Logger
	newID    func() string
	now      func() time.Time
}

// Option adjusts a Planner at construction time.
type Option func(*Planner)

// WithLogger routes planner diagnostics to the given logger.
func WithLogger(l Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithIDSource overrides session ID generation, used in tests.
func WithIDSource(f func() string) Option {
	return func(p *Planner) {
		if f != nil {
			p.newID = f
		}
	}
}

// WithClock overrides the generation timestamp source.
func WithClock(f func() time.Time) Option {
	return func(p *Planner) {
		if f != nil {
			p.now = f
		}
	}
}

// ErrExamNotAfterStart is returned when the exam date does not leave at least
// one plannable day.
var ErrExamNotAfterStart = errors.New("planner: exam date must be after the start date")

// New validates the settings and returns a Planner.
func New(settings Settings, opts ...Option) (*Planner, error) {
	start := midnight(settings.Start)
	exam := midnight(settings.Exam)
	if !exam.After(start) {
		return nil, ErrExamNotAfterStart
	}
	if settings.WeekdayMinutes <= 0 || settings.WeekendMinutes <= 0 {
		return nil, errors.New("planner: minute budgets must be positive")
	}
	if settings.ReviewMinutes <= 0 {
		return nil, errors.New("planner: review minutes must be positive")
	}
	settings.Start = start
	settings.Exam = exam
	p := &Planner{
		settings: settings,
		logger:   nopLogger{},
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// day is one calendar slot between start and exam.
type day struct {
	date     time.Time
	capacity int
	used     int
}

func (d *day) remaining() int { return d.capacity - d.used }

// placed records where a concept's learning session landed so reviews can be
// offset from it.
type placed struct {
	concept  analyzer.Concept
	dayIndex int
}

// admitLearning walks the concepts in order and books each one on the
// earliest day that can take it, shrinking oversized sessions to the day's
// capacity. Concepts that fit nowhere come back in unscheduled.
func (p *Planner) admitLearning(days []*day, ordered []analyzer.Concept) (sessions []Session, learned []placed, unscheduled []analyzer.Concept) {
	for _, concept := range ordered {
		duration := learningDuration(concept.Priority)
		idx := -1
		for i := range days {
			allowed := duration
			if days[i].capacity < allowed {
				allowed = days[i].capacity
			}
			if allowed > 0 && days[i].remaining() >= allowed {
				duration = allowed
				idx = i
				break
			}
		}
		if idx < 0 {
			unscheduled = append(unscheduled, concept)
			continue
		}
		days[idx].used += duration
		sessions = append(sessions, Session{
			ID:              p.newID(),
			Date:            days[idx].date.Format(DateLayout),
			Kind:            KindLearning,
			Concept:         concept.Name,
			Module:          concept.SourceModule,
			DurationMinutes: duration,
			Priority:        concept.Priority.Normalize(),
			Objective:       fmt.Sprintf("Learn %s", concept.Name),
		})
		learned = append(learned, placed{concept: concept, dayIndex: idx})
	}
	return sessions, learned, unscheduled
}

func hasCritical(concepts []analyzer.Concept) bool {
	for _, c := range concepts {
		if c.Priority.Normalize() == analyzer.PriorityCritical {
			return true
		}
	}
	return false
}

// Build produces the plan. Concepts are scheduled in the given learning
// order; names in the order that have no matching concept are ignored.
func (p *Planner) Build(concepts []analyzer.Concept, order []string) (*Plan, error) {
	days := p.calendar()
	byName := make(map[string]analyzer.Concept, len(concepts))
	for _, c := range concepts {
		key := nameKey(c.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = c
		}
	}

	plan := &Plan{
		GeneratedAt: p.now(),
		StartDate:   p.settings.Start.Format(DateLayout),
		ExamDate:    p.settings.Exam.Format(DateLayout),
	}

	// Learning sessions, one per concept, earliest day that fits. When the
	// calendar is too tight for everything and a critical concept falls off,
	// re-admit priority-first so the important material wins the capacity.
	ordered := make([]analyzer.Concept, 0, len(order))
	for _, name := range order {
		if concept, ok := byName[nameKey(name)]; ok {
			ordered = append(ordered, concept)
		}
	}
	sessions, learned, unscheduled := p.admitLearning(days, ordered)
	if hasCritical(unscheduled) {
		p.logger.Warnf("planner: calendar too tight for every concept, re-admitting priority-first")
		byRank := make([]analyzer.Concept, len(ordered))
		copy(byRank, ordered)
		sort.SliceStable(byRank, func(i, j int) bool {
			return byRank[i].Priority.Normalize().Rank() < byRank[j].Priority.Normalize().Rank()
		})
		days = p.calendar()
		sessions, learned, unscheduled = p.admitLearning(days, byRank)
	}
	plan.Sessions = append(plan.Sessions, sessions...)
	for _, concept := range unscheduled {
		p.logger.Warnf("planner: no capacity left for %q before the exam", concept.Name)
		plan.Unscheduled = append(plan.Unscheduled, concept.Name)
	}

	// Spaced reviews: +interval days, sliding forward to the next free day,
	// dropped when nothing fits before the exam.
	for _, l := range learned {
		for _, interval := range p.settings.ReviewIntervals {
			target := l.dayIndex + interval
			if target >= len(days) {
				continue
			}
			idx := -1
			for i := target; i < len(days); i++ {
				if days[i].remaining() >= p.settings.ReviewMinutes {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			days[idx].used += p.settings.ReviewMinutes
			plan.Sessions = append(plan.Sessions, Session{
				ID:              p.newID(),
				Date:            days[idx].date.Format(DateLayout),
				Kind:            KindReview,
				Concept:         l.concept.Name,
				Module:          l.concept.SourceModule,
				DurationMinutes: p.settings.ReviewMinutes,
				Priority:        l.concept.Priority.Normalize(),
				Objective:       fmt.Sprintf("Review %s", l.concept.Name),
			})
		}
	}

	// Practice blocks in the final stretch.
	practiceFrom := len(days) - practiceWindowDays
	if practiceFrom < 0 {
		practiceFrom = 0
	}
	for i := practiceFrom; i < len(days); i++ {
		if days[i].remaining() < practiceMinutes {
			continue
		}
		days[i].used += practiceMinutes
		plan.Sessions = append(plan.Sessions, Session{
			ID:              p.newID(),
			Date:            days[i].date.Format(DateLayout),
			Kind:            KindPractice,
			DurationMinutes: practiceMinutes,
			Objective:       "Mixed practice exercises under exam conditions",
		})
	}

	sort.SliceStable(plan.Sessions, func(i, j int) bool {
		return plan.Sessions[i].Date < plan.Sessions[j].Date
	})
	for _, s := range plan.Sessions {
		plan.TotalMinutes += s.DurationMinutes
		switch s.Kind {
		case KindLearning:
			plan.LearningSessions++
		case KindReview:
			plan.ReviewSessions++
		case KindPractice:
			plan.PracticeSessions++
		}
	}
	plan.Milestones = p.milestones(len(days))

	p.logger.Printf("planner: %d sessions over %d days (%d learning, %d review, %d practice)",
		len(plan.Sessions), len(days), plan.LearningSessions, plan.ReviewSessions, plan.PracticeSessions)
	return plan, nil
}

// calendar lays out every day in [start, exam) with its minute capacity.
func (p *Planner) calendar() []*day {
	var days []*day
	for d := p.settings.Start; d.Before(p.settings.Exam); d = d.AddDate(0, 0, 1) {
		capacity := p.settings.WeekdayMinutes
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			capacity = p.settings.WeekendMinutes
		}
		if _, course := p.settings.CourseDates[d.Format(DateLayout)]; course {
			capacity = 0
		}
		days = append(days, &day{date: d, capacity: capacity})
	}
	return days
}

func (p *Planner) milestones(span int) []Milestone {
	var out []Milestone
	for _, m := range []struct {
		frac  float64
		label string
		desc  string
	}{
		{0.25, "25% checkpoint", "A quarter of the plan behind you: the foundational concepts should be in place."},
		{0.50, "Halfway point", "Half the concepts covered; start weaving reviews into every week."},
		{0.75, "75% checkpoint", "The bulk of the material is done; shift the balance toward reviews."},
	} {
		offset := int(float64(span) * m.frac)
		if offset <= 0 || offset >= span {
			continue
		}
		out = append(out, Milestone{
			Date:        p.settings.Start.AddDate(0, 0, offset).Format(DateLayout),
			Label:       m.label,
			Description: m.desc,
		})
	}
	if span > 7 {
		out = append(out, Milestone{
			Date:        p.settings.Exam.AddDate(0, 0, -7).Format(DateLayout),
			Label:       "Final week",
			Description: "No new material: reviews, practice exams and rest.",
		})
	}
	return out
}

func learningDuration(priority analyzer.Priority) int {
	d := int(float64(baseSessionMinutes) * priority.Normalize().Weight())
	if d < minSessionMinutes {
		d = minSessionMinutes
	}
	if d > maxSessionMinutes {
		d = maxSessionMinutes
	}
	return d
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
