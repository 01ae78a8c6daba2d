// Package progress tracks which sessions the student has completed and which
// concepts they consider mastered. State is a single JSON file under
// .revisor/state/ so it survives replanning.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gabvrl/revisor/internal/planner"
)

// State is the persisted shape of progress.json.
type State struct {
	UpdatedAt         time.Time            `json:"updated_at"`
	CompletedSessions map[string]time.Time `json:"completed_sessions"`
	MasteredConcepts  map[string]time.Time `json:"mastered_concepts"`
	MinutesStudied    int                  `json:"minutes_studied"`
}

// Tracker loads, mutates and saves progress state.
type Tracker struct {
	path  string
	state State
	now   func() time.Time
}

// Option adjusts a Tracker at construction time.
type Option func(*Tracker)

// WithClock overrides the timestamp source, used in tests.
func WithClock(f func() time.Time) Option {
	return func(t *Tracker) {
		if f != nil {
			t.now = f
		}
	}
}

// Load reads progress.json, starting from empty state when the file does not
// exist yet.
func Load(path string, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		path: path,
		now:  time.Now,
		state: State{
			CompletedSessions: map[string]time.Time{},
			MasteredConcepts:  map[string]time.Time{},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("progress: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &t.state); err != nil {
		return nil, fmt.Errorf("progress: decode %s: %w", path, err)
	}
	if t.state.CompletedSessions == nil {
		t.state.CompletedSessions = map[string]time.Time{}
	}
	if t.state.MasteredConcepts == nil {
		t.state.MasteredConcepts = map[string]time.Time{}
	}
	return t, nil
}

// Save writes the state back to disk.
func (t *Tracker) Save() error {
	t.state.UpdatedAt = t.now()
	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: encode: %w", err)
	}
	if err := os.WriteFile(t.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("progress: write %s: %w", t.path, err)
	}
	return nil
}

// CompleteSession marks a session done and credits its minutes. Completing a
// session twice is a no-op.
func (t *Tracker) CompleteSession(id string, minutes int) bool {
	if _, done := t.state.CompletedSessions[id]; done {
		return false
	}
	t.state.CompletedSessions[id] = t.now()
	if minutes > 0 {
		t.state.MinutesStudied += minutes
	}
	return true
}

// SessionCompleted reports whether a session was marked done.
func (t *Tracker) SessionCompleted(id string) bool {
	_, done := t.state.CompletedSessions[id]
	return done
}

// MasterConcept records a concept as mastered. Names are case-insensitive.
func (t *Tracker) MasterConcept(name string) {
	t.state.MasteredConcepts[conceptKey(name)] = t.now()
}

// ConceptMastered reports whether a concept was marked mastered.
func (t *Tracker) ConceptMastered(name string) bool {
	_, ok := t.state.MasteredConcepts[conceptKey(name)]
	return ok
}

// MasteredConcepts lists mastered concept keys in sorted order.
func (t *Tracker) MasteredConcepts() []string {
	out := make([]string, 0, len(t.state.MasteredConcepts))
	for name := range t.state.MasteredConcepts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Apply flags completed sessions on a loaded plan in place.
func (t *Tracker) Apply(plan *planner.Plan) {
	for i := range plan.Sessions {
		plan.Sessions[i].Completed = t.SessionCompleted(plan.Sessions[i].ID)
	}
}

// Summary is the completion snapshot shown by the CLI and dashboard.
type Summary struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	CompletionRate    float64 `json:"completion_rate"`
	MinutesPlanned    int     `json:"minutes_planned"`
	MinutesStudied    int     `json:"minutes_studied"`
	ConceptsMastered  int     `json:"concepts_mastered"`
	DaysToExam        int     `json:"days_to_exam"`
}

// Summarize computes completion stats against a plan.
func (t *Tracker) Summarize(plan *planner.Plan) Summary {
	s := Summary{
		TotalSessions:    len(plan.Sessions),
		MinutesPlanned:   plan.TotalMinutes,
		MinutesStudied:   t.state.MinutesStudied,
		ConceptsMastered: len(t.state.MasteredConcepts),
	}
	for _, session := range plan.Sessions {
		if t.SessionCompleted(session.ID) {
			s.CompletedSessions++
		}
	}
	if s.TotalSessions > 0 {
		s.CompletionRate = 100 * float64(s.CompletedSessions) / float64(s.TotalSessions)
	}
	if exam, err := time.Parse(planner.DateLayout, plan.ExamDate); err == nil {
		if days := int(exam.Sub(t.now()).Hours() / 24); days > 0 {
			s.DaysToExam = days
		}
	}
	return s
}

func conceptKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
