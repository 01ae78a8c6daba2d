package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

// Entry is one recorded quiz or mock exam result.
type Entry struct {
	QuizID           string        `json:"quiz_id"`
	Kind             Kind          `json:"type"`
	Score            int           `json:"score"`
	Total            int           `json:"total"`
	Percent          float64       `json:"percent"`
	Passed           bool          `json:"passed"`
	ModuleScores     []ModuleScore `json:"module_scores,omitempty"`
	TimeSpentMinutes int           `json:"time_spent_minutes"`
	CompletedAt      time.Time     `json:"completed_at"`
}

// History keeps past results in a JSON file so progress across quizzes and
// mock exams can be tracked.
type History struct {
	path    string
	entries []Entry
}

// LoadHistory reads the history file, starting empty when it does not exist.
func LoadHistory(path string) (*History, error) {
	h := &History{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return h, nil
		}
		return nil, fmt.Errorf("quiz: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &h.entries); err != nil {
		return nil, fmt.Errorf("quiz: decode %s: %w", path, err)
	}
	return h, nil
}

// Save writes the history back to disk.
func (h *History) Save() error {
	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("quiz: encode: %w", err)
	}
	if err := os.WriteFile(h.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("quiz: write %s: %w", h.path, err)
	}
	return nil
}

// Len returns the number of recorded results.
func (h *History) Len() int { return len(h.entries) }

// Record appends one graded result.
func (h *History) Record(result Result, timeSpentMinutes int, completedAt time.Time) {
	h.entries = append(h.entries, Entry{
		QuizID:           result.QuizID,
		Kind:             result.Kind,
		Score:            result.Score,
		Total:            result.Total,
		Percent:          result.Percent,
		Passed:           result.Passed,
		ModuleScores:     result.Modules,
		TimeSpentMinutes: timeSpentMinutes,
		CompletedAt:      completedAt,
	})
}

// Entries returns the most recent results first. A non-positive limit
// returns everything.
func (h *History) Entries(limit int) []Entry {
	out := append([]Entry(nil), h.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats aggregates the recorded results.
type Stats struct {
	TotalQuizzes   int           `json:"total_quizzes"`
	TotalQuestions int           `json:"total_questions"`
	TotalMinutes   int           `json:"total_minutes"`
	AverageScore   float64       `json:"average_score"`
	BestScore      float64       `json:"best_score"`
	PassRate       float64       `json:"pass_rate"`
	WeakestModules []ModuleScore `json:"weakest_modules,omitempty"`
}

// weakestModuleCount bounds how many trouble spots Stats reports.
const weakestModuleCount = 5

// Stats summarizes every recorded result, with the weakest modules across
// all quizzes first.
func (h *History) Stats() Stats {
	s := Stats{TotalQuizzes: len(h.entries)}
	if len(h.entries) == 0 {
		return s
	}
	passed := 0
	perModule := map[string]*ModuleScore{}
	for _, e := range h.entries {
		s.TotalQuestions += e.Total
		s.TotalMinutes += e.TimeSpentMinutes
		s.AverageScore += e.Percent
		if e.Percent > s.BestScore {
			s.BestScore = e.Percent
		}
		if e.Passed {
			passed++
		}
		for _, ms := range e.ModuleScores {
			agg, ok := perModule[ms.Module]
			if !ok {
				agg = &ModuleScore{Module: ms.Module}
				perModule[ms.Module] = agg
			}
			agg.Correct += ms.Correct
			agg.Total += ms.Total
		}
	}
	s.AverageScore /= float64(len(h.entries))
	s.PassRate = 100 * float64(passed) / float64(len(h.entries))

	weakest := make([]ModuleScore, 0, len(perModule))
	for _, ms := range perModule {
		if ms.Total > 0 {
			ms.Percent = 100 * float64(ms.Correct) / float64(ms.Total)
		}
		weakest = append(weakest, *ms)
	}
	sort.Slice(weakest, func(i, j int) bool {
		if weakest[i].Percent != weakest[j].Percent {
			return weakest[i].Percent < weakest[j].Percent
		}
		return weakest[i].Module < weakest[j].Module
	})
	if len(weakest) > weakestModuleCount {
		weakest = weakest[:weakestModuleCount]
	}
	s.WeakestModules = weakest
	return s
}
