package exports

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gabvrl/revisor/internal/planner"
)

// RenderPlanMarkdown formats the plan as a Markdown document with one table
// per week, milestones, and the metadata frontmatter on top.
func RenderPlanMarkdown(plan *planner.Plan, meta Metadata) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Revision plan\n\n")
	fmt.Fprintf(&b, "Exam date: **%s**  \n", plan.ExamDate)
	fmt.Fprintf(&b, "Plan window: %s to %s  \n", plan.StartDate, plan.ExamDate)
	fmt.Fprintf(&b, "Total study time: %s over %d sessions (%d learning, %d review, %d practice)\n\n",
		formatMinutes(plan.TotalMinutes), len(plan.Sessions),
		plan.LearningSessions, plan.ReviewSessions, plan.PracticeSessions)

	if len(plan.Milestones) > 0 {
		b.WriteString("## Milestones\n\n")
		for _, m := range plan.Milestones {
			fmt.Fprintf(&b, "- **%s** — %s: %s\n", m.Date, m.Label, m.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Schedule\n")
	for _, week := range groupByWeek(plan.Sessions) {
		fmt.Fprintf(&b, "\n### Week of %s\n\n", week.start.Format(planner.DateLayout))
		b.WriteString("| Date | Day | Type | Concept | Minutes |\n")
		b.WriteString("|------|-----|------|---------|--------:|\n")
		for _, s := range week.sessions {
			day, _ := time.Parse(planner.DateLayout, s.Date)
			concept := s.Concept
			if concept == "" {
				concept = s.Objective
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
				s.Date, day.Weekday().String()[:3], s.Kind, concept, s.DurationMinutes)
		}
	}

	if len(plan.Unscheduled) > 0 {
		b.WriteString("\n## Not scheduled\n\n")
		b.WriteString("These concepts did not fit before the exam; free up time or extend the window:\n\n")
		for _, name := range plan.Unscheduled {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	return wrapFrontMatter(meta, []byte(b.String()))
}

// WritePlanMarkdown renders and writes revision_plan.md.
func WritePlanMarkdown(path string, plan *planner.Plan, meta Metadata) error {
	data, err := RenderPlanMarkdown(plan, meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("exports: write %s: %w", path, err)
	}
	return nil
}

type week struct {
	start    time.Time
	sessions []planner.Session
}

// groupByWeek buckets sessions into Monday-anchored weeks, in date order.
func groupByWeek(sessions []planner.Session) []week {
	buckets := map[string]*week{}
	var keys []string
	for _, s := range sessions {
		day, err := time.Parse(planner.DateLayout, s.Date)
		if err != nil {
			continue
		}
		start := weekStart(day)
		key := start.Format(planner.DateLayout)
		if buckets[key] == nil {
			buckets[key] = &week{start: start}
			keys = append(keys, key)
		}
		buckets[key].sessions = append(buckets[key].sessions, s)
	}
	sort.Strings(keys)
	out := make([]week, 0, len(keys))
	for _, key := range keys {
		out = append(out, *buckets[key])
	}
	return out
}

func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

func formatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dmin", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02d", h, m)
	}
}
