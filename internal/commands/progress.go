package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/progress"
)

func newProgressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show completion stats for the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			doc, err := exports.LoadPlanJSON(e.cfg.PlanJSONPath())
			if err != nil {
				return fmt.Errorf("no plan found, run `revisor plan` first: %w", err)
			}
			tracker, err := progress.Load(e.cfg.ProgressPath())
			if err != nil {
				return err
			}

			sum := tracker.Summarize(doc.Plan)
			fmt.Printf("Sessions:  %d/%d completed (%.0f%%)\n", sum.CompletedSessions, sum.TotalSessions, sum.CompletionRate)
			fmt.Printf("Studied:   %s of %s planned\n", formatMinutes(sum.MinutesStudied), formatMinutes(sum.MinutesPlanned))
			fmt.Printf("Mastered:  %d concepts\n", sum.ConceptsMastered)
			fmt.Printf("Exam:      %s (%d days away)\n", doc.Plan.ExamDate, sum.DaysToExam)
			return nil
		},
	}
	cmd.AddCommand(newProgressCompleteCommand(), newProgressMasterCommand())
	return cmd
}

func newProgressCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Mark a session as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			doc, err := exports.LoadPlanJSON(e.cfg.PlanJSONPath())
			if err != nil {
				return fmt.Errorf("no plan found, run `revisor plan` first: %w", err)
			}
			id := args[0]
			var minutes int
			found := false
			for _, s := range doc.Plan.Sessions {
				if s.ID == id {
					minutes = s.DurationMinutes
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown session %q; session IDs are listed in %s", id, e.cfg.PlanJSONPath())
			}

			tracker, err := progress.Load(e.cfg.ProgressPath())
			if err != nil {
				return err
			}
			if !tracker.CompleteSession(id, minutes) {
				fmt.Printf("Session %s was already completed\n", id)
				return nil
			}
			if err := tracker.Save(); err != nil {
				return err
			}
			fmt.Printf("Session %s marked complete (+%d min)\n", id, minutes)
			return nil
		},
	}
}

func newProgressMasterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "master <concept>",
		Short: "Mark a concept as mastered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			name := strings.Join(args, " ")
			tracker, err := progress.Load(e.cfg.ProgressPath())
			if err != nil {
				return err
			}
			tracker.MasterConcept(name)
			if err := tracker.Save(); err != nil {
				return err
			}
			fmt.Printf("Marked %q as mastered\n", name)
			return nil
		},
	}
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
