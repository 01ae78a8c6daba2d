package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/planner"
)

func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Generate the revision calendar from the analyzed concepts",
		Long: `Builds the day-by-day revision calendar between today and the exam date
from the concept map produced by analyze, then writes revision_plan.md and
revision_plan.json to the exports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			mapDoc, err := exports.LoadConceptMapJSON(e.cfg.ConceptMapPath())
			if err != nil {
				return fmt.Errorf("no concept map found, run `revisor analyze` first: %w", err)
			}

			p, err := planner.New(planner.Settings{
				Start:           time.Now(),
				Exam:            e.cfg.ExamDate(),
				WeekdayMinutes:  e.cfg.Planning.WeekdayMinutes,
				WeekendMinutes:  e.cfg.Planning.WeekendMinutes,
				ReviewMinutes:   e.cfg.Planning.ReviewMinutes,
				ReviewIntervals: e.cfg.Planning.ReviewIntervals,
				CourseDates:     e.cfg.CourseDateSet(),
			}, planner.WithLogger(e.log))
			if err != nil {
				return err
			}

			plan, err := p.Build(mapDoc.Concepts, mapDoc.LearningOrder)
			if err != nil {
				return err
			}

			meta := exports.NewMetadata("revision_plan", plan.GeneratedAt, "concept_map.json")
			if err := exports.WritePlanJSON(e.cfg.PlanJSONPath(), plan, meta); err != nil {
				return err
			}
			if err := exports.WritePlanMarkdown(e.cfg.PlanMarkdownPath(), plan, meta); err != nil {
				return err
			}

			fmt.Printf("Planned %d sessions between %s and %s (%d learning, %d review, %d practice)\n",
				len(plan.Sessions), plan.StartDate, plan.ExamDate,
				plan.LearningSessions, plan.ReviewSessions, plan.PracticeSessions)
			if len(plan.Unscheduled) > 0 {
				fmt.Printf("Could not fit %d concepts before the exam:\n", len(plan.Unscheduled))
				for _, name := range plan.Unscheduled {
					fmt.Printf("  %s\n", name)
				}
			}
			fmt.Printf("Plan written to %s and %s\n", e.cfg.PlanMarkdownPath(), e.cfg.PlanJSONPath())
			return nil
		},
	}
}
