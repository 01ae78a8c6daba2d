package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/conceptmap"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/progress"
)

func newMapCommand() *cobra.Command {
	var showGaps bool
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Show the learning order and knowledge gaps from the saved concept map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			doc, err := exports.LoadConceptMapJSON(e.cfg.ConceptMapPath())
			if err != nil {
				return fmt.Errorf("no concept map found, run `revisor analyze` first: %w", err)
			}
			graph := conceptmap.Build(doc.Concepts)

			fmt.Printf("Learning order (%d concepts):\n", graph.Len())
			for i, name := range graph.LearningOrder() {
				node, _ := graph.Node(name)
				marker := " "
				if node.ExamRelevant {
					marker = "*"
				}
				fmt.Printf("  %3d. %s %s [%s]\n", i+1, marker, name, node.Priority)
			}

			if doc.Coverage.Total > 0 {
				fmt.Printf("\nExam coverage: %.0f%% of %d requirements\n", doc.Coverage.Percent, doc.Coverage.Total)
				for _, req := range doc.Coverage.AtRisk {
					fmt.Printf("  at risk: %s\n", req)
				}
			}

			if showGaps {
				tracker, err := progress.Load(e.cfg.ProgressPath())
				if err != nil {
					return err
				}
				gaps := graph.KnowledgeGaps(tracker.MasteredConcepts())
				if len(gaps) == 0 {
					fmt.Println("\nNo open knowledge gaps.")
					return nil
				}
				fmt.Printf("\nKnowledge gaps (%d):\n", len(gaps))
				for _, gap := range gaps {
					state := "ready to learn"
					if !gap.ReadyToLearn {
						state = "blocked by " + strings.Join(gap.MissingPrereqs, ", ")
					}
					fmt.Printf("  %s [%s] blocks %d — %s\n", gap.Concept, gap.Priority, gap.BlockingCount, state)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showGaps, "gaps", false, "list knowledge gaps against mastered concepts")
	return cmd
}
