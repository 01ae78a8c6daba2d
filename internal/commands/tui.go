package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/tui"
)

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the plan in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			app, err := tui.NewApp(tui.Paths{
				PlanJSON:   e.cfg.PlanJSONPath(),
				ConceptMap: e.cfg.ConceptMapPath(),
				Progress:   e.cfg.ProgressPath(),
			})
			if err != nil {
				return fmt.Errorf("no plan found, run `revisor plan` first: %w", err)
			}
			return tui.Run(app)
		},
	}
}
