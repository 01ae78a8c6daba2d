package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/config"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Prepare the .revisor/ directory and a default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitProjectDir(projectDir); err != nil {
				return err
			}
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			fmt.Printf("Initialized %s\n", cfg.RevisorProjectDir())
			fmt.Printf("Put course documents under %s and directives under %s,\n", cfg.CoursesDir(), cfg.DirectivesDir())
			fmt.Printf("then set the exam date in %s and export GEMINI_API_KEY.\n", cfg.ConfigPath())
			return nil
		},
	}
}
