// Package commands wires the revisor CLI: scan, analyze, plan, serve, tui,
// progress, cards and quiz, all operating on a study directory that carries
// its state under .revisor/.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/config"
	"github.com/gabvrl/revisor/internal/logging"
)

var projectDir string

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "revisor",
		Short: "Plan exam revision from your course documents",
		Long: `revisor scans course and exam-directive documents, extracts the concepts
with the Gemini API, and builds a spaced-repetition revision plan bounded
by your exam date.

Typical flow:
  revisor init        prepare the .revisor/ directory
  revisor scan        index course and directive documents
  revisor analyze     extract concepts and exam requirements
  revisor plan        generate the revision calendar
  revisor serve       browse the plan in the web dashboard`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", ".", "study project directory")
	rootCmd.AddCommand(
		newInitCommand(),
		newScanCommand(),
		newAnalyzeCommand(),
		newMapCommand(),
		newPlanCommand(),
		newServeCommand(),
		newTUICommand(),
		newProgressCommand(),
		newCardsCommand(),
		newQuizCommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles the config and logger most commands need.
type env struct {
	cfg *config.Config
	log *logging.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(projectDir)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) close() {
	if e != nil {
		_ = e.log.Close()
	}
}
