package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/conceptmap"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/scanner"
	"github.com/gabvrl/revisor/internal/store"
)

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Extract concepts and exam requirements with the Gemini API",
		Long: `Rescans the documents, sends each one to the Gemini API for concept or
requirement extraction, matches concepts against exam requirements, and
writes concept_map.json to the exports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			docs, err := scanner.New(e.log).ScanAll(e.cfg.CoursesDir(), e.cfg.DirectivesDir())
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents to analyze; run `revisor scan` and check its output")
			}

			client, err := analyzer.NewClient(e.cfg.API.Key, e.cfg.API.Model, e.cfg.API.Temperature)
			if err != nil {
				return err
			}
			a := analyzer.New(client, e.log)

			fmt.Printf("Analyzing %d documents with %s...\n", len(docs), e.cfg.API.Model)
			concepts, requirements, mapping, err := a.AnalyzeAll(ctx, docs)
			if err != nil {
				return err
			}

			graph := conceptmap.Build(concepts)
			coverage := conceptmap.Coverage(mapping)

			inputs := make([]string, 0, len(docs))
			for _, d := range docs {
				inputs = append(inputs, d.Filename)
			}
			meta := exports.NewMetadata("concept_map", time.Now(), inputs...)
			if err := exports.WriteConceptMapJSON(e.cfg.ConceptMapPath(), concepts, graph, coverage, meta); err != nil {
				return err
			}

			ix, err := store.Open(e.cfg.IndexPath())
			if err != nil {
				return err
			}
			defer ix.Close()
			if err := ix.ReplaceDocuments(ctx, docs); err != nil {
				return err
			}
			if err := ix.ReplaceConcepts(ctx, concepts, meta.Created); err != nil {
				return err
			}

			fmt.Printf("Extracted %d concepts and %d exam requirements\n", len(concepts), len(requirements))
			if coverage.Total > 0 {
				fmt.Printf("Exam coverage: %.0f%% (%d complete, %d partial, %d missing)\n",
					coverage.Percent, coverage.Complete, coverage.Partial, coverage.Missing)
				for _, req := range coverage.AtRisk {
					fmt.Printf("  at risk: %s\n", req)
				}
			}
			fmt.Printf("Concept map written to %s\n", e.cfg.ConceptMapPath())
			return nil
		},
	}
}
