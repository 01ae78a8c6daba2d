package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/scanner"
	"github.com/gabvrl/revisor/internal/store"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Index course and directive documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			docs, err := scanner.New(e.log).ScanAll(e.cfg.CoursesDir(), e.cfg.DirectivesDir())
			if err != nil {
				return err
			}

			ix, err := store.Open(e.cfg.IndexPath())
			if err != nil {
				return err
			}
			defer ix.Close()
			if err := ix.ReplaceDocuments(cmd.Context(), docs); err != nil {
				return err
			}

			courses, directives := 0, 0
			for _, d := range docs {
				if d.Category == scanner.CategoryCourse {
					courses++
				} else {
					directives++
				}
			}
			fmt.Printf("Indexed %d documents (%d courses, %d directives)\n", len(docs), courses, directives)
			for _, d := range docs {
				module := d.Module
				if module == "" {
					module = "-"
				}
				fmt.Printf("  %-9s %-6s %5d words  %s\n", d.Category, module, d.WordCount, d.Filename)
			}
			if courses == 0 {
				fmt.Printf("\nNo course documents found; drop .txt, .md or .pdf files under %s\n", e.cfg.CoursesDir())
			}
			return nil
		},
	}
}
