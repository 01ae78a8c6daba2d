package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/flashcards"
)

func newCardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Spaced-repetition flashcards built from the analyzed concepts",
	}
	cmd.AddCommand(newCardsGenerateCommand(), newCardsDueCommand(), newCardsReviewCommand())
	return cmd
}

func loadDeck(e *env) (*flashcards.Deck, error) {
	return flashcards.Load(e.cfg.FlashcardsPath())
}

func newCardsGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Create cards for concepts that do not have one yet",
		Args:  cobra.NoArgs,
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
			deck, err := loadDeck(e)
			if err != nil {
				return err
			}
			added := deck.Generate(mapDoc.Concepts)
			if added == 0 {
				fmt.Printf("No new cards; deck has %d\n", deck.Len())
				return nil
			}
			if err := deck.Save(); err != nil {
				return err
			}
			fmt.Printf("Added %d cards, deck has %d\n", added, deck.Len())
			return nil
		},
	}
}

func newCardsDueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			deck, err := loadDeck(e)
			if err != nil {
				return err
			}
			due := deck.Due()
			if len(due) == 0 {
				fmt.Println("No cards due. Nice.")
				return nil
			}
			fmt.Printf("%d cards due:\n", len(due))
			for _, c := range due {
				fmt.Printf("  %s  %s\n", c.ID, c.Question)
			}
			fmt.Println("\nGrade one with: revisor cards review <id> <quality 0-5>")
			return nil
		},
	}
}

func newCardsReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review <card-id> <quality>",
		Short: "Grade a card (0 = blackout, 5 = perfect)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quality must be a number between 0 and 5, got %q", args[1])
			}
			deck, err := loadDeck(e)
			if err != nil {
				return err
			}
			card, err := deck.Review(args[0], quality)
			if err != nil {
				return err
			}
			if err := deck.Save(); err != nil {
				return err
			}
			fmt.Printf("%s: next review on %s (interval %d d, easiness %.2f)\n",
				card.Concept, card.Due.Format("2006-01-02"), card.IntervalDays, card.Easiness)
			return nil
		},
	}
}
