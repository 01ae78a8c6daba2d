package commands

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/quiz"
)

func newQuizCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "AI-generated quizzes and timed mock exams over the analyzed concepts",
	}
	cmd.AddCommand(
		newQuizGenerateCommand(),
		newQuizExamCommand(),
		newQuizTakeCommand(),
		newQuizHistoryCommand(),
		newQuizStatsCommand(),
	)
	return cmd
}

func newQuizGenerator(e *env) (*quiz.Generator, error) {
	client, err := analyzer.NewClient(e.cfg.API.Key, e.cfg.API.Model, e.cfg.API.Temperature)
	if err != nil {
		return nil, err
	}
	return quiz.New(client, e.log), nil
}

func writeQuiz(e *env, q *quiz.Quiz) error {
	meta := exports.NewMetadata("quiz", q.CreatedAt, "concept_map.json")
	if err := exports.WriteQuizJSON(e.cfg.QuizPath(), q, meta); err != nil {
		return err
	}
	fmt.Printf("Wrote %d questions to %s\n", len(q.Questions), e.cfg.QuizPath())
	fmt.Println("Take it with: revisor quiz take")
	return nil
}

func newQuizGenerateCommand() *cobra.Command {
	var module string
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a short quiz, optionally limited to one module",
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
			g, err := newQuizGenerator(e)
			if err != nil {
				return err
			}
			q, err := g.Generate(cmd.Context(), mapDoc.Concepts, module, count)
			if err != nil {
				return err
			}
			return writeQuiz(e, q)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "restrict questions to one module")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of questions")
	return cmd
}

func newQuizExamCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Generate a timed mock exam spread over every module",
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
			g, err := newQuizGenerator(e)
			if err != nil {
				return err
			}
			q, err := g.MockExam(cmd.Context(), mapDoc.Concepts, count)
			if err != nil {
				return err
			}
			fmt.Printf("Mock exam: %d questions, %d minutes\n", len(q.Questions), q.DurationMinutes)
			return writeQuiz(e, q)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of questions (default 42)")
	return cmd
}

func newQuizTakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Answer the generated quiz and record the score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			doc, err := exports.LoadQuizJSON(e.cfg.QuizPath())
			if err != nil {
				return fmt.Errorf("no quiz found, run `revisor quiz generate` first: %w", err)
			}
			q := doc.Quiz

			out := cmd.OutOrStdout()
			if q.Kind == quiz.KindMockExam {
				fmt.Fprintf(out, "Mock exam: %d questions, aim for under %d minutes.\n\n",
					len(q.Questions), q.DurationMinutes)
			} else {
				fmt.Fprintf(out, "Quiz: %d questions.\n\n", len(q.Questions))
			}

			started := time.Now()
			reader := bufio.NewScanner(cmd.InOrStdin())
			answers := map[int]int{}
			for _, question := range q.Questions {
				fmt.Fprintf(out, "Q%d. %s\n", question.Number, question.Text)
				for i, option := range question.Options {
					fmt.Fprintf(out, "  %c) %s\n", 'A'+i, option)
				}
				fmt.Fprint(out, "Your answer (A-D, empty to skip): ")
				if !reader.Scan() {
					break
				}
				if idx, ok := parseAnswer(reader.Text()); ok {
					answers[question.Number] = idx
				}
				fmt.Fprintln(out)
			}

			result := quiz.Grade(q, answers)
			elapsed := int(time.Since(started).Round(time.Minute) / time.Minute)

			fmt.Fprintf(out, "Score: %d/%d (%.0f%%)", result.Score, result.Total, result.Percent)
			if result.Passed {
				fmt.Fprintln(out, " - passed")
			} else {
				fmt.Fprintln(out, " - failed")
			}
			for _, ms := range result.Modules {
				fmt.Fprintf(out, "  %-8s %d/%d (%.0f%%)\n", ms.Module, ms.Correct, ms.Total, ms.Percent)
			}
			if len(result.WeakModules) > 0 {
				fmt.Fprintf(out, "Weak modules to revisit: %s\n", strings.Join(result.WeakModules, ", "))
			}
			for _, a := range result.Answers {
				if a.IsCorrect {
					continue
				}
				question := q.Questions[a.Number-1]
				fmt.Fprintf(out, "\nQ%d (%s): correct answer was %c) %s\n",
					a.Number, question.Concept, 'A'+a.Correct, question.Options[a.Correct])
				if question.Explanation != "" {
					fmt.Fprintf(out, "  %s\n", question.Explanation)
				}
			}

			history, err := quiz.LoadHistory(e.cfg.QuizHistoryPath())
			if err != nil {
				return err
			}
			history.Record(result, elapsed, time.Now())
			return history.Save()
		},
	}
}

// parseAnswer accepts A-D (any case) or 1-4.
func parseAnswer(raw string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 1 {
		return 0, false
	}
	switch {
	case s[0] >= 'A' && s[0] <= 'D':
		return int(s[0] - 'A'), true
	case s[0] >= '1' && s[0] <= '4':
		return int(s[0] - '1'), true
	}
	return 0, false
}

func newQuizHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent quiz and mock exam results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			history, err := quiz.LoadHistory(e.cfg.QuizHistoryPath())
			if err != nil {
				return err
			}
			entries := history.Entries(limit)
			if len(entries) == 0 {
				fmt.Println("No quiz results yet. Run `revisor quiz generate` then `revisor quiz take`.")
				return nil
			}
			for _, entry := range entries {
				fmt.Printf("%s  %-9s  %d/%d (%.0f%%)  %d min\n",
					entry.CompletedAt.Format("2006-01-02 15:04"), entry.Kind,
					entry.Score, entry.Total, entry.Percent, entry.TimeSpentMinutes)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of results to show")
	return cmd
}

func newQuizStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate quiz statistics and weakest modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			history, err := quiz.LoadHistory(e.cfg.QuizHistoryPath())
			if err != nil {
				return err
			}
			stats := history.Stats()
			if stats.TotalQuizzes == 0 {
				fmt.Println("No quiz results yet.")
				return nil
			}
			fmt.Printf("Quizzes taken:   %d (%d questions, %s)\n",
				stats.TotalQuizzes, stats.TotalQuestions, formatMinutes(stats.TotalMinutes))
			fmt.Printf("Average score:   %.0f%%\n", stats.AverageScore)
			fmt.Printf("Best score:      %.0f%%\n", stats.BestScore)
			fmt.Printf("Pass rate:       %.0f%%\n", stats.PassRate)
			if len(stats.WeakestModules) > 0 {
				fmt.Println("Weakest modules:")
				for _, ms := range stats.WeakestModules {
					fmt.Printf("  %-8s %d/%d (%.0f%%)\n", ms.Module, ms.Correct, ms.Total, ms.Percent)
				}
			}
			return nil
		},
	}
}
