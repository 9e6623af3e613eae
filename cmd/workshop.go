package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/capsulemed/internal/workshop"
	"github.com/spf13/cobra"
)

var workshopCmd = &cobra.Command{
	Use:   "workshop",
	Short: "Generate study material from a course PDF",
}

// workshopRun extracts the PDF and hands a ready service to fn.
func workshopRun(fn func(ctx context.Context, svc *workshop.Service) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doc, err := extractDocument(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := newProvider(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Génération à partir de %s…\n", doc.Name)
		return fn(ctx, workshop.NewService(provider, workshop.DefaultConfig(), doc.Text))
	}
}

var workshopSummaryCmd = &cobra.Command{
	Use:   "summary <pdf>",
	Short: "Print a structured summary of the document",
	Args:  cobra.ExactArgs(1),
	RunE: workshopRun(func(ctx context.Context, svc *workshop.Service) error {
		summary, err := svc.Summary(ctx)
		if err != nil {
			return fmt.Errorf("generate summary: %w", err)
		}
		fmt.Println(summary)
		return nil
	}),
}

var workshopFlashcardsCmd = &cobra.Command{
	Use:   "flashcards <pdf>",
	Short: "Print revision flashcards for the document",
	Args:  cobra.ExactArgs(1),
	RunE: workshopRun(func(ctx context.Context, svc *workshop.Service) error {
		cards, err := svc.Flashcards(ctx)
		if err != nil {
			return fmt.Errorf("generate flashcards: %w", err)
		}
		for i, c := range cards {
			fmt.Printf("Carte %d/%d\n", i+1, len(cards))
			fmt.Println(strings.Repeat("─", 60))
			fmt.Printf("Q : %s\n", c.Front)
			fmt.Printf("R : %s\n\n", c.Back)
		}
		return nil
	}),
}

var workshopQuizCmd = &cobra.Command{
	Use:   "quiz <pdf>",
	Short: "Print a multiple-choice quiz with its answer key",
	Args:  cobra.ExactArgs(1),
	RunE: workshopRun(func(ctx context.Context, svc *workshop.Service) error {
		q, err := svc.Quiz(ctx)
		if err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}
		for i, question := range q.Questions {
			fmt.Printf("%d. %s\n", i+1, question.Question)
			for j, o := range question.Options {
				mark := " "
				if o.IsCorrect {
					mark = "✓"
				}
				fmt.Printf("   %s %c) %s\n", mark, 'A'+j, o.Text)
			}
			if question.Explanation != "" {
				fmt.Printf("   → %s\n", question.Explanation)
			}
			fmt.Println()
		}
		return nil
	}),
}

func init() {
	workshopCmd.AddCommand(workshopSummaryCmd)
	workshopCmd.AddCommand(workshopFlashcardsCmd)
	workshopCmd.AddCommand(workshopQuizCmd)
}
