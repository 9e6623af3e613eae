package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the course capsules by subject and theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.Default()
		subject, _ := cmd.Flags().GetString("subject")

		subjects := c.Subjects()
		if subject != "" {
			s, ok := c.Subject(subject)
			if !ok {
				return fmt.Errorf("unknown subject %q", subject)
			}
			subjects = []catalog.Subject{s}
		}

		for i, s := range subjects {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(strings.ToUpper(s.Name))
			for _, t := range s.Themes {
				fmt.Printf("  %s\n", t.Name)
				for _, cp := range t.Capsules {
					quiz := ""
					if _, ok := c.QuizFor(cp.ID); ok {
						quiz = "  [quiz]"
					}
					fmt.Printf("    %4d  %-60s %6s%s\n", cp.ID, truncate(cp.Title, 60), cp.Duration, quiz)
				}
			}
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one capsule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		c := catalog.Default()
		cp, ok := c.ByID(id)
		if !ok {
			return fmt.Errorf("capsule %d not found", id)
		}

		fmt.Printf("ID:        %d\n", cp.ID)
		fmt.Printf("Titre:     %s\n", cp.Title)
		fmt.Printf("Matière:   %s\n", cp.Subject)
		fmt.Printf("Thème:     %s\n", cp.Theme)
		fmt.Printf("Durée:     %s\n", cp.Duration)
		fmt.Printf("Vidéo:     %s\n", cp.VideoURL)
		if cp.Description != "" {
			fmt.Println()
			fmt.Println(cp.Description)
		}
		if q, ok := c.QuizFor(cp.ID); ok {
			fmt.Printf("\nQuiz: %d questions\n", len(q.Questions))
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringP("subject", "s", "", "Only list this subject")
	catalogCmd.AddCommand(catalogShowCmd)
}
