package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show capsule progress per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfiles(cmd, func(s profile.Store) error {
			p, err := s.Current(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				return profile.ErrNotSignedIn
			}

			cat := catalog.Default()
			progress := cat.Progress(p.CompletedCapsules)

			fmt.Printf("Progression de %s\n\n", p.DisplayName)
			fmt.Printf("%-28s  %-22s  %s\n", "Matière", "", "Capsules")
			fmt.Println(strings.Repeat("─", 64))
			done := 0
			for _, sp := range progress {
				done += sp.Completed
				fmt.Printf("%-28s  %-22s  %d / %d\n",
					truncate(sp.Subject, 28), bar(sp.Completed, sp.Total, 20), sp.Completed, sp.Total)
			}
			fmt.Println(strings.Repeat("─", 64))
			fmt.Printf("%-28s  %-22s  %d / %d\n", "Total", bar(done, cat.Len(), 20), done, cat.Len())
			return nil
		})
	},
}

// bar renders a fixed-width text progress bar.
func bar(done, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	filled := done * width / total
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
