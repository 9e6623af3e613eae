package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/capsulemed/internal/logging"
	"github.com/abhisek/capsulemed/internal/store"
	"github.com/spf13/cobra"
)

// logger is set up by the root command before any subcommand runs.
var logger = logging.Nop()

var rootCmd = &cobra.Command{
	Use:   "capsulemed",
	Short: "Révisions médicales dans le terminal",
	Long: "Capsule Med — capsules de cours, cartes mentales, fiches et QCM générés par IA " +
		"pour préparer les examens de médecine.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CAPSULEMED_DB env var)")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(mindmapCmd)
	rootCmd.AddCommand(workshopCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogger writes logs to CAPSULEMED_LOG (or the XDG state dir) in the
// CAPSULEMED_LOG_MODE format. Logging is optional: a failure only warns.
func setupLogger() error {
	path, err := logging.DefaultPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		return nil
	}
	l, err := logging.New(logging.Options{
		Mode:  os.Getenv("CAPSULEMED_LOG_MODE"),
		Path:  path,
		Level: os.Getenv("CAPSULEMED_LOG_LEVEL"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		return nil
	}
	logger = l
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CAPSULEMED_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
