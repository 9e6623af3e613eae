package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/capsulemed/internal/app"
	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := app.Options{
		Catalog:  catalog.Default(),
		Events:   st.EventRepo(),
		MindMaps: st.MindMapRepo(),
		Log:      logger,
	}

	provider, err := newProvider(ctx, st.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	} else {
		opts.Provider = provider
	}

	profiles, err := openProfiles(ctx, st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Profile store unavailable:", err)
		fmt.Fprintln(os.Stderr, "Progress will not be saved.")
	} else {
		defer profiles.Close()
		opts.Profiles = profiles
	}

	logger.Info("starting tui", "ai", opts.Provider != nil, "profiles", opts.Profiles != nil)
	return app.Run(opts)
}

// newProvider builds the completion provider from CAPSULEMED_* variables,
// falling back to the standard API key variables.
func newProvider(ctx context.Context, events store.EventRepo) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		discovered.Timeout = cfg.Timeout
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, events, logger)
}

func openProfiles(ctx context.Context, st *store.Store) (profile.Store, error) {
	return profile.Open(ctx, profile.ConfigFromEnv(), st.ProfileRepo())
}
