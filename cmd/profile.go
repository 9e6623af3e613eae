package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the learner profile",
}

// withProfiles opens the configured profile store for one command.
func withProfiles(cmd *cobra.Command, fn func(profile.Store) error) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	profiles, err := openProfiles(cmd.Context(), st)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer profiles.Close()

	if err := fn(profiles); err != nil {
		logger.Warn("profile command failed", "command", cmd.Name(), "error", err)
		return errors.New(profile.Message(err))
	}
	return nil
}

// passwordFlag returns --password, prompting on the terminal when unset.
func passwordFlag(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fd := os.Stdin.Fd()
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Mot de passe : ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the signed-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfiles(cmd, func(s profile.Store) error {
			p, err := s.Current(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				fmt.Println("Aucun profil connecté.")
				return nil
			}
			printProfile(p)
			return nil
		})
	},
}

var profileSignUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		return withProfiles(cmd, func(s profile.Store) error {
			p, err := s.SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Printf("Bienvenue, %s !\n", p.DisplayName)
			return nil
		})
	},
}

var profileSignInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password, or with --provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		if provider != "" {
			return withProfiles(cmd, func(s profile.Store) error {
				p, err := s.SignInWithProvider(cmd.Context(), provider)
				if err != nil {
					return err
				}
				fmt.Printf("Connecté en tant que %s.\n", p.DisplayName)
				return nil
			})
		}

		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		return withProfiles(cmd, func(s profile.Store) error {
			p, err := s.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Connecté en tant que %s.\n", p.DisplayName)
			return nil
		})
	},
}

var profileSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfiles(cmd, func(s profile.Store) error {
			if err := s.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Déconnecté.")
			return nil
		})
	},
}

var profileCompleteCmd = &cobra.Command{
	Use:   "complete <capsule-id>",
	Short: "Mark a capsule as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid capsule id %q", args[0])
		}
		c, ok := catalog.Default().ByID(id)
		if !ok {
			return fmt.Errorf("no capsule with id %d", id)
		}
		return withProfiles(cmd, func(s profile.Store) error {
			added, err := s.MarkCompleted(cmd.Context(), id)
			if err != nil {
				return err
			}
			if added {
				fmt.Printf("« %s » validée.\n", c.Title)
			} else {
				fmt.Printf("« %s » était déjà validée.\n", c.Title)
			}
			return nil
		})
	},
}

func printProfile(p *profile.Profile) {
	fmt.Printf("Nom:      %s\n", p.DisplayName)
	fmt.Printf("Email:    %s\n", p.Email)
	fmt.Printf("Capsules: %d validée(s)\n", len(p.CompletedCapsules))
	if len(p.CompletedCapsules) > 0 {
		ids := make([]string, len(p.CompletedCapsules))
		for i, id := range p.CompletedCapsules {
			ids[i] = strconv.Itoa(id)
		}
		fmt.Printf("          %s\n", strings.Join(ids, ", "))
	}
}

func init() {
	for _, c := range []*cobra.Command{profileSignUpCmd, profileSignInCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password (prompted when omitted)")
	}
	profileSignUpCmd.Flags().String("name", "", "Display name")
	profileSignInCmd.Flags().String("provider", "", "Federated sign-in provider (e.g. google)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSignUpCmd)
	profileCmd.AddCommand(profileSignInCmd)
	profileCmd.AddCommand(profileSignOutCmd)
	profileCmd.AddCommand(profileCompleteCmd)
}
