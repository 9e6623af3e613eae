// Package profile is the identity and progress store: accounts, the
// signed-in session and the set of completed capsules.
package profile

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("profile: invalid credentials")
	ErrEmailInUse         = errors.New("profile: email already registered")
	ErrProviderNotEnabled = errors.New("profile: sign-in provider not enabled")
	ErrPopupClosed        = errors.New("profile: sign-in dismissed")
	ErrWeakPassword       = errors.New("profile: password too weak")
	ErrNotSignedIn        = errors.New("profile: not signed in")
	ErrInvalidEmail       = errors.New("profile: invalid email")
	ErrNameRequired       = errors.New("profile: display name required")
)

// Profile is a signed-in learner. CompletedCapsules is sorted and free of
// duplicates.
type Profile struct {
	UID               string
	Email             string
	DisplayName       string
	CompletedCapsules []int
}

// HasCompleted reports whether the capsule is marked completed.
func (p *Profile) HasCompleted(id int) bool {
	if p == nil {
		return false
	}
	_, found := slices.BinarySearch(p.CompletedCapsules, id)
	return found
}

// Store is implemented by every profile backend.
type Store interface {
	// Current returns the signed-in profile, or nil when signed out.
	Current(ctx context.Context) (*Profile, error)

	SignUp(ctx context.Context, email, password, displayName string) (*Profile, error)
	SignIn(ctx context.Context, email, password string) (*Profile, error)

	// SignInWithProvider starts a federated sign-in.
	SignInWithProvider(ctx context.Context, provider string) (*Profile, error)

	SignOut(ctx context.Context) error

	// MarkCompleted adds the capsule to the signed-in profile. Marking the
	// same capsule again is a no-op; added reports whether it was new.
	MarkCompleted(ctx context.Context, capsuleID int) (added bool, err error)

	Close() error
}

// Message maps an error from a Store to text for the learner.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Email ou mot de passe incorrect."
	case errors.Is(err, ErrEmailInUse):
		return "Cet email est déjà utilisé par un autre compte."
	case errors.Is(err, ErrProviderNotEnabled):
		return "Ce mode de connexion n'est pas activé."
	case errors.Is(err, ErrPopupClosed):
		return "La fenêtre de connexion a été fermée avant la fin."
	case errors.Is(err, ErrWeakPassword):
		return "Le mot de passe doit contenir au moins 6 caractères."
	case errors.Is(err, ErrNotSignedIn):
		return "Connecte-toi pour enregistrer ta progression."
	case errors.Is(err, ErrInvalidEmail):
		return "Adresse email invalide."
	case errors.Is(err, ErrNameRequired):
		return "Le nom est obligatoire."
	}
	return "Une erreur est survenue. Vérifiez vos identifiants."
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignUp(email, password, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return ErrNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// providerSignIn is shared by the backends: federated sign-in needs a
// browser, which a terminal session does not have.
func providerSignIn(ctx context.Context, provider string) (*Profile, error) {
	if ctx.Err() != nil {
		return nil, ErrPopupClosed
	}
	return nil, ErrProviderNotEnabled
}
