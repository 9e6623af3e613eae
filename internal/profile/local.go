package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/capsulemed/internal/store"
)

// BackendLocal names the SQLite backend in sessions and configuration.
const BackendLocal = "local"

// LocalStore keeps accounts and progress in the local SQLite database.
type LocalStore struct {
	repo store.ProfileRepo
	cost int
}

// NewLocalStore creates a store over the profile tables.
func NewLocalStore(repo store.ProfileRepo) *LocalStore {
	return &LocalStore{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *LocalStore) Current(ctx context.Context) (*Profile, error) {
	sess, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Backend != BackendLocal {
		return nil, nil
	}
	u, err := s.repo.UserByUID(ctx, sess.UID)
	if errors.Is(err, store.ErrNotFound) {
		// Account removed underneath the session.
		return nil, s.repo.ClearSession(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.load(ctx, u)
}

func (s *LocalStore) SignUp(ctx context.Context, email, password, displayName string) (*Profile, error) {
	email = normalizeEmail(email)
	if err := validateSignUp(email, password, displayName); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := store.UserRecord{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	if err := s.repo.SetSession(ctx, store.Session{UID: u.UID, Backend: BackendLocal}); err != nil {
		return nil, err
	}
	return &Profile{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName, CompletedCapsules: []int{}}, nil
}

func (s *LocalStore) SignIn(ctx context.Context, email, password string) (*Profile, error) {
	u, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := checkPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	if err := s.repo.SetSession(ctx, store.Session{UID: u.UID, Backend: BackendLocal}); err != nil {
		return nil, err
	}
	return s.load(ctx, u)
}

func (s *LocalStore) SignInWithProvider(ctx context.Context, provider string) (*Profile, error) {
	return providerSignIn(ctx, provider)
}

func (s *LocalStore) SignOut(ctx context.Context) error {
	return s.repo.ClearSession(ctx)
}

func (s *LocalStore) MarkCompleted(ctx context.Context, capsuleID int) (bool, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrNotSignedIn
	}
	return s.repo.AddCompleted(ctx, p.UID, capsuleID)
}

// Close is a no-op; the database belongs to the caller.
func (s *LocalStore) Close() error { return nil }

func (s *LocalStore) load(ctx context.Context, u *store.UserRecord) (*Profile, error) {
	done, err := s.repo.Completed(ctx, u.UID)
	if err != nil {
		return nil, err
	}
	slices.Sort(done)
	return &Profile{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName, CompletedCapsules: done}, nil
}
