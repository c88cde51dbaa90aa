// Package auth implements the AuthService oracle spec.md §4.J's lobby
// dispatcher gates certain control-plane commands behind. The JWT/password
// primitives themselves stay a narrow interface per spec.md §1's scope
// note — this package supplies the one concrete adapter (bcrypt + Postgres)
// the lobby process wires in, and nothing downstream needs to know it's
// Postgres-backed.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/voidrunner/arcade/internal/db"
)

// Errors returned by Service methods. The lobby dispatcher maps these to
// the appropriate wire failure packet (LoginResponse/RegisterResponse
// with ok=false) rather than disconnecting the client, per spec.md §7's
// "Protocol violation" policy.
var (
	ErrInvalidCredentials = errors.New("auth: invalid login or password")
	ErrLoginTaken         = errors.New("auth: login already registered")
	ErrNotAuthenticated   = errors.New("auth: operation requires a prior login")
)

// Stats mirrors db.Stats without leaking the storage-layer type across the
// AuthService boundary.
type Stats struct {
	GamesPlayed int32
	HighScore   int32
	TotalScore  int64
	BestWave    int32
}

// Service is the external authentication oracle: login, registration,
// password change, and stats lookup, backed by Postgres and bcrypt.
type Service struct {
	store *db.DB
	sf    singleflight.Group
}

// NewService builds a Service over an already-connected db.DB.
func NewService(store *db.DB) *Service {
	return &Service{store: store}
}

// Login verifies login/password and returns the account id on success.
func (s *Service) Login(ctx context.Context, login, password string) (int64, error) {
	acc, err := s.store.AccountByLogin(ctx, login)
	if errors.Is(err, db.ErrNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("auth: looking up %q: %w", login, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	if err := s.store.TouchLastLogin(ctx, acc.ID); err != nil {
		return 0, fmt.Errorf("auth: touching last login for %q: %w", login, err)
	}
	return acc.ID, nil
}

// Register creates a new account, hashing password with bcrypt's default
// cost.
func (s *Service) Register(ctx context.Context, login, password string) (int64, error) {
	if _, err := s.store.AccountByLogin(ctx, login); err == nil {
		return 0, ErrLoginTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return 0, fmt.Errorf("auth: checking login availability for %q: %w", login, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("auth: hashing password: %w", err)
	}

	acc, err := s.store.CreateAccount(ctx, login, string(hash))
	if err != nil {
		return 0, fmt.Errorf("auth: creating account %q: %w", login, err)
	}
	return acc.ID, nil
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, login, oldPassword, newPassword string) error {
	acc, err := s.store.AccountByLogin(ctx, login)
	if errors.Is(err, db.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("auth: looking up %q: %w", login, err)
	}
	if acc.ID != accountID {
		return ErrNotAuthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hashing new password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("auth: updating password for account %d: %w", accountID, err)
	}
	return nil
}

// Stats returns an account's gameplay stats. Concurrent lookups for the
// same account collapse into one query via singleflight, since a logged-in
// client can send GetStatsRequest as often as it likes.
func (s *Service) Stats(ctx context.Context, accountID int64) (Stats, error) {
	key := fmt.Sprintf("stats:%d", accountID)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		st, err := s.store.Stats(ctx, accountID)
		if err != nil {
			return Stats{}, err
		}
		return Stats{
			GamesPlayed: st.GamesPlayed,
			HighScore:   st.HighScore,
			TotalScore:  st.TotalScore,
			BestWave:    st.BestWave,
		}, nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("auth: fetching stats for account %d: %w", accountID, err)
	}
	return v.(Stats), nil
}

// RecordGameResult folds a finished game's outcome into an account's stats.
func (s *Service) RecordGameResult(ctx context.Context, accountID int64, score, wave int32) error {
	return s.store.RecordGameResult(ctx, accountID, score, wave)
}
