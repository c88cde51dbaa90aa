// Package db implements the Postgres-backed accounts and stats repository
// behind internal/auth's AuthService, plus the goose migration runner
// spec.md §6 names as "an external migration script".
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("db: not found")

// DB wraps a pgx connection pool for account and stats operations.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() { d.pool.Close() }

// Pool returns the underlying pgx pool for callers that need a raw
// connection. RunMigrations does not use it; it opens its own
// database/sql connection.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// AccountByLogin retrieves an account by login, returning ErrNotFound if
// none exists.
func (d *DB) AccountByLogin(ctx context.Context, login string) (Account, error) {
	var a Account
	err := d.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at, last_login_at
		 FROM accounts WHERE login = $1`, login,
	).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt, &a.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("querying account %q: %w", login, err)
	}
	return a, nil
}

// CreateAccount inserts a new account with the given bcrypt password hash
// and seeds its stats row.
func (d *DB) CreateAccount(ctx context.Context, login, passwordHash string) (Account, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var a Account
	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (login, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, login, password_hash, created_at, last_login_at`,
		login, passwordHash,
	).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt, &a.LastLoginAt)
	if err != nil {
		return Account{}, fmt.Errorf("creating account %q: %w", login, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO stats (account_id) VALUES ($1)`, a.ID); err != nil {
		return Account{}, fmt.Errorf("seeding stats for %q: %w", login, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Account{}, fmt.Errorf("committing account creation for %q: %w", login, err)
	}
	return a, nil
}

// UpdatePassword replaces an account's password hash.
func (d *DB) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $1 WHERE id = $2`, passwordHash, accountID)
	if err != nil {
		return fmt.Errorf("updating password for account %d: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin stamps an account's last_login_at to now.
func (d *DB) TouchLastLogin(ctx context.Context, accountID int64) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE accounts SET last_login_at = now() WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("touching last login for account %d: %w", accountID, err)
	}
	return nil
}

// Stats retrieves an account's gameplay stats, returning ErrNotFound if the
// account has no stats row (it always should — CreateAccount seeds one).
func (d *DB) Stats(ctx context.Context, accountID int64) (Stats, error) {
	var s Stats
	err := d.pool.QueryRow(ctx,
		`SELECT account_id, games_played, high_score, total_score, best_wave
		 FROM stats WHERE account_id = $1`, accountID,
	).Scan(&s.AccountID, &s.GamesPlayed, &s.HighScore, &s.TotalScore, &s.BestWave)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, ErrNotFound
	}
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats for account %d: %w", accountID, err)
	}
	return s, nil
}

// RecordGameResult folds one finished game's outcome into an account's
// running stats. auth.Service.RecordGameResult wraps it; the lobby
// dispatcher does not call either.
func (d *DB) RecordGameResult(ctx context.Context, accountID int64, score, wave int32) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE stats SET
			games_played = games_played + 1,
			total_score = total_score + $2,
			high_score = GREATEST(high_score, $2),
			best_wave = GREATEST(best_wave, $3)
		 WHERE account_id = $1`,
		accountID, score, wave,
	)
	if err != nil {
		return fmt.Errorf("recording game result for account %d: %w", accountID, err)
	}
	return nil
}
