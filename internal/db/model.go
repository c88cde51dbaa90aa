package db

import "time"

// Account is a player account stored in Postgres, backing the external
// AuthService oracle spec.md §4.J names (login/register/change-password).
type Account struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

// Stats is the per-account gameplay record spec.md §3's GetStats
// request/response pair exposes to a client once authenticated.
type Stats struct {
	AccountID    int64
	GamesPlayed  int32
	HighScore    int32
	TotalScore   int64
	BestWave     int32
}
