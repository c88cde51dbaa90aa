// Command seeddata connects to the lobby's Postgres database, applies
// migrations, and registers a handful of development accounts — the
// teacher's gendata role (populate reference data before the server
// needs it) adapted to this domain, where the only reference data is
// accounts rather than XML-sourced game tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/voidrunner/arcade/internal/auth"
	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/db"
)

func main() {
	cfgPath := flag.String("config", "config/lobbyserver.yaml", "lobby config file to read the database DSN from")
	accounts := flag.String("accounts", "dev:devpass", "comma-separated login:password pairs to seed")
	flag.Parse()

	if err := run(context.Background(), *cfgPath, *accounts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, accountsFlag string) error {
	cfg, err := config.LoadLobby(cfgPath)
	if err != nil {
		return fmt.Errorf("loading lobby config: %w", err)
	}

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	authSvc := auth.NewService(database)

	for _, pair := range strings.Split(accountsFlag, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		login, password, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("seeddata: malformed account %q, expected login:password", pair)
		}

		id, err := authSvc.Register(ctx, login, password)
		if err != nil {
			if errors.Is(err, auth.ErrLoginTaken) {
				slog.Info("account already exists, skipping", "login", login)
				continue
			}
			return fmt.Errorf("registering %q: %w", login, err)
		}
		slog.Info("seeded account", "login", login, "accountID", id)
	}

	return nil
}
