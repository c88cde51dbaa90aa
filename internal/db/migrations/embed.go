// Package migrations embeds the goose SQL migration files for the
// accounts/stats schema so internal/db.RunMigrations can apply them
// without a separate asset pipeline.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
