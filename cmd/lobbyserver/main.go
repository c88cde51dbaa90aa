// Command lobbyserver runs the lobby dispatcher and instance manager:
// the well-known UDP control-plane port plus the per-room game
// instances it allocates on demand (spec.md §4.I/§4.J).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/voidrunner/arcade/internal/auth"
	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/db"
	"github.com/voidrunner/arcade/internal/lobby"
	"github.com/voidrunner/arcade/internal/lobbymgr"
	"github.com/voidrunner/arcade/internal/metrics"
)

// ConfigPath is the default lobby config location, overridden by
// VOIDRUNNER_LOBBY_CONFIG.
const ConfigPath = "config/lobbyserver.yaml"

// logTagConfig is the optional server.log.config file spec.md §6
// mentions for tag filtering. This server has no per-subsystem log
// tags to filter (a single lobby process, not la2go's packet-tag
// firehose), so the only knob worth honoring is an override of the
// YAML-configured log level.
type logTagConfig struct {
	LogLevel string `yaml:"log_level"`
}

func main() {
	verbose := flag.Bool("v", false, "verbose logging (debug level)")
	network := flag.Bool("n", false, "enable the network TUI overlay")
	admin := flag.Bool("a", false, "enable the admin TUI overlay")
	flag.BoolVar(verbose, "verbose", false, "verbose logging (debug level)")
	flag.BoolVar(network, "network", false, "enable the network TUI overlay")
	flag.BoolVar(admin, "admin", false, "enable the admin TUI overlay")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, *verbose, *network, *admin); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, verbose, network, admin bool) error {
	cfgPath := ConfigPath
	if p := os.Getenv("VOIDRUNNER_LOBBY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadLobby(cfgPath)
	if err != nil {
		return fmt.Errorf("loading lobby config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	if tagCfg, ok := readLogTagConfig("server.log.config"); ok && tagCfg.LogLevel != "" {
		logLevel = parseLogLevel(tagCfg.LogLevel)
	}
	if verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	if network || admin {
		log.Info("TUI overlay flags acknowledged; no interactive overlay is built, running headless", "network", network, "admin", admin)
	}

	log.Info("voidrunner lobby server starting",
		"bind", cfg.BindAddress, "port", cfg.Port, "log_level", cfg.LogLevel)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	log.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations applied")

	authSvc := auth.NewService(database)

	sampler, err := metrics.NewSampler()
	if err != nil {
		return fmt.Errorf("creating resource sampler: %w", err)
	}

	instCfg := config.DefaultInstance()
	mgr := lobbymgr.New(cfg.BindAddress, cfg.BasePort, cfg.MaxInstances, instCfg, sampler, log.With("component", "lobbymgr"))

	bindAddr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	dispatcher, err := lobby.NewDispatcher(bindAddr, mgr, authSvc, cfg, log.With("component", "dispatcher"))
	if err != nil {
		return fmt.Errorf("creating lobby dispatcher: %w", err)
	}
	defer dispatcher.Close()
	log.Info("lobby dispatcher bound", "addr", dispatcher.LocalEndpoint())

	dispatcher.Run(ctx)
	return nil
}

func readLogTagConfig(path string) (logTagConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return logTagConfig{}, false
	}
	var cfg logTagConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return logTagConfig{}, false
	}
	return cfg, true
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
