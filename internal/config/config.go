// Package config loads the YAML configuration for the lobby process and for
// a game instance, merging a user-supplied file over coded-in defaults with
// dario.cat/mergo the way the teacher hand-rolls DefaultRates()-style
// structs and assigns field by field.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters for the accounts
// and stats store behind internal/auth's AuthService.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"` // default: 4
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

// LobbyConfig holds every setting the lobby dispatcher and instance manager
// need (spec.md §6's "lobby port fixed by config, default 50010" and
// §4.I's instance allocation).
type LobbyConfig struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"` // default 50010

	// Instance manager (spec.md §4.I)
	MaxInstances  int `yaml:"max_instances"`  // default 64
	BasePort      int `yaml:"base_port"`      // game port = BasePort + roomID
	CleanupPeriod int `yaml:"cleanup_period"` // seconds between empty-room sweeps, default 10

	// Database (accounts + stats, behind internal/auth)
	Database DatabaseConfig `yaml:"database"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
}

// DefaultLobby returns LobbyConfig with the spec's literal defaults.
func DefaultLobby() LobbyConfig {
	return LobbyConfig{
		BindAddress:   "0.0.0.0",
		Port:          50010,
		MaxInstances:  64,
		BasePort:      51000,
		CleanupPeriod: 10,
		LogLevel:      "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "voidrunner",
			Password: "voidrunner",
			DBName:   "voidrunner",
			SSLMode:  "disable",
			MaxConns: 4,
		},
	}
}

// LoadLobby loads lobby config from a YAML file, merging it over
// DefaultLobby(). A missing file is not an error: defaults stand alone.
func LoadLobby(path string) (LobbyConfig, error) {
	cfg := DefaultLobby()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var overlay LobbyConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := mergo.Merge(&cfg, overlay, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merging config %s: %w", path, err)
	}
	return cfg, nil
}
