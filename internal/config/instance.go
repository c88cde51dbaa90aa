package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DifficultyPreset is the per-room multiplier struct SPEC_FULL.md §4 adds
// from original_source/'s room settings: enemy HP/fire-rate and score
// multipliers consulted by the enemy-shooting and score systems.
type DifficultyPreset struct {
	EnemyHealthMultiplier    float64 `yaml:"enemy_health_multiplier"`
	EnemyFireRateMultiplier  float64 `yaml:"enemy_fire_rate_multiplier"`
	ScoreMultiplier          float64 `yaml:"score_multiplier"`
}

// InstanceConfig holds every setting a single game instance's tick loop,
// workers, and replication engine need.
type InstanceConfig struct {
	// Simulation (spec.md §4.H)
	TickRate int `yaml:"tick_rate"` // Hz, default 60 — non-goal: no dynamic reconfiguration

	// Networking (spec.md §4.F)
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"` // default 30s
	SnapshotRateHz    int           `yaml:"snapshot_rate_hz"`   // per-client publish cap, default 20
	InputQueueSize    int           `yaml:"input_queue_size"`   // default 256
	ControlQueueSize  int           `yaml:"control_queue_size"` // default 64

	// Replication (spec.md §4.E)
	FullSnapshotInterval int `yaml:"full_snapshot_interval"` // ticks, default 60; not read: replication.Engine uses replication.FullSnapshotInterval

	// Respawn (spec.md §4.H respawn policy)
	RespawnDelaySeconds       float64 `yaml:"respawn_delay_seconds"`        // default 3
	RespawnInvincibilitySecs  float64 `yaml:"respawn_invincibility_secs"`   // default 3

	// Housekeeping
	BandwidthLogInterval time.Duration `yaml:"bandwidth_log_interval"` // default 5s

	// Difficulty presets keyed by name, referenced by Room.Difficulty at
	// creation time (SPEC_FULL.md §4 supplemented feature).
	Difficulties map[string]DifficultyPreset `yaml:"difficulties"`
}

// DefaultInstance returns InstanceConfig with the spec's literal defaults.
func DefaultInstance() InstanceConfig {
	return InstanceConfig{
		TickRate:                 60,
		InactivityTimeout:        30 * time.Second,
		SnapshotRateHz:           20,
		InputQueueSize:           256,
		ControlQueueSize:         64,
		FullSnapshotInterval:     60,
		RespawnDelaySeconds:      3,
		RespawnInvincibilitySecs: 3,
		BandwidthLogInterval:     5 * time.Second,
		Difficulties: map[string]DifficultyPreset{
			"normal": {EnemyHealthMultiplier: 1.0, EnemyFireRateMultiplier: 1.0, ScoreMultiplier: 1.0},
			"hard":   {EnemyHealthMultiplier: 1.5, EnemyFireRateMultiplier: 1.3, ScoreMultiplier: 1.5},
			"ranked": {EnemyHealthMultiplier: 1.25, EnemyFireRateMultiplier: 1.15, ScoreMultiplier: 2.0},
		},
	}
}

// TickInterval is the fixed-timestep period derived from TickRate.
func (c InstanceConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// LoadInstance loads per-instance tuning config from a YAML file, merging
// it over DefaultInstance(). A missing file is not an error.
func LoadInstance(path string) (InstanceConfig, error) {
	cfg := DefaultInstance()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var overlay InstanceConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := mergo.Merge(&cfg, overlay, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merging config %s: %w", path, err)
	}
	return cfg, nil
}
