package main

import (
	"errors"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// Config controls a stress run. Values are layered: defaults, then the optional
// TOML file, then ECS_STRESS_* environment variables, then command line flags.
type Config struct {
	Duration     string  `toml:"duration" config:"ECS_STRESS_DURATION"`
	Entities     int     `toml:"entities" config:"ECS_STRESS_ENTITIES"`
	Workers      int     `toml:"workers" config:"ECS_STRESS_WORKERS"`
	Seed         uint64  `toml:"seed" config:"ECS_STRESS_SEED"`
	MaxLifetime  int     `toml:"max_lifetime" config:"ECS_STRESS_MAX_LIFETIME"`
	FreezeChance float64 `toml:"freeze_chance" config:"ECS_STRESS_FREEZE_CHANCE"`
	CensusEvery  float64 `toml:"census_every" config:"ECS_STRESS_CENSUS_EVERY"`

	LogLevel  string `toml:"log_level" config:"ECS_STRESS_LOG_LEVEL"`
	LogFormat string `toml:"log_format" config:"ECS_STRESS_LOG_FORMAT"`

	Profile     string `toml:"profile" config:"ECS_STRESS_PROFILE"`
	ProfilePath string `toml:"profile_path" config:"ECS_STRESS_PROFILE_PATH"`

	GCPauseMetrics bool `toml:"gc_pause_metrics" config:"ECS_STRESS_GC_PAUSE_METRICS"`
}

func defaults() *Config {
	return &Config{
		Duration:     "10s",
		Entities:     10000,
		Workers:      0,
		Seed:         1,
		MaxLifetime:  600,
		FreezeChance: 0.001,
		CensusEvery:  1.0,
		LogLevel:     "info",
		LogFormat:    "console",
		ProfilePath:  ".",
	}
}

// Load builds a Config from the defaults, the TOML file at path when it exists,
// and the environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "parse config %s", path)
		}
	}
	if err := jlconfig.FromEnv().To(cfg); err != nil {
		return nil, eris.Wrap(err, "read config from environment")
	}
	return cfg, cfg.Validate()
}

// RunDuration parses Duration.
func (c *Config) RunDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid duration %q", c.Duration)
	}
	return d, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	d, err := c.RunDuration()
	if err != nil {
		return err
	}
	switch {
	case d <= 0:
		return eris.Errorf("duration must be positive, got %s", d)
	case c.Entities < 0:
		return eris.Errorf("entities must not be negative, got %d", c.Entities)
	case c.MaxLifetime <= 0:
		return eris.Errorf("max_lifetime must be positive, got %d", c.MaxLifetime)
	case c.FreezeChance < 0 || c.FreezeChance > 1:
		return eris.Errorf("freeze_chance must be within [0, 1], got %g", c.FreezeChance)
	case c.CensusEvery <= 0:
		return eris.Errorf("census_every must be positive, got %g", c.CensusEvery)
	}

	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("unknown profile mode %q", c.Profile)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return eris.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
