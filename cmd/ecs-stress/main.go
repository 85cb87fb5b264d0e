package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/thehutch/fusion/ecs"
)

func main() {
	configPath := flag.String("config", "ecs-stress.toml", "Path to an optional TOML config file.")
	duration := flag.String("duration", "", "The total duration the test should run for.")
	entityCount := flag.Int("entities", -1, "The initial number of entities to create.")
	workers := flag.Int("workers", -1, "Workers for parallel processors (0 uses GOMAXPROCS).")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *duration != "" {
		cfg.Duration = *duration
	}
	if *entityCount >= 0 {
		cfg.Entities = *entityCount
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *profileMode != "" {
		cfg.Profile = *profileMode
	}
	cfg.GCPauseMetrics = cfg.GCPauseMetrics || *gcPauseMetrics
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("stress test failed")
	}
}

func newLogger(cfg *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func run(cfg *Config, logger zerolog.Logger) error {
	runFor, err := cfg.RunDuration()
	if err != nil {
		return err
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	logger.Info().Msg("starting ECS stress test")

	world, err := NewWorld(cfg, logger)
	if err != nil {
		return err
	}
	world.System.LogSystem(zerolog.DebugLevel)

	logger.Info().Int("entities", cfg.Entities).Msg("populating system")
	world.Populate(cfg.Entities)

	report := &Report{
		Duration:       runFor,
		Entities:       cfg.Entities,
		Workers:        cfg.Workers,
		Seed:           cfg.Seed,
		GCPauseMetrics: cfg.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Stringer("duration", runFor).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), runFor)
	defer cancel()

	scheduler := ecs.NewScheduler(world.System)
	startTime := time.Now()
	if err := loop(ctx, scheduler); err != nil {
		return err
	}

	report.TotalTime = time.Since(startTime)
	report.Ticks = scheduler.Stats()
	report.EntityStats = world.System.EntityStats()
	report.Spawned = world.spawned
	report.Respawns = world.respawns
	report.Frozen = FrozenCount(world.System)
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info().
		Int64("ticks", report.Ticks.Ticks).
		Int("population", world.Population()).
		Msg("simulation finished")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return err
	}
	fmt.Println("--- End of Report ---")
	return nil
}

// loop ticks as fast as possible until ctx is done, feeding the measured frame time as delta.
func loop(ctx context.Context, scheduler *ecs.Scheduler) error {
	lastFrameTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			now := time.Now()
			deltaTime := now.Sub(lastFrameTime)
			lastFrameTime = now

			if err := scheduler.Once(deltaTime.Seconds()); err != nil {
				return err
			}
		}
	}
}
