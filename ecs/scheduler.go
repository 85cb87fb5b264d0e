package ecs

import (
	"context"
	"time"
)

// SchedulerStats provides statistics about ticks driven by a Scheduler.
type SchedulerStats struct {
	Ticks         int64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	AvgDuration   time.Duration
	LastDuration  time.Duration
	TotalDuration time.Duration
	Processors    []ProcessorStats
}

// Scheduler drives a System: each tick sets the delta and calls Process exactly once.
type Scheduler struct {
	system *System
	ticks  *processorStatsInternal
}

// NewScheduler creates a new scheduler for the given system.
func NewScheduler(system *System) *Scheduler {
	return &Scheduler{
		system: system,
		ticks:  newProcessorStats("tick"),
	}
}

// Once runs a single tick with the given delta time in seconds.
func (s *Scheduler) Once(dt float64) error {
	s.system.SetDelta(dt)

	start := time.Now()
	err := s.system.Process()
	s.ticks.record(time.Since(start))
	return err
}

// Run ticks the system at the given interval until the context is cancelled or a tick fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// Stats returns statistics about tick execution.
func (s *Scheduler) Stats() SchedulerStats {
	ticks := s.ticks.snapshot()
	return SchedulerStats{
		Ticks:         ticks.ExecutionCount,
		MinDuration:   ticks.MinDuration,
		MaxDuration:   ticks.MaxDuration,
		AvgDuration:   ticks.AvgDuration,
		LastDuration:  ticks.LastDuration,
		TotalDuration: ticks.TotalDuration,
		Processors:    s.system.ProcessorStats(),
	}
}
