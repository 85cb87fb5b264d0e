package ecs

import "time"

// ProcessorStats provides execution statistics for a single processor.
// Ticks where CheckProcessing declined to run are not counted.
type ProcessorStats struct {
	Name           string
	Entities       int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type processorStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newProcessorStats(name string) *processorStatsInternal {
	return &processorStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (s *processorStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

func (s *processorStatsInternal) snapshot() ProcessorStats {
	avgDuration := time.Duration(0)
	minDuration := time.Duration(0)
	if s.executionCount > 0 {
		avgDuration = s.totalDuration / time.Duration(s.executionCount)
		minDuration = s.minDuration
	}

	return ProcessorStats{
		Name:           s.name,
		ExecutionCount: s.executionCount,
		MinDuration:    minDuration,
		MaxDuration:    s.maxDuration,
		AvgDuration:    avgDuration,
		LastDuration:   s.lastDuration,
		TotalDuration:  s.totalDuration,
	}
}

// ProcessorStats returns execution statistics for every processor in registration order.
func (s *System) ProcessorStats() []ProcessorStats {
	stats := make([]ProcessorStats, len(s.processorStats))
	for i, internal := range s.processorStats {
		stats[i] = internal.snapshot()
		stats[i].Entities = s.processors[i].processor().Len()
	}
	return stats
}
