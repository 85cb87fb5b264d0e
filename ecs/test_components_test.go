package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thehutch/fusion/ecs"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Sprite struct {
	Name string
}

type Health struct {
	Current int
	Max     int
}

type Frozen struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

type testKinds struct {
	Position ecs.ComponentType
	Velocity ecs.ComponentType
	Sprite   ecs.ComponentType
	Health   ecs.ComponentType
	Frozen   ecs.ComponentType
	Score    ecs.ComponentType
	Tag      ecs.ComponentType
}

func registerTestKinds(s *ecs.System) testKinds {
	return testKinds{
		Position: ecs.RegisterComponent[Position](s),
		Velocity: ecs.RegisterComponent[Velocity](s),
		Sprite:   ecs.RegisterComponent[Sprite](s),
		Health:   ecs.RegisterComponent[Health](s),
		Frozen:   ecs.RegisterComponent[Frozen](s),
		Score:    ecs.RegisterComponent[Score](s),
		Tag:      ecs.RegisterComponent[Tag](s),
	}
}

// newTestSystem returns an uninitialised System with the test kinds registered.
func newTestSystem(opts ...ecs.Option) (*ecs.System, testKinds) {
	s := ecs.NewSystem(opts...)
	return s, registerTestKinds(s)
}

// mustInitialise initialises s, failing the test on error.
func mustInitialise(t testing.TB, s *ecs.System) {
	t.Helper()
	require.NoError(t, s.Initialise())
}

// mustProcess runs one tick, failing the test on error.
func mustProcess(t testing.TB, s *ecs.System) {
	t.Helper()
	require.NoError(t, s.Process())
}

// recorder collects lifecycle callbacks from several observers into one ordered log.
type recorder struct {
	events []string
}

func (r *recorder) record(event string) {
	r.events = append(r.events, event)
}

func (r *recorder) index(event string) int {
	for i, e := range r.events {
		if e == event {
			return i
		}
	}
	return -1
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// recordingManager logs every lifecycle callback it receives.
type recordingManager struct {
	ecs.BaseManager
	rec *recorder
}

func (m *recordingManager) Added(e *ecs.Entity)    { m.rec.record("manager:added") }
func (m *recordingManager) Changed(e *ecs.Entity)  { m.rec.record("manager:changed") }
func (m *recordingManager) Deleted(e *ecs.Entity)  { m.rec.record("manager:deleted") }
func (m *recordingManager) Enabled(e *ecs.Entity)  { m.rec.record("manager:enabled") }
func (m *recordingManager) Disabled(e *ecs.Entity) { m.rec.record("manager:disabled") }

// movementProcessor integrates velocity into position and records its callbacks.
type movementProcessor struct {
	ecs.EntityProcessor
	rec       *recorder
	processed []ecs.EntityId
}

func newMovementProcessor(k testKinds, rec *recorder) *movementProcessor {
	return &movementProcessor{
		EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.Position, k.Velocity)),
		rec:             rec,
	}
}

func (p *movementProcessor) Added(e *ecs.Entity) {
	p.rec.record("processor:added")
	p.EntityProcessor.Added(e)
}

func (p *movementProcessor) Changed(e *ecs.Entity) {
	p.rec.record("processor:changed")
	p.EntityProcessor.Changed(e)
}

func (p *movementProcessor) Inserted(e *ecs.Entity) { p.rec.record("processor:inserted") }
func (p *movementProcessor) Removed(e *ecs.Entity)  { p.rec.record("processor:removed") }

func (p *movementProcessor) ProcessEntity(e *ecs.Entity) error {
	pos := ecs.ComponentOf[Position](e)
	vel := ecs.ComponentOf[Velocity](e)
	pos.X += vel.DX * float32(p.System().Delta())
	pos.Y += vel.DY * float32(p.System().Delta())
	p.processed = append(p.processed, e.ID())
	return nil
}
