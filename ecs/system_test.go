package ecs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thehutch/fusion/ecs"
)

func TestProcessBeforeInitialise(t *testing.T) {
	s, _ := newTestSystem()

	err := s.Process()
	require.Error(t, err)
	assert.ErrorContains(t, err, "system has not been initialised")
}

func TestInitialiseTwice(t *testing.T) {
	s, _ := newTestSystem()
	mustInitialise(t, s)

	assert.Error(t, s.Initialise())
	assert.True(t, s.IsInitialised())
}

func TestEventOrdering(t *testing.T) {
	s, k := newTestSystem()
	rec := &recorder{}
	s.AddManager(&recordingManager{rec: rec})
	s.AddProcessor(newMovementProcessor(k, rec))
	mustInitialise(t, s)

	e := s.CreateEntity().AddComponent(Position{}).AddComponent(Velocity{})
	e.AddToSystem()
	e.ChangedInSystem()
	mustProcess(t, s)

	managerAdded := rec.index("manager:added")
	managerChanged := rec.index("manager:changed")
	processorAdded := rec.index("processor:added")
	processorChanged := rec.index("processor:changed")
	require.NotEqual(t, -1, managerAdded)
	require.NotEqual(t, -1, managerChanged)
	require.NotEqual(t, -1, processorAdded)
	require.NotEqual(t, -1, processorChanged)

	assert.Less(t, managerAdded, managerChanged)
	assert.Less(t, managerAdded, processorAdded)
	assert.Less(t, managerChanged, processorChanged)
	assert.Equal(t, []string{
		"manager:added",
		"processor:added",
		"processor:inserted",
		"manager:changed",
		"processor:changed",
	}, rec.events)
}

func TestQueueDrainOrder(t *testing.T) {
	s, _ := newTestSystem()
	rec := &recorder{}
	s.AddManager(&recordingManager{rec: rec})
	mustInitialise(t, s)

	e := s.CreateEntity()
	// Queued in reverse; delivery follows the fixed tick order.
	e.DeleteFromSystem()
	e.Enable()
	e.Disable()
	e.ChangedInSystem()
	e.AddToSystem()
	mustProcess(t, s)

	assert.Equal(t, []string{
		"manager:added",
		"manager:changed",
		"manager:disabled",
		"manager:enabled",
		"manager:deleted",
	}, rec.events)
}

func TestManagersObserveInRegistrationOrder(t *testing.T) {
	s, _ := newTestSystem()
	rec := &recorder{}
	s.AddManager(&recordingManager{rec: rec})
	s.AddManager(&secondManager{rec: rec})
	mustInitialise(t, s)

	s.CreateEntity().AddToSystem()
	mustProcess(t, s)

	assert.Equal(t, []string{"manager:added", "second:added"}, rec.events)
}

type secondManager struct {
	ecs.BaseManager
	rec *recorder
}

func (m *secondManager) Added(e *ecs.Entity) { m.rec.record("second:added") }

// componentProbe records whether a component was still readable during Deleted.
type componentProbe struct {
	ecs.BaseManager
	sawPosition bool
}

func (m *componentProbe) Deleted(e *ecs.Entity) {
	m.sawPosition = ecs.ComponentOf[Position](e) != nil
}

func TestDeletionTiming(t *testing.T) {
	s, k := newTestSystem()
	probe := &componentProbe{}
	s.AddManager(probe)
	movement := newMovementProcessor(k, &recorder{})
	s.AddProcessor(movement)
	mustInitialise(t, s)

	e := s.CreateEntity().AddComponent(Position{X: 1}).AddComponent(Velocity{})
	e.AddToSystem()
	mustProcess(t, s)
	require.Equal(t, 1, movement.Len())

	e.DeleteFromSystem()
	assert.NotNil(t, e.GetComponent(k.Position))
	mustProcess(t, s)

	assert.True(t, probe.sawPosition, "components must be readable during the deleted callback")
	assert.Nil(t, e.GetComponent(k.Position))
	assert.Equal(t, 0, movement.Len())
	assert.False(t, movement.Contains(e))
}

// chainReaction queues further events from inside its Added callback.
type chainReaction struct {
	ecs.BaseManager
	spawned *ecs.Entity
	changed int
}

func (m *chainReaction) Added(e *ecs.Entity) {
	// The added queue is already being drained: this lands in the next tick.
	if m.spawned == nil {
		m.spawned = m.System().CreateEntity()
		m.spawned.AddToSystem()
	}
	// The changed queue has not been drained yet this tick.
	e.ChangedInSystem()
}

func (m *chainReaction) Changed(e *ecs.Entity) {
	m.changed++
}

func TestEventsQueuedDuringDrain(t *testing.T) {
	s, _ := newTestSystem()
	chain := &chainReaction{}
	s.AddManager(chain)
	mustInitialise(t, s)

	e := s.CreateEntity()
	e.AddToSystem()
	mustProcess(t, s)

	require.NotNil(t, chain.spawned)
	assert.True(t, e.IsActive())
	assert.False(t, chain.spawned.IsActive(), "re-queued added events wait for the next tick")
	assert.Equal(t, 1, chain.changed)

	mustProcess(t, s)
	assert.True(t, chain.spawned.IsActive())
	assert.Equal(t, 2, chain.changed)
}

func TestEventsForReclaimedEntitiesAreDropped(t *testing.T) {
	s, _ := newTestSystem()
	rec := &recorder{}
	s.AddManager(&recordingManager{rec: rec})
	mustInitialise(t, s)

	e := s.CreateEntity()
	e.AddToSystem()
	e.DeleteFromSystem()
	mustProcess(t, s)

	rec.events = nil
	e.ChangedInSystem()
	mustProcess(t, s)

	assert.Empty(t, rec.events)
}

func TestAddManagerMisuse(t *testing.T) {
	s, _ := newTestSystem()
	m := &recordingManager{rec: &recorder{}}
	s.AddManager(m)

	assert.Panics(t, func() { s.AddManager(m) }, "same manager type twice")
	assert.Panics(t, func() { ecs.NewSystem().AddManager(m) }, "manager attached to a second system")

	mustInitialise(t, s)
	assert.Panics(t, func() { s.AddManager(&secondManager{}) }, "after initialise")
}

func TestGetManagerAndProcessor(t *testing.T) {
	s, k := newTestSystem()
	m := &recordingManager{rec: &recorder{}}
	p := newMovementProcessor(k, &recorder{})
	s.AddManager(m)
	s.AddProcessor(p)

	assert.Same(t, m, ecs.GetManager[*recordingManager](s))
	assert.Same(t, p, ecs.GetProcessor[*movementProcessor](s))
	assert.Same(t, s.EntityManager(), ecs.GetManager[*ecs.EntityManager](s))
	assert.Same(t, s.ComponentManager(), ecs.GetManager[*ecs.ComponentManager](s))
	assert.Nil(t, ecs.GetManager[*secondManager](s))
	assert.Nil(t, ecs.GetProcessor[*batchProcessor](s))

	assert.Len(t, s.Managers(), 3)
	processors := s.Processors()
	require.Len(t, processors, 1)
	processors[0] = nil
	assert.NotNil(t, s.Processors()[0], "Processors returns a copy")
}

// bindingProcessor receives a typed accessor during Initialise.
type bindingProcessor struct {
	ecs.EntityProcessor
	healths     *ecs.ComponentMapper[Health]
	initialised bool
	boundFirst  bool
}

func (p *bindingProcessor) Bind(s *ecs.System) error {
	var err error
	p.healths, err = ecs.MapperFor[Health](s)
	return err
}

func (p *bindingProcessor) Initialise() {
	p.initialised = true
	p.boundFirst = p.healths != nil
}

func (p *bindingProcessor) ProcessEntity(e *ecs.Entity) error {
	p.healths.Get(e).Current--
	return nil
}

func TestInitialiseBindsBeforeInitialisers(t *testing.T) {
	s, k := newTestSystem()
	p := &bindingProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.Health))}
	s.AddProcessor(p)
	mustInitialise(t, s)

	assert.True(t, p.initialised)
	assert.True(t, p.boundFirst)

	e := s.CreateEntity().AddComponent(Health{Current: 3})
	e.AddToSystem()
	mustProcess(t, s)

	assert.Equal(t, 2, ecs.ComponentOf[Health](e).Current)
}

type badBinder struct {
	ecs.BaseManager
	initialised bool
}

func (m *badBinder) Bind(s *ecs.System) error {
	_, err := ecs.MapperFor[*Position](s)
	return err
}

func (m *badBinder) Initialise() {
	m.initialised = true
}

func TestInitialiseFailsOnBindError(t *testing.T) {
	s, _ := newTestSystem()
	m := &badBinder{}
	s.AddManager(m)

	err := s.Initialise()
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to bind manager badBinder")
	assert.ErrorContains(t, err, "invalid component kind")
	assert.False(t, s.IsInitialised())
	assert.False(t, m.initialised, "no initialiser runs after a failed bind")
	assert.Error(t, s.Process())
}

// flakyBinder fails to bind until fail is cleared.
type flakyBinder struct {
	ecs.BaseManager
	fail  bool
	binds int
}

func (m *flakyBinder) Bind(*ecs.System) error {
	m.binds++
	if m.fail {
		return errors.New("not ready")
	}
	return nil
}

// countingBinder records how often it is bound.
type countingBinder struct {
	ecs.EntityProcessor
	binds int
}

func (p *countingBinder) Bind(*ecs.System) error {
	p.binds++
	return nil
}

func (p *countingBinder) ProcessEntity(*ecs.Entity) error { return nil }

func TestInitialiseRetryOnlyRebindsFailures(t *testing.T) {
	s, k := newTestSystem()
	m := &flakyBinder{fail: true}
	p := &countingBinder{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.Position))}
	s.AddManager(m)
	s.AddProcessor(p)

	require.Error(t, s.Initialise())
	assert.Equal(t, 1, p.binds)

	m.fail = false
	mustInitialise(t, s)
	assert.Equal(t, 2, m.binds)
	assert.Equal(t, 1, p.binds)
}

func TestDelta(t *testing.T) {
	s, _ := newTestSystem()
	s.SetDelta(0.25)
	assert.Equal(t, 0.25, s.Delta())
}
