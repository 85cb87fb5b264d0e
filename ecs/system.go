package ecs

import (
	"errors"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Option configures a System at construction.
type Option func(s *System)

// WithLogger sets the logger used for registration and diagnostics. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *System) {
		s.log = logger
	}
}

// WithCapacity preallocates bookkeeping for the given number of entities.
func WithCapacity(entities int) Option {
	return func(s *System) {
		s.capacity = max(entities, 0)
	}
}

// WithParallelism sets the default worker count for parallel processors.
func WithParallelism(workers int) Option {
	return func(s *System) {
		s.parallelism = max(workers, 1)
	}
}

// ProcessorOption configures a processor at registration.
type ProcessorOption func(p *EntityProcessor)

// Passive registers a processor that tracks its matched set but is never processed.
func Passive() ProcessorOption {
	return func(p *EntityProcessor) {
		p.passive = true
	}
}

// System owns the entities, components, managers and processors of one world and
// runs the per-tick sequence. It is not safe for concurrent use.
type System struct {
	log         zerolog.Logger
	capacity    int
	parallelism int

	components     *typeRegistry
	processorKinds *typeRegistry

	store    *ComponentManager
	entities *EntityManager

	managers         []Manager
	managersByType   map[reflect.Type]Manager
	processors       []Processor
	processorsByType map[reflect.Type]Processor
	processorStats   []*processorStatsInternal

	pending     pendingEvents
	delta       float64
	bound       map[Binder]struct{}
	initialised bool
}

// NewSystem creates a System with its ComponentManager and EntityManager registered.
func NewSystem(opts ...Option) *System {
	s := &System{
		log:              zerolog.Nop(),
		capacity:         256,
		parallelism:      runtime.GOMAXPROCS(0),
		components:       newTypeRegistry(),
		processorKinds:   newTypeRegistry(),
		managersByType:   make(map[reflect.Type]Manager),
		processorsByType: make(map[reflect.Type]Processor),
		bound:            make(map[Binder]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = newComponentManager()
	s.entities = newEntityManager(s.capacity)
	s.AddManager(s.store)
	s.AddManager(s.entities)
	return s
}

// Logger returns the System's logger.
func (s *System) Logger() *zerolog.Logger {
	return &s.log
}

// ComponentManager returns the manager owning component storage.
func (s *System) ComponentManager() *ComponentManager {
	return s.store
}

// EntityManager returns the manager owning entity bookkeeping.
func (s *System) EntityManager() *EntityManager {
	return s.entities
}

// AddManager registers m. Managers observe events in registration order, before any processor.
// It panics if m is already attached, a manager of the same type exists, or s is initialised.
func (s *System) AddManager(m Manager) {
	t := reflect.TypeOf(m)
	name := typeName(t)
	if s.initialised {
		panic(eris.Errorf("cannot add manager %s: %v", name, ErrAlreadyInitialised))
	}
	if _, exists := s.managersByType[t]; exists {
		panic(eris.Errorf("manager %s is already registered", name))
	}

	m.manager().attach(s, name)
	s.managers = append(s.managers, m)
	s.managersByType[t] = m
	s.log.Debug().Str("manager", name).Msg("registered manager")
}

// AddProcessor registers p and assigns its processor index.
// It panics if p is already attached, a processor of the same type exists, or s is initialised.
func (s *System) AddProcessor(p Processor, opts ...ProcessorOption) {
	t := reflect.TypeOf(p)
	name := typeName(t)
	if s.initialised {
		panic(eris.Errorf("cannot add processor %s: %v", name, ErrAlreadyInitialised))
	}
	if _, exists := s.processorsByType[t]; exists {
		panic(eris.Errorf("processor %s is already registered", name))
	}

	base := p.processor()
	index, _, err := s.processorKinds.indexFor(t)
	if err != nil {
		panic(err)
	}
	base.attach(s, p, name, index)
	for _, opt := range opts {
		opt(base)
	}

	s.processors = append(s.processors, p)
	s.processorsByType[t] = p
	s.processorStats = append(s.processorStats, newProcessorStats(name))
	s.log.Debug().
		Str("processor", name).
		Uint32("processor_id", index).
		Str("mode", base.mode.String()).
		Bool("passive", base.passive).
		Msg("registered processor")
}

// GetManager returns the registered manager of type T, or the zero value.
func GetManager[T Manager](s *System) T {
	m, ok := s.managersByType[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero
	}
	return m.(T)
}

// GetProcessor returns the registered processor of type T, or the zero value.
func GetProcessor[T Processor](s *System) T {
	p, ok := s.processorsByType[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero
	}
	return p.(T)
}

// Managers returns the registered managers in registration order.
func (s *System) Managers() []Manager {
	return slices.Clone(s.managers)
}

// Processors returns the registered processors in registration order.
func (s *System) Processors() []Processor {
	return slices.Clone(s.processors)
}

// Initialise binds every Binder, seals the type registries and runs every
// Initialiser, managers first. Binding failures are reported together and leave
// the System uninitialised. A later call retries only the Binders that failed;
// a Binder that succeeded is never bound again.
func (s *System) Initialise() error {
	if s.initialised {
		return eris.Wrap(ErrAlreadyInitialised, "cannot initialise system")
	}

	var errs []error
	for _, m := range s.managers {
		if b, ok := m.(Binder); ok {
			if err := s.bind(b); err != nil {
				errs = append(errs, eris.Wrapf(err, "failed to bind manager %s", typeName(reflect.TypeOf(m))))
			}
		}
	}
	for _, p := range s.processors {
		if b, ok := p.(Binder); ok {
			if err := s.bind(b); err != nil {
				errs = append(errs, eris.Wrapf(err, "failed to bind processor %s", p.processor().name))
			}
		}
	}
	if len(errs) > 0 {
		return eris.Wrap(errors.Join(errs...), "system initialisation failed")
	}

	for _, m := range s.managers {
		if i, ok := m.(Initialiser); ok {
			i.Initialise()
		}
	}
	for _, p := range s.processors {
		if i, ok := p.(Initialiser); ok {
			i.Initialise()
		}
	}

	s.components.seal()
	s.processorKinds.seal()
	s.initialised = true

	s.log.Info().
		Int("total_components", s.components.len()).
		Int("total_managers", len(s.managers)).
		Int("total_processors", len(s.processors)).
		Msg("system initialised")
	return nil
}

func (s *System) bind(b Binder) error {
	if _, done := s.bound[b]; done {
		return nil
	}
	if err := b.Bind(s); err != nil {
		return err
	}
	s.bound[b] = struct{}{}
	return nil
}

// IsInitialised reports whether Initialise has succeeded.
func (s *System) IsInitialised() bool {
	return s.initialised
}

// CreateEntity allocates an entity. It is not visible to observers until AddToSystem is drained.
func (s *System) CreateEntity() *Entity {
	return s.entities.create(s)
}

// Entity returns the live entity with the given id, or nil.
func (s *System) Entity(id EntityId) *Entity {
	return s.entities.Entity(id)
}

// EntityByUUID returns the live entity with the given uuid, or nil.
func (s *System) EntityByUUID(id uuid.UUID) *Entity {
	return s.entities.EntityByUUID(id)
}

// EntityStats returns the entity counters.
func (s *System) EntityStats() EntityStats {
	return s.entities.Stats()
}

// SetDelta sets the elapsed seconds reported to processors for the next tick.
func (s *System) SetDelta(delta float64) {
	s.delta = delta
}

// Delta returns the elapsed seconds of the current tick.
func (s *System) Delta() float64 {
	return s.delta
}

// Process runs one tick: pending events are delivered in the order added, changed,
// disabled, enabled, deleted (every manager, then every processor), storage of
// deleted entities is reclaimed, and each non-passive processor runs in
// registration order. The first processing error aborts the tick and is returned.
func (s *System) Process() error {
	if !s.initialised {
		return eris.Wrap(ErrNotInitialised, "cannot process system")
	}

	for _, kind := range drainOrder {
		s.drain(kind)
	}

	s.store.clean()
	s.entities.reclaim()

	for i, p := range s.processors {
		base := p.processor()
		if base.passive {
			continue
		}

		start := time.Now()
		ran, err := base.run()
		if ran {
			s.processorStats[i].record(time.Since(start))
		}
		if err != nil {
			return eris.Wrapf(err, "processor %s failed", base.name)
		}
	}
	return nil
}

func (s *System) drain(kind eventKind) {
	if s.pending.len(kind) == 0 {
		return
	}

	queued := s.pending.take(kind)
	for _, e := range queued {
		if !s.entities.isLive(e) {
			s.log.Debug().Stringer("entity", e).Stringer("event", kind).Msg("dropping event for reclaimed entity")
			continue
		}
		for _, m := range s.managers {
			kind.notify(m, e)
		}
		for _, p := range s.processors {
			kind.notify(p, e)
		}
	}
	s.pending.release(kind, queued)
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
