package main

import (
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/thehutch/fusion/ecs"
	"github.com/thehutch/fusion/ecs/managers"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Age struct {
	Ticks int
}

type Lifetime struct {
	Max int
}

type Health struct {
	Current, Max int
}

type Frozen struct{}

const (
	groupMortal = "mortal"
	tagEldest   = "ELDEST"
)

// World bundles a System with the processors and managers of the stress scene.
type World struct {
	System *ecs.System
	Tags   *managers.TagManager
	Groups *managers.GroupManager

	kinds  kinds
	rng    *rand.Rand
	config *Config

	spawned  int
	respawns int
}

type kinds struct {
	position ecs.ComponentType
	velocity ecs.ComponentType
	age      ecs.ComponentType
	lifetime ecs.ComponentType
	health   ecs.ComponentType
	frozen   ecs.ComponentType
}

// NewWorld registers every component, manager and processor of the scene and
// initialises the System.
func NewWorld(cfg *Config, logger zerolog.Logger) (*World, error) {
	opts := []ecs.Option{
		ecs.WithLogger(logger),
		ecs.WithCapacity(cfg.Entities),
	}
	if cfg.Workers > 0 {
		opts = append(opts, ecs.WithParallelism(cfg.Workers))
	}
	s := ecs.NewSystem(opts...)

	w := &World{
		System: s,
		Tags:   managers.NewTagManager(),
		Groups: managers.NewGroupManager(),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		config: cfg,
		kinds: kinds{
			position: ecs.RegisterComponent[Position](s),
			velocity: ecs.RegisterComponent[Velocity](s),
			age:      ecs.RegisterComponent[Age](s),
			lifetime: ecs.RegisterComponent[Lifetime](s),
			health:   ecs.RegisterComponent[Health](s),
			frozen:   ecs.RegisterComponent[Frozen](s),
		},
	}

	s.AddManager(w.Tags)
	s.AddManager(w.Groups)

	k := w.kinds
	s.AddProcessor(&movementProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.position, k.velocity).Exclude(k.frozen))})
	s.AddProcessor(&agingProcessor{EntityProcessor: ecs.NewParallelProcessor(ecs.All(k.age), cfg.Workers)})
	s.AddProcessor(&reaperProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.age, k.lifetime)), world: w})
	s.AddProcessor(&regenProcessor{EntityProcessor: ecs.NewBatchProcessor(ecs.All(k.health).Exclude(k.frozen)), world: w})
	s.AddProcessor(&thawProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.frozen)), world: w})
	s.AddProcessor(&censusProcessor{EntityProcessor: ecs.NewIntervalProcessor(ecs.All(k.health), cfg.CensusEvery), world: w})
	s.AddProcessor(&frozenIndex{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.frozen))}, ecs.Passive())

	if err := s.Initialise(); err != nil {
		return nil, err
	}
	return w, nil
}

// Populate spawns n entities.
func (w *World) Populate(n int) {
	for i := 0; i < n; i++ {
		w.Spawn()
	}
}

// Spawn creates an entity with a random subset of the scene's components and
// queues it for addition.
func (w *World) Spawn() *ecs.Entity {
	e := w.System.CreateEntity().
		AddComponent(Position{X: w.rng.Float32() * 1000, Y: w.rng.Float32() * 1000})

	if w.rng.IntN(4) != 0 {
		e.AddComponent(Velocity{DX: w.rng.Float32()*2 - 1, DY: w.rng.Float32()*2 - 1})
	}
	if w.rng.IntN(2) == 0 {
		e.AddComponent(Health{Current: 1 + w.rng.IntN(50), Max: 100})
	}
	e.AddComponent(Age{})
	if w.rng.IntN(3) != 0 {
		e.AddComponent(Lifetime{Max: 1 + w.rng.IntN(w.config.MaxLifetime)})
		w.Groups.Add(e, groupMortal)
	} else if !w.Tags.IsRegistered(tagEldest) {
		w.Tags.Register(tagEldest, e)
	}

	e.AddToSystem()
	w.spawned++
	return e
}

// Population returns the number of entities currently added to the System.
func (w *World) Population() int {
	return w.System.EntityStats().Active
}

type movementProcessor struct {
	ecs.EntityProcessor
	positions  *ecs.ComponentMapper[Position]
	velocities *ecs.ComponentMapper[Velocity]
}

func (p *movementProcessor) Bind(s *ecs.System) (err error) {
	if p.positions, err = ecs.MapperFor[Position](s); err != nil {
		return err
	}
	p.velocities, err = ecs.MapperFor[Velocity](s)
	return err
}

func (p *movementProcessor) ProcessEntity(e *ecs.Entity) error {
	pos := p.positions.Get(e)
	vel := p.velocities.Get(e)
	dt := float32(p.System().Delta())
	pos.X += vel.DX * dt
	pos.Y += vel.DY * dt
	return nil
}

type agingProcessor struct {
	ecs.EntityProcessor
	ages *ecs.ComponentMapper[Age]
}

func (p *agingProcessor) Bind(s *ecs.System) (err error) {
	p.ages, err = ecs.MapperFor[Age](s)
	return err
}

func (p *agingProcessor) ProcessEntity(e *ecs.Entity) error {
	p.ages.Get(e).Ticks++
	return nil
}

// reaperProcessor deletes entities that outlived their lifetime and spawns a
// replacement for each, keeping the population steady.
type reaperProcessor struct {
	ecs.EntityProcessor
	world     *World
	ages      *ecs.ComponentMapper[Age]
	lifetimes *ecs.ComponentMapper[Lifetime]
}

func (p *reaperProcessor) Bind(s *ecs.System) (err error) {
	if p.ages, err = ecs.MapperFor[Age](s); err != nil {
		return err
	}
	p.lifetimes, err = ecs.MapperFor[Lifetime](s)
	return err
}

func (p *reaperProcessor) ProcessEntity(e *ecs.Entity) error {
	if p.ages.Get(e).Ticks < p.lifetimes.Get(e).Max {
		return nil
	}
	e.DeleteFromSystem()
	p.world.Spawn()
	p.world.respawns++
	return nil
}

// regenProcessor heals every unfrozen entity by one point per tick and freezes a
// random few of them.
type regenProcessor struct {
	ecs.EntityProcessor
	world   *World
	healths *ecs.ComponentMapper[Health]
	frozen  ecs.ComponentType
}

func (p *regenProcessor) Bind(s *ecs.System) (err error) {
	p.frozen, _ = ecs.ComponentTypeOf[Frozen](s)
	p.healths, err = ecs.MapperFor[Health](s)
	return err
}

func (p *regenProcessor) ProcessEntities(entities []*ecs.Entity) error {
	for _, e := range entities {
		hp := p.healths.Get(e)
		hp.Current = min(hp.Max, hp.Current+1)

		if p.world.rng.Float64() < p.world.config.FreezeChance {
			e.AddComponentAs(p.frozen, Frozen{})
			e.ChangedInSystem()
		}
	}
	return nil
}

// thawProcessor unfreezes frozen entities at random.
type thawProcessor struct {
	ecs.EntityProcessor
	world *World
}

func (p *thawProcessor) ProcessEntity(e *ecs.Entity) error {
	if p.world.rng.IntN(10) == 0 {
		ecs.RemoveComponentOf[Frozen](e).ChangedInSystem()
	}
	return nil
}

// censusProcessor periodically logs the population.
type censusProcessor struct {
	ecs.EntityProcessor
	world  *World
	health int
}

func (p *censusProcessor) Begin() {
	p.health = 0
}

func (p *censusProcessor) ProcessEntity(e *ecs.Entity) error {
	p.health += ecs.ComponentOf[Health](e).Current
	return nil
}

func (p *censusProcessor) End() {
	stats := p.System().EntityStats()
	p.System().Logger().Debug().
		Int("active", stats.Active).
		Int("free_ids", stats.FreeIds).
		Int("mortal", len(p.world.Groups.Entities(groupMortal))).
		Int("frozen", FrozenCount(p.System())).
		Int("total_health", p.health).
		Msg("census")
}

// frozenIndex tracks frozen entities without processing them.
type frozenIndex struct {
	ecs.EntityProcessor
}

func (p *frozenIndex) ProcessEntity(*ecs.Entity) error {
	return nil
}

// FrozenCount returns the number of frozen entities tracked by the passive index.
func FrozenCount(s *ecs.System) int {
	if idx := ecs.GetProcessor[*frozenIndex](s); idx != nil {
		return idx.Len()
	}
	return 0
}
