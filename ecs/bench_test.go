package ecs_test

import (
	"testing"

	"github.com/thehutch/fusion/ecs"
)

func BenchmarkCreateEntity(b *testing.B) {
	s, _ := newTestSystem()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.CreateEntity().
			AddComponent(Position{X: 1.0, Y: 2.0}).
			AddComponent(Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkAddComponent(b *testing.B) {
	s, _ := newTestSystem()

	entities := make([]*ecs.Entity, b.N)
	for i := range entities {
		entities[i] = s.CreateEntity().AddComponent(Position{X: 1.0, Y: 2.0})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entities[i].AddComponent(Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkComponentOf(b *testing.B) {
	s, _ := newTestSystem()
	e := s.CreateEntity().AddComponent(Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.ComponentOf[Position](e)
	}
}

func BenchmarkMapperGet(b *testing.B) {
	s, _ := newTestSystem()
	positions, err := ecs.MapperFor[Position](s)
	if err != nil {
		b.Fatal(err)
	}
	e := s.CreateEntity().AddComponent(Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = positions.Get(e)
	}
}

func BenchmarkAspectMatches(b *testing.B) {
	s, k := newTestSystem()
	aspect := ecs.All(k.Position, k.Velocity).Exclude(k.Frozen)
	e := s.CreateEntity().
		AddComponent(Position{}).
		AddComponent(Velocity{}).
		AddComponent(Health{})
	bits := e.ComponentBits()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = aspect.Matches(bits)
	}
}

func BenchmarkCreateDeleteCycle(b *testing.B) {
	s, _ := newTestSystem()
	if err := s.Initialise(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := s.CreateEntity().AddComponent(Position{})
		e.AddToSystem()
		e.DeleteFromSystem()
		if err := s.Process(); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkProcess(b *testing.B, entities int, add func(s *ecs.System, k testKinds)) {
	s, k := newTestSystem(ecs.WithCapacity(entities))
	add(s, k)
	if err := s.Initialise(); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < entities; i++ {
		spawn(s, Position{}, Velocity{DX: 1, DY: 1}, Score(i))
	}
	s.SetDelta(0.016)
	if err := s.Process(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Process(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProcessSequential(b *testing.B) {
	benchmarkProcess(b, 10000, func(s *ecs.System, k testKinds) {
		s.AddProcessor(&benchMovementProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.Position, k.Velocity))})
	})
}

func BenchmarkProcessParallel(b *testing.B) {
	benchmarkProcess(b, 10000, func(s *ecs.System, k testKinds) {
		s.AddProcessor(&benchMovementProcessor{EntityProcessor: ecs.NewParallelProcessor(ecs.All(k.Position, k.Velocity), 0)})
	})
}

func BenchmarkProcessMultipleProcessors(b *testing.B) {
	benchmarkProcess(b, 10000, func(s *ecs.System, k testKinds) {
		s.AddProcessor(&benchMovementProcessor{EntityProcessor: ecs.NewEntityProcessor(ecs.All(k.Position, k.Velocity))})
		s.AddProcessor(&agingProcessor{EntityProcessor: ecs.NewParallelProcessor(ecs.All(k.Score), 0)})
	})
}

type benchMovementProcessor struct {
	ecs.EntityProcessor
	positions  *ecs.ComponentMapper[Position]
	velocities *ecs.ComponentMapper[Velocity]
}

func (p *benchMovementProcessor) Bind(s *ecs.System) (err error) {
	if p.positions, err = ecs.MapperFor[Position](s); err != nil {
		return err
	}
	p.velocities, err = ecs.MapperFor[Velocity](s)
	return err
}

func (p *benchMovementProcessor) ProcessEntity(e *ecs.Entity) error {
	pos := p.positions.Get(e)
	vel := p.velocities.Get(e)
	dt := float32(p.System().Delta())
	pos.X += vel.DX * dt
	pos.Y += vel.DY * dt
	return nil
}
