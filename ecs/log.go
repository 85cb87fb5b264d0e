package ecs

import (
	"github.com/rs/zerolog"
)

func componentsArray(types []ComponentType) *zerolog.Array {
	arr := zerolog.Arr()
	for _, ct := range types {
		arr = arr.Dict(zerolog.Dict().
			Int("component_id", int(ct.index)).
			Str("component_name", ct.String()))
	}
	return arr
}

func (s *System) loadComponentsToEvent(event *zerolog.Event) *zerolog.Event {
	types := s.ComponentTypes()
	event.Int("total_components", len(types))
	return event.Array("components", componentsArray(types))
}

func (s *System) loadProcessorsToEvent(event *zerolog.Event) *zerolog.Event {
	event.Int("total_processors", len(s.processors))
	arr := zerolog.Arr()
	for _, p := range s.processors {
		arr = arr.Str(p.processor().name)
	}
	return event.Array("processors", arr)
}

// LogComponents logs every registered component kind.
func (s *System) LogComponents(level zerolog.Level) {
	s.loadComponentsToEvent(s.log.WithLevel(level)).Send()
}

// LogProcessors logs every registered processor in registration order.
func (s *System) LogProcessors(level zerolog.Level) {
	s.loadProcessorsToEvent(s.log.WithLevel(level)).Send()
}

// LogSystem logs components, processors and entity counters in one event.
func (s *System) LogSystem(level zerolog.Level) {
	event := s.log.WithLevel(level)
	event = s.loadComponentsToEvent(event)
	event = s.loadProcessorsToEvent(event)

	stats := s.EntityStats()
	event.Dict("entities", zerolog.Dict().
		Uint64("created", stats.TotalCreated).
		Uint64("added", stats.TotalAdded).
		Uint64("deleted", stats.TotalDeleted).
		Int("active", stats.Active))
	event.Send()
}

// LogEntity logs the identity, state and component kinds of e.
func (s *System) LogEntity(level zerolog.Level, e *Entity) {
	var types []ComponentType
	for i, ok := e.componentBits.NextSet(0); ok; i, ok = e.componentBits.NextSet(i + 1) {
		types = append(types, s.store.types[i])
	}

	s.log.WithLevel(level).
		Uint32("entity_id", uint32(e.id)).
		Str("entity_uuid", e.uuid.String()).
		Bool("active", e.IsActive()).
		Bool("enabled", e.IsEnabled()).
		Array("components", componentsArray(types)).
		Send()
}
