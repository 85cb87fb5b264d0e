package ecs

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
)

// EntityStats are diagnostic counters; nothing in the runtime branches on them.
type EntityStats struct {
	TotalCreated uint64
	TotalAdded   uint64
	TotalDeleted uint64
	Active       int
	Live         int
	FreeIds      int
}

// EntityManager owns entity existence, liveness and the enabled flag.
type EntityManager struct {
	BaseManager
	entities []*Entity
	byUUID   map[uuid.UUID]*Entity
	active   *bitset.BitSet
	disabled *bitset.BitSet
	dying    *bitset.BitSet
	pool     *identityPool
	released []*Entity
	stats    EntityStats
}

func newEntityManager(capacity int) *EntityManager {
	return &EntityManager{
		entities: make([]*Entity, 0, capacity),
		byUUID:   make(map[uuid.UUID]*Entity, capacity),
		active:   bitset.New(uint(capacity)),
		disabled: bitset.New(uint(capacity)),
		dying:    bitset.New(uint(capacity)),
		pool:     newIdentityPool(capacity),
	}
}

func (m *EntityManager) create(s *System) *Entity {
	e := newEntity(s, m.pool.checkout())
	for int(e.id) >= len(m.entities) {
		m.entities = append(m.entities, nil)
	}
	m.entities[e.id] = e
	m.byUUID[e.uuid] = e
	m.stats.TotalCreated++
	return e
}

// Entity returns the live entity holding id, or nil.
func (m *EntityManager) Entity(id EntityId) *Entity {
	if int(id) >= len(m.entities) {
		return nil
	}
	return m.entities[id]
}

// EntityByUUID returns the live entity with the given uuid, or nil.
func (m *EntityManager) EntityByUUID(id uuid.UUID) *Entity {
	return m.byUUID[id]
}

// IsActive reports whether an added event has been delivered for e.
func (m *EntityManager) IsActive(e *Entity) bool {
	return m.isLive(e) && m.active.Test(uint(e.id))
}

// IsEnabled reports whether e is not in the disabled set.
func (m *EntityManager) IsEnabled(e *Entity) bool {
	return m.isLive(e) && !m.disabled.Test(uint(e.id))
}

func (m *EntityManager) isLive(e *Entity) bool {
	return int(e.id) < len(m.entities) && m.entities[e.id] == e
}

func (m *EntityManager) Added(e *Entity) {
	if m.active.Test(uint(e.id)) {
		return
	}
	m.active.Set(uint(e.id))
	m.stats.TotalAdded++
	m.stats.Active++
}

func (m *EntityManager) Enabled(e *Entity) {
	m.disabled.Clear(uint(e.id))
}

func (m *EntityManager) Disabled(e *Entity) {
	m.disabled.Set(uint(e.id))
}

// Deleted marks e inactive. Its id is only handed back to the pool by reclaim,
// after the component arenas have been cleaned.
func (m *EntityManager) Deleted(e *Entity) {
	if m.dying.Test(uint(e.id)) {
		return
	}
	m.dying.Set(uint(e.id))
	if m.active.Test(uint(e.id)) {
		m.active.Clear(uint(e.id))
		m.stats.Active--
	}
	m.disabled.Clear(uint(e.id))
	m.stats.TotalDeleted++
	m.released = append(m.released, e)
}

// reclaim returns the ids of entities deleted this tick to the pool.
func (m *EntityManager) reclaim() {
	for _, e := range m.released {
		m.dying.Clear(uint(e.id))
		if !m.isLive(e) {
			continue
		}
		m.entities[e.id] = nil
		delete(m.byUUID, e.uuid)
		e.processorBits.ClearAll()
		m.pool.checkin(e.id)
	}
	clear(m.released)
	m.released = m.released[:0]
}

// Stats returns a snapshot of the entity counters.
func (m *EntityManager) Stats() EntityStats {
	stats := m.stats
	stats.Live = len(m.byUUID)
	stats.FreeIds = m.pool.free()
	return stats
}
