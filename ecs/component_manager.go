package ecs

import (
	"iter"

	"github.com/rotisserie/eris"
)

// ComponentManager owns one arena per component kind.
// It keeps every entity's component bits in step with arena occupancy.
type ComponentManager struct {
	BaseManager
	types    []ComponentType
	storages []iComponentStorage
	deleted  []*Entity
}

func newComponentManager() *ComponentManager {
	return &ComponentManager{}
}

func (m *ComponentManager) addStorage(ct ComponentType, storage iComponentStorage) {
	if int(ct.index) != len(m.storages) {
		panic(eris.Errorf("component kind %s registered out of order: index %d, have %d", ct, ct.index, len(m.storages)))
	}
	m.types = append(m.types, ct)
	m.storages = append(m.storages, storage)
}

// AddComponent stores component for e under kind ct and sets the matching bit.
// It panics if e has already been reclaimed.
func (m *ComponentManager) AddComponent(e *Entity, ct ComponentType, component any) {
	mustBeLive(e)
	if int(ct.index) >= len(m.storages) {
		panic(eris.Wrapf(ErrUnknownComponentKind, "%s", ct))
	}
	if !m.storages[ct.index].Set(e.id, component) {
		panic(eris.Errorf("cannot store %T as component kind %s", component, ct))
	}
	e.componentBits.Set(uint(ct.index))
}

// RemoveComponent clears the slot and bit for kind ct. It is a no-op when e has no such component
// and panics if e has already been reclaimed.
func (m *ComponentManager) RemoveComponent(e *Entity, ct ComponentType) {
	mustBeLive(e)
	if !e.componentBits.Test(uint(ct.index)) {
		return
	}
	m.storages[ct.index].Delete(e.id)
	e.componentBits.Clear(uint(ct.index))
}

// GetComponent returns the component of kind ct held by e, or nil.
// A reclaimed handle holds nothing, even once its id belongs to another entity.
func (m *ComponentManager) GetComponent(e *Entity, ct ComponentType) any {
	if int(ct.index) >= len(m.storages) || !e.system.entities.isLive(e) {
		return nil
	}
	return m.storages[ct.index].Get(e.id)
}

// ComponentsFor returns the components of e in kind order.
func (m *ComponentManager) ComponentsFor(e *Entity) []any {
	components := make([]any, 0, e.componentBits.Count())
	for i, ok := e.componentBits.NextSet(0); ok; i, ok = e.componentBits.NextSet(i + 1) {
		if comp := m.storages[i].Get(e.id); comp != nil {
			components = append(components, comp)
		}
	}
	return components
}

// Count returns how many entities hold a component of kind ct.
func (m *ComponentManager) Count(ct ComponentType) int {
	if int(ct.index) >= len(m.storages) {
		return 0
	}
	return m.storages[ct.index].Len()
}

// EntitiesWith iterates the ids holding a component of kind ct in ascending order.
func (m *ComponentManager) EntitiesWith(ct ComponentType) iter.Seq[EntityId] {
	if int(ct.index) >= len(m.storages) {
		return func(func(EntityId) bool) {}
	}
	return m.storages[ct.index].Iter()
}

// Deleted defers reclamation to clean so every observer can still read the
// entity's components during its own Deleted callback.
func (m *ComponentManager) Deleted(e *Entity) {
	m.deleted = append(m.deleted, e)
}

// clean releases every component of the entities deleted this tick.
func (m *ComponentManager) clean() {
	if len(m.deleted) == 0 {
		return
	}
	for _, e := range m.deleted {
		m.removeComponentsOf(e)
	}
	clear(m.deleted)
	m.deleted = m.deleted[:0]
}

func mustBeLive(e *Entity) {
	if !e.system.entities.isLive(e) {
		panic(eris.Wrapf(ErrStaleEntity, "%s (%s)", e, e.uuid))
	}
}

func (m *ComponentManager) removeComponentsOf(e *Entity) {
	for i, ok := e.componentBits.NextSet(0); ok; i, ok = e.componentBits.NextSet(i + 1) {
		m.storages[i].Delete(e.id)
	}
	e.componentBits.ClearAll()
}
