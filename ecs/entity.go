package ecs

import (
	"fmt"
	"reflect"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
)

// EntityId indexes an entity in every component arena of its System.
// Ids are recycled once an entity has been deleted.
type EntityId uint32

// Entity is a handle to a game object owned by a single System.
//
// AddComponent and RemoveComponent take effect immediately, but processors only
// notice the change once ChangedInSystem (or AddToSystem) has been drained by the
// next System.Process call.
type Entity struct {
	id            EntityId
	uuid          uuid.UUID
	componentBits *bitset.BitSet
	processorBits *bitset.BitSet
	system        *System
}

func newEntity(s *System, id EntityId) *Entity {
	return &Entity{
		id:            id,
		uuid:          uuid.New(),
		componentBits: bitset.New(uint(s.components.len())),
		processorBits: bitset.New(uint(s.processorKinds.len())),
		system:        s,
	}
}

// ID returns the recyclable storage id.
func (e *Entity) ID() EntityId {
	return e.id
}

// UUID returns an identity that is never reused, even after the id is recycled.
func (e *Entity) UUID() uuid.UUID {
	return e.uuid
}

// System returns the System that owns the entity.
func (e *Entity) System() *System {
	return e.system
}

// ComponentBits returns a copy of the set of component indices held by the entity.
func (e *Entity) ComponentBits() *bitset.BitSet {
	return e.componentBits.Clone()
}

// ProcessorBits returns a copy of the set of processor indices the entity is matched by.
func (e *Entity) ProcessorBits() *bitset.BitSet {
	return e.processorBits.Clone()
}

// AddComponent stores component on the entity, replacing any component of the same kind.
// Both values and pointers are accepted; the kind must already be registered.
// Writing through a handle whose entity has been reclaimed panics.
func (e *Entity) AddComponent(component any) *Entity {
	ct := e.system.componentTypeOfValue(component)
	e.system.store.AddComponent(e, ct, component)
	return e
}

// AddComponentAs stores component under an explicit kind.
func (e *Entity) AddComponentAs(ct ComponentType, component any) *Entity {
	e.system.store.AddComponent(e, ct, component)
	return e
}

// RemoveComponent removes the component of the given kind, if present.
func (e *Entity) RemoveComponent(ct ComponentType) *Entity {
	e.system.store.RemoveComponent(e, ct)
	return e
}

// GetComponent returns a pointer to the component of the given kind, or nil.
func (e *Entity) GetComponent(ct ComponentType) any {
	return e.system.store.GetComponent(e, ct)
}

// HasComponent reports whether the entity holds a component of the given kind.
func (e *Entity) HasComponent(ct ComponentType) bool {
	return e.componentBits.Test(uint(ct.index))
}

// Components returns every component held by the entity, in kind order.
func (e *Entity) Components() []any {
	return e.system.store.ComponentsFor(e)
}

// AddToSystem queues an added event.
func (e *Entity) AddToSystem() {
	e.system.pending.push(eventAdded, e)
}

// ChangedInSystem queues a changed event so processors re-evaluate the entity.
func (e *Entity) ChangedInSystem() {
	e.system.pending.push(eventChanged, e)
}

// DeleteFromSystem queues a deleted event. Components stay readable until the
// deletion has been delivered to every observer.
func (e *Entity) DeleteFromSystem() {
	e.system.pending.push(eventDeleted, e)
}

// Enable queues an enabled event.
func (e *Entity) Enable() {
	e.system.pending.push(eventEnabled, e)
}

// Disable queues a disabled event.
func (e *Entity) Disable() {
	e.system.pending.push(eventDisabled, e)
}

// IsActive reports whether an added event has been delivered for the entity.
func (e *Entity) IsActive() bool {
	return e.system.entities.IsActive(e)
}

// IsEnabled reports whether the entity is not currently disabled.
func (e *Entity) IsEnabled() bool {
	return e.system.entities.IsEnabled(e)
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity[%d]", e.id)
}

// ComponentOf returns the T component of e, or nil when e has none, T is not
// registered or e has been reclaimed.
func ComponentOf[T any](e *Entity) *T {
	idx, ok := e.system.components.lookup(reflect.TypeFor[T]())
	if !ok || !e.system.entities.isLive(e) {
		return nil
	}
	comp := e.system.store.storages[idx].Get(e.id)
	if comp == nil {
		return nil
	}
	return comp.(*T)
}

// RemoveComponentOf removes the T component of e, if present.
func RemoveComponentOf[T any](e *Entity) *Entity {
	if ct, ok := ComponentTypeOf[T](e.system); ok {
		e.system.store.RemoveComponent(e, ct)
	}
	return e
}
