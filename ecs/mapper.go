package ecs

// ComponentMapper is a typed accessor for one component kind of one System.
// Obtain it with MapperFor, normally from a Binder's Bind method.
type ComponentMapper[T any] struct {
	ctype   ComponentType
	storage *genericComponentStorage[T]
}

// MapperFor returns a mapper for T, registering T if the System is still being configured.
func MapperFor[T any](s *System) (*ComponentMapper[T], error) {
	ct, err := componentTypeFor[T](s)
	if err != nil {
		return nil, err
	}
	return &ComponentMapper[T]{
		ctype:   ct,
		storage: s.store.storages[ct.index].(*genericComponentStorage[T]),
	}, nil
}

// Type returns the kind handled by the mapper.
func (m *ComponentMapper[T]) Type() ComponentType {
	return m.ctype
}

// Get returns e's component without checking presence. Call Has first: the
// result is undefined for entities without the component and Get panics for ids
// the arena has never grown to.
func (m *ComponentMapper[T]) Get(e *Entity) *T {
	return m.storage.at(e.id)
}

// GetSafe returns e's component and whether it is present.
func (m *ComponentMapper[T]) GetSafe(e *Entity) (*T, bool) {
	if !e.system.entities.isLive(e) {
		return nil, false
	}
	return m.storage.lookup(e.id)
}

// Has reports whether e holds the component.
func (m *ComponentMapper[T]) Has(e *Entity) bool {
	return e.componentBits.Test(uint(m.ctype.index))
}
