package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// ComponentType identifies a component kind within a single System.
// Indices are dense and start at 0, so they double as storage offsets.
type ComponentType struct {
	index uint32
	typ   reflect.Type
}

// Index returns the dense index assigned to this kind.
func (c ComponentType) Index() uint32 {
	return c.index
}

// Type returns the Go type backing this kind.
func (c ComponentType) Type() reflect.Type {
	return c.typ
}

func (c ComponentType) String() string {
	if c.typ == nil {
		return "<nil>"
	}
	return c.typ.String()
}

// typeRegistry assigns each distinct kind a stable index on first use.
// It is not safe for concurrent use.
type typeRegistry struct {
	indices map[reflect.Type]uint32
	types   []reflect.Type
	sealed  bool
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		indices: make(map[reflect.Type]uint32),
	}
}

func (r *typeRegistry) lookup(t reflect.Type) (uint32, bool) {
	idx, ok := r.indices[t]
	return idx, ok
}

// indexFor returns the index of t, allocating the next one if t is new.
func (r *typeRegistry) indexFor(t reflect.Type) (uint32, bool, error) {
	if idx, ok := r.indices[t]; ok {
		return idx, false, nil
	}
	if r.sealed {
		return 0, false, eris.Wrapf(ErrRegistrySealed, "cannot assign an index to %s", t)
	}

	idx := uint32(len(r.types))
	r.indices[t] = idx
	r.types = append(r.types, t)
	return idx, true, nil
}

func (r *typeRegistry) typeAt(idx uint32) reflect.Type {
	return r.types[idx]
}

func (r *typeRegistry) len() int {
	return len(r.types)
}

func (r *typeRegistry) seal() {
	r.sealed = true
}

// RegisterComponent registers T as a component kind of s and returns its type handle.
// Registering the same kind again returns the same handle. It panics if T cannot be
// stored as a component or if s has already been initialised and T is new.
func RegisterComponent[T any](s *System) ComponentType {
	ct, err := componentTypeFor[T](s)
	if err != nil {
		panic(err)
	}
	return ct
}

// ComponentTypeOf returns the handle of an already registered kind.
func ComponentTypeOf[T any](s *System) (ComponentType, bool) {
	t := reflect.TypeFor[T]()
	idx, ok := s.components.lookup(t)
	if !ok {
		return ComponentType{}, false
	}
	return ComponentType{index: idx, typ: t}, true
}

func componentTypeFor[T any](s *System) (ComponentType, error) {
	t := reflect.TypeFor[T]()
	if err := validateComponentKind(t); err != nil {
		return ComponentType{}, err
	}

	idx, created, err := s.components.indexFor(t)
	if err != nil {
		return ComponentType{}, err
	}

	ct := ComponentType{index: idx, typ: t}
	if created {
		s.store.addStorage(ct, newGenericComponentStorage[T]())
		s.log.Debug().
			Uint32("component_id", idx).
			Str("component_name", t.String()).
			Msg("registered component kind")
	}
	return ct, nil
}

// componentTypeOfValue resolves the kind of a component value, dereferencing pointers.
func (s *System) componentTypeOfValue(component any) ComponentType {
	t := reflect.TypeOf(component)
	if t == nil {
		panic(eris.Wrap(ErrInvalidComponentKind, "component is nil"))
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	idx, ok := s.components.lookup(t)
	if !ok {
		panic(eris.Wrapf(ErrUnknownComponentKind, "%s", t))
	}
	return ComponentType{index: idx, typ: t}
}

// ComponentTypes returns every registered component kind in index order.
func (s *System) ComponentTypes() []ComponentType {
	types := make([]ComponentType, s.components.len())
	for i := range types {
		types[i] = ComponentType{index: uint32(i), typ: s.components.typeAt(uint32(i))}
	}
	return types
}

// Components can be structs or primitives, but not pointers, maps, channels,
// functions or interfaces.
func validateComponentKind(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return eris.Wrapf(ErrInvalidComponentKind, "%s", t)
	}
	return nil
}
