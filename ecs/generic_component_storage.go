package ecs

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
)

const (
	genericBlockSize = 64
)

// genericComponentStorage stores components of type T in fixed-size blocks indexed
// by entity id. Blocks are allocated individually so pointers handed out by Get stay
// valid while the arena grows. The occupancy bitset is the only source of truth for
// whether a slot holds a component.
type genericComponentStorage[T any] struct {
	blocks   []*[genericBlockSize]T
	occupied *bitset.BitSet
	count    int
}

func newGenericComponentStorage[T any]() *genericComponentStorage[T] {
	return &genericComponentStorage[T]{
		occupied: bitset.New(genericBlockSize),
	}
}

// Set stores item at id. item may be a T or a *T; any other type is rejected.
func (cs *genericComponentStorage[T]) Set(id EntityId, item any) bool {
	if ptr, ok := item.(*T); ok {
		if ptr == nil {
			return false
		}
		cs.put(id, *ptr)
		return true
	}
	if val, ok := item.(T); ok {
		cs.put(id, val)
		return true
	}
	return false
}

func (cs *genericComponentStorage[T]) put(id EntityId, value T) {
	blockIdx := int(id / genericBlockSize)
	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([genericBlockSize]T))
	}

	cs.blocks[blockIdx][id%genericBlockSize] = value
	if !cs.occupied.Test(uint(id)) {
		cs.occupied.Set(uint(id))
		cs.count++
	}
}

// Get returns a *T for an occupied slot, nil otherwise.
func (cs *genericComponentStorage[T]) Get(id EntityId) any {
	ptr, ok := cs.lookup(id)
	if !ok {
		return nil
	}
	return ptr
}

// lookup is the bounds-checked typed accessor.
func (cs *genericComponentStorage[T]) lookup(id EntityId) (*T, bool) {
	if !cs.occupied.Test(uint(id)) {
		return nil, false
	}
	return &cs.blocks[id/genericBlockSize][id%genericBlockSize], true
}

// at skips the occupancy check. It panics when id lies beyond the grown arena.
func (cs *genericComponentStorage[T]) at(id EntityId) *T {
	return &cs.blocks[id/genericBlockSize][id%genericBlockSize]
}

// Delete zeroes the slot at id. It reports whether a component was removed.
func (cs *genericComponentStorage[T]) Delete(id EntityId) bool {
	if !cs.occupied.Test(uint(id)) {
		return false
	}

	var zero T
	cs.blocks[id/genericBlockSize][id%genericBlockSize] = zero
	cs.occupied.Clear(uint(id))
	cs.count--
	return true
}

func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

// Iter yields the ids of every occupied slot in ascending order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for i, ok := cs.occupied.NextSet(0); ok; i, ok = cs.occupied.NextSet(i + 1) {
			if !yield(EntityId(i)) {
				return
			}
		}
	}
}
