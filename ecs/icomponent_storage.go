package ecs

import "iter"

// iComponentStorage is a type-erased arena holding one component kind, indexed by entity id.
type iComponentStorage interface {
	Set(id EntityId, item any) bool
	Delete(id EntityId) bool
	Get(id EntityId) any
	Len() int
	Iter() iter.Seq[EntityId]
}
