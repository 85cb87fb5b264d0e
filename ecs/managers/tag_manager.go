// Package managers provides general purpose managers for an ecs.System.
package managers

import (
	"maps"
	"slices"

	"github.com/thehutch/fusion/ecs"
)

// TagManager associates unique string tags with entities, such as "PLAYER" or
// "CAMERA". An entity carries at most one tag and a tag names at most one entity.
// Tags are released when their entity is deleted.
type TagManager struct {
	ecs.BaseManager
	entitiesByTag map[string]*ecs.Entity
	tagsByEntity  map[*ecs.Entity]string
}

func NewTagManager() *TagManager {
	return &TagManager{
		entitiesByTag: make(map[string]*ecs.Entity),
		tagsByEntity:  make(map[*ecs.Entity]string),
	}
}

// Register tags e, taking the tag from any entity that held it and dropping any tag e held.
func (m *TagManager) Register(tag string, e *ecs.Entity) {
	if prev, ok := m.entitiesByTag[tag]; ok {
		delete(m.tagsByEntity, prev)
	}
	if prevTag, ok := m.tagsByEntity[e]; ok {
		delete(m.entitiesByTag, prevTag)
	}
	m.entitiesByTag[tag] = e
	m.tagsByEntity[e] = tag
}

// Unregister releases tag.
func (m *TagManager) Unregister(tag string) {
	if e, ok := m.entitiesByTag[tag]; ok {
		delete(m.tagsByEntity, e)
		delete(m.entitiesByTag, tag)
	}
}

func (m *TagManager) IsRegistered(tag string) bool {
	_, ok := m.entitiesByTag[tag]
	return ok
}

// Entity returns the entity holding tag, or nil.
func (m *TagManager) Entity(tag string) *ecs.Entity {
	return m.entitiesByTag[tag]
}

// Tag returns the tag held by e.
func (m *TagManager) Tag(e *ecs.Entity) (string, bool) {
	tag, ok := m.tagsByEntity[e]
	return tag, ok
}

// Tags returns every registered tag, sorted.
func (m *TagManager) Tags() []string {
	return slices.Sorted(maps.Keys(m.entitiesByTag))
}

func (m *TagManager) Deleted(e *ecs.Entity) {
	if tag, ok := m.tagsByEntity[e]; ok {
		delete(m.entitiesByTag, tag)
		delete(m.tagsByEntity, e)
	}
}
