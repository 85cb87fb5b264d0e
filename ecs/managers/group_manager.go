package managers

import (
	"maps"
	"slices"

	"github.com/thehutch/fusion/ecs"
)

// GroupManager places entities into any number of named groups, such as
// "enemies" or "pickups". Membership is dropped when an entity is deleted.
type GroupManager struct {
	ecs.BaseManager
	entitiesByGroup map[string][]*ecs.Entity
	groupsByEntity  map[*ecs.Entity][]string
}

func NewGroupManager() *GroupManager {
	return &GroupManager{
		entitiesByGroup: make(map[string][]*ecs.Entity),
		groupsByEntity:  make(map[*ecs.Entity][]string),
	}
}

// Add puts e in group. Adding an entity twice to the same group has no effect.
func (m *GroupManager) Add(e *ecs.Entity, group string) {
	if m.IsInGroup(e, group) {
		return
	}
	m.entitiesByGroup[group] = append(m.entitiesByGroup[group], e)
	m.groupsByEntity[e] = append(m.groupsByEntity[e], group)
}

// Remove takes e out of group.
func (m *GroupManager) Remove(e *ecs.Entity, group string) {
	if !m.IsInGroup(e, group) {
		return
	}

	m.entitiesByGroup[group] = slices.DeleteFunc(m.entitiesByGroup[group], func(other *ecs.Entity) bool {
		return other == e
	})
	if len(m.entitiesByGroup[group]) == 0 {
		delete(m.entitiesByGroup, group)
	}

	m.groupsByEntity[e] = slices.DeleteFunc(m.groupsByEntity[e], func(other string) bool {
		return other == group
	})
	if len(m.groupsByEntity[e]) == 0 {
		delete(m.groupsByEntity, e)
	}
}

// RemoveFromAllGroups takes e out of every group it belongs to.
func (m *GroupManager) RemoveFromAllGroups(e *ecs.Entity) {
	for _, group := range slices.Clone(m.groupsByEntity[e]) {
		m.Remove(e, group)
	}
}

// Entities returns the members of group in the order they were added.
func (m *GroupManager) Entities(group string) []*ecs.Entity {
	return slices.Clone(m.entitiesByGroup[group])
}

// Groups returns the groups e belongs to in the order it joined them.
func (m *GroupManager) Groups(e *ecs.Entity) []string {
	return slices.Clone(m.groupsByEntity[e])
}

// GroupNames returns every non-empty group, sorted.
func (m *GroupManager) GroupNames() []string {
	return slices.Sorted(maps.Keys(m.entitiesByGroup))
}

func (m *GroupManager) IsInAnyGroup(e *ecs.Entity) bool {
	return len(m.groupsByEntity[e]) > 0
}

func (m *GroupManager) IsInGroup(e *ecs.Entity, group string) bool {
	return slices.Contains(m.groupsByEntity[e], group)
}

func (m *GroupManager) Deleted(e *ecs.Entity) {
	m.RemoveFromAllGroups(e)
}
