package ecs

import "github.com/rotisserie/eris"

// EntityObserver receives entity lifecycle events as the System drains them.
type EntityObserver interface {
	Added(e *Entity)
	Changed(e *Entity)
	Deleted(e *Entity)
	Enabled(e *Entity)
	Disabled(e *Entity)
}

// Manager observes every entity lifecycle event regardless of composition.
// Implementations embed BaseManager and override the callbacks they need.
type Manager interface {
	EntityObserver
	manager() *BaseManager
}

// Initialiser is implemented by managers and processors that need a setup hook.
// Initialise runs once, after every Binder has been bound.
type Initialiser interface {
	Initialise()
}

// Binder is implemented by managers and processors that need typed component
// accessors. Bind runs once during System.Initialise, before any Initialise hook.
type Binder interface {
	Bind(s *System) error
}

// BaseManager provides no-op lifecycle callbacks and the System back-reference.
type BaseManager struct {
	system *System
}

func (m *BaseManager) manager() *BaseManager {
	return m
}

// System returns the System the manager is registered with.
func (m *BaseManager) System() *System {
	return m.system
}

func (m *BaseManager) attach(s *System, name string) {
	if m.system != nil {
		panic(eris.Errorf("manager %s is already attached to a system", name))
	}
	m.system = s
}

func (m *BaseManager) Added(*Entity)    {}
func (m *BaseManager) Changed(*Entity)  {}
func (m *BaseManager) Deleted(*Entity)  {}
func (m *BaseManager) Enabled(*Entity)  {}
func (m *BaseManager) Disabled(*Entity) {}
