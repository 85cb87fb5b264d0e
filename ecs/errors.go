package ecs

import "github.com/rotisserie/eris"

var (
	// ErrNotInitialised is returned when a System is processed before Initialise succeeded.
	ErrNotInitialised = eris.New("system has not been initialised")

	// ErrAlreadyInitialised is returned by a second call to Initialise.
	ErrAlreadyInitialised = eris.New("system has already been initialised")

	// ErrRegistrySealed is raised when a new kind is requested after initialisation.
	ErrRegistrySealed = eris.New("type registry is sealed")

	// ErrInvalidComponentKind is raised for types that cannot be stored as components.
	ErrInvalidComponentKind = eris.New("invalid component kind")

	// ErrUnknownComponentKind is raised when a component value of an unregistered kind is used.
	ErrUnknownComponentKind = eris.New("component kind is not registered")

	// ErrStaleEntity is raised when a handle is used after its entity was reclaimed.
	ErrStaleEntity = eris.New("entity has been reclaimed")
)
