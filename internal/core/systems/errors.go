package systems

import "errors"

var (
	ErrMissingHierarchy = errors.New("entity has no hierarchy")
	ErrMissingTransform = errors.New("entity has no transform")
	ErrCycle            = errors.New("reparent would create a cycle")
	ErrUnknownMode      = errors.New("unknown visibility mode")
)
