// Package ecs implements the entity-component core: typed sorted component
// storages, the registry that owns them, and multi-component views.
//
// The package is single-threaded. A Registry and everything reached through
// it must be used from one goroutine.
package ecs

import "strconv"

// Entity is an opaque handle. Ids come from a per-registry counter and are
// never reused until Cleanup.
type Entity uint32

// Invalid is the "no entity" handle.
const Invalid Entity = 0

// Valid reports whether e is not Invalid.
func (e Entity) Valid() bool { return e != Invalid }

func (e Entity) String() string {
	if e == Invalid {
		return "entity(invalid)"
	}
	return "entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
