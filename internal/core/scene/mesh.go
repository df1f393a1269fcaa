package scene

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/voxelcore/internal/core/ecs"
)

// MeshHandle identifies a mesh asset. Equal names give equal handles.
type MeshHandle uint64

// HandleOf hashes a mesh name into its handle.
func HandleOf(name string) MeshHandle {
	return MeshHandle(xxhash.Sum64String(name))
}

// Mesh binds an entity to a mesh asset.
type Mesh struct {
	ecs.Base
	Handle MeshHandle
	Name   string
}

func NewMesh(name string) Mesh {
	return Mesh{Handle: HandleOf(name), Name: name}
}
