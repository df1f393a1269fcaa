// Package scene holds the editor components: the parent/child relation,
// local and world transforms, entity metadata and mesh bindings.
package scene

import "github.com/zeusync/voxelcore/internal/core/ecs"

// Registered component names.
const (
	HierarchyName = "Hierarchy"
	TransformName = "Transform"
	MetaName      = "Information"
	MeshName      = "Mesh"
)

// DefaultEntityName is the name given to Meta components created without one.
const DefaultEntityName = "Entity"

// RegisterComponents registers the scene components on r in a fixed order.
func RegisterComponents(r *ecs.Registry) {
	ecs.Register[Hierarchy](r, HierarchyName)
	ecs.Register[Transform](r, TransformName)
	ecs.Register[Meta](r, MetaName)
	ecs.Register[Mesh](r, MeshName)
}
