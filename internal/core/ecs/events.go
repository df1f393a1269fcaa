package ecs

const (
	EventEntityCreated    = "ecs.entity.created"
	EventEntityDestroyed  = "ecs.entity.destroyed"
	EventEntitiesCleared  = "ecs.entities.cleared"
	EventComponentAdded   = "ecs.component.added"
	EventComponentRemoved = "ecs.component.removed"
)

// EntityCreated is published after an id is handed out.
type EntityCreated struct {
	Entity Entity
}

func (EntityCreated) Type() string { return EventEntityCreated }

// EntityDestroyed is published after every component of Entity was removed.
type EntityDestroyed struct {
	Entity Entity
}

func (EntityDestroyed) Type() string { return EventEntityDestroyed }

// EntitiesCleared is published by Registry.Cleanup.
type EntitiesCleared struct{}

func (EntitiesCleared) Type() string { return EventEntitiesCleared }

// ComponentAdded is published once a component is stored and attached.
type ComponentAdded struct {
	Entity    Entity
	Component TypeID
	Name      string
}

func (ComponentAdded) Type() string { return EventComponentAdded }

// ComponentRemoved is published while the component is still readable.
type ComponentRemoved struct {
	Entity    Entity
	Component TypeID
	Name      string
}

func (ComponentRemoved) Type() string { return EventComponentRemoved }
