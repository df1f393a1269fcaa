package ecs

import "errors"

var (
	ErrUnregisteredComponent = errors.New("component type is not registered")
	ErrInvalidEntity         = errors.New("entity is not alive")
	ErrViewOutOfRange        = errors.New("view dereferenced outside its range")
)
