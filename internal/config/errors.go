package config

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrUnknownParent   = errors.New("unknown parent")
	ErrDuplicateEntity = errors.New("duplicate entity name")
	ErrParentCycle     = errors.New("parent cycle")
)
