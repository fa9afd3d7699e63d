package model

import "errors"

var (
	// ErrDuplicateIdentity is returned when a label is inserted twice.
	// Two builders tried to create the same entity.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrInvalidNode is returned when inserting a nil node.
	ErrInvalidNode = errors.New("invalid node")

	// ErrRegistryFrozen is returned when inserting into a compiled registry.
	ErrRegistryFrozen = errors.New("registry is frozen")
)
