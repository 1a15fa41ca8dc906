package types

import "errors"

// Model errors. Schema and value problems are never reported through these;
// they surface as delta entries or validation messages. These cover lookups
// and programmer errors.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidData        = errors.New("invalid entity data")
	ErrDuplicateName      = errors.New("duplicate name")
	ErrDuplicateLink      = errors.New("link with same association and target already exists")
	ErrTypeNotFound       = errors.New("product component type not found")
	ErrHierarchyCycle     = errors.New("cycle in type hierarchy")
	ErrMultipleValues     = errors.New("single value holder cannot hold multiple values")
	ErrUnknownKind        = errors.New("unknown property value kind")
	ErrUnknownStatus      = errors.New("unknown template value status")
	ErrUnknownValueSet    = errors.New("unknown value set type")
	ErrUnknownAssociation = errors.New("unknown association kind")
	ErrAttached           = errors.New("value already belongs to a container")
	ErrNotAttached        = errors.New("value does not belong to a container")
)
