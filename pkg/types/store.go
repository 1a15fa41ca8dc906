package types

import "errors"

// Store persists a project. Callers attach to a backend, load or save, and
// detach when done.
type Store interface {
	// Attach connects the store to the backend described by config. Creates
	// the DataDir if it does not exist. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Multiple calls succeed.
	Detach() error

	// LoadProject reads every type and component into a MemoryProject.
	LoadProject() (*MemoryProject, error)

	SaveType(t *ProductCmptType) error
	SaveProductCmpt(pc *ProductCmpt) error

	// DeleteProductCmpt returns ErrNotFound if no component has that name.
	DeleteProductCmpt(name string) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
