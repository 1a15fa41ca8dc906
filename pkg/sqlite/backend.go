// Package sqlite exposes the SQLite project store while keeping its
// implementation internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/prodcfg/internal/sqlite"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// NewStore creates a detached SQLite store. A nil logger uses
// slog.Default().
//
// Example:
//
//	store := sqlite.NewStore(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".prodcfg-db",
//	})
//	defer store.Detach()
//	project, err := store.LoadProject()
func NewStore(logger *slog.Logger) types.Store {
	return sqlite.NewBackend(logger)
}
