// Package sqlite implements the project store on SQLite. JSONL files in the
// data directory are the source of truth; the database is rebuilt from them
// on Attach and serves queries while attached.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/prodcfg/internal/schema"
	"github.com/mesh-intelligence/prodcfg/pkg/element"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// DatabaseFile is the SQLite file created in DataDir.
const DatabaseFile = "prodcfg.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
}

// NewBackend creates a detached backend. A nil logger uses slog.Default().
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Attach creates DataDir and the JSONL files if needed, builds a fresh
// database and loads the JSONL files into it.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	for _, m := range jsonlTables {
		if err := ensureJSONL(filepath.Join(dataDir, m.file)); err != nil {
			return err
		}
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	_ = os.Remove(dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if err := loadAllJSONL(db, dataDir, b.logger); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	b.config = config
	b.db = db
	b.attached = true
	b.logger.Debug("store attached", "data_dir", dataDir)
	return nil
}

// Detach closes the database. Calling it on a detached backend is a no-op.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	return nil
}

// LoadProject decodes every stored type and component. Documents that no
// longer decode are logged and left out.
func (b *Backend) LoadProject() (*types.MemoryProject, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	p := types.NewMemoryProject()
	err := b.eachDocument("SELECT name, document FROM product_cmpt_types ORDER BY name", func(name string, doc []byte) error {
		t, err := schema.UnmarshalType(doc)
		if err != nil {
			b.logger.Warn("skipped undecodable type", "type", name, "error", err)
			return nil
		}
		return p.AddType(t)
	})
	if err != nil {
		return nil, err
	}
	err = b.eachDocument("SELECT name, document FROM product_cmpts ORDER BY name", func(name string, doc []byte) error {
		pc, err := element.Unmarshal(doc)
		if err != nil {
			b.logger.Warn("skipped undecodable component", "component", name, "error", err)
			return nil
		}
		return p.AddProductCmpt(pc)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *Backend) eachDocument(query string, fn func(name string, doc []byte) error) error {
	rows, err := b.db.Query(query)
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		if err := fn(name, []byte(doc)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveType inserts or replaces t and rewrites types.jsonl.
func (b *Backend) SaveType(t *types.ProductCmptType) error {
	if t.Name == "" {
		return types.ErrInvalidName
	}
	doc, err := schema.MarshalType(t)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	_, err = b.db.Exec(
		"INSERT OR REPLACE INTO product_cmpt_types (name, supertype, document, updated_at) VALUES (?, ?, ?, ?)",
		t.Name, nullable(t.Supertype), string(doc), now(),
	)
	if err != nil {
		return fmt.Errorf("saving type %s: %w", t.Name, err)
	}
	return b.persistTypesJSONL()
}

// SaveProductCmpt inserts or replaces pc and rewrites product_cmpts.jsonl.
func (b *Backend) SaveProductCmpt(pc *types.ProductCmpt) error {
	if pc.Name() == "" {
		return types.ErrInvalidName
	}
	doc, err := element.Marshal(pc)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	_, err = b.db.Exec(
		"INSERT OR REPLACE INTO product_cmpts (name, type_name, template, is_template, document, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		pc.Name(), pc.TypeName(), nullable(pc.Template()), pc.IsTemplate(), string(doc), now(),
	)
	if err != nil {
		return fmt.Errorf("saving component %s: %w", pc.Name(), err)
	}
	return b.persistProductCmptsJSONL()
}

// DeleteProductCmpt removes the component called name.
func (b *Backend) DeleteProductCmpt(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	res, err := b.db.Exec("DELETE FROM product_cmpts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting component %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("deleting component %s: %w", name, types.ErrNotFound)
	}
	return b.persistProductCmptsJSONL()
}

// TemplateUsers returns the names of components whose template is name,
// sorted.
func (b *Backend) TemplateUsers(name string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rows, err := b.db.Query("SELECT name FROM product_cmpts WHERE template = ? ORDER BY name", name)
	if err != nil {
		return nil, fmt.Errorf("querying template users: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// persistTypesJSONL rewrites types.jsonl from the database. The caller must
// hold the write lock.
func (b *Backend) persistTypesJSONL() error {
	rows, err := b.db.Query("SELECT name, COALESCE(supertype, ''), document, updated_at FROM product_cmpt_types ORDER BY name")
	if err != nil {
		return fmt.Errorf("reading types for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var t typeJSON
		var doc string
		if err := rows.Scan(&t.Name, &t.Supertype, &doc, &t.UpdatedAt); err != nil {
			return fmt.Errorf("scanning type for JSONL: %w", err)
		}
		t.Document = json.RawMessage(doc)
		rec, err := json.Marshal(t)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, typesJSONL), records)
}

// persistProductCmptsJSONL rewrites product_cmpts.jsonl from the database.
// The caller must hold the write lock.
func (b *Backend) persistProductCmptsJSONL() error {
	rows, err := b.db.Query("SELECT name, type_name, COALESCE(template, ''), is_template, document, updated_at FROM product_cmpts ORDER BY name")
	if err != nil {
		return fmt.Errorf("reading components for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var pc productCmptJSON
		var doc string
		if err := rows.Scan(&pc.Name, &pc.TypeName, &pc.Template, &pc.IsTemplate, &doc, &pc.UpdatedAt); err != nil {
			return fmt.Errorf("scanning component for JSONL: %w", err)
		}
		pc.Document = json.RawMessage(doc)
		rec, err := json.Marshal(pc)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, productCmptsJSONL), records)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
