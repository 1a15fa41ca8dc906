package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// jsonlTable maps a JSONL file to its SQLite table. row extracts the column
// values from one record; unknown fields are ignored.
type jsonlTable struct {
	file   string
	insert string
	row    func(json.RawMessage) ([]any, error)
}

var jsonlTables = []jsonlTable{
	{
		file:   typesJSONL,
		insert: "INSERT OR REPLACE INTO product_cmpt_types (name, supertype, document, updated_at) VALUES (?, ?, ?, ?)",
		row: func(rec json.RawMessage) ([]any, error) {
			var t typeJSON
			if err := json.Unmarshal(rec, &t); err != nil {
				return nil, err
			}
			if t.Name == "" || len(t.Document) == 0 {
				return nil, errors.New("type record without name or document")
			}
			return []any{t.Name, nullable(t.Supertype), string(t.Document), t.UpdatedAt}, nil
		},
	},
	{
		file:   productCmptsJSONL,
		insert: "INSERT OR REPLACE INTO product_cmpts (name, type_name, template, is_template, document, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		row: func(rec json.RawMessage) ([]any, error) {
			var pc productCmptJSON
			if err := json.Unmarshal(rec, &pc); err != nil {
				return nil, err
			}
			if pc.Name == "" || len(pc.Document) == 0 {
				return nil, errors.New("component record without name or document")
			}
			return []any{pc.Name, pc.TypeName, nullable(pc.Template), pc.IsTemplate, string(pc.Document), pc.UpdatedAt}, nil
		},
	},
}

// loadAllJSONL inserts every JSONL record into SQLite in one transaction.
// Malformed lines and records are skipped and logged; a later line for the
// same name replaces an earlier one.
func loadAllJSONL(db *sql.DB, dataDir string, logger *slog.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range jsonlTables {
		records, skipped, err := readJSONL(filepath.Join(dataDir, m.file))
		if err != nil {
			return err
		}
		if skipped > 0 {
			logger.Warn("skipped malformed JSONL lines", "file", m.file, "count", skipped)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, m, records, logger); err != nil {
			return fmt.Errorf("loading %s: %w", m.file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

func insertRecords(tx *sql.Tx, m jsonlTable, records []json.RawMessage, logger *slog.Logger) error {
	stmt, err := tx.Prepare(m.insert)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		args, err := m.row(rec)
		if err != nil {
			logger.Warn("skipped invalid JSONL record", "file", m.file, "record", i, "error", err)
			continue
		}
		if _, err := stmt.Exec(args...); err != nil {
			logger.Warn("skipped JSONL record", "file", m.file, "record", i, "error", err)
		}
	}
	return nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
