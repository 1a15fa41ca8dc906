package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	lines := `{"name":"A","updated_at":"2025-01-15T10:30:00Z","document":{"name":"A"},"future_field":42}
not json at all
{"name":"","document":{"name":"X"}}
{"name":"B","supertype":"A","document":{"name":"B","supertype":"A"}}
{"name":"C","document":{"supertype":"A"}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, typesJSONL), []byte(lines), 0o644))

	b := attach(t, dir)

	var count int
	require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM product_cmpt_types").Scan(&count))
	assert.Equal(t, 3, count)

	// C is stored but its document fails validation, so it is left out.
	p, err := b.LoadProject()
	require.NoError(t, err)
	_, ok := p.FindType("A")
	assert.True(t, ok)
	_, ok = p.FindType("B")
	assert.True(t, ok)
	_, ok = p.FindType("C")
	assert.False(t, ok)
}

func TestLoadLaterLineWins(t *testing.T) {
	dir := t.TempDir()
	lines := `{"name":"A","document":{"name":"A"}}
{"name":"A","supertype":"Z","document":{"name":"A","supertype":"Z"}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, typesJSONL), []byte(lines), 0o644))

	b := attach(t, dir)
	p, err := b.LoadProject()
	require.NoError(t, err)
	a, ok := p.FindType("A")
	require.True(t, ok)
	assert.Equal(t, "Z", a.Supertype)
}

func TestReadJSONLMissingFile(t *testing.T) {
	records, skipped, err := readJSONL(filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, skipped)
}

func TestWriteJSONLReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, writeJSONL(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
