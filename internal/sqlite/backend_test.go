package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func attach(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func sampleType() *types.ProductCmptType {
	def := "1"
	return &types.ProductCmptType{
		Name:      "Product",
		Supertype: "Base",
		Properties: []*types.Property{{
			Name:         "premium",
			Kinds:        []types.PropertyValueKind{types.KindAttributeValue},
			Datatype:     types.DatatypeInteger,
			DefaultValue: &def,
			ValueSet:     &types.EnumValueSet{Values: []string{"1", "2"}},
		}},
		Associations: []*types.Association{{
			Name:           "parts",
			TargetType:     "Part",
			Kind:           types.AssociationAggregation,
			MaxCardinality: types.CardinalityMany,
		}},
	}
}

func sampleCmpt(t *testing.T, name, template string) *types.ProductCmpt {
	t.Helper()
	pc := types.NewProductCmpt(name, "Product")
	pc.SetTemplate(template)
	value := "2"
	require.NoError(t, pc.AddPropertyValue(types.NewAttributeValue("premium", types.NewSingleValueHolder(types.StringValue(value)))))
	_, err := pc.NewLink("parts", "part-1")
	require.NoError(t, err)
	return pc
}

func TestAttachLifecycle(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(nil)
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	require.NoError(t, b.Attach(cfg))
	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	for _, name := range []string{DatabaseFile, typesJSONL, productCmptsJSONL} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	_, err := b.LoadProject()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.SaveType(sampleType()), types.ErrStoreDetached)
	assert.ErrorIs(t, b.DeleteProductCmpt("x"), types.ErrStoreDetached)
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend(nil)
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres"}), types.ErrBackendUnknown)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir)

	require.NoError(t, b.SaveType(sampleType()))
	require.NoError(t, b.SaveProductCmpt(sampleCmpt(t, "p1", "")))
	require.NoError(t, b.SaveProductCmpt(sampleCmpt(t, "p2", "p1")))
	require.NoError(t, b.Detach())

	// A fresh backend rebuilds the database from the JSONL files.
	b2 := attach(t, dir)
	p, err := b2.LoadProject()
	require.NoError(t, err)

	product, ok := p.FindType("Product")
	require.True(t, ok)
	assert.Equal(t, "Base", product.Supertype)
	prop, ok := product.Property("premium")
	require.True(t, ok)
	assert.Equal(t, "1", *prop.DefaultValue)

	p2, ok := p.FindProductCmpt("p2")
	require.True(t, ok)
	assert.Equal(t, "p1", p2.Template())
	pv, ok := p2.PropertyValue("premium", types.KindAttributeValue)
	require.True(t, ok)
	assert.Equal(t, "2", pv.(*types.AttributeValue).ValueHolder().StringValue())
	assert.Len(t, p2.LinksFor("parts"), 1)

	users, err := b2.TemplateUsers("p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, users)
}

func TestSaveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir)

	pc := sampleCmpt(t, "p1", "")
	require.NoError(t, b.SaveProductCmpt(pc))
	pc.SetTemplate("t")
	require.NoError(t, b.SaveProductCmpt(pc))

	data, err := os.ReadFile(filepath.Join(dir, productCmptsJSONL))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"template":"t"`)
}

func TestDeleteProductCmpt(t *testing.T) {
	b := attach(t, t.TempDir())
	require.NoError(t, b.SaveProductCmpt(sampleCmpt(t, "p1", "")))

	require.NoError(t, b.DeleteProductCmpt("p1"))
	assert.ErrorIs(t, b.DeleteProductCmpt("p1"), types.ErrNotFound)

	p, err := b.LoadProject()
	require.NoError(t, err)
	assert.Empty(t, p.ProductCmpts())
}

func TestSaveRejectsEmptyNames(t *testing.T) {
	b := attach(t, t.TempDir())
	assert.ErrorIs(t, b.SaveType(&types.ProductCmptType{}), types.ErrInvalidName)
	assert.ErrorIs(t, b.SaveProductCmpt(types.NewProductCmpt("", "Product")), types.ErrInvalidName)
}
