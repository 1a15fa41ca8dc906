package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func names(pcs []*types.ProductCmpt) []string {
	out := make([]string, len(pcs))
	for i, pc := range pcs {
		out[i] = pc.Name()
	}
	return out
}

func project(t *testing.T, cmpts ...string) *types.MemoryProject {
	t.Helper()
	p := types.NewMemoryProject()
	require.NoError(t, p.AddType(&types.ProductCmptType{Name: "Node", Associations: []*types.Association{
		{Name: "parts", Kind: types.AssociationAggregation, MaxCardinality: types.CardinalityMany},
		{Name: "refs", Kind: types.AssociationAssociation, MaxCardinality: types.CardinalityMany},
	}}))
	for _, name := range cmpts {
		require.NoError(t, p.AddProductCmpt(types.NewProductCmpt(name, "Node")))
	}
	return p
}

func get(t *testing.T, p *types.MemoryProject, name string) *types.ProductCmpt {
	t.Helper()
	pc, ok := p.FindProductCmpt(name)
	require.True(t, ok)
	return pc
}

func TestFindAggregateRoots(t *testing.T) {
	p := project(t, "A", "B", "C")
	ab, err := get(t, p, "A").NewLink("parts", "B")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, names(FindAggregateRoots(p)))

	_, err = get(t, p, "B").NewLink("parts", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, names(FindAggregateRoots(p)), "self references are ignored")

	get(t, p, "A").RemoveLink(ab)
	assert.Equal(t, []string{"A", "B", "C"}, names(FindAggregateRoots(p)))
}

func TestFindAggregateRootsIgnoresAssociations(t *testing.T) {
	p := project(t, "A", "B")
	_, err := get(t, p, "A").NewLink("refs", "B")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, names(FindAggregateRoots(p)))
}

func TestFindAggregateRootsGenerationLinks(t *testing.T) {
	p := project(t, "A", "B", "C")
	g, err := get(t, p, "C").NewGeneration(mustDate(t))
	require.NoError(t, err)
	_, err = g.NewLink("parts", "A")
	require.NoError(t, err)
	undefined, err := g.NewLink("parts", "B")
	require.NoError(t, err)
	undefined.SetTemplateValueStatus(types.TemplateUndefined)

	assert.Equal(t, []string{"B", "C"}, names(FindAggregateRoots(p)))
}

func TestFindAggregateRootsUnknownTypeStillRoot(t *testing.T) {
	p := project(t, "A")
	orphan := types.NewProductCmpt("Z", "Gone")
	require.NoError(t, p.AddProductCmpt(orphan))

	assert.Equal(t, []string{"A", "Z"}, names(FindAggregateRoots(p)))
}

func mustDate(t *testing.T) time.Time {
	t.Helper()
	d, err := types.ParseDate("2024-01-01")
	require.NoError(t, err)
	return d
}
