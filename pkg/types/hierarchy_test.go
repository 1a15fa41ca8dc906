package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectPropertiesSubtypeWins(t *testing.T) {
	p := NewMemoryProject()
	require.NoError(t, p.AddType(&ProductCmptType{Name: "Base", Properties: []*Property{
		{Name: "a", Datatype: DatatypeString},
		{Name: "b", Datatype: DatatypeString},
	}}))
	sub := &ProductCmptType{Name: "Sub", Supertype: "Base", Properties: []*Property{
		{Name: "b", Datatype: DatatypeInteger},
		{Name: "c", Datatype: DatatypeString},
	}}
	require.NoError(t, p.AddType(sub))

	props, err := CollectProperties(p, sub)
	require.NoError(t, err)
	require.Equal(t, 3, props.Len())

	b, ok := props.Get("b")
	require.True(t, ok)
	assert.Equal(t, DatatypeInteger, b.Datatype)

	var names []string
	for _, prop := range props.All() {
		names = append(names, prop.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestTypeChainCycle(t *testing.T) {
	p := NewMemoryProject()
	a := &ProductCmptType{Name: "A", Supertype: "B"}
	require.NoError(t, p.AddType(a))
	require.NoError(t, p.AddType(&ProductCmptType{Name: "B", Supertype: "A"}))

	_, err := TypeChain(p, a)
	assert.ErrorIs(t, err, ErrHierarchyCycle)
}

func TestTypeChainMissingSupertype(t *testing.T) {
	p := NewMemoryProject()
	a := &ProductCmptType{Name: "A", Supertype: "Gone"}
	require.NoError(t, p.AddType(a))

	chain, err := TypeChain(p, a)
	require.NoError(t, err)
	assert.Equal(t, []*ProductCmptType{a}, chain)
}

func TestVisitGuard(t *testing.T) {
	g := NewVisitGuard()
	assert.True(t, g.Enter("a"))
	assert.True(t, g.Enter("b"))
	assert.False(t, g.Enter("a"))
	assert.Equal(t, []string{"a", "b", "a"}, g.Path())
}
