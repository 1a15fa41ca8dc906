package linkcheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func setup(t *testing.T, assocs ...*types.Association) (*types.MemoryProject, *types.ProductCmptType) {
	t.Helper()
	p := types.NewMemoryProject()
	ct := &types.ProductCmptType{Name: "Product", Associations: assocs}
	require.NoError(t, p.AddType(ct))
	require.NoError(t, p.AddType(&types.ProductCmptType{Name: "Coverage"}))
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, p.AddProductCmpt(types.NewProductCmpt(name, "Coverage")))
	}
	return p, ct
}

func link(t *testing.T, c types.PropertyValueContainer, assoc, target string) *types.Link {
	t.Helper()
	l := types.NewLink(assoc, target)
	require.NoError(t, c.AddLink(l))
	return l
}

func TestCardinalityCounts(t *testing.T) {
	p, ct := setup(t, &types.Association{Name: "main", Kind: types.AssociationAggregation, MinCardinality: 1, MaxCardinality: 1})
	pc := types.NewProductCmpt("P", "Product")

	msgs := Validate(pc, ct, p)
	assert.Equal(t, 1, msgs.Count(MsgNotEnoughRelations))
	assert.Len(t, msgs, 1)

	link(t, pc, "main", "A")
	assert.Empty(t, Validate(pc, ct, p))

	link(t, pc, "main", "B")
	msgs = Validate(pc, ct, p)
	assert.Equal(t, 1, msgs.Count(MsgTooManyRelations))
	assert.Equal(t, 0, msgs.Count(MsgDuplicateRelationTarget))
	assert.Len(t, msgs, 1)
}

func TestTemplateSkipsMinimum(t *testing.T) {
	p, ct := setup(t, &types.Association{Name: "main", Kind: types.AssociationAggregation, MinCardinality: 1, MaxCardinality: 1})
	pc := types.NewProductCmpt("T", "Product")
	pc.SetIsTemplate(true)

	assert.Empty(t, Validate(pc, ct, p))

	link(t, pc, "main", "A")
	link(t, pc, "main", "B")
	assert.Equal(t, 1, Validate(pc, ct, p).Count(MsgTooManyRelations), "maximum still applies")
}

func TestDuplicateTarget(t *testing.T) {
	p, ct := setup(t,
		&types.Association{Name: "main", Kind: types.AssociationAggregation, MaxCardinality: types.CardinalityMany},
		&types.Association{Name: "other", Kind: types.AssociationAssociation, MaxCardinality: types.CardinalityMany},
	)
	pc := types.NewProductCmpt("P", "Product")
	link(t, pc, "main", "A")
	link(t, pc, "main", "A")
	link(t, pc, "main", "A")
	link(t, pc, "main", "B")
	link(t, pc, "other", "A")
	link(t, pc, "other", "C")

	msgs := Validate(pc, ct, p)
	assert.Equal(t, 1, msgs.Count(MsgDuplicateRelationTarget))
	assert.Len(t, msgs, 1)
}

func TestSkipsDerivedUnionAndOtherTiming(t *testing.T) {
	p, ct := setup(t,
		&types.Association{Name: "all", DerivedUnion: true, MinCardinality: 5, MaxCardinality: types.CardinalityMany},
		&types.Association{Name: "timed", ChangingOverTime: true, MinCardinality: 1, MaxCardinality: 1},
	)
	pc := types.NewProductCmpt("P", "Product")
	assert.Empty(t, Validate(pc, ct, p))
}

func TestUndefinedLinksDoNotCount(t *testing.T) {
	p, ct := setup(t, &types.Association{Name: "main", MinCardinality: 1, MaxCardinality: 1})
	pc := types.NewProductCmpt("P", "Product")
	link(t, pc, "main", "A").SetTemplateValueStatus(types.TemplateUndefined)

	assert.Equal(t, 1, Validate(pc, ct, p).Count(MsgNotEnoughRelations))
}

func TestPolicyCardinality(t *testing.T) {
	policy := &types.PolicyAssociation{Name: "coverages", MinCardinality: 2, MaxCardinality: 3}
	p, ct := setup(t, &types.Association{Name: "main", Kind: types.AssociationAggregation,
		MaxCardinality: types.CardinalityMany, Policy: policy})
	pc := types.NewProductCmpt("P", "Product")
	a := link(t, pc, "main", "A")
	a.SetCardinality(0, 1, 0)
	b := link(t, pc, "main", "B")
	b.SetCardinality(1, 1, 1)

	// Each link alone leaves a maximum of 1 for the others.
	msgs := Validate(pc, ct, p)
	assert.Equal(t, 0, msgs.Count(MsgMaxCardinalitySumExceeds))
	require.Equal(t, 2, msgs.Count(MsgMinCardinalityNotReachable))
	var objects []any
	for _, m := range msgs.MessagesByCode(MsgMinCardinalityNotReachable) {
		objects = append(objects, m.ObjectProperties[0].Object)
	}
	assert.ElementsMatch(t, []any{a, b}, objects)

	c := link(t, pc, "main", "C")
	c.SetCardinality(1, 1, 1)
	assert.Empty(t, Validate(pc, ct, p))

	b.SetCardinality(1, types.CardinalityMany, 1)
	msgs = Validate(pc, ct, p)
	assert.Equal(t, 1, msgs.Count(MsgMaxCardinalitySumExceeds))
	assert.Equal(t, 0, msgs.Count(MsgMinCardinalityNotReachable))

	policy.Qualified = true
	assert.Empty(t, Validate(pc, ct, p))
}

func TestTargets(t *testing.T) {
	p, ct := setup(t, &types.Association{Name: "main", MaxCardinality: types.CardinalityMany})
	target, ok := p.FindProductCmpt("A")
	require.True(t, ok)
	_, err := target.NewGeneration(mustDate(t, "2025-01-01"))
	require.NoError(t, err)

	pc := types.NewProductCmpt("P", "Product")
	pc.SetValidFrom(mustDate(t, "2024-06-01"))
	link(t, pc, "main", "A")
	link(t, pc, "main", "Missing")

	msgs := Validate(pc, ct, p)
	assert.Equal(t, 1, msgs.Count(MsgTargetNotFound))
	assert.Equal(t, 0, msgs.Count(MsgNoGenerationValidOn))

	settings := p.Settings()
	settings.ReferencedGenerationValidOnValidFrom = true
	p.SetSettings(settings)
	assert.Equal(t, 1, Validate(pc, ct, p).Count(MsgNoGenerationValidOn))
}

func TestStructureCycle(t *testing.T) {
	p, _ := setup(t, &types.Association{Name: "parts", Kind: types.AssociationAggregation, MaxCardinality: types.CardinalityMany},
		&types.Association{Name: "refs", Kind: types.AssociationAssociation, MaxCardinality: types.CardinalityMany})
	x := types.NewProductCmpt("X", "Product")
	y := types.NewProductCmpt("Y", "Product")
	require.NoError(t, p.AddProductCmpt(x))
	require.NoError(t, p.AddProductCmpt(y))
	link(t, x, "parts", "Y")
	back := link(t, y, "refs", "X")

	v := NewValidator(p, nil, nil)
	assert.Empty(t, v.ValidateStructure(x), "plain associations are not structure")

	y.RemoveLink(back)
	link(t, y, "parts", "X")
	msgs := v.ValidateStructure(x)
	require.Equal(t, 1, msgs.Count(MsgCycleInProductStructure))
	assert.Contains(t, msgs[0].Text, "X -> Y -> X")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return d
}
