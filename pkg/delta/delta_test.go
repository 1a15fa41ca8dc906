package delta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prodcfg/pkg/template"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

var attr = []types.PropertyValueKind{types.KindAttributeValue}

func day(s string) time.Time {
	t, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newProject(t *testing.T, ct *types.ProductCmptType) *types.MemoryProject {
	t.Helper()
	p := types.NewMemoryProject()
	require.NoError(t, p.AddType(ct))
	return p
}

func addValue(t *testing.T, c types.PropertyValueContainer, name string, v types.Value) *types.AttributeValue {
	t.Helper()
	av := types.NewAttributeValue(name, types.NewSingleValueHolder(v))
	require.NoError(t, c.AddPropertyValue(av))
	return av
}

func stored(t *testing.T, c types.PropertyValueContainer, name string) string {
	t.Helper()
	pv, ok := c.PropertyValue(name, types.KindAttributeValue)
	require.True(t, ok, "no attribute value %s on %s", name, c.Name())
	return pv.(*types.AttributeValue).ValueHolder().StringValue()
}

func fixAndRecompute(t *testing.T, c types.PropertyValueContainer, p types.Project) {
	t.Helper()
	d := Compute(c, p)
	require.NoError(t, d.Fix())
	again := Compute(c, p)
	assert.True(t, again.IsEmpty(), "delta after fix: %v", describe(again))
}

func describe(d *Delta) []string {
	var out []string
	for _, e := range d.Entries() {
		out = append(out, e.Type().String()+" "+e.Name()+": "+e.Description())
	}
	return out
}

func TestRenamedPropertyRelocatesValue(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "y", Kinds: attr, Datatype: types.DatatypeInteger},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	av := addValue(t, pc, "x", types.StringValue("5"))
	require.NoError(t, p.AddProductCmpt(pc))

	d := Compute(pc, p)
	require.Len(t, d.EntriesOf(MissingPropertyValue), 1)
	require.Len(t, d.EntriesOf(ValueWithoutProperty), 1)
	missing := d.EntriesOf(MissingPropertyValue)[0]
	assert.Equal(t, "y", missing.Name())
	assert.Same(t, d.EntriesOf(ValueWithoutProperty)[0], missing.Predecessor())

	require.NoError(t, d.Fix())
	assert.Equal(t, "5", stored(t, pc, "y"))
	assert.Equal(t, "y", av.PropertyName(), "the value object is moved, not recreated")
	assert.Empty(t, pc.PropertyValuesFor("x"))
	assert.True(t, Compute(pc, p).IsEmpty())
}

func TestRenameFixIsIdempotent(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "y", Kinds: attr, Datatype: types.DatatypeInteger},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	addValue(t, pc, "x", types.StringValue("5"))
	require.NoError(t, p.AddProductCmpt(pc))

	d := Compute(pc, p)
	require.NoError(t, d.Fix())
	require.NoError(t, d.Fix())
	assert.Equal(t, "5", stored(t, pc, "y"))
	assert.Len(t, pc.PropertyValuesFor("y"), 1)

	orphan := d.EntriesOf(ValueWithoutProperty)[0]
	require.NoError(t, orphan.Fix())
	require.NoError(t, orphan.Fix())
	assert.Equal(t, "5", stored(t, pc, "y"))
	assert.True(t, Compute(pc, p).IsEmpty())
}

func TestOrphanEntryFixTwice(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "y", Kinds: attr, Datatype: types.DatatypeString},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	addValue(t, pc, "x", types.StringValue("kept"))
	require.NoError(t, p.AddProductCmpt(pc))

	orphan := Compute(pc, p).EntriesOf(ValueWithoutProperty)[0]
	require.NoError(t, orphan.Fix())
	require.NoError(t, orphan.Fix())
	assert.Equal(t, "kept", stored(t, pc, "y"))
}

func TestEntryFixRunsPredecessor(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "y", Kinds: attr, Datatype: types.DatatypeString},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	addValue(t, pc, "x", types.StringValue("kept"))

	d := Compute(pc, p)
	require.NoError(t, d.EntriesOf(MissingPropertyValue)[0].Fix())
	assert.Equal(t, "kept", stored(t, pc, "y"))
}

func TestTimingChangeMovesValueToGenerations(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "rate", Kinds: attr, Datatype: types.DatatypeDecimal, ChangingOverTime: true},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	addValue(t, pc, "rate", types.StringValue("0.5"))
	g1, err := pc.NewGeneration(day("2024-01-01"))
	require.NoError(t, err)
	g2, err := pc.NewGeneration(day("2025-01-01"))
	require.NoError(t, err)

	d := Compute(pc, p)
	assert.Len(t, d.EntriesOf(MissingPropertyValue), 2)
	assert.Len(t, d.EntriesOf(ValueWithoutProperty), 1)

	fixAndRecompute(t, pc, p)
	assert.Equal(t, "0.5", stored(t, g1, "rate"))
	assert.Equal(t, "0.5", stored(t, g2, "rate"))
	assert.Empty(t, pc.PropertyValues())
}

func TestTimingChangeTakesLatestGenerationValue(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "rate", Kinds: attr, Datatype: types.DatatypeDecimal},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	g1, err := pc.NewGeneration(day("2024-01-01"))
	require.NoError(t, err)
	g2, err := pc.NewGeneration(day("2025-01-01"))
	require.NoError(t, err)
	addValue(t, g1, "rate", types.StringValue("1"))
	addValue(t, g2, "rate", types.StringValue("2"))

	fixAndRecompute(t, pc, p)
	assert.Equal(t, "2", stored(t, pc, "rate"))
	assert.Empty(t, g1.PropertyValues())
	assert.Empty(t, g2.PropertyValues())
}

func TestPropertyTypeMismatch(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "premium", Kinds: attr, Datatype: types.DatatypeInteger},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	addValue(t, pc, "premium", types.StringValue("1"))
	require.NoError(t, pc.AddPropertyValue(types.NewFormula("premium", "a * b")))

	d := Compute(pc, p)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, PropertyTypeMismatch, d.Entries()[0].Type())

	fixAndRecompute(t, pc, p)
	_, ok := pc.PropertyValue("premium", types.KindFormula)
	assert.False(t, ok)
}

func TestAttributeMismatches(t *testing.T) {
	def := "0"
	tests := []struct {
		name   string
		prop   *types.Property
		holder types.ValueHolder
		want   Type
		after  string
	}{
		{
			name:   "single to multi",
			prop:   &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeString, MultiValue: true},
			holder: types.NewSingleValueHolder(types.StringValue("v")),
			want:   MultiValueMismatch,
			after:  "[v]",
		},
		{
			name:   "multi to single",
			prop:   &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeString},
			holder: types.NewMultiValueHolder(nil, types.StringValue("v"), types.StringValue("w")),
			want:   MultiValueMismatch,
			after:  "v",
		},
		{
			name:   "plain to multilingual",
			prop:   &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeString, Multilingual: true},
			holder: types.NewSingleValueHolder(types.StringValue("hello")),
			want:   MultilingualMismatch,
			after:  "en=hello",
		},
		{
			name: "multilingual to plain",
			prop: &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeString},
			holder: types.NewSingleValueHolder(types.NewInternationalString(
				types.LocalizedString{Locale: "de", Text: "hallo"},
				types.LocalizedString{Locale: "en", Text: "hello"})),
			want:  MultilingualMismatch,
			after: "hello",
		},
		{
			name:   "datatype",
			prop:   &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeInteger},
			holder: types.NewSingleValueHolder(types.StringValue("abc")),
			want:   DatatypeMismatch,
			after:  "",
		},
		{
			name:   "hidden",
			prop:   &types.Property{Name: "a", Kinds: attr, Datatype: types.DatatypeInteger, Hidden: true, DefaultValue: &def},
			holder: types.NewSingleValueHolder(types.StringValue("7")),
			want:   HiddenAttributeMismatch,
			after:  "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{tt.prop}})
			pc := types.NewProductCmpt("Basic", "Coverage")
			require.NoError(t, pc.AddPropertyValue(types.NewAttributeValue("a", tt.holder)))

			d := Compute(pc, p)
			require.Equal(t, 1, d.Len(), describe(d))
			assert.Equal(t, tt.want, d.Entries()[0].Type())

			fixAndRecompute(t, pc, p)
			assert.Equal(t, tt.after, stored(t, pc, "a"))
		})
	}
}

func TestValueSetMismatch(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{{
		Name:     "sum",
		Kinds:    []types.PropertyValueKind{types.KindConfiguredValueSet},
		Datatype: types.DatatypeInteger,
		ValueSet: &types.EnumValueSet{Values: []string{"1", "2"}},
	}}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	require.NoError(t, pc.AddPropertyValue(types.NewConfiguredValueSet("sum", &types.RangeValueSet{Lower: "1"})))

	d := Compute(pc, p)
	require.Len(t, d.EntriesOf(ValueSetMismatch), 1)

	fixAndRecompute(t, pc, p)
	pv, _ := pc.PropertyValue("sum", types.KindConfiguredValueSet)
	assert.Equal(t, types.ValueSetEnum, pv.(*types.ConfiguredValueSet).ValueSet().Type())
}

func TestLinkEntries(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Product", Associations: []*types.Association{
		{Name: "coverages", TargetType: "Coverage", Kind: types.AssociationAggregation, MaxCardinality: types.CardinalityMany,
			ChangingOverTime: true, Policy: &types.PolicyAssociation{Name: "policyCoverages", MaxCardinality: 2}},
		{Name: "tariff", TargetType: "Tariff", Kind: types.AssociationAssociation, MaxCardinality: 1},
	}})
	pc := types.NewProductCmpt("Product", "Product")
	g, err := pc.NewGeneration(day("2024-01-01"))
	require.NoError(t, err)

	gone, err := pc.NewLink("removed", "X")
	require.NoError(t, err)
	misplaced, err := pc.NewLink("coverages", "A")
	require.NoError(t, err)
	misplaced.SetCardinality(0, 5, 0)
	wide, err := g.NewLink("coverages", "B")
	require.NoError(t, err)
	wide.SetCardinality(1, types.CardinalityMany, 9)
	timed, err := g.NewLink("tariff", "T")
	require.NoError(t, err)

	d := Compute(pc, p)
	assert.Len(t, d.EntriesOf(LinkWithoutAssociation), 1)
	assert.Len(t, d.EntriesOf(LinkChangingOverTimeMismatch), 2)
	assert.Len(t, d.EntriesOf(CardinalityMismatch), 1)

	fixAndRecompute(t, pc, p)
	assert.Nil(t, gone.Container())
	assert.Same(t, g, misplaced.Container())
	assert.Equal(t, 2, misplaced.MaxCardinality())
	assert.Equal(t, []int{1, 2, 2}, []int{wide.MinCardinality(), wide.MaxCardinality(), wide.DefaultCardinality()})
	assert.Same(t, pc, timed.Container())
}

func TestTemplateLinkEntries(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Product", Associations: []*types.Association{
		{Name: "coverages", TargetType: "Coverage", Kind: types.AssociationAggregation, MaxCardinality: types.CardinalityMany},
	}})
	tmpl := types.NewProductCmpt("Template", "Product")
	tmpl.SetIsTemplate(true)
	_, err := tmpl.NewLink("coverages", "A")
	require.NoError(t, err)
	require.NoError(t, p.AddProductCmpt(tmpl))

	pc := types.NewProductCmpt("Product", "Product")
	pc.SetTemplate("Template")
	inherited, err := pc.NewLink("coverages", "B")
	require.NoError(t, err)
	inherited.SetTemplateValueStatus(types.TemplateInherited)
	undefined, err := pc.NewLink("coverages", "C")
	require.NoError(t, err)
	undefined.SetTemplateValueStatus(types.TemplateUndefined)
	require.NoError(t, p.AddProductCmpt(pc))

	engine := NewEngine(p, template.NewResolver(p, nil, nil), nil)
	d := engine.Compute(pc)
	assert.Len(t, d.EntriesOf(MissingTemplateLink), 1)
	assert.Len(t, d.EntriesOf(RemovedTemplateLink), 2)

	require.NoError(t, d.Fix())
	assert.True(t, engine.Compute(pc).IsEmpty())

	assert.Equal(t, types.TemplateDefined, inherited.TemplateValueStatus())
	assert.Nil(t, undefined.Container())
	added := pc.LinksFor("coverages")
	require.Len(t, added, 2)
	assert.Equal(t, "A", added[1].Target())
	assert.Equal(t, types.TemplateInherited, added[1].TemplateValueStatus())
}

func TestMissingValueInheritsWhenTemplateExists(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "sum", Kinds: attr, Datatype: types.DatatypeInteger},
	}})
	tmpl := types.NewProductCmpt("Template", "Coverage")
	tmpl.SetIsTemplate(true)
	addValue(t, tmpl, "sum", types.StringValue("1000"))
	require.NoError(t, p.AddProductCmpt(tmpl))
	pc := types.NewProductCmpt("Basic", "Coverage")
	pc.SetTemplate("Template")
	require.NoError(t, p.AddProductCmpt(pc))

	fixAndRecompute(t, pc, p)
	pv, ok := pc.PropertyValue("sum", types.KindAttributeValue)
	require.True(t, ok)
	assert.Equal(t, types.TemplateInherited, pv.TemplateValueStatus())
}

func TestUnknownTypeYieldsEmptyDelta(t *testing.T) {
	p := types.NewMemoryProject()
	pc := types.NewProductCmpt("Basic", "Gone")
	addValue(t, pc, "x", types.StringValue("1"))

	d := Compute(pc, p)
	assert.True(t, d.IsEmpty())
	assert.NoError(t, d.Fix())
}

func TestFixBatchesNotifications(t *testing.T) {
	p := newProject(t, &types.ProductCmptType{Name: "Coverage", Properties: []*types.Property{
		{Name: "a", Kinds: attr, Datatype: types.DatatypeString},
		{Name: "b", Kinds: attr, Datatype: types.DatatypeString},
	}})
	pc := types.NewProductCmpt("Basic", "Coverage")
	var events []types.ContentChangeEvent
	pc.AddListener(func(ev types.ContentChangeEvent) { events = append(events, ev) })

	require.NoError(t, Compute(pc, p).Fix())
	require.Len(t, events, 1)
	assert.True(t, events[0].Batch)
}
