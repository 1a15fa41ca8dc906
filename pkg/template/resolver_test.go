package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

var sumProp = &types.Property{
	Name:     "sum",
	Kinds:    []types.PropertyValueKind{types.KindAttributeValue},
	Datatype: types.DatatypeInteger,
}

type fixture struct {
	project  *types.MemoryProject
	resolver *Resolver
	cache    *Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{project: types.NewMemoryProject(), cache: NewCache(DefaultExpiration, DefaultCleanupInterval, nil)}
	f.resolver = NewResolver(f.project, f.cache, nil)
	return f
}

func (f *fixture) cmpt(t *testing.T, name, template string, isTemplate bool, sum types.Value, status types.TemplateValueStatus) *types.AttributeValue {
	t.Helper()
	pc := types.NewProductCmpt(name, "Coverage")
	pc.SetTemplate(template)
	pc.SetIsTemplate(isTemplate)
	av := types.NewAttributeValue("sum", types.NewSingleValueHolder(sum))
	av.SetTemplateValueStatus(status)
	require.NoError(t, pc.AddPropertyValue(av))
	require.NoError(t, f.project.AddProductCmpt(pc))
	f.resolver.Watch(pc)
	return av
}

func value(h types.ValueHolder) string {
	return h.StringValue()
}

func TestEffectiveFollowsChain(t *testing.T) {
	f := newFixture(t)
	f.cmpt(t, "T2", "", true, types.StringValue("100"), types.TemplateDefined)
	f.cmpt(t, "T1", "T2", true, types.StringValue("50"), types.TemplateInherited)
	av := f.cmpt(t, "P", "T1", false, types.StringValue("1"), types.TemplateInherited)

	assert.Equal(t, "100", value(f.resolver.EffectiveValueHolder(av, sumProp)))
}

func TestEffectiveDefinedAndUndefined(t *testing.T) {
	f := newFixture(t)
	f.cmpt(t, "T", "", true, types.StringValue("100"), types.TemplateDefined)
	av := f.cmpt(t, "P", "T", false, types.StringValue("7"), types.TemplateDefined)

	assert.Equal(t, "7", value(f.resolver.EffectiveValueHolder(av, sumProp)))

	av.SetTemplateValueStatus(types.TemplateUndefined)
	h := f.resolver.EffectiveValueHolder(av, sumProp)
	assert.True(t, h.IsNullValue(), "undefined never consults the template")
}

func TestEffectiveBrokenChainFallsBack(t *testing.T) {
	f := newFixture(t)
	tmpl := f.cmpt(t, "T", "", true, types.StringValue("100"), types.TemplateDefined)
	av := f.cmpt(t, "P", "T", false, types.StringValue("42"), types.TemplateInherited)
	require.Equal(t, "100", value(f.resolver.EffectiveValueHolder(av, sumProp)))

	av.Container().ProductCmpt().SetTemplate("Renamed")
	assert.Equal(t, "42", value(f.resolver.EffectiveValueHolder(av, sumProp)))

	msgs := f.resolver.ValidateTemplate(av.Container().ProductCmpt())
	assert.Equal(t, 1, msgs.Count(MsgTemplateNotFound))
	assert.Equal(t, 1, msgs.Count(MsgInheritedValueFallback))

	av.Container().ProductCmpt().SetTemplate("T")
	tmpl.ValueHolder().(*types.SingleValueHolder).SetValue(types.StringValue("200"))
	assert.Equal(t, "200", value(f.resolver.EffectiveValueHolder(av, sumProp)), "cache drops entries on change")
}

func TestSetTemplateValueStatusSnapshots(t *testing.T) {
	f := newFixture(t)
	f.cmpt(t, "T", "", true, types.StringValue("100"), types.TemplateDefined)
	av := f.cmpt(t, "P", "T", false, nil, types.TemplateInherited)
	var events []types.ContentChangeEvent
	av.Container().ProductCmpt().AddListener(func(ev types.ContentChangeEvent) { events = append(events, ev) })

	f.resolver.SetTemplateValueStatus(av, types.TemplateDefined, sumProp)

	assert.Equal(t, types.TemplateDefined, av.TemplateValueStatus())
	assert.Equal(t, "100", av.ValueHolder().StringValue())
	require.Len(t, events, 1, "snapshot and status change arrive as one batch")
	assert.True(t, events[0].Batch)
}

func TestValidateTemplateCycle(t *testing.T) {
	f := newFixture(t)
	f.cmpt(t, "A", "B", true, nil, types.TemplateInherited)
	f.cmpt(t, "B", "A", true, nil, types.TemplateInherited)
	av := f.cmpt(t, "P", "A", false, types.StringValue("5"), types.TemplateInherited)

	msgs := f.resolver.ValidateTemplate(av.Container().ProductCmpt())
	assert.Equal(t, 1, msgs.Count(MsgTemplateCycle))
	assert.Equal(t, "5", value(f.resolver.EffectiveValueHolder(av, sumProp)), "resolution terminates on the cycle")
}

func TestValidateTemplateNotATemplate(t *testing.T) {
	f := newFixture(t)
	f.cmpt(t, "T", "", false, types.StringValue("1"), types.TemplateDefined)
	av := f.cmpt(t, "P", "T", false, nil, types.TemplateInherited)

	msgs := f.resolver.ValidateTemplate(av.Container().ProductCmpt())
	assert.Equal(t, 1, msgs.Count(MsgTemplateNotATemplate))
	assert.Equal(t, 0, msgs.Count(MsgInheritedValueFallback))
}

func TestTemplateLinks(t *testing.T) {
	f := newFixture(t)
	tmpl := types.NewProductCmpt("T", "Coverage")
	tmpl.SetIsTemplate(true)
	tl, err := tmpl.NewLink("parts", "X")
	require.NoError(t, err)
	tl.SetCardinality(1, 3, 2)
	require.NoError(t, f.project.AddProductCmpt(tmpl))

	pc := types.NewProductCmpt("P", "Coverage")
	pc.SetTemplate("T")
	l, err := pc.NewLink("parts", "X")
	require.NoError(t, err)
	l.SetTemplateValueStatus(types.TemplateInherited)
	u, err := pc.NewLink("parts", "Y")
	require.NoError(t, err)
	u.SetTemplateValueStatus(types.TemplateUndefined)
	require.NoError(t, f.project.AddProductCmpt(pc))

	assert.Same(t, tl, f.resolver.EffectiveLink(l))
	assert.Equal(t, []*types.Link{l}, f.resolver.EffectiveLinks(pc))

	links, ok := f.resolver.TemplateLinks(pc)
	require.True(t, ok)
	assert.Equal(t, []*types.Link{tl}, links)

	f.resolver.SetLinkTemplateValueStatus(l, types.TemplateDefined)
	assert.Equal(t, 3, l.MaxCardinality())
	assert.Equal(t, 2, l.DefaultCardinality())
}
