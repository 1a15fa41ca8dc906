package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAddPropertyValue(t *testing.T) {
	pc := NewProductCmpt("Basic", "Coverage")
	require.NoError(t, pc.AddPropertyValue(NewAttributeValue("sum", nil)))
	require.NoError(t, pc.AddPropertyValue(NewFormula("sum", "a+b")), "same name with another kind")

	err := pc.AddPropertyValue(NewAttributeValue("sum", nil))
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = pc.AddPropertyValue(NewAttributeValue("", nil))
	assert.ErrorIs(t, err, ErrInvalidName)

	pv, ok := pc.PropertyValue("sum", KindFormula)
	require.True(t, ok)
	assert.Same(t, pc, pv.Container())
	assert.Len(t, pc.PropertyValuesFor("sum"), 2)

	other := NewProductCmpt("Other", "Coverage")
	assert.ErrorIs(t, other.AddPropertyValue(pv), ErrAttached)
}

func TestContentChangeEvents(t *testing.T) {
	pc := NewProductCmpt("Basic", "Coverage")
	av := NewAttributeValue("sum", NewSingleValueHolder(StringValue("1")))
	require.NoError(t, pc.AddPropertyValue(av))

	var events []ContentChangeEvent
	pc.AddListener(func(ev ContentChangeEvent) { events = append(events, ev) })

	av.ValueHolder().(*SingleValueHolder).SetValue(StringValue("1"))
	assert.Empty(t, events, "identical value raises nothing")

	av.ValueHolder().(*SingleValueHolder).SetValue(StringValue("2"))
	require.Len(t, events, 1)
	assert.Equal(t, "sum", events[0].PropertyName)
	assert.Same(t, pc, events[0].ProductCmpt)

	events = nil
	err := pc.BatchChanges(func() error {
		av.SetTemplateValueStatus(TemplateInherited)
		av.ValueHolder().(*SingleValueHolder).SetValue(StringValue("3"))
		_, err := pc.NewLink("coverages", "Other")
		return err
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Batch)

	events = nil
	pc.Batch(func() {
		av.ValueHolder().(*SingleValueHolder).SetValue(StringValue("4"))
		av.SetTemplateValueStatus(TemplateDefined)
	})
	require.Len(t, events, 1)
	assert.True(t, events[0].Batch)

	events = nil
	pc.Batch(func() {})
	assert.Empty(t, events, "an empty batch raises nothing")
}

func TestNewLinkRejectsDuplicateTarget(t *testing.T) {
	pc := NewProductCmpt("Basic", "Coverage")
	_, err := pc.NewLink("parts", "A")
	require.NoError(t, err)
	_, err = pc.NewLink("parts", "A")
	assert.ErrorIs(t, err, ErrDuplicateLink)

	require.NoError(t, pc.AddLink(NewLink("parts", "A")), "loading tolerates duplicates")
	assert.Len(t, pc.LinksFor("parts"), 2)
}

func TestGenerations(t *testing.T) {
	pc := NewProductCmpt("Basic", "Coverage")
	g2, err := pc.NewGeneration(date("2025-01-01"))
	require.NoError(t, err)
	g1, err := pc.NewGeneration(date("2024-01-01"))
	require.NoError(t, err)
	_, err = pc.NewGeneration(date("2024-01-01"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.Equal(t, []*Generation{g1, g2}, pc.Generations())
	assert.Equal(t, "Basic@2024-01-01", g1.Name())

	got, ok := pc.GenerationEffectiveOn(date("2024-06-30"))
	require.True(t, ok)
	assert.Same(t, g1, got)

	_, ok = pc.GenerationEffectiveOn(date("2023-12-31"))
	assert.False(t, ok)

	latest, ok := pc.LatestGeneration()
	require.True(t, ok)
	assert.Same(t, g2, latest)

	assert.True(t, g1.IsContainerFor(true))
	assert.False(t, pc.IsContainerFor(true))
	assert.Len(t, pc.Containers(), 3)
}

func TestMovePropertyValue(t *testing.T) {
	pc := NewProductCmpt("Basic", "Coverage")
	g, err := pc.NewGeneration(date("2024-01-01"))
	require.NoError(t, err)
	av := NewAttributeValue("x", NewSingleValueHolder(StringValue("v")))
	require.NoError(t, pc.AddPropertyValue(av))

	require.NoError(t, MovePropertyValue(av, g, "y"))
	assert.Empty(t, pc.PropertyValues())
	got, ok := g.PropertyValue("y", KindAttributeValue)
	require.True(t, ok)
	assert.Same(t, av, got)
	assert.Same(t, g, av.Container())

	require.NoError(t, g.AddPropertyValue(NewAttributeValue("z", nil)))
	err = MovePropertyValue(av, g, "z")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, "y", av.PropertyName())
	assert.Same(t, g, av.Container())
}
