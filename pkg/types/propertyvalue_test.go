package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultPropertyValue(t *testing.T) {
	prop := &Property{
		Name:         "label",
		Datatype:     DatatypeString,
		Multilingual: true,
		MultiValue:   true,
		DefaultValue: strptr("none"),
	}
	pv, err := NewDefaultPropertyValue(prop, KindAttributeValue, "de")
	require.NoError(t, err)

	av := pv.(*AttributeValue)
	want := NewMultiValueHolder(NewInternationalString(LocalizedString{Locale: "de", Text: "none"}))
	assert.True(t, want.Equal(av.ValueHolder()))

	_, err = NewPropertyValue(PropertyValueKind(99), "x")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPropertyValueCopy(t *testing.T) {
	f := NewFormula("premium", "sum * rate")
	f.SetDependencies(map[Dependency]DetailedLocation{
		{Kind: "attribute", Target: "rate"}: {Object: "Basic", Property: "premium"},
	})
	f.SetTemplateValueStatus(TemplateInherited)

	c := f.Copy()
	assert.True(t, f.ContentEqual(c))
	assert.Equal(t, TemplateInherited, c.TemplateValueStatus())
	assert.Nil(t, c.Container())
	assert.Equal(t, f.DependsOn(), c.(*Formula).DependsOn())
}

func TestConfiguredValueSetValidate(t *testing.T) {
	prop := &Property{Name: "color", Datatype: DatatypeString,
		ValueSet: &EnumValueSet{Values: []string{"red", "blue"}}}
	cvs := NewConfiguredValueSet("color", &EnumValueSet{Values: []string{"red", "pink"}, IncludesNull: true})

	msgs := cvs.Validate(prop)
	assert.Equal(t, 2, msgs.Count(MsgValueNotInDeclaredSet))
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("nope")
	assert.ErrorIs(t, err, ErrUnknownKind)

	s, err := ParseTemplateValueStatus("")
	require.NoError(t, err)
	assert.Equal(t, TemplateDefined, s)
}
