package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueSetContains(t *testing.T) {
	integer, _ := LookupDatatype(DatatypeInteger)
	decimal, _ := LookupDatatype(DatatypeDecimal)
	tests := []struct {
		name  string
		vs    ValueSet
		dt    Datatype
		value *string
		want  bool
	}{
		{"unrestricted parsable", &UnrestrictedValueSet{}, integer, strptr("3"), true},
		{"unrestricted unparsable", &UnrestrictedValueSet{}, integer, strptr("x"), false},
		{"unrestricted null", &UnrestrictedValueSet{IncludesNull: true}, integer, nil, true},
		{"enum member", &EnumValueSet{Values: []string{"1", "2"}}, integer, strptr("2"), true},
		{"enum numeric equality", &EnumValueSet{Values: []string{"1.0"}}, decimal, strptr("1"), true},
		{"enum non member", &EnumValueSet{Values: []string{"1", "2"}}, integer, strptr("3"), false},
		{"enum without datatype", &EnumValueSet{Values: []string{"a"}}, Datatype{}, strptr("a"), true},
		{"range inside", &RangeValueSet{Lower: "1", Upper: "10"}, integer, strptr("10"), true},
		{"range below", &RangeValueSet{Lower: "1", Upper: "10"}, integer, strptr("0"), false},
		{"range open upper", &RangeValueSet{Lower: "1"}, integer, strptr("1000"), true},
		{"range step hit", &RangeValueSet{Lower: "0.5", Upper: "2", Step: "0.5"}, decimal, strptr("1.5"), true},
		{"range step miss", &RangeValueSet{Lower: "0.5", Upper: "2", Step: "0.5"}, decimal, strptr("1.25"), false},
		{"range null excluded", &RangeValueSet{Lower: "1"}, integer, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.vs.Contains(tt.value, tt.dt))
		})
	}
}

func TestSameShape(t *testing.T) {
	enum := &EnumValueSet{Values: []string{"a"}}
	rng := &RangeValueSet{Lower: "1"}

	assert.True(t, SameShape(nil, enum), "unrestricted declaration accepts any shape")
	assert.True(t, SameShape(enum, &EnumValueSet{}))
	assert.False(t, SameShape(enum, rng))
	assert.False(t, SameShape(rng, nil))
}

func TestParseValueSetType(t *testing.T) {
	for _, vt := range []ValueSetType{ValueSetUnrestricted, ValueSetEnum, ValueSetRange} {
		got, err := ParseValueSetType(vt.String())
		assert.NoError(t, err)
		assert.Equal(t, vt, got)
	}
	_, err := ParseValueSetType("bogus")
	assert.ErrorIs(t, err, ErrUnknownValueSet)
}
