package types

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// ValueSetType is the shape of a value set.
type ValueSetType int

// Value set shapes.
const (
	ValueSetUnrestricted ValueSetType = iota
	ValueSetEnum
	ValueSetRange
)

var valueSetNames = map[ValueSetType]string{
	ValueSetUnrestricted: "unrestricted",
	ValueSetEnum:         "enum",
	ValueSetRange:        "range",
}

func (t ValueSetType) String() string {
	if s, ok := valueSetNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ValueSetType(%d)", int(t))
}

// ParseValueSetType parses the output of String.
func ParseValueSetType(s string) (ValueSetType, error) {
	for t, name := range valueSetNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownValueSet, s)
}

// ValueSet constrains the values an attribute may take. A nil value passed to
// Contains is the null value.
type ValueSet interface {
	Type() ValueSetType
	ContainsNull() bool
	// Contains reports membership of value. A zero Datatype compares values
	// as plain strings.
	Contains(value *string, dt Datatype) bool
	Copy() ValueSet
	Equal(other ValueSet) bool
	String() string
}

// UnrestrictedValueSet accepts every value of the datatype.
type UnrestrictedValueSet struct {
	IncludesNull bool
}

// EnumValueSet accepts a fixed list of values.
type EnumValueSet struct {
	Values       []string
	IncludesNull bool
}

// RangeValueSet accepts values between Lower and Upper on Step increments.
// Empty bounds are open and an empty Step accepts every value in between.
type RangeValueSet struct {
	Lower        string
	Upper        string
	Step         string
	IncludesNull bool
}

var (
	_ ValueSet = (*UnrestrictedValueSet)(nil)
	_ ValueSet = (*EnumValueSet)(nil)
	_ ValueSet = (*RangeValueSet)(nil)
)

func (v *UnrestrictedValueSet) Type() ValueSetType { return ValueSetUnrestricted }
func (v *UnrestrictedValueSet) ContainsNull() bool { return v.IncludesNull }

func (v *UnrestrictedValueSet) Contains(value *string, dt Datatype) bool {
	if value == nil {
		return v.IncludesNull
	}
	return dt.parse == nil || dt.IsParsable(*value)
}

func (v *UnrestrictedValueSet) Copy() ValueSet {
	c := *v
	return &c
}

func (v *UnrestrictedValueSet) Equal(other ValueSet) bool {
	o, ok := other.(*UnrestrictedValueSet)
	return ok && *o == *v
}

func (v *UnrestrictedValueSet) String() string {
	return "unrestricted" + nullSuffix(v.IncludesNull)
}

func (v *EnumValueSet) Type() ValueSetType { return ValueSetEnum }
func (v *EnumValueSet) ContainsNull() bool { return v.IncludesNull }

func (v *EnumValueSet) Contains(value *string, dt Datatype) bool {
	if value == nil {
		return v.IncludesNull
	}
	for _, candidate := range v.Values {
		if dt.parse == nil {
			if candidate == *value {
				return true
			}
			continue
		}
		if dt.Equal(candidate, *value) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every value and the null flag of other are
// members of v.
func (v *EnumValueSet) ContainsAll(other *EnumValueSet, dt Datatype) bool {
	if other.IncludesNull && !v.IncludesNull {
		return false
	}
	for _, val := range other.Values {
		if !v.Contains(&val, dt) {
			return false
		}
	}
	return true
}

func (v *EnumValueSet) Copy() ValueSet {
	return &EnumValueSet{Values: slices.Clone(v.Values), IncludesNull: v.IncludesNull}
}

func (v *EnumValueSet) Equal(other ValueSet) bool {
	o, ok := other.(*EnumValueSet)
	return ok && o.IncludesNull == v.IncludesNull && slices.Equal(o.Values, v.Values)
}

func (v *EnumValueSet) String() string {
	return "[" + strings.Join(v.Values, ", ") + "]" + nullSuffix(v.IncludesNull)
}

func (v *RangeValueSet) Type() ValueSetType { return ValueSetRange }
func (v *RangeValueSet) ContainsNull() bool { return v.IncludesNull }

func (v *RangeValueSet) Contains(value *string, dt Datatype) bool {
	if value == nil {
		return v.IncludesNull
	}
	if dt.parse == nil || !dt.IsParsable(*value) {
		return false
	}
	if v.Lower != "" {
		if c, err := dt.Compare(*value, v.Lower); err != nil || c < 0 {
			return false
		}
	}
	if v.Upper != "" {
		if c, err := dt.Compare(*value, v.Upper); err != nil || c > 0 {
			return false
		}
	}
	if v.Step == "" || v.Lower == "" {
		return true
	}
	step, ok := dt.rat(v.Step)
	if !ok || step.Sign() == 0 {
		return true
	}
	lower, _ := dt.rat(v.Lower)
	val, _ := dt.rat(*value)
	q := new(big.Rat).Quo(new(big.Rat).Sub(val, lower), step)
	return q.IsInt()
}

func (v *RangeValueSet) Copy() ValueSet {
	c := *v
	return &c
}

func (v *RangeValueSet) Equal(other ValueSet) bool {
	o, ok := other.(*RangeValueSet)
	return ok && *o == *v
}

func (v *RangeValueSet) String() string {
	s := fmt.Sprintf("%s..%s", v.Lower, v.Upper)
	if v.Step != "" {
		s += " step " + v.Step
	}
	return s + nullSuffix(v.IncludesNull)
}

func nullSuffix(includesNull bool) string {
	if includesNull {
		return " (incl. null)"
	}
	return ""
}

// EffectiveValueSet returns vs, or an unrestricted set including null when
// vs is nil.
func EffectiveValueSet(vs ValueSet) ValueSet {
	if vs == nil {
		return &UnrestrictedValueSet{IncludesNull: true}
	}
	return vs
}

// SameShape reports whether configured conforms to the shape of declared.
// Every shape conforms to an unrestricted declaration.
func SameShape(declared, configured ValueSet) bool {
	declared = EffectiveValueSet(declared)
	configured = EffectiveValueSet(configured)
	if declared.Type() == ValueSetUnrestricted {
		return true
	}
	return declared.Type() == configured.Type()
}
