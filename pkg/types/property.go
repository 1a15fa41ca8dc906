package types

import "slices"

// Property declares one configurable aspect of a product component type.
// Attribute-specific fields are ignored for the other kinds.
type Property struct {
	Name        string
	Description string

	// Kinds lists the property value kinds a responsible container must
	// hold for this property.
	Kinds []PropertyValueKind

	// ChangingOverTime places the values on generations instead of the
	// component itself.
	ChangingOverTime bool

	Datatype     string
	ValueSet     ValueSet // nil means unrestricted including null
	MultiValue   bool
	Multilingual bool
	Hidden       bool
	DefaultValue *string
}

// Allows reports whether kind is declared for the property.
func (p *Property) Allows(kind PropertyValueKind) bool {
	return slices.Contains(p.Kinds, kind)
}

// DefaultValueHolder returns a fresh holder with the default value shaped
// for the property's multiplicity and multilingual flag.
func (p *Property) DefaultValueHolder(locale string) ValueHolder {
	var v Value
	if p.DefaultValue != nil {
		v = StringValue(*p.DefaultValue)
		if p.Multilingual {
			v = ToMultilingual(v, locale)
		}
	}
	if p.MultiValue {
		if v == nil {
			return NewMultiValueHolder()
		}
		return NewMultiValueHolder(v)
	}
	return NewSingleValueHolder(v)
}

// DefaultValueEquals reports whether h holds exactly the property's default.
func (p *Property) DefaultValueEquals(h ValueHolder, locale string) bool {
	return p.DefaultValueHolder(locale).Equal(h)
}
