package types

import (
	"fmt"

	"golang.org/x/text/language"
)

// Value holder message codes.
const (
	MsgValueNotParsable        = "VALUEHOLDER-VALUE_NOT_PARSABLE"
	MsgValueNotInValueSet      = "VALUEHOLDER-VALUE_NOT_IN_VALUESET"
	MsgInvalidValueType        = "VALUEHOLDER-INVALID_VALUE_TYPE"
	MsgNullNotAllowed          = "VALUEHOLDER-NULL_NOT_ALLOWED"
	MsgInvalidLocale           = "VALUEHOLDER-INVALID_LOCALE"
	MsgCantCheckValue          = "VALUEHOLDER-CANT_CHECK_VALUE"
	MsgDuplicateValue          = "VALUEHOLDER-DUPLICATE_VALUE"
	MsgContainsInvalidValue    = "VALUEHOLDER-CONTAINS_INVALID_VALUE"
	MsgContainsDuplicateValue  = "VALUEHOLDER-CONTAINS_DUPLICATE_VALUE"
	MsgValueNotInDeclaredSet   = "CONFIGUREDVALUESET-VALUE_NOT_IN_DECLARED_SET"
	MsgConfiguredSetShape      = "CONFIGUREDVALUESET-INVALID_SHAPE"
	propertyValue              = "value"
	propertyValues             = "values"
	propertyConfiguredValueSet = "valueSet"
)

// Validate checks the held value against the attribute's datatype, value set
// and multilingual flag.
func (h *SingleValueHolder) Validate(prop *Property, opts ValidationOptions) MessageList {
	return h.validate(prop, opts, NewObjectProperty(h, propertyValue))
}

func (h *SingleValueHolder) validate(prop *Property, opts ValidationOptions, at ObjectProperty) MessageList {
	var list MessageList
	dt, known := LookupDatatype(prop.Datatype)
	vs := EffectiveValueSet(prop.ValueSet)

	if h.value == nil {
		if !vs.ContainsNull() {
			list.Add(NewError(MsgValueNotInValueSet,
				fmt.Sprintf("null is not allowed for %s", prop.Name), at))
		}
		return list
	}

	switch v := h.value.(type) {
	case StringValue:
		if prop.Multilingual {
			list.Add(NewError(MsgInvalidValueType,
				fmt.Sprintf("%s requires international text", prop.Name), at))
			return list
		}
		if !known {
			list.Add(NewWarning(MsgCantCheckValue,
				fmt.Sprintf("datatype %q of %s is unknown", prop.Datatype, prop.Name), at))
			return list
		}
		s := string(v)
		if !dt.IsParsable(s) {
			list.Add(NewError(MsgValueNotParsable,
				fmt.Sprintf("%q is not a valid %s", s, dt.Name), at))
			return list
		}
		if !vs.Contains(&s, dt) {
			list.Add(NewError(MsgValueNotInValueSet,
				fmt.Sprintf("%q is not in the value set %s", s, vs), at))
		}
	case *InternationalStringValue:
		if !prop.Multilingual {
			list.Add(NewError(MsgInvalidValueType,
				fmt.Sprintf("%s does not accept international text", prop.Name), at))
			return list
		}
		for _, t := range v.texts {
			if _, err := language.Parse(t.Locale); err != nil {
				list.Add(NewError(MsgInvalidLocale,
					fmt.Sprintf("%q is not a valid locale", t.Locale), at))
			}
			if t.Text == opts.nullPresentation() && !vs.ContainsNull() {
				list.Add(NewError(MsgNullNotAllowed,
					fmt.Sprintf("null text for locale %s is not allowed for %s", t.Locale, prop.Name), at))
			}
		}
	}
	return list
}

// Validate checks every contained holder and reports duplicates. Each
// duplicated occurrence gets its own message and the holder gets one
// container-level message per condition.
func (m *MultiValueHolder) Validate(prop *Property, opts ValidationOptions) MessageList {
	var list, elements MessageList
	invalid := false
	for i, h := range m.holders {
		msgs := h.validate(prop, opts, ObjectProperty{Object: m, Property: propertyValues, Index: i})
		if msgs.ContainsErrors() {
			invalid = true
		}
		elements.AddAll(msgs)
	}

	seen := make(map[string][]int)
	var order []string
	for i, h := range m.holders {
		key := h.StringValue()
		if h.IsNullValue() {
			key = "\x00null"
		}
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], i)
	}
	duplicates := false
	for _, key := range order {
		idx := seen[key]
		if len(idx) < 2 {
			continue
		}
		duplicates = true
		for _, i := range idx {
			elements.Add(NewError(MsgDuplicateValue,
				fmt.Sprintf("value %q occurs %d times", m.holders[i].StringValue(), len(idx)),
				ObjectProperty{Object: m, Property: propertyValues, Index: i}))
		}
	}

	if invalid {
		list.Add(NewError(MsgContainsInvalidValue,
			fmt.Sprintf("%s contains invalid values", prop.Name), NewObjectProperty(m, propertyValues)))
	}
	if duplicates {
		list.Add(NewError(MsgContainsDuplicateValue,
			fmt.Sprintf("%s contains duplicate values", prop.Name), NewObjectProperty(m, propertyValues)))
	}
	list.AddAll(elements)
	return list
}
