package delta

import "github.com/mesh-intelligence/prodcfg/pkg/types"

// attributeMismatches lists the mismatch types of holder h against prop.
func attributeMismatches(h types.ValueHolder, prop *types.Property, locale string) []Type {
	var out []Type
	if h.IsMultiValue() != prop.MultiValue {
		out = append(out, MultiValueMismatch)
	}
	values := h.Values()
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, intl := v.(*types.InternationalStringValue); intl != prop.Multilingual {
			out = append(out, MultilingualMismatch)
			break
		}
	}
	if dt, known := types.LookupDatatype(prop.Datatype); known && !prop.Hidden && !prop.Multilingual {
		for _, v := range values {
			if s, ok := v.(types.StringValue); ok && !dt.IsParsable(string(s)) {
				out = append(out, DatatypeMismatch)
				break
			}
		}
	}
	if prop.Hidden && !prop.DefaultValueEquals(h, locale) {
		out = append(out, HiddenAttributeMismatch)
	}
	return out
}

// conform rewrites the holder of av to fit prop. It converts between single
// and multi holders, between plain and international text, drops values
// that do not parse and forces the default on hidden attributes. Running it
// twice changes nothing.
func conform(av *types.AttributeValue, prop *types.Property, locale string) {
	h := av.ValueHolder()
	dt, known := types.LookupDatatype(prop.Datatype)

	var values []types.Value
	for _, v := range h.Values() {
		if prop.Multilingual {
			v = types.ToMultilingual(v, locale)
		} else {
			v = types.ToPlain(v, locale)
		}
		if s, ok := v.(types.StringValue); ok && known && !dt.IsParsable(string(s)) {
			v = nil
		}
		values = append(values, v)
	}

	var next types.ValueHolder
	switch {
	case prop.Hidden:
		next = prop.DefaultValueHolder(locale)
	case prop.MultiValue && h.IsMultiValue():
		next = types.NewMultiValueHolder(values...)
	case prop.MultiValue:
		var kept []types.Value
		for _, v := range values {
			if v != nil {
				kept = append(kept, v)
			}
		}
		next = types.NewMultiValueHolder(kept...)
	default:
		var first types.Value
		for _, v := range values {
			if v != nil {
				first = v
				break
			}
		}
		next = types.NewSingleValueHolder(first)
	}
	if !next.Equal(h) {
		av.SetValueHolder(next)
	}
}

// conformValue fits a relocated or mismatched value to its new property.
func conformValue(pv types.PropertyValue, prop *types.Property, locale string) {
	switch v := pv.(type) {
	case *types.AttributeValue:
		conform(v, prop, locale)
	case *types.ConfiguredValueSet:
		if !types.SameShape(prop.ValueSet, v.ValueSet()) {
			var vs types.ValueSet
			if prop.ValueSet != nil {
				vs = prop.ValueSet.Copy()
			}
			v.SetValueSet(vs)
		}
	case *types.ValidationRuleConfig, *types.TableContentUsage, *types.Formula:
	}
}
