package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// FromType returns the definition that builds t.
func FromType(t *types.ProductCmptType) TypeDef {
	d := TypeDef{
		Name:      t.Name,
		Supertype: t.Supertype,
		Abstract:  t.Abstract,
	}
	for _, p := range t.Properties {
		pd := PropertyDef{
			Name:             p.Name,
			Description:      p.Description,
			ChangingOverTime: p.ChangingOverTime,
			Datatype:         p.Datatype,
			MultiValue:       p.MultiValue,
			Multilingual:     p.Multilingual,
			Hidden:           p.Hidden,
		}
		for _, k := range p.Kinds {
			pd.Kinds = append(pd.Kinds, k.String())
		}
		if p.DefaultValue != nil {
			v := *p.DefaultValue
			pd.Default = &v
		}
		if p.ValueSet != nil {
			pd.ValueSet = fromValueSet(p.ValueSet)
		}
		d.Properties = append(d.Properties, pd)
	}
	for _, a := range t.Associations {
		ad := AssociationDef{
			Name:             a.Name,
			Target:           a.TargetType,
			Kind:             a.Kind.String(),
			Min:              a.MinCardinality,
			Max:              formatCardinality(a.MaxCardinality),
			ChangingOverTime: a.ChangingOverTime,
			DerivedUnion:     a.DerivedUnion,
		}
		if a.Policy != nil {
			ad.Policy = &PolicyDef{
				Name:      a.Policy.Name,
				Min:       a.Policy.MinCardinality,
				Max:       formatCardinality(a.Policy.MaxCardinality),
				Qualified: a.Policy.Qualified,
			}
		}
		d.Associations = append(d.Associations, ad)
	}
	return d
}

func fromValueSet(vs types.ValueSet) *ValueSetDef {
	d := &ValueSetDef{Type: vs.Type().String(), IncludeNull: vs.ContainsNull()}
	switch vs := vs.(type) {
	case *types.EnumValueSet:
		d.Values = slices.Clone(vs.Values)
	case *types.RangeValueSet:
		d.Lower, d.Upper, d.Step = vs.Lower, vs.Upper, vs.Step
	}
	return d
}

// MarshalType encodes t as a JSON type document.
func MarshalType(t *types.ProductCmptType) ([]byte, error) {
	data, err := json.Marshal(FromType(t))
	if err != nil {
		return nil, fmt.Errorf("marshaling type %s: %w", t.Name, err)
	}
	return data, nil
}

// UnmarshalType decodes and validates a JSON type document.
func UnmarshalType(data []byte) (*types.ProductCmptType, error) {
	var d TypeDef
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if err := modelValidate.Struct(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return d.Build()
}
