package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Build converts the model into an in-memory project. Types and components
// are added in file order; duplicate names fail.
func (m *Model) Build() (*types.MemoryProject, error) {
	p := types.NewMemoryProject()
	if m.Settings != nil {
		p.SetSettings(*m.Settings)
	}
	for i := range m.Types {
		t, err := m.Types[i].Build()
		if err != nil {
			return nil, err
		}
		if err := p.AddType(t); err != nil {
			return nil, err
		}
	}
	for i := range m.Components {
		pc, err := m.Components[i].Build(p.Settings().Locale())
		if err != nil {
			return nil, err
		}
		if err := p.AddProductCmpt(pc); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Build converts the definition into a type.
func (d *TypeDef) Build() (*types.ProductCmptType, error) {
	t := &types.ProductCmptType{
		Name:      d.Name,
		Supertype: d.Supertype,
		Abstract:  d.Abstract,
	}
	for i := range d.Properties {
		p, err := d.Properties[i].build()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", d.Name, err)
		}
		t.Properties = append(t.Properties, p)
	}
	for i := range d.Associations {
		a, err := d.Associations[i].build()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", d.Name, err)
		}
		t.Associations = append(t.Associations, a)
	}
	return t, nil
}

func (d *PropertyDef) build() (*types.Property, error) {
	p := &types.Property{
		Name:             d.Name,
		Description:      d.Description,
		ChangingOverTime: d.ChangingOverTime,
		Datatype:         d.Datatype,
		MultiValue:       d.MultiValue,
		Multilingual:     d.Multilingual,
		Hidden:           d.Hidden,
	}
	if d.Default != nil {
		v := *d.Default
		p.DefaultValue = &v
	}
	if len(d.Kinds) == 0 {
		p.Kinds = []types.PropertyValueKind{types.KindAttributeValue}
	}
	for _, s := range d.Kinds {
		k, err := types.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", d.Name, err)
		}
		p.Kinds = append(p.Kinds, k)
	}
	if d.ValueSet != nil {
		vs, err := d.ValueSet.Build()
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", d.Name, err)
		}
		p.ValueSet = vs
	}
	return p, nil
}

// Build converts the definition into a value set.
func (d *ValueSetDef) Build() (types.ValueSet, error) {
	t, err := types.ParseValueSetType(d.Type)
	if err != nil {
		return nil, err
	}
	switch t {
	case types.ValueSetEnum:
		return &types.EnumValueSet{Values: slices.Clone(d.Values), IncludesNull: d.IncludeNull}, nil
	case types.ValueSetRange:
		return &types.RangeValueSet{Lower: d.Lower, Upper: d.Upper, Step: d.Step, IncludesNull: d.IncludeNull}, nil
	}
	return &types.UnrestrictedValueSet{IncludesNull: d.IncludeNull}, nil
}

func (d *AssociationDef) build() (*types.Association, error) {
	kind := types.AssociationAssociation
	if d.Kind != "" {
		k, err := types.ParseAssociationKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("association %s: %w", d.Name, err)
		}
		kind = k
	}
	maxCard, err := parseCardinality(d.Max, types.CardinalityMany)
	if err != nil {
		return nil, fmt.Errorf("association %s: %w", d.Name, err)
	}
	a := &types.Association{
		Name:             d.Name,
		TargetType:       d.Target,
		Kind:             kind,
		MinCardinality:   d.Min,
		MaxCardinality:   maxCard,
		ChangingOverTime: d.ChangingOverTime,
		DerivedUnion:     d.DerivedUnion,
	}
	if d.Policy != nil {
		pmax, err := parseCardinality(d.Policy.Max, types.CardinalityMany)
		if err != nil {
			return nil, fmt.Errorf("association %s policy: %w", d.Name, err)
		}
		a.Policy = &types.PolicyAssociation{
			Name:           d.Policy.Name,
			MinCardinality: d.Policy.Min,
			MaxCardinality: pmax,
			Qualified:      d.Policy.Qualified,
		}
	}
	return a, nil
}

// Build converts the definition into a product component. locale is used
// for multilingual texts without an explicit locale.
func (d *ComponentDef) Build(locale string) (*types.ProductCmpt, error) {
	pc := types.NewProductCmpt(d.Name, d.Type)
	pc.SetTemplate(d.Template)
	pc.SetIsTemplate(d.IsTemplate)
	if d.ValidFrom != "" {
		t, err := types.ParseDate(d.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", d.Name, err)
		}
		pc.SetValidFrom(t)
	}
	if err := fill(pc, d.Values, d.Links); err != nil {
		return nil, fmt.Errorf("component %s: %w", d.Name, err)
	}
	for i := range d.Generations {
		gd := &d.Generations[i]
		t, err := types.ParseDate(gd.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", d.Name, err)
		}
		g, err := pc.NewGeneration(t)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", d.Name, err)
		}
		if err := fill(g, gd.Values, gd.Links); err != nil {
			return nil, fmt.Errorf("generation %s: %w", g.Name(), err)
		}
	}
	return pc, nil
}

func fill(c types.PropertyValueContainer, values []ValueDef, links []LinkDef) error {
	for i := range values {
		pv, err := values[i].build()
		if err != nil {
			return err
		}
		if err := c.AddPropertyValue(pv); err != nil {
			return fmt.Errorf("value %s: %w", values[i].Name, err)
		}
	}
	for i := range links {
		l, err := links[i].build()
		if err != nil {
			return err
		}
		if err := c.AddLink(l); err != nil {
			return fmt.Errorf("link %s: %w", links[i].Association, err)
		}
	}
	return nil
}

func (d *ValueDef) build() (types.PropertyValue, error) {
	kind := types.KindAttributeValue
	if d.Kind != "" {
		k, err := types.ParseKind(d.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	status, err := types.ParseTemplateValueStatus(d.Status)
	if err != nil {
		return nil, err
	}

	var pv types.PropertyValue
	switch kind {
	case types.KindAttributeValue:
		pv = types.NewAttributeValue(d.Name, d.holder())
	case types.KindConfiguredValueSet:
		var vs types.ValueSet
		if d.ValueSet != nil {
			if vs, err = d.ValueSet.Build(); err != nil {
				return nil, fmt.Errorf("value %s: %w", d.Name, err)
			}
		}
		pv = types.NewConfiguredValueSet(d.Name, vs)
	case types.KindValidationRuleConfig:
		active := true
		if d.Active != nil {
			active = *d.Active
		}
		pv = types.NewValidationRuleConfig(d.Name, active)
	case types.KindTableContentUsage:
		pv = types.NewTableContentUsage(d.Name, d.Table)
	case types.KindFormula:
		pv = types.NewFormula(d.Name, d.Expression)
	}
	pv.SetTemplateValueStatus(status)
	return pv, nil
}

func (d *ValueDef) holder() types.ValueHolder {
	if len(d.Values) > 0 || d.Multi {
		values := make([]types.Value, 0, len(d.Values))
		for _, v := range d.Values {
			values = append(values, types.StringValue(v))
		}
		return types.NewMultiValueHolder(values...)
	}
	if len(d.Texts) > 0 {
		texts := make([]types.LocalizedString, 0, len(d.Texts))
		for _, locale := range slices.Sorted(maps.Keys(d.Texts)) {
			texts = append(texts, types.LocalizedString{Locale: locale, Text: d.Texts[locale]})
		}
		return types.NewSingleValueHolder(types.NewInternationalString(texts...))
	}
	if d.Value == nil {
		return types.NewNullValueHolder()
	}
	return types.NewSingleValueHolder(types.StringValue(*d.Value))
}

func (d *LinkDef) build() (*types.Link, error) {
	maxCard, err := parseCardinality(d.Max, 1)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", d.Association, err)
	}
	status, err := types.ParseTemplateValueStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", d.Association, err)
	}
	def := d.Min
	if d.Default != nil {
		def = *d.Default
	}
	return types.RestoreLink("", d.Association, d.Target, d.Min, maxCard, def, status), nil
}
