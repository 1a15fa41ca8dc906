package element

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// EncodeValue encodes a possibly null value.
func EncodeValue(v types.Value) *Element {
	e := New(NameValue)
	switch v := v.(type) {
	case nil:
		e.Set("isNull", "true")
	case types.StringValue:
		s := string(v)
		e.Text = &s
	case *types.InternationalStringValue:
		e.Set("type", "international")
		for _, t := range v.Texts() {
			text := t.Text
			child := New(NameLocalizedString, "locale", t.Locale)
			child.Text = &text
			e.Append(child)
		}
	}
	return e
}

// DecodeValue decodes the output of EncodeValue.
func DecodeValue(e *Element) (types.Value, error) {
	if err := e.expect(NameValue); err != nil {
		return nil, err
	}
	if e.boolAttr("isNull") {
		return nil, nil
	}
	if e.Attr("type") == "international" {
		iv := types.NewInternationalString()
		for _, c := range e.ChildrenNamed(NameLocalizedString) {
			text := ""
			if c.Text != nil {
				text = *c.Text
			}
			iv.Set(c.Attr("locale"), text)
		}
		return iv, nil
	}
	if e.Text == nil {
		return types.StringValue(""), nil
	}
	return types.StringValue(*e.Text), nil
}

// EncodeValueHolder encodes a single or multi holder.
func EncodeValueHolder(h types.ValueHolder) *Element {
	if m, ok := h.(*types.MultiValueHolder); ok {
		e := New(NameValueHolder, "type", "multi")
		for _, s := range m.Holders() {
			e.Append(EncodeValueHolder(s))
		}
		return e
	}
	e := New(NameValueHolder, "type", "single")
	e.Append(EncodeValue(h.Values()[0]))
	return e
}

// DecodeValueHolder decodes the output of EncodeValueHolder.
func DecodeValueHolder(e *Element) (types.ValueHolder, error) {
	if err := e.expect(NameValueHolder); err != nil {
		return nil, err
	}
	switch e.Attr("type") {
	case "multi":
		var values []types.Value
		for _, c := range e.ChildrenNamed(NameValueHolder) {
			h, err := DecodeValueHolder(c)
			if err != nil {
				return nil, err
			}
			if h.IsMultiValue() {
				return nil, fmt.Errorf("%w: nested multi value holder", types.ErrInvalidData)
			}
			values = append(values, h.Values()[0])
		}
		return types.NewMultiValueHolder(values...), nil
	case "single", "":
		values := e.ChildrenNamed(NameValue)
		if len(values) > 1 {
			return nil, fmt.Errorf("decoding single value holder: %w", types.ErrMultipleValues)
		}
		var v types.Value
		if len(values) == 1 {
			var err error
			if v, err = DecodeValue(values[0]); err != nil {
				return nil, err
			}
		}
		return types.NewSingleValueHolder(v), nil
	}
	return nil, fmt.Errorf("%w: value holder type %q", types.ErrInvalidData, e.Attr("type"))
}

// EncodeValueSet encodes a value set. Nil encodes as unrestricted with null.
func EncodeValueSet(vs types.ValueSet) *Element {
	vs = types.EffectiveValueSet(vs)
	e := New(NameValueSet, "type", vs.Type().String(), "containsNull", formatBool(vs.ContainsNull()))
	switch vs := vs.(type) {
	case *types.EnumValueSet:
		for _, v := range vs.Values {
			text := v
			child := New(NameEnumValue)
			child.Text = &text
			e.Append(child)
		}
	case *types.RangeValueSet:
		e.Set("lower", vs.Lower)
		e.Set("upper", vs.Upper)
		e.Set("step", vs.Step)
	}
	return e
}

// DecodeValueSet decodes the output of EncodeValueSet.
func DecodeValueSet(e *Element) (types.ValueSet, error) {
	if err := e.expect(NameValueSet); err != nil {
		return nil, err
	}
	t, err := types.ParseValueSetType(e.Attr("type"))
	if err != nil {
		return nil, err
	}
	containsNull := e.boolAttr("containsNull")
	switch t {
	case types.ValueSetEnum:
		enum := &types.EnumValueSet{IncludesNull: containsNull}
		for _, c := range e.ChildrenNamed(NameEnumValue) {
			v := ""
			if c.Text != nil {
				v = *c.Text
			}
			enum.Values = append(enum.Values, v)
		}
		return enum, nil
	case types.ValueSetRange:
		return &types.RangeValueSet{
			Lower:        e.Attr("lower"),
			Upper:        e.Attr("upper"),
			Step:         e.Attr("step"),
			IncludesNull: containsNull,
		}, nil
	}
	return &types.UnrestrictedValueSet{IncludesNull: containsNull}, nil
}

// EncodePropertyValue encodes any property value kind.
func EncodePropertyValue(pv types.PropertyValue) *Element {
	e := New(pv.Kind().String(), "name", pv.PropertyName())
	if s := pv.TemplateValueStatus(); s != types.TemplateDefined {
		e.Set("templateValueStatus", s.String())
	}
	switch v := pv.(type) {
	case *types.AttributeValue:
		e.Append(EncodeValueHolder(v.ValueHolder()))
	case *types.ConfiguredValueSet:
		e.Append(EncodeValueSet(v.ValueSet()))
	case *types.ValidationRuleConfig:
		e.Set("active", strconv.FormatBool(v.Active()))
	case *types.TableContentUsage:
		e.Set("tableContent", v.TableContentName())
	case *types.Formula:
		expr := v.Expression()
		e.Text = &expr
		deps := v.DependsOn()
		for _, d := range v.SortedDependencies() {
			loc := deps[d]
			child := New(NameDependency, "kind", d.Kind, "target", d.Target,
				"object", loc.Object, "property", loc.Property)
			if loc.Line != 0 {
				child.Set("line", strconv.Itoa(loc.Line))
			}
			if loc.Column != 0 {
				child.Set("column", strconv.Itoa(loc.Column))
			}
			e.Append(child)
		}
	}
	return e
}

// DecodePropertyValue decodes the output of EncodePropertyValue.
func DecodePropertyValue(e *Element) (types.PropertyValue, error) {
	kind, err := types.ParseKind(e.Name)
	if err != nil {
		return nil, err
	}
	status, err := types.ParseTemplateValueStatus(e.Attr("templateValueStatus"))
	if err != nil {
		return nil, err
	}
	name := e.Attr("name")
	if name == "" {
		return nil, fmt.Errorf("%w: %s without name", types.ErrInvalidData, e.Name)
	}

	var pv types.PropertyValue
	switch kind {
	case types.KindAttributeValue:
		holders := e.ChildrenNamed(NameValueHolder)
		var h types.ValueHolder
		if len(holders) > 0 {
			if h, err = DecodeValueHolder(holders[0]); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", name, err)
			}
		}
		pv = types.NewAttributeValue(name, h)
	case types.KindConfiguredValueSet:
		var vs types.ValueSet
		if sets := e.ChildrenNamed(NameValueSet); len(sets) > 0 {
			if vs, err = DecodeValueSet(sets[0]); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", name, err)
			}
		}
		pv = types.NewConfiguredValueSet(name, vs)
	case types.KindValidationRuleConfig:
		pv = types.NewValidationRuleConfig(name, e.Attr("active") != "false")
	case types.KindTableContentUsage:
		pv = types.NewTableContentUsage(name, e.Attr("tableContent"))
	case types.KindFormula:
		expr := ""
		if e.Text != nil {
			expr = *e.Text
		}
		f := types.NewFormula(name, expr)
		deps := make(map[types.Dependency]types.DetailedLocation)
		for _, c := range e.ChildrenNamed(NameDependency) {
			line, err := c.intAttr("line", 0)
			if err != nil {
				return nil, err
			}
			column, err := c.intAttr("column", 0)
			if err != nil {
				return nil, err
			}
			deps[types.Dependency{Kind: c.Attr("kind"), Target: c.Attr("target")}] = types.DetailedLocation{
				Object: c.Attr("object"), Property: c.Attr("property"), Line: line, Column: column,
			}
		}
		if len(deps) > 0 {
			f.SetDependencies(deps)
		}
		pv = f
	}
	pv.SetTemplateValueStatus(status)
	return pv, nil
}

// EncodeLink encodes a link.
func EncodeLink(l *types.Link) *Element {
	e := New(NameLink,
		"id", l.ID(),
		"association", l.Association(),
		"target", l.Target(),
		"minCardinality", formatCardinality(l.MinCardinality()),
		"maxCardinality", formatCardinality(l.MaxCardinality()),
		"defaultCardinality", formatCardinality(l.DefaultCardinality()),
	)
	if s := l.TemplateValueStatus(); s != types.TemplateDefined {
		e.Set("templateValueStatus", s.String())
	}
	return e
}

// DecodeLink decodes the output of EncodeLink.
func DecodeLink(e *Element) (*types.Link, error) {
	if err := e.expect(NameLink); err != nil {
		return nil, err
	}
	minC, err := e.intAttr("minCardinality", 0)
	if err != nil {
		return nil, err
	}
	maxC, err := e.intAttr("maxCardinality", 1)
	if err != nil {
		return nil, err
	}
	defC, err := e.intAttr("defaultCardinality", 0)
	if err != nil {
		return nil, err
	}
	status, err := types.ParseTemplateValueStatus(e.Attr("templateValueStatus"))
	if err != nil {
		return nil, err
	}
	if e.Attr("association") == "" || e.Attr("target") == "" {
		return nil, fmt.Errorf("%w: link without association or target", types.ErrInvalidData)
	}
	return types.RestoreLink(e.Attr("id"), e.Attr("association"), e.Attr("target"), minC, maxC, defC, status), nil
}

func encodeContents(e *Element, c types.PropertyValueContainer) {
	for _, pv := range c.PropertyValues() {
		e.Append(EncodePropertyValue(pv))
	}
	for _, l := range c.Links() {
		e.Append(EncodeLink(l))
	}
}

func decodeContents(e *Element, c types.PropertyValueContainer) error {
	for _, child := range e.Children {
		switch child.Name {
		case NameGeneration:
			continue
		case NameLink:
			l, err := DecodeLink(child)
			if err != nil {
				return err
			}
			if err := c.AddLink(l); err != nil {
				return err
			}
		default:
			pv, err := DecodePropertyValue(child)
			if err != nil {
				return err
			}
			if err := c.AddPropertyValue(pv); err != nil {
				return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
			}
		}
	}
	return nil
}

// EncodeProductCmpt encodes a component with all its generations.
func EncodeProductCmpt(pc *types.ProductCmpt) *Element {
	e := New(NameProductCmpt,
		"name", pc.Name(),
		"type", pc.TypeName(),
		"template", pc.Template(),
		"isTemplate", formatBool(pc.IsTemplate()),
	)
	if !pc.ValidFrom().IsZero() {
		e.Set("validFrom", pc.ValidFrom().Format(time.DateOnly))
	}
	encodeContents(e, pc)
	for _, g := range pc.Generations() {
		ge := New(NameGeneration, "validFrom", g.ValidFrom().Format(time.DateOnly))
		encodeContents(ge, g)
		e.Append(ge)
	}
	return e
}

// DecodeProductCmpt decodes the output of EncodeProductCmpt.
func DecodeProductCmpt(e *Element) (*types.ProductCmpt, error) {
	if err := e.expect(NameProductCmpt); err != nil {
		return nil, err
	}
	if e.Attr("name") == "" {
		return nil, fmt.Errorf("%w: product component without name", types.ErrInvalidData)
	}
	pc := types.NewProductCmpt(e.Attr("name"), e.Attr("type"))
	pc.SetTemplate(e.Attr("template"))
	pc.SetIsTemplate(e.boolAttr("isTemplate"))
	if s := e.Attr("validFrom"); s != "" {
		t, err := types.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		pc.SetValidFrom(t)
	}
	if err := decodeContents(e, pc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", pc.Name(), err)
	}
	for _, ge := range e.ChildrenNamed(NameGeneration) {
		t, err := types.ParseDate(ge.Attr("validFrom"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		g, err := pc.NewGeneration(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		if err := decodeContents(ge, g); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", g.Name(), err)
		}
	}
	return pc, nil
}
