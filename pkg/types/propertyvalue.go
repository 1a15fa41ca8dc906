package types

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// PropertyValue is the instance-level value of one property. The concrete
// types are *AttributeValue, *ConfiguredValueSet, *ValidationRuleConfig,
// *TableContentUsage and *Formula.
type PropertyValue interface {
	PropertyName() string
	Kind() PropertyValueKind
	TemplateValueStatus() TemplateValueStatus
	// SetTemplateValueStatus only flips the status. Use the template
	// resolver to snapshot inherited content first.
	SetTemplateValueStatus(s TemplateValueStatus)
	// Container is nil for detached values.
	Container() PropertyValueContainer
	// Copy returns a detached deep copy.
	Copy() PropertyValue
	// CopyContentFrom replaces the content with that of other, which must be
	// of the same kind. The status is left alone.
	CopyContentFrom(other PropertyValue)
	// ContentEqual compares content, ignoring name, status and container.
	ContentEqual(other PropertyValue) bool

	base() *propertyValueBase
}

type propertyValueBase struct {
	name      string
	status    TemplateValueStatus
	container PropertyValueContainer
}

func (b *propertyValueBase) PropertyName() string                     { return b.name }
func (b *propertyValueBase) TemplateValueStatus() TemplateValueStatus { return b.status }
func (b *propertyValueBase) Container() PropertyValueContainer        { return b.container }
func (b *propertyValueBase) base() *propertyValueBase                 { return b }

func (b *propertyValueBase) SetTemplateValueStatus(s TemplateValueStatus) {
	if b.status == s {
		return
	}
	b.status = s
	b.changed()
}

func (b *propertyValueBase) changed() {
	if b.container != nil {
		b.container.core().changed(b.name)
	}
}

// AttributeValue holds the value of an attribute.
type AttributeValue struct {
	propertyValueBase
	holder ValueHolder
}

// ConfiguredValueSet restricts the declared value set of an attribute for
// one component.
type ConfiguredValueSet struct {
	propertyValueBase
	valueSet ValueSet
}

// ValidationRuleConfig switches a validation rule on or off.
type ValidationRuleConfig struct {
	propertyValueBase
	active bool
}

// TableContentUsage names the table content used for a table structure.
type TableContentUsage struct {
	propertyValueBase
	tableContentName string
}

// Formula holds a formula expression and the dependencies extracted from it.
type Formula struct {
	propertyValueBase
	expression   string
	dependencies map[Dependency]DetailedLocation
}

// Dependency is an opaque reference produced by expression analysis.
type Dependency struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// DetailedLocation locates a dependency inside the owning object.
type DetailedLocation struct {
	Object   string `json:"object"`
	Property string `json:"property"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

var (
	_ PropertyValue = (*AttributeValue)(nil)
	_ PropertyValue = (*ConfiguredValueSet)(nil)
	_ PropertyValue = (*ValidationRuleConfig)(nil)
	_ PropertyValue = (*TableContentUsage)(nil)
	_ PropertyValue = (*Formula)(nil)
)

// NewAttributeValue returns a detached attribute value. A nil holder holds
// null.
func NewAttributeValue(name string, h ValueHolder) *AttributeValue {
	if h == nil {
		h = NewNullValueHolder()
	}
	av := &AttributeValue{propertyValueBase: propertyValueBase{name: name}, holder: h}
	h.setNotifier(av.changed)
	return av
}

func (a *AttributeValue) Kind() PropertyValueKind { return KindAttributeValue }

// ValueHolder returns the stored holder.
func (a *AttributeValue) ValueHolder() ValueHolder {
	return a.holder
}

// SetValueHolder replaces the holder. An equal holder is adopted without a
// notification.
func (a *AttributeValue) SetValueHolder(h ValueHolder) {
	if h == nil {
		h = NewNullValueHolder()
	}
	old := a.holder
	a.holder = h
	h.setNotifier(a.changed)
	if old != nil {
		old.setNotifier(nil)
		if old.Equal(h) {
			return
		}
	}
	a.changed()
}

// Validate validates the stored holder against prop.
func (a *AttributeValue) Validate(prop *Property, opts ValidationOptions) MessageList {
	return a.holder.Validate(prop, opts)
}

func (a *AttributeValue) Copy() PropertyValue {
	c := NewAttributeValue(a.name, a.holder.Copy())
	c.status = a.status
	return c
}

func (a *AttributeValue) CopyContentFrom(other PropertyValue) {
	a.SetValueHolder(other.(*AttributeValue).holder.Copy())
}

func (a *AttributeValue) ContentEqual(other PropertyValue) bool {
	o, ok := other.(*AttributeValue)
	return ok && a.holder.Equal(o.holder)
}

// NewConfiguredValueSet returns a detached configured value set. A nil value
// set is unrestricted.
func NewConfiguredValueSet(name string, vs ValueSet) *ConfiguredValueSet {
	return &ConfiguredValueSet{propertyValueBase: propertyValueBase{name: name}, valueSet: vs}
}

func (c *ConfiguredValueSet) Kind() PropertyValueKind { return KindConfiguredValueSet }

// ValueSet returns the configured set, never nil.
func (c *ConfiguredValueSet) ValueSet() ValueSet {
	return EffectiveValueSet(c.valueSet)
}

// SetValueSet replaces the configured set.
func (c *ConfiguredValueSet) SetValueSet(vs ValueSet) {
	if EffectiveValueSet(vs).Equal(c.ValueSet()) {
		return
	}
	c.valueSet = vs
	c.changed()
}

// Validate checks that a configured enum stays within the declared set.
func (c *ConfiguredValueSet) Validate(prop *Property) MessageList {
	var list MessageList
	enum, ok := c.ValueSet().(*EnumValueSet)
	if !ok {
		return list
	}
	dt, _ := LookupDatatype(prop.Datatype)
	declared := EffectiveValueSet(prop.ValueSet)
	at := NewObjectProperty(c, propertyConfiguredValueSet)
	for _, v := range enum.Values {
		if !declared.Contains(&v, dt) {
			list.Add(NewError(MsgValueNotInDeclaredSet,
				fmt.Sprintf("%q is not in the declared value set %s of %s", v, declared, prop.Name), at))
		}
	}
	if enum.IncludesNull && !declared.ContainsNull() {
		list.Add(NewError(MsgValueNotInDeclaredSet,
			fmt.Sprintf("null is not in the declared value set of %s", prop.Name), at))
	}
	return list
}

func (c *ConfiguredValueSet) Copy() PropertyValue {
	var vs ValueSet
	if c.valueSet != nil {
		vs = c.valueSet.Copy()
	}
	return &ConfiguredValueSet{propertyValueBase: propertyValueBase{name: c.name, status: c.status}, valueSet: vs}
}

func (c *ConfiguredValueSet) CopyContentFrom(other PropertyValue) {
	c.SetValueSet(other.(*ConfiguredValueSet).ValueSet().Copy())
}

func (c *ConfiguredValueSet) ContentEqual(other PropertyValue) bool {
	o, ok := other.(*ConfiguredValueSet)
	return ok && c.ValueSet().Equal(o.ValueSet())
}

// NewValidationRuleConfig returns a detached rule switch.
func NewValidationRuleConfig(name string, active bool) *ValidationRuleConfig {
	return &ValidationRuleConfig{propertyValueBase: propertyValueBase{name: name}, active: active}
}

func (r *ValidationRuleConfig) Kind() PropertyValueKind { return KindValidationRuleConfig }
func (r *ValidationRuleConfig) Active() bool            { return r.active }

// SetActive switches the rule.
func (r *ValidationRuleConfig) SetActive(active bool) {
	if r.active == active {
		return
	}
	r.active = active
	r.changed()
}

func (r *ValidationRuleConfig) Copy() PropertyValue {
	c := *r
	c.container = nil
	return &c
}

func (r *ValidationRuleConfig) CopyContentFrom(other PropertyValue) {
	r.SetActive(other.(*ValidationRuleConfig).active)
}

func (r *ValidationRuleConfig) ContentEqual(other PropertyValue) bool {
	o, ok := other.(*ValidationRuleConfig)
	return ok && o.active == r.active
}

// NewTableContentUsage returns a detached table usage.
func NewTableContentUsage(name, tableContent string) *TableContentUsage {
	return &TableContentUsage{propertyValueBase: propertyValueBase{name: name}, tableContentName: tableContent}
}

func (u *TableContentUsage) Kind() PropertyValueKind  { return KindTableContentUsage }
func (u *TableContentUsage) TableContentName() string { return u.tableContentName }

// SetTableContentName changes the used table content.
func (u *TableContentUsage) SetTableContentName(name string) {
	if u.tableContentName == name {
		return
	}
	u.tableContentName = name
	u.changed()
}

func (u *TableContentUsage) Copy() PropertyValue {
	c := *u
	c.container = nil
	return &c
}

func (u *TableContentUsage) CopyContentFrom(other PropertyValue) {
	u.SetTableContentName(other.(*TableContentUsage).tableContentName)
}

func (u *TableContentUsage) ContentEqual(other PropertyValue) bool {
	o, ok := other.(*TableContentUsage)
	return ok && o.tableContentName == u.tableContentName
}

// NewFormula returns a detached formula.
func NewFormula(name, expression string) *Formula {
	return &Formula{propertyValueBase: propertyValueBase{name: name}, expression: expression}
}

func (f *Formula) Kind() PropertyValueKind { return KindFormula }
func (f *Formula) Expression() string      { return f.expression }

// SetExpression replaces the expression. Dependencies are kept until the
// caller supplies new ones.
func (f *Formula) SetExpression(expr string) {
	if f.expression == expr {
		return
	}
	f.expression = expr
	f.changed()
}

// SetDependencies stores the dependency records extracted from the
// expression.
func (f *Formula) SetDependencies(deps map[Dependency]DetailedLocation) {
	f.dependencies = maps.Clone(deps)
}

// DependsOn returns the dependencies of the expression.
func (f *Formula) DependsOn() map[Dependency]DetailedLocation {
	out := make(map[Dependency]DetailedLocation, len(f.dependencies))
	maps.Copy(out, f.dependencies)
	return out
}

// SortedDependencies returns the dependencies ordered by kind and target.
func (f *Formula) SortedDependencies() []Dependency {
	deps := slices.Collect(maps.Keys(f.dependencies))
	slices.SortFunc(deps, func(a, b Dependency) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Target, b.Target))
	})
	return deps
}

func (f *Formula) Copy() PropertyValue {
	return &Formula{
		propertyValueBase: propertyValueBase{name: f.name, status: f.status},
		expression:        f.expression,
		dependencies:      maps.Clone(f.dependencies),
	}
}

func (f *Formula) CopyContentFrom(other PropertyValue) {
	o := other.(*Formula)
	f.SetDependencies(o.dependencies)
	f.SetExpression(o.expression)
}

func (f *Formula) ContentEqual(other PropertyValue) bool {
	o, ok := other.(*Formula)
	return ok && o.expression == f.expression && maps.Equal(o.dependencies, f.dependencies)
}

// NewPropertyValue returns a detached value of kind with empty content.
func NewPropertyValue(kind PropertyValueKind, name string) (PropertyValue, error) {
	switch kind {
	case KindAttributeValue:
		return NewAttributeValue(name, nil), nil
	case KindConfiguredValueSet:
		return NewConfiguredValueSet(name, nil), nil
	case KindValidationRuleConfig:
		return NewValidationRuleConfig(name, true), nil
	case KindTableContentUsage:
		return NewTableContentUsage(name, ""), nil
	case KindFormula:
		return NewFormula(name, ""), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
}

// NewDefaultPropertyValue returns a detached value of kind initialised from
// the property's defaults.
func NewDefaultPropertyValue(prop *Property, kind PropertyValueKind, locale string) (PropertyValue, error) {
	switch kind {
	case KindAttributeValue:
		return NewAttributeValue(prop.Name, prop.DefaultValueHolder(locale)), nil
	case KindConfiguredValueSet:
		var vs ValueSet
		if prop.ValueSet != nil {
			vs = prop.ValueSet.Copy()
		}
		return NewConfiguredValueSet(prop.Name, vs), nil
	}
	return NewPropertyValue(kind, prop.Name)
}

// CopyAs returns a detached copy of pv renamed to name.
func CopyAs(pv PropertyValue, name string) PropertyValue {
	c := pv.Copy()
	c.base().name = name
	return c
}
