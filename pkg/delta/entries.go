package delta

import (
	"fmt"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

type fixer interface {
	apply() error
}

type base struct {
	typ       Type
	container types.PropertyValueContainer
	name      string
	env       *env
}

func (b *base) Type() Type                              { return b.typ }
func (b *base) Container() types.PropertyValueContainer { return b.container }
func (b *base) Name() string                            { return b.name }
func (b *base) Predecessor() Entry                      { return nil }

// fix runs apply on e inside one batch, after its predecessor.
func fix(e Entry) error {
	return e.Container().ProductCmpt().BatchChanges(func() error {
		if p := e.Predecessor(); p != nil {
			if err := p.Fix(); err != nil {
				return err
			}
		}
		return e.(fixer).apply()
	})
}

func (b *base) owns(pv types.PropertyValue) bool {
	return pv.Container() == b.container
}

// missingEntry: a responsible container lacks a value of a declared kind.
type missingEntry struct {
	base
	kind types.PropertyValueKind
	prop *types.Property
	pred *orphanEntry
}

func (m *missingEntry) Predecessor() Entry {
	if m.pred == nil {
		return nil
	}
	return m.pred
}

func (m *missingEntry) Description() string {
	if m.pred != nil {
		return fmt.Sprintf("%s %s is missing; the value of %s will be moved here", m.kind, m.name, m.pred.name)
	}
	return fmt.Sprintf("%s %s is missing", m.kind, m.name)
}

func (m *missingEntry) Fix() error { return fix(m) }

func (m *missingEntry) apply() error {
	if _, ok := m.container.PropertyValue(m.name, m.kind); ok {
		return nil
	}
	pv, err := types.NewDefaultPropertyValue(m.prop, m.kind, m.env.locale)
	if err != nil {
		return err
	}
	if m.container.ProductCmpt().UsesTemplate() {
		if _, ok := m.env.resolver.TemplatedContainer(m.container); ok {
			pv.SetTemplateValueStatus(types.TemplateInherited)
		}
	}
	return m.container.AddPropertyValue(pv)
}

// orphanEntry: a held value whose property is gone or lives on the other
// timing role. Its successors receive the value before it is removed.
type orphanEntry struct {
	base
	pv         types.PropertyValue
	prop       *types.Property
	successors []*missingEntry
}

func (o *orphanEntry) Description() string {
	if o.prop == nil {
		return fmt.Sprintf("%s %s has no property", o.pv.Kind(), o.name)
	}
	role := "component"
	if o.prop.ChangingOverTime {
		role = "generations"
	}
	return fmt.Sprintf("%s %s belongs on the %s", o.pv.Kind(), o.name, role)
}

func (o *orphanEntry) Fix() error { return fix(o) }

func (o *orphanEntry) apply() error {
	// A relocated value may still sit in this container under its new name.
	if !o.owns(o.pv) || o.pv.PropertyName() != o.name {
		return nil
	}
	if len(o.successors) == 1 {
		s := o.successors[0]
		if _, taken := s.container.PropertyValue(s.name, s.kind); !taken {
			if err := types.MovePropertyValue(o.pv, s.container, s.name); err != nil {
				return err
			}
			o.env.logger.Debug("property value relocated", "from", o.name, "to", s.name, "container", s.container.Name())
			conformValue(o.pv, s.prop, o.env.locale)
			return nil
		}
	}
	for _, s := range o.successors {
		if _, taken := s.container.PropertyValue(s.name, s.kind); taken {
			continue
		}
		c := types.CopyAs(o.pv, s.name)
		if err := s.container.AddPropertyValue(c); err != nil {
			return err
		}
		conformValue(c, s.prop, o.env.locale)
	}
	o.container.RemovePropertyValue(o.pv)
	return nil
}

// removeValueEntry: a value of a kind its property does not declare.
type removeValueEntry struct {
	base
	pv   types.PropertyValue
	prop *types.Property
}

func (r *removeValueEntry) Description() string {
	return fmt.Sprintf("%s does not declare %s values", r.name, r.pv.Kind())
}

func (r *removeValueEntry) Fix() error { return fix(r) }

func (r *removeValueEntry) apply() error {
	if r.owns(r.pv) {
		r.container.RemovePropertyValue(r.pv)
	}
	return nil
}

// conformEntry: an attribute value whose holder shape or content no longer
// fits the attribute. Every attribute mismatch applies the same conversion.
type conformEntry struct {
	base
	av   *types.AttributeValue
	prop *types.Property
}

func (c *conformEntry) Description() string {
	switch c.typ {
	case MultiValueMismatch:
		if c.prop.MultiValue {
			return fmt.Sprintf("%s is multi-valued but holds a single value", c.name)
		}
		return fmt.Sprintf("%s is single-valued but holds multiple values", c.name)
	case MultilingualMismatch:
		if c.prop.Multilingual {
			return fmt.Sprintf("%s is multilingual but holds plain text", c.name)
		}
		return fmt.Sprintf("%s is not multilingual but holds international text", c.name)
	case DatatypeMismatch:
		return fmt.Sprintf("%s holds values that are not valid %s", c.name, c.prop.Datatype)
	case HiddenAttributeMismatch:
		return fmt.Sprintf("%s is hidden and must hold its default value", c.name)
	}
	return c.typ.String()
}

func (c *conformEntry) Fix() error { return fix(c) }

func (c *conformEntry) apply() error {
	if c.owns(c.av) {
		conform(c.av, c.prop, c.env.locale)
	}
	return nil
}

// valueSetEntry: a configured value set of another shape than declared.
type valueSetEntry struct {
	base
	cvs  *types.ConfiguredValueSet
	prop *types.Property
}

func (v *valueSetEntry) Description() string {
	return fmt.Sprintf("configured value set of %s is %s but %s is declared",
		v.name, v.cvs.ValueSet().Type(), types.EffectiveValueSet(v.prop.ValueSet).Type())
}

func (v *valueSetEntry) Fix() error { return fix(v) }

func (v *valueSetEntry) apply() error {
	if v.owns(v.cvs) {
		conformValue(v.cvs, v.prop, v.env.locale)
	}
	return nil
}

// removeLinkEntry: a link whose association no longer exists.
type removeLinkEntry struct {
	base
	link *types.Link
}

func (r *removeLinkEntry) Description() string {
	return fmt.Sprintf("link to %s uses the unknown association %s", r.link.Target(), r.name)
}

func (r *removeLinkEntry) Fix() error { return fix(r) }

func (r *removeLinkEntry) apply() error {
	if r.link.Container() == r.container {
		r.container.RemoveLink(r.link)
	}
	return nil
}

// timingEntry: a link stored on the wrong timing role.
type timingEntry struct {
	base
	link  *types.Link
	assoc *types.Association
}

func (t *timingEntry) Description() string {
	if t.assoc.ChangingOverTime {
		return fmt.Sprintf("link %s to %s belongs on the latest generation", t.name, t.link.Target())
	}
	return fmt.Sprintf("link %s to %s belongs on the component", t.name, t.link.Target())
}

func (t *timingEntry) Fix() error { return fix(t) }

func (t *timingEntry) apply() error {
	if t.link.Container() != t.container {
		return nil
	}
	pc := t.container.ProductCmpt()
	var to types.PropertyValueContainer = pc
	if t.assoc.ChangingOverTime {
		g, ok := pc.LatestGeneration()
		if !ok {
			t.container.RemoveLink(t.link)
			return nil
		}
		to = g
	}
	for _, l := range to.LinksFor(t.link.Association()) {
		if l.Target() == t.link.Target() {
			t.container.RemoveLink(t.link)
			return nil
		}
	}
	if t.assoc.Policy != nil {
		if minC, maxC, defC, changed := clampCardinality(t.link, t.assoc.Policy); changed {
			t.link.SetCardinality(minC, maxC, defC)
		}
	}
	return types.MoveLink(t.link, to)
}

// cardinalityEntry: a link range the policy association cannot satisfy.
type cardinalityEntry struct {
	base
	link   *types.Link
	policy *types.PolicyAssociation
}

func (c *cardinalityEntry) Description() string {
	return fmt.Sprintf("cardinality %d..%d of link %s to %s exceeds %s (max %d)",
		c.link.MinCardinality(), c.link.MaxCardinality(), c.name, c.link.Target(), c.policy.Name, c.policy.MaxCardinality)
}

func (c *cardinalityEntry) Fix() error { return fix(c) }

func (c *cardinalityEntry) apply() error {
	if minC, maxC, defC, changed := clampCardinality(c.link, c.policy); changed {
		c.link.SetCardinality(minC, maxC, defC)
	}
	return nil
}

// clampCardinality fits the link range into [0, policy max] and the default
// into the range.
func clampCardinality(l *types.Link, policy *types.PolicyAssociation) (minC, maxC, defC int, changed bool) {
	maxC = max(l.MaxCardinality(), 0)
	if policy.MaxCardinality != types.CardinalityMany && maxC > policy.MaxCardinality {
		maxC = policy.MaxCardinality
	}
	minC = min(max(l.MinCardinality(), 0), maxC)
	defC = min(max(l.DefaultCardinality(), minC), maxC)
	changed = minC != l.MinCardinality() || maxC != l.MaxCardinality() || defC != l.DefaultCardinality()
	return minC, maxC, defC, changed
}

// missingLinkEntry: a template link without local counterpart.
type missingLinkEntry struct {
	base
	template *types.Link
}

func (m *missingLinkEntry) Description() string {
	return fmt.Sprintf("template link %s to %s is missing", m.name, m.template.Target())
}

func (m *missingLinkEntry) Fix() error { return fix(m) }

func (m *missingLinkEntry) apply() error {
	for _, l := range m.container.LinksFor(m.template.Association()) {
		if l.Target() == m.template.Target() {
			return nil
		}
	}
	l := types.NewLink(m.template.Association(), m.template.Target())
	l.SetCardinality(m.template.MinCardinality(), m.template.MaxCardinality(), m.template.DefaultCardinality())
	l.SetTemplateValueStatus(types.TemplateInherited)
	return m.container.AddLink(l)
}

// removedLinkEntry: a non-defined link whose template counterpart is gone.
type removedLinkEntry struct {
	base
	link *types.Link
}

func (r *removedLinkEntry) Description() string {
	return fmt.Sprintf("link %s to %s is %s but the template no longer has it",
		r.name, r.link.Target(), r.link.TemplateValueStatus())
}

func (r *removedLinkEntry) Fix() error { return fix(r) }

func (r *removedLinkEntry) apply() error {
	if r.link.Container() != r.container {
		return nil
	}
	switch r.link.TemplateValueStatus() {
	case types.TemplateInherited:
		r.link.SetTemplateValueStatus(types.TemplateDefined)
	case types.TemplateUndefined:
		r.container.RemoveLink(r.link)
	}
	return nil
}

var (
	_ Entry = (*missingEntry)(nil)
	_ Entry = (*orphanEntry)(nil)
	_ Entry = (*removeValueEntry)(nil)
	_ Entry = (*conformEntry)(nil)
	_ Entry = (*valueSetEntry)(nil)
	_ Entry = (*removeLinkEntry)(nil)
	_ Entry = (*timingEntry)(nil)
	_ Entry = (*cardinalityEntry)(nil)
	_ Entry = (*missingLinkEntry)(nil)
	_ Entry = (*removedLinkEntry)(nil)
)
