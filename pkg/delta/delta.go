// Package delta compares product components with their current type and
// template and repairs the differences.
//
// Compute walks the type hierarchy once, then inspects every container of
// the component. Each mismatch becomes an Entry whose Fix moves the
// container toward the schema. Entries are never errors: a component whose
// type cannot be resolved simply yields an empty delta.
package delta

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/prodcfg/pkg/template"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Type classifies a delta entry.
type Type int

// Delta entry types.
const (
	MissingPropertyValue Type = iota + 1
	ValueWithoutProperty
	PropertyTypeMismatch
	ValueSetMismatch
	MultiValueMismatch
	MultilingualMismatch
	HiddenAttributeMismatch
	DatatypeMismatch
	CardinalityMismatch
	LinkWithoutAssociation
	LinkChangingOverTimeMismatch
	MissingTemplateLink
	RemovedTemplateLink
)

var typeNames = map[Type]string{
	MissingPropertyValue:         "MISSING_PROPERTY_VALUE",
	ValueWithoutProperty:         "VALUE_WITHOUT_PROPERTY",
	PropertyTypeMismatch:         "PROPERTY_TYPE_MISMATCH",
	ValueSetMismatch:             "VALUE_SET_MISMATCH",
	MultiValueMismatch:           "MULTI_VALUE_MISMATCH",
	MultilingualMismatch:         "MULTILINGUAL_MISMATCH",
	HiddenAttributeMismatch:      "HIDDEN_ATTRIBUTE_MISMATCH",
	DatatypeMismatch:             "DATATYPE_MISMATCH",
	CardinalityMismatch:          "CARDINALITY_MISMATCH",
	LinkWithoutAssociation:       "LINK_WITHOUT_ASSOCIATION",
	LinkChangingOverTimeMismatch: "LINK_CHANGING_OVER_TIME_MISMATCH",
	MissingTemplateLink:          "MISSING_TEMPLATE_LINK",
	RemovedTemplateLink:          "REMOVED_TEMPLATE_LINK",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Entry is one difference between a container and its type or template.
type Entry interface {
	Type() Type
	Container() types.PropertyValueContainer
	// Name is the property or association the entry concerns.
	Name() string
	Description() string
	// Predecessor is the entry that must be fixed before this one, or nil.
	Predecessor() Entry
	// Fix applies the repair. It fixes the predecessor first and does
	// nothing when the condition no longer holds.
	Fix() error
}

// Delta is the result of one computation.
type Delta struct {
	pc      *types.ProductCmpt
	entries []Entry
}

// Entries returns the entries in computation order.
func (d *Delta) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// IsEmpty reports whether the container conforms.
func (d *Delta) IsEmpty() bool {
	return len(d.entries) == 0
}

// Len returns the number of entries.
func (d *Delta) Len() int {
	return len(d.entries)
}

// EntriesOf returns the entries of type t.
func (d *Delta) EntriesOf(t Type) []Entry {
	var out []Entry
	for _, e := range d.entries {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Fix applies every entry inside one batch on the owning component. Entries
// run in computation order; an entry with a predecessor runs right after
// it, and no entry runs twice.
func (d *Delta) Fix() error {
	if d.pc == nil || d.IsEmpty() {
		return nil
	}
	done := make(map[Entry]bool, len(d.entries))
	var run func(e Entry) error
	run = func(e Entry) error {
		if done[e] {
			return nil
		}
		done[e] = true
		if p := e.Predecessor(); p != nil {
			if err := run(p); err != nil {
				return err
			}
		}
		if err := e.(fixer).apply(); err != nil {
			return fmt.Errorf("fixing %s %s on %s: %w", e.Type(), e.Name(), e.Container().Name(), err)
		}
		return nil
	}
	return d.pc.BatchChanges(func() error {
		for _, e := range d.entries {
			if err := run(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Engine computes deltas against a project.
type Engine struct {
	project  types.Project
	resolver *template.Resolver
	logger   *slog.Logger
}

// NewEngine returns an engine. A nil resolver gets an uncached one, and a
// nil logger uses slog.Default.
func NewEngine(project types.Project, resolver *template.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = template.NewResolver(project, nil, logger)
	}
	return &Engine{project: project, resolver: resolver, logger: logger}
}

// Compute returns the delta of c against the project. For a component the
// delta covers the component and all its generations.
func Compute(c types.PropertyValueContainer, project types.Project) *Delta {
	return NewEngine(project, nil, nil).Compute(c)
}

// Compute returns the delta of c. For a component the delta covers the
// component and all its generations; for a generation only the generation.
func (e *Engine) Compute(c types.PropertyValueContainer) *Delta {
	pc := c.ProductCmpt()
	d := &Delta{pc: pc}
	t, ok := e.project.FindType(pc.TypeName())
	if !ok {
		e.logger.Warn("product component type not found, delta skipped",
			"product_cmpt", pc.Name(), "type", pc.TypeName())
		return d
	}
	props, err := types.CollectProperties(e.project, t)
	if err != nil {
		e.logger.Warn("type hierarchy unusable, delta skipped", "product_cmpt", pc.Name(), "error", err)
		return d
	}
	assocs, err := types.CollectAssociations(e.project, t)
	if err != nil {
		e.logger.Warn("type hierarchy unusable, delta skipped", "product_cmpt", pc.Name(), "error", err)
		return d
	}

	comp := &computation{
		env: &env{
			resolver: e.resolver,
			locale:   e.project.Settings().Locale(),
			logger:   e.logger,
		},
		props:  props,
		assocs: assocs,
	}
	containers := []types.PropertyValueContainer{c}
	if c == types.PropertyValueContainer(pc) {
		containers = pc.Containers()
	}
	for _, pvc := range containers {
		comp.container(pvc)
	}
	comp.pair()
	d.entries = comp.entries
	for _, entry := range d.entries {
		e.logger.Debug("delta entry", "product_cmpt", pc.Name(), "container", entry.Container().Name(),
			"type", entry.Type().String(), "name", entry.Name())
	}
	return d
}

// env carries what fixes need beyond the container.
type env struct {
	resolver *template.Resolver
	locale   string
	logger   *slog.Logger
}

type computation struct {
	env     *env
	props   types.Index[*types.Property]
	assocs  types.Index[*types.Association]
	entries []Entry
	missing []*missingEntry
	orphans []*orphanEntry
}

func (comp *computation) add(e Entry) {
	comp.entries = append(comp.entries, e)
}

func (comp *computation) container(c types.PropertyValueContainer) {
	for _, prop := range comp.props.All() {
		if !c.IsContainerFor(prop.ChangingOverTime) {
			continue
		}
		for _, kind := range prop.Kinds {
			if _, ok := c.PropertyValue(prop.Name, kind); ok {
				continue
			}
			m := &missingEntry{base: comp.base(MissingPropertyValue, c, prop.Name), kind: kind, prop: prop}
			comp.missing = append(comp.missing, m)
			comp.add(m)
		}
	}

	for _, pv := range c.PropertyValues() {
		comp.propertyValue(c, pv)
	}
	for _, l := range c.Links() {
		comp.link(c, l)
	}
	comp.templateLinks(c)
}

func (comp *computation) base(t Type, c types.PropertyValueContainer, name string) base {
	return base{typ: t, container: c, name: name, env: comp.env}
}

func (comp *computation) propertyValue(c types.PropertyValueContainer, pv types.PropertyValue) {
	prop, ok := comp.props.Get(pv.PropertyName())
	if !ok || !c.IsContainerFor(prop.ChangingOverTime) {
		o := &orphanEntry{base: comp.base(ValueWithoutProperty, c, pv.PropertyName()), pv: pv, prop: prop}
		comp.orphans = append(comp.orphans, o)
		comp.add(o)
		return
	}
	if !prop.Allows(pv.Kind()) {
		comp.add(&removeValueEntry{base: comp.base(PropertyTypeMismatch, c, pv.PropertyName()), pv: pv, prop: prop})
		return
	}
	switch v := pv.(type) {
	case *types.AttributeValue:
		for _, t := range attributeMismatches(v.ValueHolder(), prop, comp.env.locale) {
			comp.add(&conformEntry{base: comp.base(t, c, pv.PropertyName()), av: v, prop: prop})
		}
	case *types.ConfiguredValueSet:
		if !types.SameShape(prop.ValueSet, v.ValueSet()) {
			comp.add(&valueSetEntry{base: comp.base(ValueSetMismatch, c, pv.PropertyName()), cvs: v, prop: prop})
		}
	case *types.ValidationRuleConfig, *types.TableContentUsage, *types.Formula:
	default:
		panic(fmt.Sprintf("delta: unhandled property value %T", pv))
	}
}

func (comp *computation) link(c types.PropertyValueContainer, l *types.Link) {
	assoc, ok := comp.assocs.Get(l.Association())
	if !ok {
		comp.add(&removeLinkEntry{base: comp.base(LinkWithoutAssociation, c, l.Association()), link: l})
		return
	}
	if !c.IsContainerFor(assoc.ChangingOverTime) {
		comp.add(&timingEntry{base: comp.base(LinkChangingOverTimeMismatch, c, l.Association()), link: l, assoc: assoc})
		return
	}
	if assoc.Policy != nil {
		if _, _, _, changed := clampCardinality(l, assoc.Policy); changed {
			comp.add(&cardinalityEntry{base: comp.base(CardinalityMismatch, c, l.Association()), link: l, policy: assoc.Policy})
		}
	}
}

func (comp *computation) templateLinks(c types.PropertyValueContainer) {
	tlinks, ok := comp.env.resolver.TemplateLinks(c)
	if !ok {
		return
	}
	has := func(links []*types.Link, assoc, target string) bool {
		for _, l := range links {
			if l.Association() == assoc && l.Target() == target {
				return true
			}
		}
		return false
	}
	local := c.Links()
	for _, tl := range tlinks {
		assoc, ok := comp.assocs.Get(tl.Association())
		if !ok || !c.IsContainerFor(assoc.ChangingOverTime) {
			continue
		}
		if !has(local, tl.Association(), tl.Target()) {
			comp.add(&missingLinkEntry{base: comp.base(MissingTemplateLink, c, tl.Association()), template: tl})
		}
	}
	for _, l := range local {
		if l.TemplateValueStatus() == types.TemplateDefined {
			continue
		}
		if !has(tlinks, l.Association(), l.Target()) {
			comp.add(&removedLinkEntry{base: comp.base(RemovedTemplateLink, c, l.Association()), link: l})
		}
	}
}

// pair links orphaned values with missing slots so the fix relocates
// instead of discarding. A missing entry takes an orphan of the same name
// and kind from another container of the component, preferring the latest
// container. Failing that, it takes the only unmatched orphan of its kind
// in its own container whose property no longer exists, provided it is also
// the only missing entry of that kind there.
func (comp *computation) pair() {
	for _, m := range comp.missing {
		var best *orphanEntry
		for _, o := range comp.orphans {
			if o.pv.PropertyName() == m.name && o.pv.Kind() == m.kind && o.container != m.container {
				best = o
			}
		}
		if best != nil {
			m.pred = best
			best.successors = append(best.successors, m)
		}
	}

	type slot struct {
		c    types.PropertyValueContainer
		kind types.PropertyValueKind
	}
	missingBySlot := make(map[slot][]*missingEntry)
	orphansBySlot := make(map[slot][]*orphanEntry)
	for _, m := range comp.missing {
		if m.pred == nil {
			s := slot{m.container, m.kind}
			missingBySlot[s] = append(missingBySlot[s], m)
		}
	}
	for _, o := range comp.orphans {
		if len(o.successors) == 0 && o.prop == nil {
			s := slot{o.container, o.pv.Kind()}
			orphansBySlot[s] = append(orphansBySlot[s], o)
		}
	}
	for _, m := range comp.missing {
		s := slot{m.container, m.kind}
		if m.pred != nil || len(missingBySlot[s]) != 1 || len(orphansBySlot[s]) != 1 {
			continue
		}
		o := orphansBySlot[s][0]
		m.pred = o
		o.successors = append(o.successors, m)
	}
}
