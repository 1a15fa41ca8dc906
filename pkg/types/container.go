package types

import (
	"fmt"
	"slices"
	"time"
)

// PropertyValueContainer holds property values and links. It is a
// *ProductCmpt or a *Generation.
type PropertyValueContainer interface {
	Name() string
	ProductCmpt() *ProductCmpt
	// IsChangingOverTime is true for generations.
	IsChangingOverTime() bool
	// IsContainerFor reports whether the container is responsible for
	// properties and associations with the given timing flag.
	IsContainerFor(changingOverTime bool) bool

	PropertyValues() []PropertyValue
	PropertyValuesFor(name string) []PropertyValue
	PropertyValue(name string, kind PropertyValueKind) (PropertyValue, bool)
	AddPropertyValue(pv PropertyValue) error
	RemovePropertyValue(pv PropertyValue) bool

	Links() []*Link
	LinksFor(association string) []*Link
	// AddLink attaches l. Duplicate targets are accepted so that stored
	// data can be loaded and validated.
	AddLink(l *Link) error
	// NewLink creates and attaches a link, rejecting duplicate targets.
	NewLink(association, target string) (*Link, error)
	RemoveLink(l *Link) bool

	core() *container
}

// container is the shared state of components and generations. Values keep
// insertion order.
type container struct {
	self   PropertyValueContainer
	owner  *ProductCmpt
	values []PropertyValue
	links  []*Link
}

func (c *container) ProductCmpt() *ProductCmpt { return c.owner }
func (c *container) core() *container          { return c }

func (c *container) IsContainerFor(changingOverTime bool) bool {
	return c.self.IsChangingOverTime() == changingOverTime
}

func (c *container) PropertyValues() []PropertyValue {
	return slices.Clone(c.values)
}

func (c *container) PropertyValuesFor(name string) []PropertyValue {
	var out []PropertyValue
	for _, pv := range c.values {
		if pv.PropertyName() == name {
			out = append(out, pv)
		}
	}
	return out
}

func (c *container) PropertyValue(name string, kind PropertyValueKind) (PropertyValue, bool) {
	for _, pv := range c.values {
		if pv.PropertyName() == name && pv.Kind() == kind {
			return pv, true
		}
	}
	return nil, false
}

func (c *container) AddPropertyValue(pv PropertyValue) error {
	b := pv.base()
	if b.name == "" {
		return ErrInvalidName
	}
	if b.container != nil {
		return fmt.Errorf("adding %s %q: %w", pv.Kind(), b.name, ErrAttached)
	}
	if _, ok := c.PropertyValue(b.name, pv.Kind()); ok {
		return fmt.Errorf("adding %s %q: %w", pv.Kind(), b.name, ErrDuplicateName)
	}
	b.container = c.self
	c.values = append(c.values, pv)
	c.changed(b.name)
	return nil
}

func (c *container) RemovePropertyValue(pv PropertyValue) bool {
	i := slices.Index(c.values, pv)
	if i < 0 {
		return false
	}
	c.values = slices.Delete(c.values, i, i+1)
	pv.base().container = nil
	c.changed(pv.PropertyName())
	return true
}

func (c *container) Links() []*Link {
	return slices.Clone(c.links)
}

func (c *container) LinksFor(association string) []*Link {
	var out []*Link
	for _, l := range c.links {
		if l.association == association {
			out = append(out, l)
		}
	}
	return out
}

func (c *container) AddLink(l *Link) error {
	if l.container != nil {
		return fmt.Errorf("adding link %s: %w", l.association, ErrAttached)
	}
	l.container = c.self
	c.links = append(c.links, l)
	c.changed(l.association)
	return nil
}

func (c *container) NewLink(association, target string) (*Link, error) {
	for _, l := range c.links {
		if l.association == association && l.target == target {
			return nil, fmt.Errorf("linking %s to %s: %w", association, target, ErrDuplicateLink)
		}
	}
	l := NewLink(association, target)
	if err := c.AddLink(l); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *container) RemoveLink(l *Link) bool {
	i := slices.Index(c.links, l)
	if i < 0 {
		return false
	}
	c.links = slices.Delete(c.links, i, i+1)
	l.container = nil
	c.changed(l.association)
	return true
}

func (c *container) changed(name string) {
	if c.owner != nil {
		c.owner.fire(ContentChangeEvent{ProductCmpt: c.owner, Container: c.self, PropertyName: name})
	}
}

// MovePropertyValue detaches pv, renames it to newName and attaches it to
// to. On failure pv is returned to its original container.
func MovePropertyValue(pv PropertyValue, to PropertyValueContainer, newName string) error {
	from := pv.Container()
	if from == nil {
		return ErrNotAttached
	}
	b := pv.base()
	oldName := b.name
	from.RemovePropertyValue(pv)
	b.name = newName
	if err := to.AddPropertyValue(pv); err != nil {
		b.name = oldName
		b.container = nil
		from.core().values = append(from.core().values, pv)
		b.container = from
		return fmt.Errorf("moving %q to %s: %w", oldName, to.Name(), err)
	}
	return nil
}

// MoveLink detaches l and attaches it to to.
func MoveLink(l *Link, to PropertyValueContainer) error {
	from := l.container
	if from == nil {
		return ErrNotAttached
	}
	from.RemoveLink(l)
	return to.AddLink(l)
}

// ContentChangeEvent reports a mutation of a component or one of its
// generations. Batch events stand for every change made inside one
// BatchChanges call and carry no container.
type ContentChangeEvent struct {
	ProductCmpt  *ProductCmpt
	Container    PropertyValueContainer
	PropertyName string
	Batch        bool
}

// ProductCmpt is a configured instance of a product component type.
type ProductCmpt struct {
	container
	name        string
	typeName    string
	template    string
	isTemplate  bool
	validFrom   time.Time
	generations []*Generation

	listeners []func(ContentChangeEvent)
	batch     int
	pending   bool
}

// Generation is the time slice of a component effective from ValidFrom.
type Generation struct {
	container
	validFrom time.Time
}

var (
	_ PropertyValueContainer = (*ProductCmpt)(nil)
	_ PropertyValueContainer = (*Generation)(nil)
)

// NewProductCmpt returns an empty component of typeName.
func NewProductCmpt(name, typeName string) *ProductCmpt {
	pc := &ProductCmpt{name: name, typeName: typeName}
	pc.self = pc
	pc.owner = pc
	return pc
}

func (pc *ProductCmpt) Name() string             { return pc.name }
func (pc *ProductCmpt) TypeName() string         { return pc.typeName }
func (pc *ProductCmpt) Template() string         { return pc.template }
func (pc *ProductCmpt) IsTemplate() bool         { return pc.isTemplate }
func (pc *ProductCmpt) ValidFrom() time.Time     { return pc.validFrom }
func (pc *ProductCmpt) IsChangingOverTime() bool { return false }

// UsesTemplate reports whether the component names a template.
func (pc *ProductCmpt) UsesTemplate() bool {
	return pc.template != ""
}

// SetTypeName changes the component's type.
func (pc *ProductCmpt) SetTypeName(typeName string) {
	if pc.typeName == typeName {
		return
	}
	pc.typeName = typeName
	pc.changed("")
}

// SetTemplate changes the template the component inherits from. Empty
// removes the template.
func (pc *ProductCmpt) SetTemplate(template string) {
	if pc.template == template {
		return
	}
	pc.template = template
	pc.changed("")
}

// SetIsTemplate marks the component as a template for others.
func (pc *ProductCmpt) SetIsTemplate(isTemplate bool) {
	if pc.isTemplate == isTemplate {
		return
	}
	pc.isTemplate = isTemplate
	pc.changed("")
}

// SetValidFrom changes the date the component becomes effective.
func (pc *ProductCmpt) SetValidFrom(t time.Time) {
	t = dateOf(t)
	if pc.validFrom.Equal(t) {
		return
	}
	pc.validFrom = t
	pc.changed("")
}

// Generations returns the generations ordered by valid-from date.
func (pc *ProductCmpt) Generations() []*Generation {
	return slices.Clone(pc.generations)
}

// NewGeneration adds a generation effective from validFrom.
func (pc *ProductCmpt) NewGeneration(validFrom time.Time) (*Generation, error) {
	validFrom = dateOf(validFrom)
	i, found := slices.BinarySearchFunc(pc.generations, validFrom, func(g *Generation, t time.Time) int {
		return g.validFrom.Compare(t)
	})
	if found {
		return nil, fmt.Errorf("generation %s of %s: %w", validFrom.Format(time.DateOnly), pc.name, ErrDuplicateName)
	}
	g := &Generation{validFrom: validFrom}
	g.self = g
	g.owner = pc
	pc.generations = slices.Insert(pc.generations, i, g)
	pc.changed("")
	return g, nil
}

// RemoveGeneration deletes g from the component.
func (pc *ProductCmpt) RemoveGeneration(g *Generation) bool {
	i := slices.Index(pc.generations, g)
	if i < 0 {
		return false
	}
	pc.generations = slices.Delete(pc.generations, i, i+1)
	pc.changed("")
	return true
}

// GenerationEffectiveOn returns the latest generation valid on t.
func (pc *ProductCmpt) GenerationEffectiveOn(t time.Time) (*Generation, bool) {
	t = dateOf(t)
	for i := len(pc.generations) - 1; i >= 0; i-- {
		if !pc.generations[i].validFrom.After(t) {
			return pc.generations[i], true
		}
	}
	return nil, false
}

// LatestGeneration returns the generation with the latest valid-from date.
func (pc *ProductCmpt) LatestGeneration() (*Generation, bool) {
	if len(pc.generations) == 0 {
		return nil, false
	}
	return pc.generations[len(pc.generations)-1], true
}

// Containers returns the component followed by its generations.
func (pc *ProductCmpt) Containers() []PropertyValueContainer {
	out := make([]PropertyValueContainer, 0, len(pc.generations)+1)
	out = append(out, pc)
	for _, g := range pc.generations {
		out = append(out, g)
	}
	return out
}

// AddListener registers fn for content change events.
func (pc *ProductCmpt) AddListener(fn func(ContentChangeEvent)) {
	pc.listeners = append(pc.listeners, fn)
}

// BatchChanges runs fn and reports every change it makes as one batch
// event. Nested calls join the outer batch.
func (pc *ProductCmpt) BatchChanges(fn func() error) error {
	var err error
	pc.Batch(func() { err = fn() })
	return err
}

// Batch is BatchChanges for edits that cannot fail.
func (pc *ProductCmpt) Batch(fn func()) {
	pc.batch++
	fn()
	pc.batch--
	if pc.batch == 0 && pc.pending {
		pc.pending = false
		pc.notify(ContentChangeEvent{ProductCmpt: pc, Batch: true})
	}
}

func (pc *ProductCmpt) fire(ev ContentChangeEvent) {
	if pc.batch > 0 {
		pc.pending = true
		return
	}
	pc.notify(ev)
}

func (pc *ProductCmpt) notify(ev ContentChangeEvent) {
	for _, fn := range pc.listeners {
		fn(ev)
	}
}

func (g *Generation) Name() string {
	return g.owner.name + "@" + g.validFrom.Format(time.DateOnly)
}

func (g *Generation) ValidFrom() time.Time     { return g.validFrom }
func (g *Generation) IsChangingOverTime() bool { return true }

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
