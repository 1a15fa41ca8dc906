package types

import (
	"cmp"
	"slices"
	"strings"
)

// ValueHolder wraps the content of an attribute value. It is either a
// *SingleValueHolder or a *MultiValueHolder.
type ValueHolder interface {
	IsMultiValue() bool
	// IsNullValue reports a single holder holding null. Multi holders are
	// never null.
	IsNullValue() bool
	// StringValue is the canonical text. Null yields the empty string; use
	// IsNullValue to tell them apart.
	StringValue() string
	// Values returns the contained values in order.
	Values() []Value
	// SetValues replaces the content. A single holder rejects more than one
	// value with ErrMultipleValues.
	SetValues(values []Value) error
	Equal(other ValueHolder) bool
	// Copy returns a detached deep copy.
	Copy() ValueHolder
	// Compare orders two holders by the named datatype, falling back to a
	// lexical compare when the datatype is unknown or a value does not parse.
	Compare(other ValueHolder, datatype string) int
	Validate(prop *Property, opts ValidationOptions) MessageList

	setNotifier(fn func())
}

// ValidationOptions parameterise value validation.
type ValidationOptions struct {
	NullPresentation string
}

func (o ValidationOptions) nullPresentation() string {
	if o.NullPresentation == "" {
		return NullPresentation
	}
	return o.NullPresentation
}

// SingleValueHolder holds one possibly null value.
type SingleValueHolder struct {
	value  Value
	notify func()
}

// MultiValueHolder holds an ordered list of single holders.
type MultiValueHolder struct {
	holders []*SingleValueHolder
	notify  func()
}

var (
	_ ValueHolder = (*SingleValueHolder)(nil)
	_ ValueHolder = (*MultiValueHolder)(nil)
)

// NewSingleValueHolder returns a holder for v. Pass nil for null.
func NewSingleValueHolder(v Value) *SingleValueHolder {
	return &SingleValueHolder{value: v}
}

// NewNullValueHolder returns a single holder holding null.
func NewNullValueHolder() *SingleValueHolder {
	return &SingleValueHolder{}
}

// Value returns the held value, nil for null.
func (h *SingleValueHolder) Value() Value {
	return h.value
}

// SetValue replaces the value. An equal value raises no notification.
func (h *SingleValueHolder) SetValue(v Value) {
	if ValuesEqual(h.value, v) {
		return
	}
	h.value = v
	if h.notify != nil {
		h.notify()
	}
}

func (h *SingleValueHolder) IsMultiValue() bool { return false }
func (h *SingleValueHolder) IsNullValue() bool  { return h.value == nil }

func (h *SingleValueHolder) StringValue() string {
	if h.value == nil {
		return ""
	}
	return h.value.Canonical()
}

func (h *SingleValueHolder) Values() []Value {
	return []Value{h.value}
}

func (h *SingleValueHolder) SetValues(values []Value) error {
	switch len(values) {
	case 0:
		h.SetValue(nil)
	case 1:
		h.SetValue(values[0])
	default:
		return ErrMultipleValues
	}
	return nil
}

func (h *SingleValueHolder) Equal(other ValueHolder) bool {
	o, ok := other.(*SingleValueHolder)
	return ok && ValuesEqual(h.value, o.value)
}

func (h *SingleValueHolder) Copy() ValueHolder {
	return &SingleValueHolder{value: CopyValue(h.value)}
}

func (h *SingleValueHolder) Compare(other ValueHolder, datatype string) int {
	return CompareValueHolders(h, other, datatype)
}

func (h *SingleValueHolder) setNotifier(fn func()) {
	h.notify = fn
}

// NewMultiValueHolder returns a multi holder over values.
func NewMultiValueHolder(values ...Value) *MultiValueHolder {
	m := &MultiValueHolder{}
	m.holders = m.wrap(values)
	return m
}

// Holders returns the contained single holders.
func (m *MultiValueHolder) Holders() []*SingleValueHolder {
	return slices.Clone(m.holders)
}

// SetHolders replaces the contained holders. An equal list raises no
// notification.
func (m *MultiValueHolder) SetHolders(holders []*SingleValueHolder) {
	if slices.EqualFunc(m.holders, holders, func(a, b *SingleValueHolder) bool { return a.Equal(b) }) {
		return
	}
	m.holders = slices.Clone(holders)
	for _, h := range m.holders {
		h.setNotifier(m.changed)
	}
	m.changed()
}

func (m *MultiValueHolder) wrap(values []Value) []*SingleValueHolder {
	holders := make([]*SingleValueHolder, len(values))
	for i, v := range values {
		holders[i] = &SingleValueHolder{value: v, notify: m.changed}
	}
	return holders
}

func (m *MultiValueHolder) changed() {
	if m.notify != nil {
		m.notify()
	}
}

func (m *MultiValueHolder) IsMultiValue() bool { return true }
func (m *MultiValueHolder) IsNullValue() bool  { return false }

func (m *MultiValueHolder) StringValue() string {
	parts := make([]string, len(m.holders))
	for i, h := range m.holders {
		parts[i] = h.StringValue()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (m *MultiValueHolder) Values() []Value {
	values := make([]Value, len(m.holders))
	for i, h := range m.holders {
		values[i] = h.value
	}
	return values
}

func (m *MultiValueHolder) SetValues(values []Value) error {
	m.SetHolders(m.wrap(values))
	return nil
}

func (m *MultiValueHolder) Equal(other ValueHolder) bool {
	o, ok := other.(*MultiValueHolder)
	if !ok {
		return false
	}
	return slices.EqualFunc(m.holders, o.holders, func(a, b *SingleValueHolder) bool { return a.Equal(b) })
}

func (m *MultiValueHolder) Copy() ValueHolder {
	c := &MultiValueHolder{}
	c.holders = make([]*SingleValueHolder, len(m.holders))
	for i, h := range m.holders {
		c.holders[i] = &SingleValueHolder{value: CopyValue(h.value), notify: c.changed}
	}
	return c
}

func (m *MultiValueHolder) Compare(other ValueHolder, datatype string) int {
	return CompareValueHolders(m, other, datatype)
}

func (m *MultiValueHolder) setNotifier(fn func()) {
	m.notify = fn
}

// CompareValueHolders orders a and b. Null sorts first, single holders sort
// before multi holders, and multi holders compare element-wise.
func CompareValueHolders(a, b ValueHolder, datatype string) int {
	dt, known := LookupDatatype(datatype)
	av, bv := a.Values(), b.Values()
	if a.IsMultiValue() != b.IsMultiValue() {
		if a.IsMultiValue() {
			return 1
		}
		return -1
	}
	for i := range min(len(av), len(bv)) {
		if c := compareValues(av[i], bv[i], dt, known); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(av), len(bv))
}

func compareValues(a, b Value, dt Datatype, known bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareStrings(a.Canonical(), b.Canonical(), dt, known)
}
