package types

import (
	"slices"
	"strings"
)

// Value is the content of a single value holder. A nil Value is null, which
// is distinct from the empty string.
type Value interface {
	// Canonical is the textual form used for comparisons and duplicate
	// detection.
	Canonical() string
	Equal(other Value) bool
	Copy() Value
	isValue()
}

// StringValue is plain text.
type StringValue string

func (v StringValue) Canonical() string { return string(v) }
func (v StringValue) Copy() Value       { return v }
func (StringValue) isValue()            {}

func (v StringValue) Equal(other Value) bool {
	o, ok := other.(StringValue)
	return ok && o == v
}

// LocalizedString is the text of one locale.
type LocalizedString struct {
	Locale string `json:"locale"`
	Text   string `json:"text"`
}

// InternationalStringValue holds one text per locale, ordered by locale.
type InternationalStringValue struct {
	texts []LocalizedString
}

// NewInternationalString builds a value from texts. Later entries win on
// duplicate locales.
func NewInternationalString(texts ...LocalizedString) *InternationalStringValue {
	v := &InternationalStringValue{}
	for _, t := range texts {
		v.Set(t.Locale, t.Text)
	}
	return v
}

// Get returns the text for locale.
func (v *InternationalStringValue) Get(locale string) (string, bool) {
	i, ok := v.index(locale)
	if !ok {
		return "", false
	}
	return v.texts[i].Text, true
}

// Set stores text for locale, keeping the locale order.
func (v *InternationalStringValue) Set(locale, text string) {
	i, ok := v.index(locale)
	if ok {
		v.texts[i].Text = text
		return
	}
	v.texts = slices.Insert(v.texts, i, LocalizedString{Locale: locale, Text: text})
}

// Texts returns a copy of the localized texts in locale order.
func (v *InternationalStringValue) Texts() []LocalizedString {
	return slices.Clone(v.texts)
}

func (v *InternationalStringValue) index(locale string) (int, bool) {
	return slices.BinarySearchFunc(v.texts, locale, func(t LocalizedString, l string) int {
		return strings.Compare(t.Locale, l)
	})
}

func (v *InternationalStringValue) Canonical() string {
	parts := make([]string, len(v.texts))
	for i, t := range v.texts {
		parts[i] = t.Locale + "=" + t.Text
	}
	return strings.Join(parts, "|")
}

func (v *InternationalStringValue) Equal(other Value) bool {
	o, ok := other.(*InternationalStringValue)
	return ok && slices.Equal(o.texts, v.texts)
}

func (v *InternationalStringValue) Copy() Value {
	return &InternationalStringValue{texts: slices.Clone(v.texts)}
}

func (*InternationalStringValue) isValue() {}

// ValuesEqual compares two possibly null values.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// CopyValue copies a possibly null value.
func CopyValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Copy()
}

// ToMultilingual converts plain text into international text under locale.
// Null and international values are returned unchanged.
func ToMultilingual(v Value, locale string) Value {
	s, ok := v.(StringValue)
	if !ok {
		return v
	}
	return NewInternationalString(LocalizedString{Locale: locale, Text: string(s)})
}

// ToPlain converts international text into plain text, preferring locale and
// otherwise taking the first text. Empty international text becomes null.
func ToPlain(v Value, locale string) Value {
	iv, ok := v.(*InternationalStringValue)
	if !ok {
		return v
	}
	if text, found := iv.Get(locale); found {
		return StringValue(text)
	}
	if len(iv.texts) == 0 {
		return nil
	}
	return StringValue(iv.texts[0].Text)
}
