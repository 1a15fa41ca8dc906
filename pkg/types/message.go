package types

import (
	"fmt"
	"strings"
)

// Severity ranks a validation message.
type Severity int

// Severities in ascending order. SeverityNone is reported by an empty list.
const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ObjectProperty points a message at one property of one object. Index is -1
// unless the property is a list and the message concerns a single element.
type ObjectProperty struct {
	Object   any
	Property string
	Index    int
}

// NewObjectProperty returns an ObjectProperty without an index.
func NewObjectProperty(object any, property string) ObjectProperty {
	return ObjectProperty{Object: object, Property: property, Index: -1}
}

// Message is one validation result. Codes are stable identifiers.
type Message struct {
	Code             string
	Severity         Severity
	Text             string
	ObjectProperties []ObjectProperty
}

// NewError builds an error message.
func NewError(code, text string, ops ...ObjectProperty) Message {
	return Message{Code: code, Severity: SeverityError, Text: text, ObjectProperties: ops}
}

// NewWarning builds a warning message.
func NewWarning(code, text string, ops ...ObjectProperty) Message {
	return Message{Code: code, Severity: SeverityWarning, Text: text, ObjectProperties: ops}
}

func (m Message) String() string {
	return fmt.Sprintf("%s %s: %s", strings.ToUpper(m.Severity.String()), m.Code, m.Text)
}

// MessageList is an ordered collection of messages.
type MessageList []Message

// Add appends one message.
func (l *MessageList) Add(m Message) {
	*l = append(*l, m)
}

// AddAll appends every message of other.
func (l *MessageList) AddAll(other MessageList) {
	*l = append(*l, other...)
}

// IsEmpty reports whether the list holds no messages.
func (l MessageList) IsEmpty() bool {
	return len(l) == 0
}

// Severity returns the highest severity in the list.
func (l MessageList) Severity() Severity {
	s := SeverityNone
	for _, m := range l {
		s = max(s, m.Severity)
	}
	return s
}

// ContainsErrors reports whether any message has SeverityError.
func (l MessageList) ContainsErrors() bool {
	return l.Severity() >= SeverityError
}

// MessagesByCode returns the messages carrying code.
func (l MessageList) MessagesByCode(code string) MessageList {
	var out MessageList
	for _, m := range l {
		if m.Code == code {
			out = append(out, m)
		}
	}
	return out
}

// Count returns how many messages carry code.
func (l MessageList) Count(code string) int {
	return len(l.MessagesByCode(code))
}
