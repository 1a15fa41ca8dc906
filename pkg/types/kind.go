package types

import "fmt"

// PropertyValueKind tags the variant of a PropertyValue. A Property declares
// the kinds a container must hold for it.
type PropertyValueKind int

// Property value kinds.
const (
	KindAttributeValue PropertyValueKind = iota + 1
	KindConfiguredValueSet
	KindValidationRuleConfig
	KindTableContentUsage
	KindFormula
)

// AllKinds lists every property value kind in declaration order.
var AllKinds = []PropertyValueKind{
	KindAttributeValue,
	KindConfiguredValueSet,
	KindValidationRuleConfig,
	KindTableContentUsage,
	KindFormula,
}

var kindNames = map[PropertyValueKind]string{
	KindAttributeValue:       "attributeValue",
	KindConfiguredValueSet:   "configuredValueSet",
	KindValidationRuleConfig: "validationRuleConfig",
	KindTableContentUsage:    "tableContentUsage",
	KindFormula:              "formula",
}

func (k PropertyValueKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PropertyValueKind(%d)", int(k))
}

// ParseKind converts the textual form produced by String back into a kind.
func ParseKind(s string) (PropertyValueKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TemplateValueStatus tells where the effective content of a property value
// or link comes from.
type TemplateValueStatus int

// Template value statuses. The zero value is TemplateDefined.
const (
	// TemplateDefined means the content is stored locally.
	TemplateDefined TemplateValueStatus = iota
	// TemplateInherited means the content comes from the nearest template.
	TemplateInherited
	// TemplateUndefined means no override exists; the unrestricted default
	// applies and the template is not consulted.
	TemplateUndefined
)

var statusNames = map[TemplateValueStatus]string{
	TemplateDefined:   "defined",
	TemplateInherited: "inherited",
	TemplateUndefined: "undefined",
}

func (s TemplateValueStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("TemplateValueStatus(%d)", int(s))
}

// ParseTemplateValueStatus parses the output of String. The empty string
// parses as TemplateDefined.
func ParseTemplateValueStatus(s string) (TemplateValueStatus, error) {
	if s == "" {
		return TemplateDefined, nil
	}
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}
