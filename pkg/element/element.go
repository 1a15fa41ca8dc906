// Package element converts the data model to and from a tree of named
// elements. The tree keeps kind tags, null markers, template value statuses
// and the order of multi-value children, and is stored as JSON.
package element

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Element names.
const (
	NameProductCmpt     = "ProductCmpt"
	NameGeneration      = "Generation"
	NameLink            = "Link"
	NameValueHolder     = "ValueHolder"
	NameValue           = "Value"
	NameLocalizedString = "LocalizedString"
	NameValueSet        = "ValueSet"
	NameEnumValue       = "EnumValue"
	NameDependency      = "Dependency"
)

// Element is one node of the tree.
type Element struct {
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     *string           `json:"text,omitempty"`
	Children []*Element        `json:"children,omitempty"`
}

// New returns an element with the given attributes as key, value pairs.
func New(name string, kv ...string) *Element {
	e := &Element{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Set(kv[i], kv[i+1])
	}
	return e
}

// Set stores an attribute. Empty values are not stored.
func (e *Element) Set(key, value string) {
	if value == "" {
		return
	}
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
}

// Attr returns an attribute, empty when absent.
func (e *Element) Attr(key string) string {
	return e.Attrs[key]
}

// Append adds children.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// ChildrenNamed returns the children called name in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) expect(name string) error {
	if e == nil {
		return fmt.Errorf("%w: missing %s element", types.ErrInvalidData, name)
	}
	if e.Name != name {
		return fmt.Errorf("%w: expected %s element, got %s", types.ErrInvalidData, name, e.Name)
	}
	return nil
}

func (e *Element) boolAttr(key string) bool {
	return e.Attr(key) == "true"
}

func (e *Element) intAttr(key string, def int) (int, error) {
	s := e.Attr(key)
	switch s {
	case "":
		return def, nil
	case "*":
		return types.CardinalityMany, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q on %s", types.ErrInvalidData, key, s, e.Name)
	}
	return n, nil
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func formatCardinality(n int) string {
	if n == types.CardinalityMany {
		return "*"
	}
	return strconv.Itoa(n)
}

// Marshal encodes a component as a JSON element tree.
func Marshal(pc *types.ProductCmpt) ([]byte, error) {
	data, err := json.Marshal(EncodeProductCmpt(pc))
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", pc.Name(), err)
	}
	return data, nil
}

// Unmarshal decodes a component from a JSON element tree.
func Unmarshal(data []byte) (*types.ProductCmpt, error) {
	var e Element
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return DecodeProductCmpt(&e)
}
