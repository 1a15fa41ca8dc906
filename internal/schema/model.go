// Package schema loads product component types and components from YAML
// model files and converts types to and from their document form.
package schema

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Model is the root of a model file.
type Model struct {
	Settings   *types.ProjectSettings `yaml:"settings,omitempty" json:"settings,omitempty"`
	Types      []TypeDef              `yaml:"types" json:"types" validate:"unique=Name,dive"`
	Components []ComponentDef         `yaml:"components" json:"components" validate:"unique=Name,dive"`
}

// TypeDef describes a product component type.
type TypeDef struct {
	Name         string           `yaml:"name" json:"name" validate:"required"`
	Supertype    string           `yaml:"supertype,omitempty" json:"supertype,omitempty"`
	Abstract     bool             `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Properties   []PropertyDef    `yaml:"properties,omitempty" json:"properties,omitempty" validate:"unique=Name,dive"`
	Associations []AssociationDef `yaml:"associations,omitempty" json:"associations,omitempty" validate:"unique=Name,dive"`
}

// PropertyDef describes a property. Kinds defaults to attributeValue.
type PropertyDef struct {
	Name             string       `yaml:"name" json:"name" validate:"required"`
	Description      string       `yaml:"description,omitempty" json:"description,omitempty"`
	Kinds            []string     `yaml:"kinds,omitempty" json:"kinds,omitempty" validate:"dive,kind"`
	ChangingOverTime bool         `yaml:"changing_over_time,omitempty" json:"changing_over_time,omitempty"`
	Datatype         string       `yaml:"datatype,omitempty" json:"datatype,omitempty"`
	ValueSet         *ValueSetDef `yaml:"value_set,omitempty" json:"value_set,omitempty"`
	MultiValue       bool         `yaml:"multi_value,omitempty" json:"multi_value,omitempty"`
	Multilingual     bool         `yaml:"multilingual,omitempty" json:"multilingual,omitempty"`
	Hidden           bool         `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Default          *string      `yaml:"default,omitempty" json:"default,omitempty"`
}

// ValueSetDef describes a value set.
type ValueSetDef struct {
	Type        string   `yaml:"type" json:"type" validate:"required,oneof=unrestricted enum range"`
	Values      []string `yaml:"values,omitempty" json:"values,omitempty"`
	Lower       string   `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper       string   `yaml:"upper,omitempty" json:"upper,omitempty"`
	Step        string   `yaml:"step,omitempty" json:"step,omitempty"`
	IncludeNull bool     `yaml:"include_null,omitempty" json:"include_null,omitempty"`
}

// AssociationDef describes an association. Max accepts a number or "*".
type AssociationDef struct {
	Name             string     `yaml:"name" json:"name" validate:"required"`
	Target           string     `yaml:"target" json:"target" validate:"required"`
	Kind             string     `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,oneof=aggregation composition association"`
	Min              int        `yaml:"min,omitempty" json:"min,omitempty" validate:"gte=0"`
	Max              string     `yaml:"max,omitempty" json:"max,omitempty" validate:"omitempty,cardinality"`
	ChangingOverTime bool       `yaml:"changing_over_time,omitempty" json:"changing_over_time,omitempty"`
	DerivedUnion     bool       `yaml:"derived_union,omitempty" json:"derived_union,omitempty"`
	Policy           *PolicyDef `yaml:"policy,omitempty" json:"policy,omitempty"`
}

// PolicyDef describes the matching policy-side association.
type PolicyDef struct {
	Name      string `yaml:"name" json:"name" validate:"required"`
	Min       int    `yaml:"min,omitempty" json:"min,omitempty" validate:"gte=0"`
	Max       string `yaml:"max,omitempty" json:"max,omitempty" validate:"omitempty,cardinality"`
	Qualified bool   `yaml:"qualified,omitempty" json:"qualified,omitempty"`
}

// ComponentDef describes a product component or template.
type ComponentDef struct {
	Name        string          `yaml:"name" json:"name" validate:"required"`
	Type        string          `yaml:"type" json:"type" validate:"required"`
	Template    string          `yaml:"template,omitempty" json:"template,omitempty"`
	IsTemplate  bool            `yaml:"is_template,omitempty" json:"is_template,omitempty"`
	ValidFrom   string          `yaml:"valid_from,omitempty" json:"valid_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Values      []ValueDef      `yaml:"values,omitempty" json:"values,omitempty" validate:"dive"`
	Links       []LinkDef       `yaml:"links,omitempty" json:"links,omitempty" validate:"dive"`
	Generations []GenerationDef `yaml:"generations,omitempty" json:"generations,omitempty" validate:"unique=ValidFrom,dive"`
}

// GenerationDef describes one generation of a component.
type GenerationDef struct {
	ValidFrom string     `yaml:"valid_from" json:"valid_from" validate:"required,datetime=2006-01-02"`
	Values    []ValueDef `yaml:"values,omitempty" json:"values,omitempty" validate:"dive"`
	Links     []LinkDef  `yaml:"links,omitempty" json:"links,omitempty" validate:"dive"`
}

// ValueDef describes a property value. Which fields apply depends on Kind.
// An attribute value with neither Value, Values, Texts nor Multi is null.
type ValueDef struct {
	Name       string            `yaml:"name" json:"name" validate:"required"`
	Kind       string            `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,kind"`
	Status     string            `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,oneof=defined inherited undefined"`
	Value      *string           `yaml:"value,omitempty" json:"value,omitempty"`
	Values     []string          `yaml:"values,omitempty" json:"values,omitempty"`
	Multi      bool              `yaml:"multi,omitempty" json:"multi,omitempty"`
	Texts      map[string]string `yaml:"texts,omitempty" json:"texts,omitempty"`
	ValueSet   *ValueSetDef      `yaml:"value_set,omitempty" json:"value_set,omitempty"`
	Active     *bool             `yaml:"active,omitempty" json:"active,omitempty"`
	Table      string            `yaml:"table,omitempty" json:"table,omitempty"`
	Expression string            `yaml:"expression,omitempty" json:"expression,omitempty"`
}

// LinkDef describes a link. Default falls back to Min.
type LinkDef struct {
	Association string `yaml:"association" json:"association" validate:"required"`
	Target      string `yaml:"target" json:"target" validate:"required"`
	Min         int    `yaml:"min,omitempty" json:"min,omitempty" validate:"gte=0"`
	Max         string `yaml:"max,omitempty" json:"max,omitempty" validate:"omitempty,cardinality"`
	Default     *int   `yaml:"default,omitempty" json:"default,omitempty"`
	Status      string `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,oneof=defined inherited undefined"`
}

// modelValidate checks struct tags on model definitions. Custom rules are
// registered in init.
var modelValidate *validator.Validate

func init() {
	modelValidate = validator.New()
	_ = modelValidate.RegisterValidation("cardinality", validateCardinality)
	_ = modelValidate.RegisterValidation("kind", validateKind)
}

func validateCardinality(fl validator.FieldLevel) bool {
	_, err := parseCardinality(fl.Field().String(), 0)
	return err == nil
}

func validateKind(fl validator.FieldLevel) bool {
	_, err := types.ParseKind(fl.Field().String())
	return err == nil
}

// parseCardinality parses a cardinality. Empty yields def and "*" yields
// CardinalityMany.
func parseCardinality(s string, def int) (int, error) {
	switch s {
	case "":
		return def, nil
	case "*":
		return types.CardinalityMany, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: cardinality %q", types.ErrInvalidData, s)
	}
	return n, nil
}

func formatCardinality(n int) string {
	if n == types.CardinalityMany {
		return "*"
	}
	return strconv.Itoa(n)
}

// Validate checks the model's struct constraints.
func (m *Model) Validate() error {
	if err := modelValidate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

// Parse decodes and validates a YAML model.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and parses the model file at path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	return m, nil
}
