package types

import (
	"fmt"
	"math"
)

// CardinalityMany is the maximum cardinality for unbounded associations.
const CardinalityMany = math.MaxInt32

// AssociationKind separates composition edges from plain references.
type AssociationKind int

// Association kinds.
const (
	AssociationAggregation AssociationKind = iota + 1
	AssociationAssociation
)

func (k AssociationKind) String() string {
	switch k {
	case AssociationAggregation:
		return "aggregation"
	case AssociationAssociation:
		return "association"
	}
	return fmt.Sprintf("AssociationKind(%d)", int(k))
}

// ParseAssociationKind parses the output of String.
func ParseAssociationKind(s string) (AssociationKind, error) {
	switch s {
	case "aggregation", "composition":
		return AssociationAggregation, nil
	case "association":
		return AssociationAssociation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAssociation, s)
}

// ProductCmptType is the schema of a product component.
type ProductCmptType struct {
	Name         string
	Supertype    string
	Abstract     bool
	Properties   []*Property
	Associations []*Association
}

// Association declares links from components of a type to components of
// TargetType.
type Association struct {
	Name             string
	TargetType       string
	Kind             AssociationKind
	MinCardinality   int
	MaxCardinality   int
	ChangingOverTime bool
	DerivedUnion     bool

	// Policy is the matching policy-side association, nil if none.
	Policy *PolicyAssociation
}

// PolicyAssociation carries the cardinality of the policy side that links
// must be able to satisfy.
type PolicyAssociation struct {
	Name           string
	MinCardinality int
	MaxCardinality int
	Qualified      bool
}

// IsAggregation reports whether links of a define the product structure.
func (a *Association) IsAggregation() bool {
	return a.Kind == AssociationAggregation
}

// Property returns the declared property called name.
func (t *ProductCmptType) Property(name string) (*Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Association returns the declared association called name.
func (t *ProductCmptType) Association(name string) (*Association, bool) {
	for _, a := range t.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}
