// Package linkcheck validates the links of product components against the
// cardinalities of their associations.
package linkcheck

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mesh-intelligence/prodcfg/pkg/template"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Message codes.
const (
	MsgNotEnoughRelations         = "LINKCONTAINER-NOT_ENOUGH_RELATIONS"
	MsgTooManyRelations           = "LINKCONTAINER-TOO_MANY_RELATIONS"
	MsgDuplicateRelationTarget    = "LINKCONTAINER-DUPLICATE_RELATION_TARGET"
	MsgMaxCardinalitySumExceeds   = "LINKCONTAINER-MAX_CARDINALITY_SUM_EXCEEDS_MAX"
	MsgMinCardinalityNotReachable = "LINKCONTAINER-MIN_CARDINALITY_NOT_REACHABLE"
	MsgTargetNotFound             = "LINKCONTAINER-TARGET_NOT_FOUND"
	MsgNoGenerationValidOn        = "LINKCONTAINER-NO_GENERATION_VALID_ON_VALID_FROM"
	MsgCycleInProductStructure    = "LINKCONTAINER-CYCLE_IN_PRODUCT_STRUCTURE"
)

// Validator checks link containers of one project.
type Validator struct {
	project  types.Project
	resolver *template.Resolver
	logger   *slog.Logger
}

// NewValidator returns a validator. A nil resolver gets an uncached one, and
// a nil logger uses slog.Default.
func NewValidator(project types.Project, resolver *template.Resolver, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = template.NewResolver(project, nil, logger)
	}
	return &Validator{project: project, resolver: resolver, logger: logger}
}

// Validate checks c against the associations of t and its supertypes.
func Validate(c types.PropertyValueContainer, t *types.ProductCmptType, project types.Project) types.MessageList {
	return NewValidator(project, nil, nil).ValidateContainer(c, t)
}

// ValidateProductCmpt checks the component, all its generations and the
// product structure below it.
func (v *Validator) ValidateProductCmpt(pc *types.ProductCmpt) types.MessageList {
	var list types.MessageList
	t, ok := v.project.FindType(pc.TypeName())
	if !ok {
		v.logger.Warn("product component type not found, links not validated",
			"product_cmpt", pc.Name(), "type", pc.TypeName())
		return list
	}
	for _, c := range pc.Containers() {
		list.AddAll(v.ValidateContainer(c, t))
	}
	list.AddAll(v.ValidateStructure(pc))
	return list
}

// ValidateContainer checks every association of t that c is responsible
// for. Derived unions are skipped.
func (v *Validator) ValidateContainer(c types.PropertyValueContainer, t *types.ProductCmptType) types.MessageList {
	var list types.MessageList
	assocs, err := types.CollectAssociations(v.project, t)
	if err != nil {
		v.logger.Warn("type hierarchy unusable, links not validated", "container", c.Name(), "error", err)
		return list
	}
	effective := v.resolver.EffectiveLinks(c)
	for _, assoc := range assocs.All() {
		if assoc.DerivedUnion || !c.IsContainerFor(assoc.ChangingOverTime) {
			continue
		}
		var links []*types.Link
		for _, l := range effective {
			if l.Association() == assoc.Name {
				links = append(links, l)
			}
		}
		list.AddAll(v.validateAssociation(c, assoc, links))
	}
	return list
}

func (v *Validator) validateAssociation(c types.PropertyValueContainer, assoc *types.Association, links []*types.Link) types.MessageList {
	var list types.MessageList
	at := types.NewObjectProperty(c, assoc.Name)

	n := len(links)
	if n < assoc.MinCardinality && !c.ProductCmpt().IsTemplate() {
		list.Add(types.NewError(MsgNotEnoughRelations,
			fmt.Sprintf("%s requires at least %d %s links, found %d", c.Name(), assoc.MinCardinality, assoc.Name, n), at))
	}
	if assoc.MaxCardinality != types.CardinalityMany && n > assoc.MaxCardinality {
		list.Add(types.NewError(MsgTooManyRelations,
			fmt.Sprintf("%s allows at most %d %s links, found %d", c.Name(), assoc.MaxCardinality, assoc.Name, n), at))
	}

	list.AddAll(duplicateTargets(c, assoc, links))
	list.AddAll(v.targets(c, links))

	if assoc.Policy != nil && !assoc.Policy.Qualified {
		list.AddAll(v.policyCardinality(c, assoc, links))
	}
	return list
}

func duplicateTargets(c types.PropertyValueContainer, assoc *types.Association, links []*types.Link) types.MessageList {
	var list types.MessageList
	count := make(map[string]int)
	var order []string
	for _, l := range links {
		if count[l.Target()] == 0 {
			order = append(order, l.Target())
		}
		count[l.Target()]++
	}
	for _, target := range order {
		if count[target] > 1 {
			list.Add(types.NewError(MsgDuplicateRelationTarget,
				fmt.Sprintf("%s links %s to %s %d times", c.Name(), assoc.Name, target, count[target]),
				types.NewObjectProperty(c, assoc.Name)))
		}
	}
	return list
}

func (v *Validator) targets(c types.PropertyValueContainer, links []*types.Link) types.MessageList {
	var list types.MessageList
	checkGeneration := v.project.Settings().ReferencedGenerationValidOnValidFrom
	validFrom := containerValidFrom(c)
	for _, l := range links {
		target, ok := v.project.FindProductCmpt(l.Target())
		if !ok {
			list.Add(types.NewError(MsgTargetNotFound,
				fmt.Sprintf("target %s of link %s does not exist", l.Target(), l.Association()),
				types.NewObjectProperty(l, "target")))
			continue
		}
		if !checkGeneration || len(target.Generations()) == 0 {
			continue
		}
		if _, ok := target.GenerationEffectiveOn(validFrom); !ok {
			list.Add(types.NewError(MsgNoGenerationValidOn,
				fmt.Sprintf("%s has no generation valid on %s", target.Name(), validFrom.Format(time.DateOnly)),
				types.NewObjectProperty(l, "target")))
		}
	}
	return list
}

func containerValidFrom(c types.PropertyValueContainer) time.Time {
	if g, ok := c.(*types.Generation); ok {
		return g.ValidFrom()
	}
	return c.ProductCmpt().ValidFrom()
}

// policyCardinality checks the link ranges against the policy association.
// The ranges together must not allow more than the policy maximum, and
// without any one link the maximums of the others must still reach the
// policy minimum. Unbounded ranges count as CardinalityMany.
func (v *Validator) policyCardinality(c types.PropertyValueContainer, assoc *types.Association, links []*types.Link) types.MessageList {
	var list types.MessageList
	policy := assoc.Policy
	ranges := make([]*types.Link, len(links))
	sumMax := 0
	for i, l := range links {
		ranges[i] = v.resolver.EffectiveLink(l)
		sumMax += ranges[i].MaxCardinality()
	}

	if policy.MaxCardinality != types.CardinalityMany && sumMax > policy.MaxCardinality {
		list.Add(types.NewError(MsgMaxCardinalitySumExceeds,
			fmt.Sprintf("the maximum cardinalities of %s add up to more than %d", assoc.Name, policy.MaxCardinality),
			types.NewObjectProperty(c, assoc.Name)))
	}
	if policy.MinCardinality == 0 {
		return list
	}
	for i, l := range links {
		others := sumMax - ranges[i].MaxCardinality()
		if others < policy.MinCardinality {
			list.Add(types.NewError(MsgMinCardinalityNotReachable,
				fmt.Sprintf("without link to %s, %s cannot reach %d", l.Target(), assoc.Name, policy.MinCardinality),
				types.NewObjectProperty(l, "minCardinality")))
		}
	}
	return list
}

// ValidateStructure reports a cycle when aggregation links lead from pc back
// to pc.
func (v *Validator) ValidateStructure(pc *types.ProductCmpt) types.MessageList {
	var list types.MessageList
	path := []string{pc.Name()}
	onPath := map[string]bool{pc.Name(): true}
	done := make(map[string]bool)
	var visit func(cur *types.ProductCmpt) bool
	visit = func(cur *types.ProductCmpt) bool {
		for _, target := range v.aggregationTargets(cur) {
			if target == pc.Name() {
				path = append(path, target)
				return true
			}
			if onPath[target] || done[target] {
				continue
			}
			next, ok := v.project.FindProductCmpt(target)
			if !ok {
				continue
			}
			onPath[target] = true
			path = append(path, target)
			if visit(next) {
				return true
			}
			path = path[:len(path)-1]
			onPath[target] = false
			done[target] = true
		}
		return false
	}
	if visit(pc) {
		list.Add(types.NewError(MsgCycleInProductStructure,
			fmt.Sprintf("product structure contains a cycle: %s", strings.Join(path, " -> ")),
			types.NewObjectProperty(pc, "links")))
	}
	return list
}

// aggregationTargets returns the targets of effective aggregation links of
// every container of pc.
func (v *Validator) aggregationTargets(pc *types.ProductCmpt) []string {
	t, ok := v.project.FindType(pc.TypeName())
	if !ok {
		return nil
	}
	assocs, err := types.CollectAssociations(v.project, t)
	if err != nil {
		return nil
	}
	var out []string
	for _, c := range pc.Containers() {
		for _, l := range v.resolver.EffectiveLinks(c) {
			if a, ok := assocs.Get(l.Association()); ok && a.IsAggregation() {
				out = append(out, l.Target())
			}
		}
	}
	return out
}
