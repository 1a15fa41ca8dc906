// Package aggregate finds the roots of the product structure.
package aggregate

import (
	"cmp"
	"slices"
	"sync"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// FindAggregateRoots returns every component of the project that no
// aggregation link points to, ordered by name. Self references and links
// marked TemplateUndefined are ignored, as are plain associations.
func FindAggregateRoots(project types.Project) []*types.ProductCmpt {
	var potential, nonRoots sync.Map
	assocCache := make(map[string]types.Index[*types.Association])

	for _, pc := range project.ProductCmpts() {
		if _, excluded := nonRoots.Load(pc.Name()); !excluded {
			potential.Store(pc.Name(), pc)
		}
		assocs, ok := associations(project, pc.TypeName(), assocCache)
		if !ok {
			continue
		}
		for _, c := range pc.Containers() {
			for _, l := range c.Links() {
				if l.TemplateValueStatus() == types.TemplateUndefined || l.Target() == pc.Name() {
					continue
				}
				a, ok := assocs.Get(l.Association())
				if !ok || !a.IsAggregation() {
					continue
				}
				potential.Delete(l.Target())
				nonRoots.Store(l.Target(), struct{}{})
			}
		}
	}

	var roots []*types.ProductCmpt
	potential.Range(func(_, v any) bool {
		roots = append(roots, v.(*types.ProductCmpt))
		return true
	})
	slices.SortFunc(roots, func(a, b *types.ProductCmpt) int { return cmp.Compare(a.Name(), b.Name()) })
	return roots
}

func associations(project types.Project, typeName string, cache map[string]types.Index[*types.Association]) (types.Index[*types.Association], bool) {
	if x, ok := cache[typeName]; ok {
		return x, true
	}
	t, ok := project.FindType(typeName)
	if !ok {
		return types.Index[*types.Association]{}, false
	}
	x, err := types.CollectAssociations(project, t)
	if err != nil {
		return x, false
	}
	cache[typeName] = x
	return x, true
}
