// Package template resolves values and links that components inherit from
// their templates.
//
// A property value or link with status TemplateInherited takes its content
// from the same-named value of the nearest template that defines one. When
// no template in the chain can supply it, the resolver keeps answering with
// the locally stored content and ValidateTemplate reports the broken chain.
package template

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Resolver answers template lookups against a set of components.
type Resolver struct {
	finder types.ProductCmptFinder
	cache  *Cache
	logger *slog.Logger
}

// NewResolver returns a resolver over finder. The cache may be nil. A nil
// logger uses slog.Default.
func NewResolver(finder types.ProductCmptFinder, cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{finder: finder, cache: cache, logger: logger}
}

// Watch registers the resolver's cache for content changes of pc.
func (r *Resolver) Watch(pc *types.ProductCmpt) {
	if r.cache != nil {
		pc.AddListener(r.cache.ContentChanged)
	}
}

// TemplatedContainer returns the template-side counterpart of c: the
// template component for a component, and for a generation the template
// generation effective on its valid-from date, or the template's latest
// generation when none is.
func (r *Resolver) TemplatedContainer(c types.PropertyValueContainer) (types.PropertyValueContainer, bool) {
	pc := c.ProductCmpt()
	if pc == nil || !pc.UsesTemplate() {
		return nil, false
	}
	tpc, ok := r.finder.FindProductCmpt(pc.Template())
	if !ok {
		return nil, false
	}
	g, isGen := c.(*types.Generation)
	if !isGen {
		return tpc, true
	}
	if tg, ok := tpc.GenerationEffectiveOn(g.ValidFrom()); ok {
		return tg, true
	}
	if tg, ok := tpc.LatestGeneration(); ok {
		return tg, true
	}
	return nil, false
}

// walk follows the template chain from c and calls visit with every
// templated container until visit returns true. It returns the names of the
// components it touched, including an unresolvable template name.
func (r *Resolver) walk(c types.PropertyValueContainer, visit func(types.PropertyValueContainer) bool) []string {
	guard := types.NewVisitGuard()
	guard.Enter(c.ProductCmpt().Name())
	touched := []string{c.ProductCmpt().Name()}
	cur := c
	for {
		name := cur.ProductCmpt().Template()
		if name == "" {
			return touched
		}
		touched = append(touched, name)
		tc, ok := r.TemplatedContainer(cur)
		if !ok {
			return touched
		}
		if !guard.Enter(tc.ProductCmpt().Name()) {
			r.logger.Warn("template cycle", "path", guard.Path())
			return touched
		}
		if visit(tc) {
			return touched
		}
		cur = tc
	}
}

// FindTemplatePropertyValue returns the nearest value in the template chain
// with the same name and kind as pv whose status is not TemplateInherited.
func (r *Resolver) FindTemplatePropertyValue(pv types.PropertyValue) (types.PropertyValue, bool) {
	c := pv.Container()
	if c == nil {
		return nil, false
	}
	key := fmt.Sprintf("pv\x00%s\x00%s\x00%s", c.Name(), pv.PropertyName(), pv.Kind())
	if v, found, ok := cacheGet[types.PropertyValue](r.cache, key); ok {
		return v, found
	}
	var result types.PropertyValue
	touched := r.walk(c, func(tc types.PropertyValueContainer) bool {
		tpv, ok := tc.PropertyValue(pv.PropertyName(), pv.Kind())
		if ok && tpv.TemplateValueStatus() != types.TemplateInherited {
			result = tpv
			return true
		}
		return false
	})
	cacheSet(r.cache, key, result, result != nil, touched)
	return result, result != nil
}

// Effective returns the value whose content applies to pv. For
// TemplateUndefined it is a detached default built from prop, which may be
// nil when the property is unknown.
func (r *Resolver) Effective(pv types.PropertyValue, prop *types.Property) types.PropertyValue {
	switch pv.TemplateValueStatus() {
	case types.TemplateUndefined:
		return r.undefinedDefault(pv, prop)
	case types.TemplateInherited:
		tpv, ok := r.FindTemplatePropertyValue(pv)
		if !ok {
			r.logger.Warn("template value not found, using stored value",
				"container", containerName(pv.Container()), "property", pv.PropertyName(), "kind", pv.Kind())
			return pv
		}
		if tpv.TemplateValueStatus() == types.TemplateUndefined {
			return r.undefinedDefault(tpv, prop)
		}
		return tpv
	}
	return pv
}

func (r *Resolver) undefinedDefault(pv types.PropertyValue, prop *types.Property) types.PropertyValue {
	if prop == nil {
		def, err := types.NewPropertyValue(pv.Kind(), pv.PropertyName())
		if err != nil {
			return pv
		}
		return def
	}
	p := *prop
	p.DefaultValue = nil
	p.ValueSet = nil
	def, err := types.NewDefaultPropertyValue(&p, pv.Kind(), "")
	if err != nil {
		return pv
	}
	return def
}

// EffectiveValueHolder returns the holder that applies to av.
func (r *Resolver) EffectiveValueHolder(av *types.AttributeValue, prop *types.Property) types.ValueHolder {
	return r.Effective(av, prop).(*types.AttributeValue).ValueHolder()
}

// EffectiveValueSet returns the value set that applies to cvs.
func (r *Resolver) EffectiveValueSet(cvs *types.ConfiguredValueSet, prop *types.Property) types.ValueSet {
	return r.Effective(cvs, prop).(*types.ConfiguredValueSet).ValueSet()
}

// SetTemplateValueStatus changes the status of pv. Switching to
// TemplateDefined first copies the currently effective content into pv so
// the visible value does not change.
func (r *Resolver) SetTemplateValueStatus(pv types.PropertyValue, status types.TemplateValueStatus, prop *types.Property) {
	apply := func() {
		if status == types.TemplateDefined && pv.TemplateValueStatus() != types.TemplateDefined {
			if eff := r.Effective(pv, prop); eff != pv {
				pv.CopyContentFrom(eff)
			}
		}
		pv.SetTemplateValueStatus(status)
	}
	if c := pv.Container(); c != nil {
		c.ProductCmpt().Batch(apply)
		return
	}
	apply()
}

// FindTemplateLink returns the nearest link in the template chain with the
// same association and target as l whose status is not TemplateInherited.
func (r *Resolver) FindTemplateLink(l *types.Link) (*types.Link, bool) {
	c := l.Container()
	if c == nil {
		return nil, false
	}
	key := fmt.Sprintf("link\x00%s\x00%s\x00%s", c.Name(), l.Association(), l.Target())
	if v, found, ok := cacheGet[*types.Link](r.cache, key); ok {
		return v, found
	}
	var result *types.Link
	touched := r.walk(c, func(tc types.PropertyValueContainer) bool {
		for _, tl := range tc.LinksFor(l.Association()) {
			if tl.Target() == l.Target() && tl.TemplateValueStatus() != types.TemplateInherited {
				result = tl
				return true
			}
		}
		return false
	})
	cacheSet(r.cache, key, result, result != nil, touched)
	return result, result != nil
}

// EffectiveLink returns the link whose cardinality applies to l. A broken
// chain falls back to l.
func (r *Resolver) EffectiveLink(l *types.Link) *types.Link {
	if l.TemplateValueStatus() != types.TemplateInherited {
		return l
	}
	if tl, ok := r.FindTemplateLink(l); ok {
		return tl
	}
	r.logger.Warn("template link not found, using stored link",
		"container", containerName(l.Container()), "association", l.Association(), "target", l.Target())
	return l
}

// EffectiveLinks returns the links of c that exist in effect: every link
// except those marked TemplateUndefined.
func (r *Resolver) EffectiveLinks(c types.PropertyValueContainer) []*types.Link {
	var out []*types.Link
	for _, l := range c.Links() {
		if l.TemplateValueStatus() != types.TemplateUndefined {
			out = append(out, l)
		}
	}
	return out
}

// TemplateLinks returns the links in effect on the templated container of
// c, or nil when c has no resolvable template.
func (r *Resolver) TemplateLinks(c types.PropertyValueContainer) ([]*types.Link, bool) {
	tc, ok := r.TemplatedContainer(c)
	if !ok {
		return nil, false
	}
	return r.EffectiveLinks(tc), true
}

// SetLinkTemplateValueStatus changes the status of l, copying the effective
// cardinality into l when it becomes TemplateDefined.
func (r *Resolver) SetLinkTemplateValueStatus(l *types.Link, status types.TemplateValueStatus) {
	apply := func() {
		if status == types.TemplateDefined && l.TemplateValueStatus() == types.TemplateInherited {
			if tl := r.EffectiveLink(l); tl != l {
				l.SetCardinality(tl.MinCardinality(), tl.MaxCardinality(), tl.DefaultCardinality())
			}
		}
		l.SetTemplateValueStatus(status)
	}
	if c := l.Container(); c != nil {
		c.ProductCmpt().Batch(apply)
		return
	}
	apply()
}

func containerName(c types.PropertyValueContainer) string {
	if c == nil {
		return ""
	}
	return c.Name()
}
