package template

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Template validation message codes.
const (
	MsgTemplateNotFound         = "TEMPLATE-NOT_FOUND"
	MsgTemplateNotATemplate     = "TEMPLATE-NOT_A_TEMPLATE"
	MsgTemplateCycle            = "TEMPLATE-CYCLE"
	MsgInheritedValueFallback   = "TEMPLATE-INHERITED_VALUE_FALLBACK"
	MsgInheritedLinkFallback    = "TEMPLATE-INHERITED_LINK_FALLBACK"
	propertyTemplate            = "template"
	propertyTemplateValueStatus = "templateValueStatus"
)

// ValidateTemplate checks the template chain of pc and reports inherited
// values that fall back to their stored content.
func (r *Resolver) ValidateTemplate(pc *types.ProductCmpt) types.MessageList {
	var list types.MessageList
	if !pc.UsesTemplate() {
		return list
	}
	at := types.NewObjectProperty(pc, propertyTemplate)
	guard := types.NewVisitGuard()
	guard.Enter(pc.Name())
	for name := pc.Template(); name != ""; {
		t, ok := r.finder.FindProductCmpt(name)
		if !ok {
			list.Add(types.NewError(MsgTemplateNotFound,
				fmt.Sprintf("template %s of %s does not exist; inherited values use their stored content", name, pc.Name()), at))
			break
		}
		if !guard.Enter(t.Name()) {
			list.Add(types.NewError(MsgTemplateCycle,
				fmt.Sprintf("template chain of %s contains a cycle: %s", pc.Name(), strings.Join(guard.Path(), " -> ")), at))
			break
		}
		if !t.IsTemplate() {
			list.Add(types.NewError(MsgTemplateNotATemplate,
				fmt.Sprintf("%s is used as template but is not marked as one", t.Name()), at))
		}
		name = t.Template()
	}

	for _, c := range pc.Containers() {
		for _, pv := range c.PropertyValues() {
			if pv.TemplateValueStatus() != types.TemplateInherited {
				continue
			}
			if _, ok := r.FindTemplatePropertyValue(pv); !ok {
				list.Add(types.NewWarning(MsgInheritedValueFallback,
					fmt.Sprintf("%s of %s inherits but no template defines it", pv.PropertyName(), c.Name()),
					types.NewObjectProperty(pv, propertyTemplateValueStatus)))
			}
		}
		for _, l := range c.Links() {
			if l.TemplateValueStatus() != types.TemplateInherited {
				continue
			}
			if _, ok := r.FindTemplateLink(l); !ok {
				list.Add(types.NewWarning(MsgInheritedLinkFallback,
					fmt.Sprintf("link %s to %s of %s inherits but no template defines it", l.Association(), l.Target(), c.Name()),
					types.NewObjectProperty(l, propertyTemplateValueStatus)))
			}
		}
	}
	return list
}
