package types

import "github.com/google/uuid"

// Link is a directed edge from a container to a target component through a
// named association. The cardinality describes how many policy-side
// instances the link contributes.
type Link struct {
	id          string
	association string
	target      string
	min         int
	max         int
	def         int
	status      TemplateValueStatus
	container   PropertyValueContainer
}

// NewLink returns a detached link with cardinality 0..1 and default 0.
func NewLink(association, target string) *Link {
	return &Link{
		id:          generateID(),
		association: association,
		target:      target,
		max:         1,
	}
}

// RestoreLink rebuilds a detached link from persisted fields.
func RestoreLink(id, association, target string, minCard, maxCard, defCard int, status TemplateValueStatus) *Link {
	if id == "" {
		id = generateID()
	}
	return &Link{
		id:          id,
		association: association,
		target:      target,
		min:         minCard,
		max:         maxCard,
		def:         defCard,
		status:      status,
	}
}

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (l *Link) ID() string                               { return l.id }
func (l *Link) Association() string                      { return l.association }
func (l *Link) Target() string                           { return l.target }
func (l *Link) MinCardinality() int                      { return l.min }
func (l *Link) MaxCardinality() int                      { return l.max }
func (l *Link) DefaultCardinality() int                  { return l.def }
func (l *Link) TemplateValueStatus() TemplateValueStatus { return l.status }
func (l *Link) Container() PropertyValueContainer        { return l.container }

// SetTarget changes the target component.
func (l *Link) SetTarget(target string) {
	if l.target == target {
		return
	}
	l.target = target
	l.changed()
}

// SetCardinality changes the cardinality range and default.
func (l *Link) SetCardinality(minCard, maxCard, defCard int) {
	if l.min == minCard && l.max == maxCard && l.def == defCard {
		return
	}
	l.min, l.max, l.def = minCard, maxCard, defCard
	l.changed()
}

// SetTemplateValueStatus only flips the status.
func (l *Link) SetTemplateValueStatus(s TemplateValueStatus) {
	if l.status == s {
		return
	}
	l.status = s
	l.changed()
}

func (l *Link) changed() {
	if l.container != nil {
		l.container.core().changed(l.association)
	}
}

// Equal compares every field but the container.
func (l *Link) Equal(o *Link) bool {
	return l.id == o.id && l.ContentEqual(o) && l.status == o.status
}

// ContentEqual compares association, target and cardinality.
func (l *Link) ContentEqual(o *Link) bool {
	return l.association == o.association && l.target == o.target &&
		l.min == o.min && l.max == o.max && l.def == o.def
}

// Copy returns a detached copy with the same id.
func (l *Link) Copy() *Link {
	c := *l
	c.container = nil
	return &c
}
