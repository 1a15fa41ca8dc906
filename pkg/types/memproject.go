package types

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// MemoryProject is a Project held entirely in memory.
type MemoryProject struct {
	mu       sync.RWMutex
	types    map[string]*ProductCmptType
	cmpts    map[string]*ProductCmpt
	settings ProjectSettings
}

var _ Project = (*MemoryProject)(nil)

// NewMemoryProject returns an empty project with default settings.
func NewMemoryProject() *MemoryProject {
	return &MemoryProject{
		types:    make(map[string]*ProductCmptType),
		cmpts:    make(map[string]*ProductCmpt),
		settings: DefaultProjectSettings(),
	}
}

// AddType registers t. Names must be unique.
func (p *MemoryProject) AddType(t *ProductCmptType) error {
	if t.Name == "" {
		return ErrInvalidName
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.types[t.Name]; ok {
		return fmt.Errorf("adding type %q: %w", t.Name, ErrDuplicateName)
	}
	p.types[t.Name] = t
	return nil
}

// PutType registers t, replacing a type of the same name.
func (p *MemoryProject) PutType(t *ProductCmptType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types[t.Name] = t
}

// RemoveType deletes the type called name.
func (p *MemoryProject) RemoveType(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.types[name]
	delete(p.types, name)
	return ok
}

// Types returns every type ordered by name.
func (p *MemoryProject) Types() []*ProductCmptType {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*ProductCmptType, 0, len(p.types))
	for _, t := range p.types {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *ProductCmptType) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// AddProductCmpt registers pc. Names must be unique.
func (p *MemoryProject) AddProductCmpt(pc *ProductCmpt) error {
	if pc.Name() == "" {
		return ErrInvalidName
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.cmpts[pc.Name()]; ok {
		return fmt.Errorf("adding product component %q: %w", pc.Name(), ErrDuplicateName)
	}
	p.cmpts[pc.Name()] = pc
	return nil
}

// RemoveProductCmpt deletes the component called name.
func (p *MemoryProject) RemoveProductCmpt(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cmpts[name]
	delete(p.cmpts, name)
	return ok
}

// SetSettings replaces the project settings.
func (p *MemoryProject) SetSettings(s ProjectSettings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
}

func (p *MemoryProject) FindType(name string) (*ProductCmptType, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.types[name]
	return t, ok
}

func (p *MemoryProject) Supertype(t *ProductCmptType) (*ProductCmptType, bool) {
	if t == nil || t.Supertype == "" {
		return nil, false
	}
	return p.FindType(t.Supertype)
}

func (p *MemoryProject) DeclaredProperties(t *ProductCmptType) []*Property {
	return t.Properties
}

func (p *MemoryProject) FindProductCmpt(name string) (*ProductCmpt, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pc, ok := p.cmpts[name]
	return pc, ok
}

// ProductCmpts returns every component ordered by name.
func (p *MemoryProject) ProductCmpts() []*ProductCmpt {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*ProductCmpt, 0, len(p.cmpts))
	for _, pc := range p.cmpts {
		out = append(out, pc)
	}
	slices.SortFunc(out, func(a, b *ProductCmpt) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

func (p *MemoryProject) Settings() ProjectSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}
