package types

import (
	"fmt"
	"strings"
)

// TypeChain returns t and its supertypes, root first. The walk stops at an
// unresolvable supertype and fails with ErrHierarchyCycle on a cycle.
func TypeChain(repo TypeRepository, t *ProductCmptType) ([]*ProductCmptType, error) {
	guard := NewVisitGuard()
	var chain []*ProductCmptType
	for cur, ok := t, t != nil; ok; cur, ok = repo.Supertype(cur) {
		if !guard.Enter(cur.Name) {
			return nil, fmt.Errorf("%w: %s", ErrHierarchyCycle, strings.Join(guard.Path(), " -> "))
		}
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Index is an immutable name-keyed collection in declaration order.
type Index[T any] struct {
	byName map[string]T
	order  []string
}

// Get returns the entry called name.
func (x Index[T]) Get(name string) (T, bool) {
	v, ok := x.byName[name]
	return v, ok
}

// All returns the entries, supertype declarations first.
func (x Index[T]) All() []T {
	out := make([]T, len(x.order))
	for i, n := range x.order {
		out[i] = x.byName[n]
	}
	return out
}

// Len returns the number of entries.
func (x Index[T]) Len() int {
	return len(x.order)
}

// foldChain merges the declarations of a root-first chain. A subtype
// declaration replaces a supertype declaration of the same name and keeps
// the supertype's position.
func foldChain[T any](chain []*ProductCmptType, declared func(*ProductCmptType) []T, name func(T) string) Index[T] {
	x := Index[T]{byName: make(map[string]T)}
	for _, t := range chain {
		for _, d := range declared(t) {
			n := name(d)
			if _, ok := x.byName[n]; !ok {
				x.order = append(x.order, n)
			}
			x.byName[n] = d
		}
	}
	return x
}

// CollectProperties returns the properties declared by t and its supertypes.
func CollectProperties(repo TypeRepository, t *ProductCmptType) (Index[*Property], error) {
	chain, err := TypeChain(repo, t)
	if err != nil {
		return Index[*Property]{}, err
	}
	return foldChain(chain, repo.DeclaredProperties, func(p *Property) string { return p.Name }), nil
}

// CollectAssociations returns the associations declared by t and its
// supertypes.
func CollectAssociations(repo TypeRepository, t *ProductCmptType) (Index[*Association], error) {
	chain, err := TypeChain(repo, t)
	if err != nil {
		return Index[*Association]{}, err
	}
	return foldChain(chain,
		func(t *ProductCmptType) []*Association { return t.Associations },
		func(a *Association) string { return a.Name }), nil
}
