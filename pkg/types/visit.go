package types

// VisitGuard detects cycles while following named references.
type VisitGuard struct {
	seen map[string]bool
	path []string
}

// NewVisitGuard returns an empty guard.
func NewVisitGuard() *VisitGuard {
	return &VisitGuard{seen: make(map[string]bool)}
}

// Enter records name and reports false if it was already visited.
func (g *VisitGuard) Enter(name string) bool {
	if g.seen[name] {
		g.path = append(g.path, name)
		return false
	}
	g.seen[name] = true
	g.path = append(g.path, name)
	return true
}

// Path returns the names in the order they were entered. After a failed
// Enter the repeated name is the last element.
func (g *VisitGuard) Path() []string {
	return append([]string(nil), g.path...)
}
