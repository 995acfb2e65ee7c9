package graph

import "reflect"

// Path is an immutable chain of the service types currently being
// constructed by one resolution. Pushing returns a new Path that shares
// its tail with the receiver, so a Path can be handed to concurrent
// resolutions without copying.
type Path struct {
	parent *Path
	node   reflect.Type
	depth  int
}

// Push returns a new path with t appended. A nil receiver is the empty
// path.
func (p *Path) Push(t reflect.Type) *Path {
	return &Path{parent: p, node: t, depth: p.Len() + 1}
}

// Len returns the number of types on the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Contains reports whether t is already on the path.
func (p *Path) Contains(t reflect.Type) bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.node == t {
			return true
		}
	}
	return false
}

// Types returns the types on the path, outermost first.
func (p *Path) Types() []reflect.Type {
	types := make([]reflect.Type, p.Len())
	for cur, i := p, p.Len()-1; cur != nil; cur, i = cur.parent, i-1 {
		types[i] = cur.node
	}
	return types
}

// Check returns a CircularDependencyError when t is already on the path.
// The reported path starts at the first occurrence of t.
func (p *Path) Check(t reflect.Type) error {
	if !p.Contains(t) {
		return nil
	}

	types := p.Types()
	for i, node := range types {
		if node == t {
			return CircularDependencyError{Node: t, Path: types[i:]}
		}
	}

	return CircularDependencyError{Node: t}
}
