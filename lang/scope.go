package lang

import (
	"maps"
	"slices"
)

// Scope is one frame of local bindings linked to its parent. A scope is
// created for each function or macro invocation and discarded when the
// call returns.
type Scope struct {
	parent *Scope
	vars   map[string]Value
}

// NewScope returns an empty scope whose parent is parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]Value)}
}

// NewScopeFrom returns a child of parent holding vars.
func NewScopeFrom(parent *Scope, vars map[string]Value) *Scope {
	s := NewScope(parent)
	maps.Copy(s.vars, vars)

	return s
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Root returns the outermost scope of the chain.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}

	return s
}

// Depth returns the number of ancestors of s.
func (s *Scope) Depth() int {
	n := 0
	for p := s.parent; p != nil; p = p.parent {
		n++
	}

	return n
}

// Get returns the binding of key in s or the nearest ancestor that has
// one, or [Null] if no scope in the chain binds key.
func (s *Scope) Get(key string) Value {
	v, _ := s.Lookup(key)

	return v
}

// Lookup is like [Scope.Get] and also reports whether key was found.
func (s *Scope) Lookup(key string) (Value, bool) {
	for f := s; f != nil; f = f.parent {
		if v, ok := f.vars[key]; ok {
			return v, true
		}
	}

	return Null, false
}

// Local returns the binding of key in s only.
func (s *Scope) Local(key string) (Value, bool) {
	if s == nil {
		return Null, false
	}

	v, ok := s.vars[key]
	if !ok {
		return Null, false
	}

	return v, true
}

// Set binds key in s, never in a parent, shadowing any outer binding.
func (s *Scope) Set(key string, v Value) { s.vars[key] = v }

// Delete removes the binding of key from s.
func (s *Scope) Delete(key string) { delete(s.vars, key) }

// Keys returns the names bound in s, sorted.
func (s *Scope) Keys() []string { return slices.Sorted(maps.Keys(s.vars)) }

// Visible returns every name bound in s or an ancestor, sorted.
func (s *Scope) Visible() []string {
	seen := make(map[string]struct{})
	for f := s; f != nil; f = f.parent {
		for key := range f.vars {
			seen[key] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
