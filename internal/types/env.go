package types

// Env is the checker's persistent, parent-chained type environment
// (spec.md §4.4.1's "env" field; spec.md §5: "The type environment is
// threaded functionally (persistent map) inside the checker"). Extend
// never mutates the receiver, so a closure over an outer Env remains
// valid after an inner scope extends it — the same sharing discipline
// the module graph (§3 "Ownership and lifecycle") uses for its
// write-once records.
type Env struct {
	parent *Env
	name   string
	scheme *Scheme
}

// NewEnv returns an empty environment; callers extend it with
// primitives and builtins before checking user declarations.
func NewEnv() *Env { return nil }

// Extend returns a new environment with name bound to scheme, shadowing
// any outer binding of the same name.
func (e *Env) Extend(name string, scheme *Scheme) *Env {
	return &Env{parent: e, name: name, scheme: scheme}
}

// Lookup walks outward from e, returning the nearest binding.
func (e *Env) Lookup(name string) (*Scheme, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.scheme, true
		}
	}
	return nil, false
}
