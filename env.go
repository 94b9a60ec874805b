// env.go — lexical environments.
package tl

// Env is one scope frame in the lexical chain. Lookups walk outward through
// parents; definitions always land in the receiver frame, so an inner
// Define shadows rather than mutates an outer binding.
type Env struct {
	parent *Env
	table  map[string]Value
	sealed bool
}

// NewEnv creates a scope frame whose parent is the given environment.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// Seal marks the frame read-only. The prelude frame is sealed so user code
// can shadow builtins but never replace them.
func (e *Env) Seal() { e.sealed = true }

// Define binds name to value in this frame, shadowing any outer binding.
// Defining in a sealed frame is a no-op returning false.
func (e *Env) Define(name string, v Value) bool {
	if e.sealed {
		return false
	}
	e.table[name] = v
	return true
}

// Lookup resolves a name through the scope chain, innermost first.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Has reports whether the name is bound in this frame only.
func (e *Env) Has(name string) bool {
	_, ok := e.table[name]
	return ok
}
