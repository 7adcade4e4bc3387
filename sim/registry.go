package sim

import "fmt"

// Registry is a flat, name-indexed lookup table of components, grounded on
// akita's Simulation registry. It exists alongside the parent/child tree so
// that collaborators (the Network, statistics sinks) can find a component
// by its qualified name without walking the tree.
type Registry struct {
	byName map[string]Component
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Component)}
}

// Register indexes c under its qualified name. Registering the same name
// twice is fatal.
func (r *Registry) Register(c Component) {
	name := QualifiedName(c)
	if _, found := r.byName[name]; found {
		panic(fmt.Sprintf("component %q already registered", name))
	}

	r.byName[name] = c
}

// Lookup returns the component registered under name, or nil if none is.
func (r *Registry) Lookup(name string) Component {
	return r.byName[name]
}
