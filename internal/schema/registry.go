package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collision records two different Schemas that were flattened under the
// same name. The later one replaced the earlier one in the registry.
type Collision struct {
	Name        string
	Previous    *Schema
	Replacement *Schema
}

// Registry is the flat name to Schema table produced by Flatten. Iteration
// follows pre-order discovery.
type Registry struct {
	schemas    *orderedmap.OrderedMap[string, *Schema]
	collisions []Collision
}

// Flatten collects every Schema reachable from root, root first, each
// exactly once. Cycles are followed only once.
func Flatten(root *Schema) *Registry {
	r := &Registry{schemas: orderedmap.New[string, *Schema]()}
	visited := make(map[*Schema]bool)

	var collect func(s *Schema)
	collect = func(s *Schema) {
		if s == nil || visited[s] {
			return
		}
		visited[s] = true
		r.add(s)
		for _, dep := range s.Dependencies() {
			collect(dep)
		}
	}
	collect(root)
	return r
}

// add stores s under its name; last write wins.
func (r *Registry) add(s *Schema) {
	if prev, ok := r.schemas.Get(s.Name); ok && prev != s {
		r.collisions = append(r.collisions, Collision{Name: s.Name, Previous: prev, Replacement: s})
	}
	r.schemas.Set(s.Name, s)
}

// Get returns the Schema stored under name.
func (r *Registry) Get(name string) (*Schema, bool) {
	return r.schemas.Get(name)
}

// Names returns schema names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.schemas.Len())
	for pair := r.schemas.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Schemas returns the stored Schemas in registry order.
func (r *Registry) Schemas() []*Schema {
	out := make([]*Schema, 0, r.schemas.Len())
	for pair := r.schemas.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of stored Schemas.
func (r *Registry) Len() int {
	return r.schemas.Len()
}

// Collisions returns every name collision detected while flattening.
func (r *Registry) Collisions() []Collision {
	return r.collisions
}
