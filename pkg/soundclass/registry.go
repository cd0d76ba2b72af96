package soundclass

import (
	"fmt"
	"sort"
)

// AllName is the conventional name of the class holding every defined sound.
const AllName = "_ALL"

// Registry maps class names to classes. It is filled once while a rule file is
// loaded and only read afterwards, so it carries no locking.
type Registry struct {
	classes map[string]*Class
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Define registers c under name. Redefining a name replaces the earlier entry
// in place, which is how T=T*ː style extensions work.
func (r *Registry) Define(name string, c *Class) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("sound class must have a name")
	}
	if c == nil {
		return nil, fmt.Errorf("sound class %q has no definition", name)
	}
	if c.name != name {
		c = c.Rename(name)
	}
	if _, exists := r.classes[name]; !exists {
		r.order = append(r.order, name)
	}
	r.classes[name] = c
	return c, nil
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Get returns the class registered under name or an error.
func (r *Registry) Get(name string) (*Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown sound class: %q", name)
	}
	return c, nil
}

// Names returns class names in definition order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.order)
}

// Sounds returns the union of all sounds of all classes, longest first, so
// that callers doing prefix matching see multi-character sounds before their
// prefixes.
func (r *Registry) Sounds() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.order {
		for _, s := range r.classes[name].sounds {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

// DefineAll registers the AllName class as the union of every defined sound,
// unless one was defined explicitly.
func (r *Registry) DefineAll() *Class {
	if c, ok := r.classes[AllName]; ok {
		return c
	}
	b := NewBuilder(AllName)
	for _, name := range r.order {
		b.AddClass(r.classes[name])
	}
	c, _ := r.Define(AllName, b.Build())
	return c
}
