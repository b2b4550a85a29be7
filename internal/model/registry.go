package model

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a fresh model instance.
type Factory func(clock Clock) Model

// Registry maps model names to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a case-insensitive name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// New builds the named model.
func (r *Registry) New(name string, clock Clock) (Model, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownModel, name, strings.Join(r.Names(), ", "))
	}
	return f(clock), nil
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
