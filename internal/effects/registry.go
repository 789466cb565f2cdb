package effects

import (
	"fmt"
	"sort"

	"github.com/1broseidon/stratum/internal/config"
)

// Factory describes a loadable effect.
type Factory struct {
	Name        string
	Description string
	// Ordering sorts effects in the chain; lower runs first. Ties keep load
	// order.
	Ordering int
	// EnabledByDefault applies when the config has no "enabled" entry.
	EnabledByDefault bool
	// Supported reports whether the effect can run here. Nil means always.
	Supported func() bool
	Create    func(h *Handler, cfg config.Group) (Effect, error)
}

// Registry maps effect names to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds f. Names must be unique.
func (r *Registry) Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("effect factory has no name")
	}
	if f.Create == nil {
		return fmt.Errorf("effect %q has no constructor", f.Name)
	}
	if _, ok := r.factories[f.Name]; ok {
		return fmt.Errorf("effect %q already registered", f.Name)
	}
	r.factories[f.Name] = f
	return nil
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns every registered effect name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factories returns the registered factories sorted by name.
func (r *Registry) Factories() []Factory {
	out := make([]Factory, 0, len(r.factories))
	for _, name := range r.Names() {
		out = append(out, r.factories[name])
	}
	return out
}
