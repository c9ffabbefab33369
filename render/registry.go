package render

import "sort"

// ============================================================================
// REGISTRY — name → backend factory
// ============================================================================
// The registry is the single extension point for adding rendering backends
// without touching pipeline code. Registration does not validate that the
// produced value behaves — a broken backend surfaces when it is used.
//
// Registries are not synchronized; this module assumes single-threaded use.
// A multi-threaded caller must serialize Register/Get externally.
// ============================================================================

// Factory constructs a fresh Renderer instance.
type Factory func() Renderer

// Registry maps backend names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a name to a factory, overwriting any existing binding.
// There is no way to remove a binding.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Get constructs a renderer for the named backend.
func (r *Registry) Get(name string) (Renderer, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownRendererError{Name: name, Available: r.Names()}
	}
	return factory(), nil
}

// Names lists the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry holds the built-in backends, populated at process start.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds a backend to the process-wide registry.
func Register(name string, factory Factory) { defaultRegistry.Register(name, factory) }

// Get constructs a renderer from the process-wide registry.
func Get(name string) (Renderer, error) { return defaultRegistry.Get(name) }

// Names lists the process-wide registry's backends.
func Names() []string { return defaultRegistry.Names() }
