package config

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ProtocolFactory builds the prototype instance of a protocol slot.
type ProtocolFactory func(s *Scope) (sim.Protocol, error)

// InitializerFactory builds an initializer.
type InitializerFactory func(s *Scope) (sim.Initializer, error)

// DynamicsFactory builds a dynamics control.
type DynamicsFactory func(s *Scope) (sim.Dynamics, error)

// ObserverFactory builds an observer.
type ObserverFactory func(s *Scope) (sim.Observer, error)

// Registry maps component type names to constructors.
type Registry struct {
	protocols    map[string]ProtocolFactory
	initializers map[string]InitializerFactory
	dynamics     map[string]DynamicsFactory
	observers    map[string]ObserverFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		protocols:    make(map[string]ProtocolFactory),
		initializers: make(map[string]InitializerFactory),
		dynamics:     make(map[string]DynamicsFactory),
		observers:    make(map[string]ObserverFactory),
	}
}

// DefaultRegistry returns a registry holding every built-in component.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

func register[F any](m map[string]F, kind, name string, f F) {
	if _, dup := m[name]; dup {
		panic(fmt.Sprintf("Registry: %s type %q registered twice", kind, name))
	}
	m[name] = f
}

// RegisterProtocol adds a protocol type. Panics on duplicate names.
func (r *Registry) RegisterProtocol(name string, f ProtocolFactory) {
	register(r.protocols, "protocol", name, f)
}

// RegisterInitializer adds an initializer type. Panics on duplicate names.
func (r *Registry) RegisterInitializer(name string, f InitializerFactory) {
	register(r.initializers, "initializer", name, f)
}

// RegisterDynamics adds a dynamics type. Panics on duplicate names.
func (r *Registry) RegisterDynamics(name string, f DynamicsFactory) {
	register(r.dynamics, "dynamics", name, f)
}

// RegisterObserver adds an observer type. Panics on duplicate names.
func (r *Registry) RegisterObserver(name string, f ObserverFactory) {
	register(r.observers, "observer", name, f)
}

func sortedNames[F any](m map[string]F) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}

// ProtocolTypes lists registered protocol types in sorted order.
func (r *Registry) ProtocolTypes() []string { return sortedNames(r.protocols) }

// InitializerTypes lists registered initializer types in sorted order.
func (r *Registry) InitializerTypes() []string { return sortedNames(r.initializers) }

// DynamicsTypes lists registered dynamics types in sorted order.
func (r *Registry) DynamicsTypes() []string { return sortedNames(r.dynamics) }

// ObserverTypes lists registered observer types in sorted order.
func (r *Registry) ObserverTypes() []string { return sortedNames(r.observers) }

// control resolves a control spec to exactly one of dynamics or observer.
// An empty kind is inferred when the type is registered under one kind only.
func (r *Registry) control(c ComponentSpec) (string, error) {
	_, isDyn := r.dynamics[c.Type]
	_, isObs := r.observers[c.Type]
	switch c.Kind {
	case KindDynamics:
		if !isDyn {
			return "", fmt.Errorf("unknown dynamics type %q; valid: %v", c.Type, r.DynamicsTypes())
		}
		return KindDynamics, nil
	case KindObserver:
		if !isObs {
			return "", fmt.Errorf("unknown observer type %q; valid: %v", c.Type, r.ObserverTypes())
		}
		return KindObserver, nil
	}
	switch {
	case isDyn && isObs:
		return "", fmt.Errorf("type %q is both dynamics and observer; set kind", c.Type)
	case isDyn:
		return KindDynamics, nil
	case isObs:
		return KindObserver, nil
	}
	return "", fmt.Errorf("unknown control type %q; valid dynamics: %v, observers: %v", c.Type, r.DynamicsTypes(), r.ObserverTypes())
}
