package inject

import (
	"context"
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// ErrContainerNotInContext is returned by FromContext when the context
// carries no container.
var ErrContainerNotInContext = errors.New("container not found in context")

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// Scope creates short-lived child containers over a long-lived parent,
// typically one per request.
//
// A container created by a Scope answers a type from the first of these
// that has services for it:
//
//  1. the context and values passed to NewContainer, together with the
//     scope constructors;
//  2. the parent.
//
// Scope containers never fall back to zero values, so concrete services
// of the parent stay visible. Each container caches its own services;
// the scope constructors run once per container.
type Scope struct {
	parent      ServiceDefinitionRegistry
	definitions []*ServiceDefinition
	opts        *options
}

// NewScope returns a Scope over parent. Each constructor is declared as
// the injectable constructor of its result type; two constructors for the
// same type are an error.
//
// The WithLogger and WithParameterResolver options apply. Containers get
// a fresh ID each.
func NewScope(parent ServiceFinder, constructors []any, opts ...Option) (*Scope, error) {
	if parent == nil {
		return nil, nilArgument("parent")
	}

	o := newOptions(opts)
	o.id = ""

	parentRegistry, err := NewFinderRegistry(parent)
	if err != nil {
		return nil, err
	}

	catalog := NewConstructorCatalog()
	types := make([]reflect.Type, 0, len(constructors))
	for _, fn := range constructors {
		t, err := catalog.Declare(fn, true)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	definitions := make([]*ServiceDefinition, 0, len(types))
	seen := make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true

		definition, err := NewConstructorDefinition(t, t, catalog, o.resolver)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}

	return &Scope{
		parent:      parentRegistry,
		definitions: definitions,
		opts:        o,
	}, nil
}

// NewContainer returns a new child container. ctx is its only
// context.Context service and each value is a service of its dynamic
// type. A *ServiceDefinition value is added as is, which registers a
// value under an interface type.
func (s *Scope) NewContainer(ctx context.Context, values ...any) (Container, error) {
	if ctx == nil {
		return nil, nilArgument("context")
	}

	local := make([]*ServiceDefinition, 0, len(values)+len(s.definitions)+1)

	definition, err := NewConstantDefinition(contextType, ctx)
	if err != nil {
		return nil, err
	}
	local = append(local, definition)

	for _, value := range values {
		if value == nil {
			return nil, ConfigurationError{Operation: "scope value", Cause: ErrNilService}
		}

		if definition, ok := value.(*ServiceDefinition); ok {
			if definition == nil {
				return nil, ConfigurationError{Operation: "scope value", Cause: ErrNilService}
			}
			local = append(local, definition)
			continue
		}

		definition, err := NewConstantDefinition(reflect.TypeOf(value), value)
		if err != nil {
			return nil, err
		}
		local = append(local, definition)
	}
	local = append(local, s.definitions...)

	registry, err := NewServiceDefinitionRegistry(local...)
	if err != nil {
		return nil, err
	}

	layered, err := NewFallbackRegistry(registry, s.parent)
	if err != nil {
		return nil, err
	}

	c := newContainer(layered, s.opts)
	c.logger.Debug("scope container created",
		zap.Int("values", len(values)),
		zap.Int("constructors", len(s.definitions)),
	)

	return c, nil
}

type containerContextKey struct{}

// NewContext returns a copy of ctx that carries c.
func NewContext(ctx context.Context, c Container) context.Context {
	return context.WithValue(ctx, containerContextKey{}, c)
}

// FromContext returns the container carried by ctx.
func FromContext(ctx context.Context) (Container, error) {
	if ctx == nil {
		return nil, ErrContainerNotInContext
	}

	c, ok := ctx.Value(containerContextKey{}).(Container)
	if !ok || c == nil {
		return nil, ErrContainerNotInContext
	}

	return c, nil
}
