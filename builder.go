package inject

import (
	"reflect"

	"go.uber.org/zap"
)

// Builder collects service registrations and builds a Container from them.
// Methods return the builder for chaining; the first error is kept and
// returned by Build. A Builder is not safe for concurrent use.
//
// The built container answers a type from the first of these layers that
// has services for it:
//
//  1. registries and factories added with ServiceDefinitionRegistry and
//     Factory, together with singletons and definitions, all unioned;
//  2. the constructors declared with Constructor and InjectConstructor, or
//     the zero value of struct types;
//  3. the parent finder.
type Builder struct {
	opts       *options
	registries []ServiceDefinitionRegistry
	bindings   *bindingRegistry
	catalog    *ConstructorCatalog
	parent     ServiceFinder
	err        error
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		opts:     newOptions(opts),
		bindings: &bindingRegistry{},
		catalog:  NewConstructorCatalog(),
	}
}

// ServiceDefinition registers definition under its service type.
func (b *Builder) ServiceDefinition(definition *ServiceDefinition) *Builder {
	return b.do(func() error { return b.addServiceDefinition(definition) })
}

// ServiceDefinitionRegistry adds every definition of registry.
func (b *Builder) ServiceDefinitionRegistry(registry ServiceDefinitionRegistry) *Builder {
	return b.do(func() error { return b.addRegistry(registry) })
}

// Factory registers the service methods of factory, which must embed
// Factory.
func (b *Builder) Factory(factory any) *Builder {
	return b.do(func() error { return b.addFactory(factory) })
}

// Singleton registers instance under its dynamic type and every interface
// that type implements.
func (b *Builder) Singleton(instance any) *Builder {
	return b.do(func() error { return b.addSingleton(instance) })
}

// SingletonAs registers instance under each of types only. Without types
// it behaves like Singleton.
func (b *Builder) SingletonAs(instance any, types ...reflect.Type) *Builder {
	return b.do(func() error { return b.addSingleton(instance, types...) })
}

// Parent sets the finder consulted for types no other layer provides.
//
// Struct and pointer-to-struct types are always provided locally, from a
// declared constructor or their zero value, so the parent is never asked
// for them and its services of such types are shadowed. Use a Scope for a
// child container that sees the concrete services of its parent.
func (b *Builder) Parent(parent ServiceFinder) *Builder {
	return b.do(func() error { return b.setParent(parent) })
}

// Constructor declares fn as a constructor of its first result type.
func (b *Builder) Constructor(fn any) *Builder {
	return b.do(func() error { return b.addConstructor(fn, false) })
}

// InjectConstructor declares fn as the constructor to use when its result
// type declares more than one.
func (b *Builder) InjectConstructor(fn any) *Builder {
	return b.do(func() error { return b.addConstructor(fn, true) })
}

// Module applies the registrations of m.
func (b *Builder) Module(m ModuleOption) *Builder {
	return b.do(func() error {
		if m == nil {
			return nilArgument("module")
		}
		return m(b)
	})
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error {
	return b.err
}

// Build returns a container for the registrations made so far. The builder
// can keep being used; later registrations do not affect the container.
func (b *Builder) Build() (Container, error) {
	if b.err != nil {
		return nil, b.err
	}

	layers := make([]ServiceDefinitionRegistry, 0, len(b.registries)+1)
	layers = append(layers, b.registries...)
	layers = append(layers, b.bindings.clone())

	catalog := b.catalog.clone()

	injectRegistry, err := NewInjectRegistry(catalog, b.opts.resolver)
	if err != nil {
		return nil, err
	}

	registry, err := NewFallbackRegistry(NewCompositeRegistry(layers...), injectRegistry)
	if err != nil {
		return nil, err
	}

	if b.parent != nil {
		parentRegistry, err := NewFinderRegistry(b.parent)
		if err != nil {
			return nil, err
		}

		if registry, err = NewFallbackRegistry(registry, parentRegistry); err != nil {
			return nil, err
		}
	}

	c := newContainer(registry, b.opts)

	c.logger.Debug("container built",
		zap.Int("registries", len(b.registries)),
		zap.Int("bindings", len(b.bindings.bindings)),
		zap.Int("constructors", catalog.Len()),
		zap.Bool("parent", b.parent != nil),
	)

	return c, nil
}

func (b *Builder) do(fn func() error) *Builder {
	if b.err != nil {
		return b
	}
	b.err = fn()
	return b
}

func (b *Builder) addServiceDefinition(definition *ServiceDefinition) error {
	if definition == nil {
		return nilArgument("service definition")
	}
	b.bindings.addDefinition(definition)
	return nil
}

func (b *Builder) addRegistry(registry ServiceDefinitionRegistry) error {
	if registry == nil {
		return nilArgument("service definition registry")
	}
	b.registries = append(b.registries, registry)
	return nil
}

func (b *Builder) addFactory(factory any) error {
	registry, err := NewFactoryRegistry(factory, b.opts.resolver)
	if err != nil {
		return err
	}
	b.registries = append(b.registries, registry)
	return nil
}

func (b *Builder) addSingleton(instance any, types ...reflect.Type) error {
	if len(types) == 0 {
		if instance == nil {
			return ConfigurationError{Operation: "singleton", Cause: ErrNilService}
		}

		// Rejects typed nil pointers.
		if _, err := NewConstantDefinition(reflect.TypeOf(instance), instance); err != nil {
			return err
		}

		b.bindings.addSingleton(instance)
		return nil
	}

	definitions := make([]*ServiceDefinition, 0, len(types))
	for _, t := range types {
		definition, err := NewConstantDefinition(t, instance)
		if err != nil {
			return err
		}
		definitions = append(definitions, definition)
	}

	for _, definition := range definitions {
		b.bindings.addDefinition(definition)
	}
	return nil
}

func (b *Builder) setParent(parent ServiceFinder) error {
	if parent == nil {
		return nilArgument("parent")
	}
	b.parent = parent
	return nil
}

func (b *Builder) addConstructor(fn any, inject bool) error {
	_, err := b.catalog.Declare(fn, inject)
	return err
}
