package inject

import (
	"reflect"
)

// ModuleOption represents a registration action within a module.
type ModuleOption func(*Builder) error

// NewModule creates a new module with the given name and options. Modules
// group related registrations; the first failing option stops the module
// and its error is wrapped in a ModuleError naming the module.
//
// Example:
//
//	var EngineModule = inject.NewModule("engine",
//	    inject.AddInjectConstructor(NewEngine),
//	    inject.AddSingleton(&FuelPump{}),
//	)
//
//	var CarModule = inject.NewModule("car",
//	    EngineModule,
//	    inject.AddFactory(&CarFactory{}),
//	)
func NewModule(name string, options ...ModuleOption) ModuleOption {
	return func(b *Builder) error {
		for _, option := range options {
			if option == nil {
				continue
			}

			if err := option(b); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// AddSingleton registers instance like Builder.Singleton.
func AddSingleton(instance any) ModuleOption {
	return func(b *Builder) error {
		return b.addSingleton(instance)
	}
}

// AddSingletonAs registers instance like Builder.SingletonAs.
func AddSingletonAs(instance any, types ...reflect.Type) ModuleOption {
	return func(b *Builder) error {
		return b.addSingleton(instance, types...)
	}
}

// AddFactory registers the service methods of factory like
// Builder.Factory.
func AddFactory(factory any) ModuleOption {
	return func(b *Builder) error {
		return b.addFactory(factory)
	}
}

// AddConstructor declares a constructor like Builder.Constructor.
func AddConstructor(fn any) ModuleOption {
	return func(b *Builder) error {
		return b.addConstructor(fn, false)
	}
}

// AddInjectConstructor declares a constructor like
// Builder.InjectConstructor.
func AddInjectConstructor(fn any) ModuleOption {
	return func(b *Builder) error {
		return b.addConstructor(fn, true)
	}
}

// AddServiceDefinition registers definition like Builder.ServiceDefinition.
func AddServiceDefinition(definition *ServiceDefinition) ModuleOption {
	return func(b *Builder) error {
		return b.addServiceDefinition(definition)
	}
}

// AddRegistry adds registry like Builder.ServiceDefinitionRegistry.
func AddRegistry(registry ServiceDefinitionRegistry) ModuleOption {
	return func(b *Builder) error {
		return b.addRegistry(registry)
	}
}
