// Package dobridge connects inject containers with github.com/samber/do.
//
// Services of a do injector become service definitions:
//
//	c, err := inject.NewBuilder().
//	    Module(dobridge.AddService[*Database](injector)).
//	    Build()
//
// and inject services can be provided to an injector:
//
//	dobridge.Provide[*Car](injector, c)
package dobridge

import (
	"github.com/samber/do/v2"

	"github.com/junioryono/inject"
)

// source invokes one service type on a do injector. Its Invoke method is
// the service method of the definitions built by Definition.
type source[T any] struct {
	injector do.Injector
}

func (s *source[T]) Invoke() (T, error) {
	return do.Invoke[T](s.injector)
}

// Definition returns a service definition for T that invokes T on
// injector each time the service is created. An inject container creates
// it once and caches it.
func Definition[T any](injector do.Injector) (*inject.ServiceDefinition, error) {
	if injector == nil {
		return nil, inject.ConfigurationError{Type: inject.TypeOf[T](), Operation: "do definition", Cause: inject.ErrNilArgument}
	}

	return inject.NewNamedMethodDefinition(&source[T]{injector: injector}, "Invoke", inject.NewParameterResolver())
}

// AddService is a module option registering Definition[T].
func AddService[T any](injector do.Injector) inject.ModuleOption {
	return func(b *inject.Builder) error {
		definition, err := Definition[T](injector)
		if err != nil {
			return err
		}
		return inject.AddServiceDefinition(definition)(b)
	}
}

// Provide registers a lazy do provider for T that resolves the only
// service of type T from finder.
func Provide[T any](injector do.Injector, finder inject.ServiceFinder) {
	do.Provide(injector, func(do.Injector) (T, error) {
		return inject.Resolve[T](finder)
	})
}

// ProvideNamed is Provide under an explicit do service name.
func ProvideNamed[T any](injector do.Injector, name string, finder inject.ServiceFinder) {
	do.ProvideNamed(injector, name, func(do.Injector) (T, error) {
		return inject.Resolve[T](finder)
	})
}
