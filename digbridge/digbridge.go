// Package digbridge connects inject containers with go.uber.org/dig.
//
// A dig container can serve as the parent of an inject container:
//
//	parent := digbridge.NewFinder(digContainer)
//	c, err := inject.NewBuilder().Parent(parent).Build()
//
// and inject services can be provided to dig:
//
//	err := digbridge.Provide(digContainer, c, inject.TypeOf[Greeter]())
package digbridge

import (
	"reflect"
	"sync"

	"go.uber.org/dig"

	"github.com/junioryono/inject"
)

var (
	inType    = reflect.TypeOf(dig.In{})
	outType   = reflect.TypeOf(dig.Out{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Finder exposes the values of a dig container as an inject.ServiceFinder.
// dig holds at most one value per type, so FindServices returns zero or
// one service. A zero value provided to dig cannot be told apart from a
// missing one and reads as absent.
//
// Lookups are serialized because dig containers are not safe for
// concurrent use.
type Finder struct {
	mu        sync.Mutex
	container *dig.Container
}

var _ inject.ServiceFinder = (*Finder)(nil)

// NewFinder returns a Finder for container.
func NewFinder(container *dig.Container) *Finder {
	return &Finder{container: container}
}

func (f *Finder) FindService(t reflect.Type) (any, error) {
	services, err := f.FindServices(t)
	if err != nil {
		return nil, err
	}

	if len(services) == 0 {
		return nil, inject.NoUniqueServiceError{ServiceType: t}
	}
	return services[0], nil
}

func (f *Finder) FindOptionalService(t reflect.Type) (any, bool, error) {
	services, err := f.FindServices(t)
	if err != nil || len(services) == 0 {
		return nil, false, err
	}
	return services[0], true, nil
}

// FindServices invokes a function taking an optional t and returns the
// value dig supplied. Errors reported by dig, such as a failing
// constructor, are returned as inject.ServiceCreationError.
func (f *Finder) FindServices(t reflect.Type) ([]any, error) {
	if t == nil {
		return nil, inject.ConfigurationError{Operation: "dig lookup", Cause: inject.ErrServiceTypeNil}
	}

	if !resolvable(t) {
		return nil, nil
	}

	params := reflect.StructOf([]reflect.StructField{
		{Name: "In", Type: inType, Anonymous: true},
		{Name: "Value", Type: t, Tag: `optional:"true"`},
	})

	var value reflect.Value
	fn := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{params}, nil, false), func(args []reflect.Value) []reflect.Value {
		value = args[0].Field(1)
		return nil
	})

	f.mu.Lock()
	err := f.container.Invoke(fn.Interface())
	f.mu.Unlock()

	if err != nil {
		return nil, inject.ServiceCreationError{ServiceType: t, Message: "dig invoke failed", Cause: err}
	}

	if !value.IsValid() || value.IsZero() {
		return nil, nil
	}

	return []any{value.Interface()}, nil
}

// resolvable reports whether dig can supply t as a parameter.
func resolvable(t reflect.Type) bool {
	if t == errorType || t == inType || t == outType {
		return false
	}
	return !dig.IsIn(t) && !dig.IsOut(t)
}

// Provide registers a dig constructor for t that resolves the only service
// of type t from finder. The service is looked up when dig first needs it.
func Provide(container *dig.Container, finder inject.ServiceFinder, t reflect.Type) error {
	if container == nil || finder == nil || t == nil {
		return inject.ConfigurationError{Type: t, Operation: "dig provide", Cause: inject.ErrNilArgument}
	}

	fn := reflect.MakeFunc(reflect.FuncOf(nil, []reflect.Type{t, errorType}, false), func([]reflect.Value) []reflect.Value {
		service, err := finder.FindService(t)
		if err != nil {
			return []reflect.Value{reflect.Zero(t), reflect.ValueOf(&err).Elem()}
		}

		v := reflect.New(t).Elem()
		v.Set(reflect.ValueOf(service))
		return []reflect.Value{v, reflect.Zero(errorType)}
	})

	return container.Provide(fn.Interface())
}

// ProvideType is Provide for the type T.
func ProvideType[T any](container *dig.Container, finder inject.ServiceFinder) error {
	return Provide(container, finder, inject.TypeOf[T]())
}
