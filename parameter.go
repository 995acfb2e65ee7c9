package inject

import (
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

// ParameterResolver produces the argument for one constructor or factory
// method parameter.
type ParameterResolver interface {
	ResolveParameter(t reflect.Type, finder ServiceFinder) (reflect.Value, error)
}

// ParameterResolverFunc adapts a function to ParameterResolver.
type ParameterResolverFunc func(t reflect.Type, finder ServiceFinder) (reflect.Value, error)

func (f ParameterResolverFunc) ResolveParameter(t reflect.Type, finder ServiceFinder) (reflect.Value, error) {
	return f(t, finder)
}

// NewParameterResolver returns the default resolver. Collection parameters
// receive every service of their element type:
//
//	iter.Seq[E]                   all services, in finder order
//	map[E]struct{}, map[E]bool    all services, deduplicated
//	[]E                           all services, in a fresh slice
//
// Any other parameter, including collections whose element type is itself
// a collection or a generic instantiation, receives exactly one service of
// the declared type.
func NewParameterResolver() ParameterResolver {
	return parameterResolver{}
}

type parameterResolver struct{}

func (parameterResolver) ResolveParameter(t reflect.Type, finder ServiceFinder) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, ConfigurationError{Operation: "parameter", Cause: ErrServiceTypeNil}
	}

	shape, elem := reflection.ShapeOf(t)
	if shape == reflection.Single {
		service, err := finder.FindService(t)
		if err != nil {
			return reflect.Value{}, err
		}
		return serviceValue(service, t)
	}

	services, err := finder.FindServices(elem)
	if err != nil {
		return reflect.Value{}, err
	}

	values := make([]reflect.Value, len(services))
	for i, service := range services {
		if values[i], err = serviceValue(service, elem); err != nil {
			return reflect.Value{}, err
		}
	}

	switch shape {
	case reflection.Seq:
		return seqOf(t, values), nil
	case reflection.Set:
		return setOf(t, elem, values)
	default:
		slice := reflect.MakeSlice(t, len(values), len(values))
		for i, v := range values {
			slice.Index(i).Set(v)
		}
		return slice, nil
	}
}

func serviceValue(service any, t reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(service)
	if !v.IsValid() {
		return reflect.Value{}, ServiceCreationError{ServiceType: t, Cause: ErrNilService}
	}

	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, TypeMismatchError{Expected: t, Actual: v.Type(), Context: "parameter"}
	}

	if v.Type() != t {
		converted := reflect.New(t).Elem()
		converted.Set(v)
		return converted, nil
	}

	return v, nil
}

// seqOf builds an iter.Seq over a snapshot of values.
func seqOf(t reflect.Type, values []reflect.Value) reflect.Value {
	return reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		yield := args[0]
		for _, v := range values {
			if !yield.Call([]reflect.Value{v})[0].Bool() {
				break
			}
		}
		return nil
	})
}

func setOf(t, elem reflect.Type, values []reflect.Value) (reflect.Value, error) {
	member := reflect.Zero(t.Elem())
	if t.Elem().Kind() == reflect.Bool {
		member = reflect.ValueOf(true).Convert(t.Elem())
	}

	set := reflect.MakeMapWithSize(t, len(values))
	for _, v := range values {
		// An interface element is comparable, its dynamic value may not be.
		if !v.Comparable() {
			actual := v.Type()
			if v.Kind() == reflect.Interface {
				actual = v.Elem().Type()
			}
			return reflect.Value{}, TypeMismatchError{Expected: elem, Actual: actual, Context: "set element (not comparable)"}
		}
		set.SetMapIndex(v, member)
	}
	return set, nil
}
