package inject

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type of T. Unlike reflect.TypeOf it works for
// interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve is a generic helper function that resolves the only service of
// type T.
func Resolve[T any](finder ServiceFinder) (T, error) {
	var zero T

	instance, err := finder.FindService(TypeOf[T]())
	if err != nil {
		return zero, err
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed: expected %T, got %T", zero, instance)
	}

	return result, nil
}

// ResolveOptional is a generic helper function that resolves the only
// service of type T. ok is false when there are none or several.
func ResolveOptional[T any](finder ServiceFinder) (result T, ok bool, err error) {
	instance, found, err := finder.FindOptionalService(TypeOf[T]())
	if err != nil || !found {
		return result, false, err
	}

	result, ok = instance.(T)
	if !ok {
		return result, false, fmt.Errorf("type assertion failed: expected %T, got %T", result, instance)
	}

	return result, true, nil
}

// ResolveAll is a generic helper function that resolves every service of
// type T.
func ResolveAll[T any](finder ServiceFinder) ([]T, error) {
	instances, err := finder.FindServices(TypeOf[T]())
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(instances))
	for i, instance := range instances {
		result, ok := instance.(T)
		if !ok {
			return nil, fmt.Errorf("type assertion failed for item %d: expected %T, got %T",
				i, *new(T), instance)
		}
		results = append(results, result)
	}

	return results, nil
}

// MustResolve resolves a service and panics on error.
func MustResolve[T any](finder ServiceFinder) T {
	result, err := Resolve[T](finder)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", TypeOf[T](), err))
	}
	return result
}
