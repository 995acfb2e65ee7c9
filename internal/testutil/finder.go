package testutil

import (
	"reflect"

	"github.com/junioryono/inject"
)

// MapFinder is a ServiceFinder over a fixed set of services.
type MapFinder map[reflect.Type][]any

var _ inject.ServiceFinder = MapFinder(nil)

// Add appends service under t and returns the finder.
func (f MapFinder) Add(t reflect.Type, services ...any) MapFinder {
	f[t] = append(f[t], services...)
	return f
}

func (f MapFinder) FindService(t reflect.Type) (any, error) {
	services := f[t]
	if len(services) != 1 {
		return nil, inject.NoUniqueServiceError{ServiceType: t, Count: len(services)}
	}
	return services[0], nil
}

func (f MapFinder) FindOptionalService(t reflect.Type) (any, bool, error) {
	services := f[t]
	if len(services) != 1 {
		return nil, false, nil
	}
	return services[0], true, nil
}

func (f MapFinder) FindServices(t reflect.Type) ([]any, error) {
	return f[t], nil
}

// ErrFinder fails every lookup with Err.
type ErrFinder struct {
	Err error
}

func (f ErrFinder) FindService(reflect.Type) (any, error) {
	return nil, f.Err
}

func (f ErrFinder) FindOptionalService(reflect.Type) (any, bool, error) {
	return nil, false, f.Err
}

func (f ErrFinder) FindServices(reflect.Type) ([]any, error) {
	return nil, f.Err
}
