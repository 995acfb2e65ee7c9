package inject

import (
	"reflect"

	"github.com/junioryono/inject/internal/graph"
)

// ServiceFinder looks up services by type.
type ServiceFinder interface {
	// FindService returns the only service of type t. It fails with a
	// NoUniqueServiceError when there are none or several.
	FindService(t reflect.Type) (any, error)

	// FindOptionalService returns the only service of type t. ok is false
	// when there are none or several.
	FindOptionalService(t reflect.Type) (service any, ok bool, err error)

	// FindServices returns every service of type t. Absence is an empty
	// result, not an error.
	FindServices(t reflect.Type) ([]any, error)
}

// pathFinder is implemented by finders that track the chain of types
// under construction.
type pathFinder interface {
	findServicesOnPath(t reflect.Type, path *graph.Path) ([]any, error)
}

// uniqueService reduces services to exactly one.
func uniqueService(t reflect.Type, services []any) (any, error) {
	if len(services) != 1 {
		return nil, NoUniqueServiceError{ServiceType: t, Count: len(services)}
	}
	return services[0], nil
}

func optionalService(services []any) (any, bool) {
	if len(services) != 1 {
		return nil, false
	}
	return services[0], true
}

// serviceDefinitionFinder is the finder handed to a definition while it
// creates its service. It attributes a failed unique lookup to the
// definition being created.
type serviceDefinitionFinder struct {
	finder     ServiceFinder
	definition *ServiceDefinition
	path       *graph.Path
}

var _ ServiceFinder = (*serviceDefinitionFinder)(nil)

func newServiceDefinitionFinder(finder ServiceFinder, definition *ServiceDefinition, path *graph.Path) *serviceDefinitionFinder {
	return &serviceDefinitionFinder{finder: finder, definition: definition, path: path}
}

func (f *serviceDefinitionFinder) FindService(t reflect.Type) (any, error) {
	var (
		service any
		err     error
	)

	if pf, ok := f.finder.(pathFinder); ok {
		var services []any
		if services, err = pf.findServicesOnPath(t, f.path); err != nil {
			return nil, err
		}
		service, err = uniqueService(t, services)
	} else {
		service, err = f.finder.FindService(t)
	}

	if IsNoUniqueService(err) {
		return nil, NoUniqueServiceError{
			ServiceType: t,
			Consumer:    f.definition.ServiceType(),
			Cause:       err,
		}
	}

	return service, err
}

func (f *serviceDefinitionFinder) FindOptionalService(t reflect.Type) (any, bool, error) {
	pf, ok := f.finder.(pathFinder)
	if !ok {
		return f.finder.FindOptionalService(t)
	}

	services, err := pf.findServicesOnPath(t, f.path)
	if err != nil {
		return nil, false, err
	}

	service, found := optionalService(services)
	return service, found, nil
}

func (f *serviceDefinitionFinder) FindServices(t reflect.Type) ([]any, error) {
	if pf, ok := f.finder.(pathFinder); ok {
		return pf.findServicesOnPath(t, f.path)
	}
	return f.finder.FindServices(t)
}
