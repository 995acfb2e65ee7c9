package inject

import (
	"reflect"
)

// finderRegistry presents the services of a finder as constant
// definitions.
type finderRegistry struct {
	finder ServiceFinder
}

var _ ServiceDefinitionRegistry = (*finderRegistry)(nil)

// NewFinderRegistry returns a registry backed by finder, typically a parent
// container. Every service the finder resolves becomes a constant
// definition. A ServiceCreationError from the finder reads as absence: a
// NoUniqueServiceError for unique lookups and an empty result otherwise.
func NewFinderRegistry(finder ServiceFinder) (ServiceDefinitionRegistry, error) {
	if finder == nil {
		return nil, nilArgument("service finder")
	}
	return &finderRegistry{finder: finder}, nil
}

func (r *finderRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	service, err := r.finder.FindService(t)
	if err != nil {
		if IsServiceCreation(err) {
			return nil, NoUniqueServiceError{ServiceType: t, Cause: err}
		}
		return nil, err
	}

	return newConstant(t, service), nil
}

func (r *finderRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	services, err := r.finder.FindServices(t)
	if err != nil {
		if IsServiceCreation(err) {
			return nil, nil
		}
		return nil, err
	}

	definitions := make([]*ServiceDefinition, len(services))
	for i, service := range services {
		definitions[i] = newConstant(t, service)
	}
	return definitions, nil
}
