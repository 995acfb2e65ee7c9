package inject

import (
	"errors"
	"reflect"
)

const noInjectableConstructorReason = "type has no injectable constructor"

// injectRegistry synthesizes a constructor definition for any requested
// type that has an injectable constructor.
type injectRegistry struct {
	catalog  *ConstructorCatalog
	resolver ParameterResolver
}

var _ ServiceDefinitionRegistry = (*injectRegistry)(nil)

// NewInjectRegistry returns a registry that creates services through the
// constructors declared in catalog, or the zero value of struct types
// without constructors. Types it cannot construct have no definitions.
func NewInjectRegistry(catalog *ConstructorCatalog, resolver ParameterResolver) (ServiceDefinitionRegistry, error) {
	if catalog == nil {
		return nil, nilArgument("constructor catalog")
	}

	if resolver == nil {
		return nil, nilArgument("parameter resolver")
	}

	return &injectRegistry{catalog: catalog, resolver: resolver}, nil
}

func (r *injectRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	definition, err := r.definition(t)
	if err != nil {
		if isConfigurationError(err) {
			return nil, NoUniqueServiceError{ServiceType: t, Reason: noInjectableConstructorReason, Cause: err}
		}
		return nil, err
	}
	return definition, nil
}

func (r *injectRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	definition, err := r.definition(t)
	if err != nil {
		if isConfigurationError(err) {
			return nil, nil
		}
		return nil, err
	}
	return []*ServiceDefinition{definition}, nil
}

func (r *injectRegistry) definition(t reflect.Type) (*ServiceDefinition, error) {
	return NewConstructorDefinition(t, t, r.catalog, r.resolver)
}

func isConfigurationError(err error) bool {
	var configErr ConfigurationError
	var mismatchErr TypeMismatchError
	return errors.As(err, &configErr) || errors.As(err, &mismatchErr)
}
