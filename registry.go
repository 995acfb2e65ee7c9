package inject

import (
	"reflect"
)

// ServiceDefinitionRegistry looks up the service definitions registered for
// a type.
type ServiceDefinitionRegistry interface {
	// FindServiceDefinition returns the only definition for t. It fails
	// with a NoUniqueServiceError when there are none or several.
	FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error)

	// FindServiceDefinitions returns every definition for t in
	// registration order. Absence is an empty result, not an error.
	FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error)
}

// FindUniqueServiceDefinition reduces the definitions registry holds for t
// to exactly one. Registries implement FindServiceDefinition with it unless
// they need a different policy.
func FindUniqueServiceDefinition(registry ServiceDefinitionRegistry, t reflect.Type) (*ServiceDefinition, error) {
	definitions, err := registry.FindServiceDefinitions(t)
	if err != nil {
		return nil, err
	}

	if len(definitions) != 1 {
		return nil, NoUniqueServiceError{ServiceType: t, Count: len(definitions)}
	}

	return definitions[0], nil
}

// serviceDefinitionRegistry is a fixed multimap of definitions keyed by
// service type.
type serviceDefinitionRegistry struct {
	definitions map[reflect.Type][]*ServiceDefinition
}

var _ ServiceDefinitionRegistry = (*serviceDefinitionRegistry)(nil)

// NewServiceDefinitionRegistry returns a registry holding definitions.
func NewServiceDefinitionRegistry(definitions ...*ServiceDefinition) (ServiceDefinitionRegistry, error) {
	registry := &serviceDefinitionRegistry{
		definitions: make(map[reflect.Type][]*ServiceDefinition, len(definitions)),
	}

	for _, definition := range definitions {
		if definition == nil {
			return nil, nilArgument("service definition")
		}
		t := definition.ServiceType()
		registry.definitions[t] = append(registry.definitions[t], definition)
	}

	return registry, nil
}

func (r *serviceDefinitionRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	return FindUniqueServiceDefinition(r, t)
}

func (r *serviceDefinitionRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "registry lookup", Cause: ErrServiceTypeNil}
	}

	definitions := r.definitions[t]
	return definitions[:len(definitions):len(definitions)], nil
}

// RegistryBuilder assembles a registry from single definitions and whole
// registries. Errors are sticky and reported by Build.
type RegistryBuilder struct {
	definitions []*ServiceDefinition
	registries  []ServiceDefinitionRegistry
	err         error
}

// NewRegistryBuilder returns an empty RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// ServiceDefinition adds one definition.
func (b *RegistryBuilder) ServiceDefinition(definition *ServiceDefinition) *RegistryBuilder {
	if b.err != nil {
		return b
	}

	if definition == nil {
		b.err = nilArgument("service definition")
		return b
	}

	b.definitions = append(b.definitions, definition)
	return b
}

// ServiceDefinitionRegistry adds every definition of registry.
func (b *RegistryBuilder) ServiceDefinitionRegistry(registry ServiceDefinitionRegistry) *RegistryBuilder {
	if b.err != nil {
		return b
	}

	if registry == nil {
		b.err = nilArgument("service definition registry")
		return b
	}

	b.registries = append(b.registries, registry)
	return b
}

// Build returns the added registries followed by the added definitions as
// one composite registry.
func (b *RegistryBuilder) Build() (ServiceDefinitionRegistry, error) {
	if b.err != nil {
		return nil, b.err
	}

	plain, err := NewServiceDefinitionRegistry(b.definitions...)
	if err != nil {
		return nil, err
	}

	members := make([]ServiceDefinitionRegistry, 0, len(b.registries)+1)
	members = append(members, b.registries...)
	members = append(members, plain)

	return NewCompositeRegistry(members...), nil
}

// compositeRegistry unions its members in member order.
type compositeRegistry struct {
	registries []ServiceDefinitionRegistry
}

// NewCompositeRegistry returns a registry whose definitions for a type are
// those of every member, concatenated in member order.
func NewCompositeRegistry(registries ...ServiceDefinitionRegistry) ServiceDefinitionRegistry {
	return &compositeRegistry{
		registries: append([]ServiceDefinitionRegistry(nil), registries...),
	}
}

func (r *compositeRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	return FindUniqueServiceDefinition(r, t)
}

func (r *compositeRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	var all []*ServiceDefinition
	for _, registry := range r.registries {
		definitions, err := registry.FindServiceDefinitions(t)
		if err != nil {
			return nil, err
		}
		all = append(all, definitions...)
	}
	return all, nil
}

// fallbackRegistry consults fallback only when primary has nothing usable.
type fallbackRegistry struct {
	primary  ServiceDefinitionRegistry
	fallback ServiceDefinitionRegistry
}

// NewFallbackRegistry returns a registry that answers from primary and
// falls back to fallback when primary holds no definitions for a type.
// For a unique lookup it also falls back when primary is ambiguous. The
// two are never merged.
func NewFallbackRegistry(primary, fallback ServiceDefinitionRegistry) (ServiceDefinitionRegistry, error) {
	if primary == nil {
		return nil, nilArgument("primary registry")
	}

	if fallback == nil {
		return nil, nilArgument("fallback registry")
	}

	return &fallbackRegistry{primary: primary, fallback: fallback}, nil
}

func (r *fallbackRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	definition, err := r.primary.FindServiceDefinition(t)
	if IsNoUniqueService(err) {
		return r.fallback.FindServiceDefinition(t)
	}
	return definition, err
}

func (r *fallbackRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	definitions, err := r.primary.FindServiceDefinitions(t)
	if err != nil {
		return nil, err
	}

	if len(definitions) > 0 {
		return definitions, nil
	}

	return r.fallback.FindServiceDefinitions(t)
}
