package inject

import (
	"reflect"
)

// binding is either a typed definition or a singleton bound to its
// dynamic type and every interface that type implements.
type binding struct {
	definition *ServiceDefinition

	instance     any
	instanceType reflect.Type
}

func (b binding) matches(t reflect.Type) bool {
	if b.definition != nil {
		return b.definition.ServiceType() == t
	}

	if t == b.instanceType {
		return true
	}

	return t.Kind() == reflect.Interface && b.instanceType.Implements(t)
}

func (b binding) definitionFor(t reflect.Type) *ServiceDefinition {
	if b.definition != nil {
		return b.definition
	}
	return newConstant(t, b.instance)
}

// bindingRegistry keeps the explicit bindings of a builder in registration
// order.
type bindingRegistry struct {
	bindings []binding
}

var _ ServiceDefinitionRegistry = (*bindingRegistry)(nil)

func (r *bindingRegistry) addDefinition(definition *ServiceDefinition) {
	r.bindings = append(r.bindings, binding{definition: definition})
}

func (r *bindingRegistry) addSingleton(instance any) {
	r.bindings = append(r.bindings, binding{
		instance:     instance,
		instanceType: reflect.TypeOf(instance),
	})
}

func (r *bindingRegistry) clone() *bindingRegistry {
	return &bindingRegistry{bindings: append([]binding(nil), r.bindings...)}
}

func (r *bindingRegistry) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	return FindUniqueServiceDefinition(r, t)
}

func (r *bindingRegistry) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "registry lookup", Cause: ErrServiceTypeNil}
	}

	var definitions []*ServiceDefinition
	for _, b := range r.bindings {
		if b.matches(t) {
			definitions = append(definitions, b.definitionFor(t))
		}
	}
	return definitions, nil
}
