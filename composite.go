package inject

import (
	"reflect"

	"github.com/google/uuid"
)

// compositeContainer presents several containers as one. It does not
// cache; each member caches its own services.
type compositeContainer struct {
	id         string
	containers []Container
}

var _ Container = (*compositeContainer)(nil)

// NewCompositeContainer returns a container whose services and definitions
// for a type are those of every member, concatenated in member order.
func NewCompositeContainer(containers ...Container) (Container, error) {
	for _, c := range containers {
		if c == nil {
			return nil, nilArgument("container")
		}
	}

	return &compositeContainer{
		id:         uuid.NewString(),
		containers: append([]Container(nil), containers...),
	}, nil
}

func (c *compositeContainer) ID() string {
	return c.id
}

func (c *compositeContainer) FindService(t reflect.Type) (any, error) {
	services, err := c.FindServices(t)
	if err != nil {
		return nil, err
	}
	return uniqueService(t, services)
}

func (c *compositeContainer) FindOptionalService(t reflect.Type) (any, bool, error) {
	services, err := c.FindServices(t)
	if err != nil {
		return nil, false, err
	}

	service, ok := optionalService(services)
	return service, ok, nil
}

func (c *compositeContainer) FindServices(t reflect.Type) ([]any, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "service lookup", Cause: ErrServiceTypeNil}
	}

	var all []any
	for _, member := range c.containers {
		services, err := member.FindServices(t)
		if err != nil {
			return nil, err
		}
		all = append(all, services...)
	}
	return all, nil
}

func (c *compositeContainer) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	return FindUniqueServiceDefinition(c, t)
}

func (c *compositeContainer) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	var all []*ServiceDefinition
	for _, member := range c.containers {
		definitions, err := member.FindServiceDefinitions(t)
		if err != nil {
			return nil, err
		}
		all = append(all, definitions...)
	}
	return all, nil
}
