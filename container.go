package inject

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junioryono/inject/internal/graph"
)

// Container resolves services from a registry and caches them. Each type
// is resolved at most once; later lookups return the cached services.
//
// Requesting the Container type itself returns the container. A service
// under construction receives a view of the container instead: while its
// constructor runs, lookups through that view continue the resolution path
// of the service, so a cycle closed through it is reported as a
// CircularDependencyError. Afterwards the view behaves like the container.
type Container interface {
	ServiceFinder
	ServiceDefinitionRegistry

	// ID returns the unique identifier of the container.
	ID() string
}

var containerType = reflect.TypeOf((*Container)(nil)).Elem()

type container struct {
	id       string
	registry ServiceDefinitionRegistry
	cache    *serviceCache
	logger   *zap.Logger
}

var (
	_ Container  = (*container)(nil)
	_ pathFinder = (*container)(nil)
	_ Container  = (*containerView)(nil)
	_ pathFinder = (*containerView)(nil)
)

// NewContainer returns a container that resolves services from registry.
// Only the WithLogger and WithID options apply.
func NewContainer(registry ServiceDefinitionRegistry, opts ...Option) (Container, error) {
	if registry == nil {
		return nil, nilArgument("service definition registry")
	}
	return newContainer(registry, newOptions(opts)), nil
}

func newContainer(registry ServiceDefinitionRegistry, opts *options) *container {
	id := opts.id
	if id == "" {
		id = uuid.NewString()
	}

	return &container{
		id:       id,
		registry: registry,
		cache:    newServiceCache(),
		logger:   opts.logger.With(zap.String("container", id)),
	}
}

func (c *container) ID() string {
	return c.id
}

func (c *container) FindService(t reflect.Type) (any, error) {
	services, err := c.FindServices(t)
	if err != nil {
		return nil, err
	}
	return uniqueService(t, services)
}

func (c *container) FindOptionalService(t reflect.Type) (any, bool, error) {
	services, err := c.FindServices(t)
	if err != nil {
		return nil, false, err
	}

	service, ok := optionalService(services)
	return service, ok, nil
}

// FindServices returns every service of type t, creating and caching them
// on first use.
//
// A NoUniqueServiceError raised by a dependency is returned wrapped in a
// ServiceCreationError, so a NoUniqueServiceError from FindService always
// concerns t itself.
func (c *container) FindServices(t reflect.Type) ([]any, error) {
	return c.findServicesOnPath(t, nil)
}

func (c *container) findServicesOnPath(t reflect.Type, path *graph.Path) ([]any, error) {
	if t == nil {
		return nil, ConfigurationError{Operation: "service lookup", Cause: ErrServiceTypeNil}
	}

	if t == containerType {
		return []any{c}, nil
	}

	if services, ok := c.cache.get(t); ok {
		c.logger.Debug("service cache hit", zap.Stringer("type", t), zap.Int("count", len(services)))
		return services, nil
	}

	if err := path.Check(t); err != nil {
		c.logger.Debug("circular dependency", zap.Stringer("type", t), zap.Error(err))
		return nil, err
	}

	services, err := c.cache.getOrCreate(t, func() ([]any, error) {
		return c.createServices(t, path.Push(t))
	})
	if err != nil {
		if IsNoUniqueService(err) {
			err = ServiceCreationError{ServiceType: t, Cause: err}
		}
		c.logger.Debug("service resolution failed", zap.Stringer("type", t), zap.Error(err))
		return nil, err
	}

	return services, nil
}

func (c *container) createServices(t reflect.Type, path *graph.Path) ([]any, error) {
	definitions, err := c.registry.FindServiceDefinitions(t)
	if err != nil {
		return nil, err
	}

	services := make([]any, 0, len(definitions))
	for _, definition := range definitions {
		view := c.view(path)
		service, err := definition.CreateService(newServiceDefinitionFinder(view, definition, path))
		view.release()
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}

	c.logger.Debug("services resolved",
		zap.Stringer("type", t),
		zap.Int("count", len(services)),
		zap.Int("depth", path.Len()),
	)

	return services, nil
}

func (c *container) FindServiceDefinition(t reflect.Type) (*ServiceDefinition, error) {
	return c.registry.FindServiceDefinition(t)
}

func (c *container) FindServiceDefinitions(t reflect.Type) ([]*ServiceDefinition, error) {
	return c.registry.FindServiceDefinitions(t)
}

// containerView is the container handed to a service under construction.
// Until release, lookups through it continue path.
type containerView struct {
	*container
	path atomic.Pointer[graph.Path]
}

func (c *container) view(path *graph.Path) *containerView {
	v := &containerView{container: c}
	v.path.Store(path)
	return v
}

func (v *containerView) release() {
	v.path.Store(nil)
}

func (v *containerView) FindService(t reflect.Type) (any, error) {
	services, err := v.FindServices(t)
	if err != nil {
		return nil, err
	}
	return uniqueService(t, services)
}

func (v *containerView) FindOptionalService(t reflect.Type) (any, bool, error) {
	services, err := v.FindServices(t)
	if err != nil {
		return nil, false, err
	}

	service, ok := optionalService(services)
	return service, ok, nil
}

func (v *containerView) FindServices(t reflect.Type) ([]any, error) {
	return v.findServicesOnPath(t, v.path.Load())
}

func (v *containerView) findServicesOnPath(t reflect.Type, path *graph.Path) ([]any, error) {
	if t == containerType {
		return []any{v}, nil
	}
	return v.container.findServicesOnPath(t, path)
}
