package inject

import (
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// serviceCache holds the resolved services of a container per requested
// type. A type is created at most once: concurrent misses for the same
// type share one call, misses for other types proceed in parallel.
type serviceCache struct {
	mu       sync.RWMutex
	services map[reflect.Type][]any
	keys     map[reflect.Type]string
	group    singleflight.Group
}

func newServiceCache() *serviceCache {
	return &serviceCache{
		services: make(map[reflect.Type][]any),
		keys:     make(map[reflect.Type]string),
	}
}

// get returns the cached services of t.
func (c *serviceCache) get(t reflect.Type) ([]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	services, ok := c.services[t]
	return services, ok
}

// key returns the call key of t. Type names are not unique, so each type
// gets its own number.
func (c *serviceCache) key(t reflect.Type) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.keys[t]
	if !ok {
		k = strconv.Itoa(len(c.keys))
		c.keys[t] = k
	}
	return k
}

// getOrCreate returns the cached services of t, or runs create and caches
// its result. Callers arriving while create runs wait for it and receive
// the same result. Failures are not cached.
func (c *serviceCache) getOrCreate(t reflect.Type, create func() ([]any, error)) ([]any, error) {
	if services, ok := c.get(t); ok {
		return services, nil
	}

	v, err, _ := c.group.Do(c.key(t), func() (any, error) {
		if services, ok := c.get(t); ok {
			return services, nil
		}

		services, err := create()
		if err != nil {
			return nil, err
		}

		if services == nil {
			services = []any{}
		}
		services = services[:len(services):len(services)]

		c.mu.Lock()
		c.services[t] = services
		c.mu.Unlock()
		return services, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// len returns the number of cached types.
func (c *serviceCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.services)
}
