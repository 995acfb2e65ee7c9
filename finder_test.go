package inject

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject/internal/graph"
)

type finderTestConsumer struct{}

// stubFinder serves fixed services and records the lookups it sees.
type stubFinder struct {
	services map[reflect.Type][]any
	err      error
	lookups  []reflect.Type
}

func (f *stubFinder) FindService(t reflect.Type) (any, error) {
	services, err := f.FindServices(t)
	if err != nil {
		return nil, err
	}
	return uniqueService(t, services)
}

func (f *stubFinder) FindOptionalService(t reflect.Type) (any, bool, error) {
	services, err := f.FindServices(t)
	if err != nil {
		return nil, false, err
	}
	service, ok := optionalService(services)
	return service, ok, nil
}

func (f *stubFinder) FindServices(t reflect.Type) ([]any, error) {
	f.lookups = append(f.lookups, t)
	return f.services[t], f.err
}

func finderTestDefinition(t *testing.T) *ServiceDefinition {
	t.Helper()
	def, err := NewConstantDefinition(reflect.TypeOf(&finderTestConsumer{}), &finderTestConsumer{})
	require.NoError(t, err)
	return def
}

func TestUniqueService(t *testing.T) {
	t.Parallel()

	stringType := reflect.TypeOf("")

	service, err := uniqueService(stringType, []any{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only", service)

	_, err = uniqueService(stringType, nil)
	require.True(t, IsNoUniqueService(err))
	assert.Zero(t, err.(NoUniqueServiceError).Count)

	_, err = uniqueService(stringType, []any{"a", "b"})
	require.True(t, IsNoUniqueService(err))
	assert.Equal(t, 2, err.(NoUniqueServiceError).Count)

	_, ok := optionalService([]any{"a", "b"})
	assert.False(t, ok)
}

func TestServiceDefinitionFinder_AttributesNoUniqueService(t *testing.T) {
	t.Parallel()

	stringType := reflect.TypeOf("")
	def := finderTestDefinition(t)

	finder := newServiceDefinitionFinder(&stubFinder{}, def, nil)

	_, err := finder.FindService(stringType)
	require.True(t, IsNoUniqueService(err))

	noUnique := err.(NoUniqueServiceError)
	assert.Equal(t, stringType, noUnique.ServiceType)
	assert.Equal(t, def.ServiceType(), noUnique.Consumer)
	assert.Equal(t,
		"service of type *finderTestConsumer required a service of type string but there were either none or multiple: no services of type string found",
		err.Error())
}

func TestServiceDefinitionFinder_PassesThrough(t *testing.T) {
	t.Parallel()

	stringType := reflect.TypeOf("")
	def := finderTestDefinition(t)

	stub := &stubFinder{services: map[reflect.Type][]any{stringType: {"a", "b"}}}
	finder := newServiceDefinitionFinder(stub, def, nil)

	services, err := finder.FindServices(stringType)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, services)

	_, ok, err := finder.FindOptionalService(stringType)
	require.NoError(t, err)
	assert.False(t, ok)

	errLookup := errors.New("lookup failed")
	failing := newServiceDefinitionFinder(&stubFinder{err: errLookup}, def, nil)

	_, err = failing.FindService(stringType)
	assert.ErrorIs(t, err, errLookup)
	assert.False(t, IsNoUniqueService(err))
}

func TestServiceDefinitionFinder_CarriesPath(t *testing.T) {
	t.Parallel()

	consumerType := reflect.TypeOf(&finderTestConsumer{})
	def := finderTestDefinition(t)

	registry, err := NewServiceDefinitionRegistry(def)
	require.NoError(t, err)
	c := newContainer(registry, newOptions(nil))

	path := (*graph.Path)(nil).Push(consumerType)
	finder := newServiceDefinitionFinder(c, def, path)

	_, err = finder.FindService(consumerType)
	assert.True(t, IsCircularDependency(err))

	_, _, err = finder.FindOptionalService(consumerType)
	assert.True(t, IsCircularDependency(err))

	// Without the path the same lookup succeeds.
	service, err := c.FindService(consumerType)
	require.NoError(t, err)
	assert.IsType(t, &finderTestConsumer{}, service)

	// Cached services are returned even for types on the path.
	services, err := finder.FindServices(consumerType)
	require.NoError(t, err)
	assert.Len(t, services, 1)
}
