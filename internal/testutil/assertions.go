package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
)

// AssertServiceResolvable checks if a service can be resolved
func AssertServiceResolvable[T any](t *testing.T, finder inject.ServiceFinder) T {
	t.Helper()
	service, err := inject.Resolve[T](finder)
	require.NoError(t, err, "failed to resolve service of type %s", inject.TypeOf[T]())
	require.NotNil(t, service, "resolved service is nil")
	return service
}

// AssertNoUniqueService checks that resolving T fails because T itself has
// no or several services.
func AssertNoUniqueService[T any](t *testing.T, finder inject.ServiceFinder) inject.NoUniqueServiceError {
	t.Helper()
	_, err := inject.Resolve[T](finder)
	require.Error(t, err)
	require.True(t, inject.IsNoUniqueService(err), "expected no unique service error, got: %v", err)
	return err.(inject.NoUniqueServiceError)
}

// AssertServiceCreation checks that err is a ServiceCreationError for T.
func AssertServiceCreation[T any](t *testing.T, err error) inject.ServiceCreationError {
	t.Helper()
	require.Error(t, err)
	require.True(t, inject.IsServiceCreation(err), "expected service creation error, got: %v", err)
	creationErr := err.(inject.ServiceCreationError)
	assert.Equal(t, inject.TypeOf[T](), creationErr.ServiceType)
	return creationErr
}

// AssertErrorType checks if an error is of a specific type
func AssertErrorType[T error](t *testing.T, err error, msgAndArgs ...any) T {
	t.Helper()
	var target T
	assert.ErrorAs(t, err, &target, msgAndArgs...)
	return target
}

// AssertCircularDependency checks if an error is a circular dependency error
func AssertCircularDependency(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, inject.IsCircularDependency(err), "expected circular dependency error, got: %v", err)
}
