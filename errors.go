package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.

var (
	// Argument errors.
	ErrNilArgument    = errors.New("argument cannot be nil")
	ErrServiceTypeNil = errors.New("service type cannot be nil")
	ErrNilService     = errors.New("service cannot be nil")

	// Constructor selection errors.
	ErrAbstractType            = errors.New("cannot create service definition for abstract type")
	ErrNoInjectableConstructor = errors.New("no injectable constructor found")
	ErrAmbiguousConstructor    = errors.New("multiple injectable constructors found")

	// Factory errors.
	ErrNotFactory = errors.New("factory must embed inject.Factory")
	ErrNoMethod   = errors.New("factory has no such service method")
)

var (
	_ error = NoUniqueServiceError{}
	_ error = ServiceCreationError{}
	_ error = ConfigurationError{}
	_ error = TypeMismatchError{}
	_ error = ModuleError{}
	_ error = CircularDependencyError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// NoUniqueServiceError indicates that zero or more than one service was
// found where exactly one was required.
//
// When Consumer is set the error was raised while constructing a service
// of type Consumer, and Cause holds the error of the nested lookup.
type NoUniqueServiceError struct {
	ServiceType reflect.Type
	Consumer    reflect.Type
	Count       int
	Reason      string
	Cause       error
}

func (e NoUniqueServiceError) Error() string {
	var b strings.Builder

	switch {
	case e.Consumer != nil:
		b.WriteString(fmt.Sprintf("service of type %s required a service of type %s but there were either none or multiple",
			formatType(e.Consumer), formatType(e.ServiceType)))
	case e.Count > 1:
		b.WriteString(fmt.Sprintf("multiple service definitions for type %s found", formatType(e.ServiceType)))
	default:
		b.WriteString(fmt.Sprintf("no services of type %s found", formatType(e.ServiceType)))
	}

	if e.Reason != "" {
		b.WriteString(". Probable cause: ")
		b.WriteString(e.Reason)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e NoUniqueServiceError) Unwrap() error {
	return e.Cause
}

// ServiceCreationError indicates that a service could not be created: its
// constructor or factory method failed, returned nil, or one of its
// dependencies could not be resolved.
type ServiceCreationError struct {
	ServiceType reflect.Type
	Message     string
	Cause       error
}

func (e ServiceCreationError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("failed to create %s", formatType(e.ServiceType)))

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e ServiceCreationError) Unwrap() error {
	return e.Cause
}

// ConfigurationError indicates broken wiring detected while a service
// definition or registry was being constructed. It is never retried.
type ConfigurationError struct {
	Type      reflect.Type
	Operation string // "constant", "constructor", "method", "factory", "singleton", ...
	Cause     error
}

func (e ConfigurationError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("invalid %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("invalid %s for %s: %v", e.Operation, formatType(e.Type), e.Cause)
}

func (e ConfigurationError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a value or method does not match the type it
// is being registered under.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "constant", "service method", "constructor result", ...
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// ModuleError wraps errors from module registration.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError is returned when a service's dependency chain
// requests a type that is already being constructed on that chain.
type CircularDependencyError = graph.CircularDependencyError

// IsNoUniqueService reports whether err itself, not one of its causes, is
// a NoUniqueServiceError. Nested ambiguity that surfaced through a
// ServiceCreationError does not count.
func IsNoUniqueService(err error) bool {
	_, ok := err.(NoUniqueServiceError)
	return ok
}

// IsServiceCreation reports whether err itself is a ServiceCreationError.
func IsServiceCreation(err error) bool {
	_, ok := err.(ServiceCreationError)
	return ok
}

// IsCircularDependency reports whether err or any error it wraps is a
// CircularDependencyError.
func IsCircularDependency(err error) bool {
	var circErr CircularDependencyError
	return errors.As(err, &circErr)
}

func nilArgument(operation string) error {
	return ConfigurationError{Operation: operation, Cause: ErrNilArgument}
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Map:
		key := t.Key()
		elem := t.Elem()
		keyStr := key.Name()
		if keyStr == "" {
			keyStr = key.String()
		}
		elemStr := elem.Name()
		if elemStr == "" {
			elemStr = elem.String()
		}
		return "map[" + keyStr + "]" + elemStr
	case reflect.Func:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
