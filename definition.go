package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

// ServiceDefinition binds a service type to the strategy that creates
// instances of it. Definitions are immutable.
//
// There are exactly three strategies, see DefinitionKind. Definitions are
// created with NewConstantDefinition, NewConstructorDefinition and
// NewMethodDefinition.
type ServiceDefinition struct {
	serviceType reflect.Type
	variant     variant
}

// variant is the sealed set of creation strategies.
type variant interface {
	kind() DefinitionKind
}

type constantVariant struct {
	instance any
}

type constructorVariant struct {
	implementation reflect.Type
	constructor    Constructor // zero value selects zero-value allocation
	resolver       ParameterResolver
}

type methodVariant struct {
	factory  reflect.Value
	method   reflect.Method
	info     *reflection.FuncInfo
	resolver ParameterResolver
}

func (constantVariant) kind() DefinitionKind    { return ConstantKind }
func (constructorVariant) kind() DefinitionKind { return ConstructorKind }
func (methodVariant) kind() DefinitionKind      { return MethodKind }

// NewConstantDefinition returns a definition that always yields instance.
// The instance must be non-nil and assignable to serviceType.
func NewConstantDefinition(serviceType reflect.Type, instance any) (*ServiceDefinition, error) {
	if serviceType == nil {
		return nil, ConfigurationError{Operation: "constant", Cause: ErrServiceTypeNil}
	}

	v := reflect.ValueOf(instance)
	if reflection.IsNil(v) {
		return nil, ConfigurationError{Type: serviceType, Operation: "constant", Cause: ErrNilService}
	}

	if !v.Type().AssignableTo(serviceType) {
		return nil, TypeMismatchError{Expected: serviceType, Actual: v.Type(), Context: "constant"}
	}

	return &ServiceDefinition{
		serviceType: serviceType,
		variant:     constantVariant{instance: instance},
	}, nil
}

// newConstant skips validation for instances already known to match.
func newConstant(serviceType reflect.Type, instance any) *ServiceDefinition {
	return &ServiceDefinition{
		serviceType: serviceType,
		variant:     constantVariant{instance: instance},
	}
}

// NewConstructorDefinition returns a definition that creates the
// implementation type through its injectable constructor, as selected by
// catalog, and registers it under serviceType.
//
// Selection fails with a ConfigurationError wrapping ErrAbstractType,
// ErrNoInjectableConstructor or ErrAmbiguousConstructor.
func NewConstructorDefinition(serviceType, implementation reflect.Type, catalog *ConstructorCatalog, resolver ParameterResolver) (*ServiceDefinition, error) {
	if serviceType == nil || implementation == nil {
		return nil, ConfigurationError{Operation: "constructor", Cause: ErrServiceTypeNil}
	}

	if catalog == nil {
		return nil, nilArgument("constructor catalog")
	}

	if resolver == nil {
		return nil, nilArgument("parameter resolver")
	}

	if !implementation.AssignableTo(serviceType) {
		return nil, TypeMismatchError{Expected: serviceType, Actual: implementation, Context: "constructor implementation"}
	}

	constructor, err := catalog.Injectable(implementation)
	if err != nil {
		return nil, err
	}

	return &ServiceDefinition{
		serviceType: serviceType,
		variant: constructorVariant{
			implementation: implementation,
			constructor:    constructor,
			resolver:       resolver,
		},
	}, nil
}

// NewMethodDefinition returns a definition that calls method on factory.
// The method must come from the method set of factory's dynamic type, as
// returned by reflect.TypeOf(factory).Method or MethodByName. Its first
// result is the service type.
func NewMethodDefinition(factory any, method reflect.Method, resolver ParameterResolver) (*ServiceDefinition, error) {
	fv := reflect.ValueOf(factory)
	if reflection.IsNil(fv) {
		return nil, nilArgument("factory")
	}

	if resolver == nil {
		return nil, nilArgument("parameter resolver")
	}

	if !isMethodOf(fv.Type(), method) {
		var receiver reflect.Type
		if method.Type != nil && method.Type.NumIn() > 0 {
			receiver = method.Type.In(0)
		}
		return nil, TypeMismatchError{Expected: fv.Type(), Actual: receiver, Context: "service method receiver"}
	}

	info, err := reflection.Default.AnalyzeMethod(method)
	if err != nil {
		return nil, ConfigurationError{Type: fv.Type(), Operation: "service method " + method.Name, Cause: err}
	}

	return &ServiceDefinition{
		serviceType: info.Result,
		variant: methodVariant{
			factory:  fv,
			method:   method,
			info:     info,
			resolver: resolver,
		},
	}, nil
}

// NewNamedMethodDefinition looks up the exported method name on factory
// and returns a definition for it.
func NewNamedMethodDefinition(factory any, name string, resolver ParameterResolver) (*ServiceDefinition, error) {
	ft := reflect.TypeOf(factory)
	if ft == nil {
		return nil, nilArgument("factory")
	}

	method, ok := ft.MethodByName(name)
	if !ok {
		return nil, ConfigurationError{Type: ft, Operation: "service method " + name, Cause: ErrNoMethod}
	}

	return NewMethodDefinition(factory, method, resolver)
}

func isMethodOf(ft reflect.Type, method reflect.Method) bool {
	if method.Type == nil || method.Type.NumIn() == 0 || method.Type.In(0) != ft {
		return false
	}

	if method.Index < 0 || method.Index >= ft.NumMethod() {
		return false
	}

	return ft.Method(method.Index).Name == method.Name
}

// ServiceType returns the type this definition is registered under. It may
// differ from the dynamic type of the created service.
func (d *ServiceDefinition) ServiceType() reflect.Type {
	return d.serviceType
}

// Kind returns the creation strategy of the definition.
func (d *ServiceDefinition) Kind() DefinitionKind {
	return d.variant.kind()
}

func (d *ServiceDefinition) String() string {
	switch v := d.variant.(type) {
	case constructorVariant:
		if v.implementation != d.serviceType {
			return fmt.Sprintf("%s(%s as %s)", d.Kind(), formatType(v.implementation), formatType(d.serviceType))
		}
	case methodVariant:
		return fmt.Sprintf("%s(%s.%s)", d.Kind(), formatType(v.factory.Type()), v.method.Name)
	}
	return fmt.Sprintf("%s(%s)", d.Kind(), formatType(d.serviceType))
}

// CreateService creates one instance of the service, resolving its
// parameters through finder.
//
// A NoUniqueServiceError raised while resolving a parameter is returned
// unchanged. Failures of the constructor or factory method itself,
// including a nil result or a panic, are reported as ServiceCreationError.
func (d *ServiceDefinition) CreateService(finder ServiceFinder) (any, error) {
	if finder == nil {
		return nil, ConfigurationError{Type: d.serviceType, Operation: "service finder", Cause: ErrNilArgument}
	}

	switch v := d.variant.(type) {
	case constantVariant:
		return v.instance, nil

	case constructorVariant:
		if !v.constructor.Func.IsValid() {
			return reflection.NewZero(v.implementation).Interface(), nil
		}

		args, err := resolveArguments(v.constructor.info.Parameters, v.resolver, finder)
		if err != nil {
			return nil, err
		}

		return d.call(v.constructor.Func, args, v.constructor.info, fmt.Sprintf("constructor %s", v.constructor.Func.Type()))

	case methodVariant:
		args, err := resolveArguments(v.info.Parameters, v.resolver, finder)
		if err != nil {
			return nil, err
		}

		args = append([]reflect.Value{v.factory}, args...)
		return d.call(v.method.Func, args, v.info, fmt.Sprintf("service method %s.%s", formatType(v.factory.Type()), v.method.Name))

	default:
		return nil, fmt.Errorf("unknown service definition variant %T", d.variant)
	}
}

// resolveArguments resolves parameters positionally; the first failure
// wins.
func resolveArguments(parameters []reflect.Type, resolver ParameterResolver, finder ServiceFinder) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(parameters))
	for i, parameter := range parameters {
		arg, err := resolver.ResolveParameter(parameter, finder)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func (d *ServiceDefinition) call(fn reflect.Value, args []reflect.Value, info *reflection.FuncInfo, name string) (service any, err error) {
	defer func() {
		if r := recover(); r != nil {
			service = nil
			err = ServiceCreationError{
				ServiceType: d.serviceType,
				Message:     fmt.Sprintf("%s panicked: %v", name, r),
			}
		}
	}()

	results := fn.Call(args)

	if info.HasErrorReturn && !results[1].IsNil() {
		callErr := results[1].Interface().(error)
		if IsNoUniqueService(callErr) {
			return nil, callErr
		}
		return nil, ServiceCreationError{
			ServiceType: d.serviceType,
			Message:     name + " returned an error",
			Cause:       callErr,
		}
	}

	result := results[0]
	if reflection.IsNil(result) {
		return nil, ServiceCreationError{
			ServiceType: d.serviceType,
			Message:     name + " returned nil",
		}
	}

	if result.Kind() == reflect.Interface {
		result = result.Elem()
	}

	if !result.Type().AssignableTo(d.serviceType) {
		return nil, ServiceCreationError{
			ServiceType: d.serviceType,
			Cause:       TypeMismatchError{Expected: d.serviceType, Actual: result.Type(), Context: name + " result"},
		}
	}

	return result.Interface(), nil
}
