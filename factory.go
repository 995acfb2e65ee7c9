package inject

import (
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/reflection"
)

// Factory marks a struct as a service factory when embedded in it.
//
// Each exported method of the factory that returns T or (T, error) is a
// service method producing a T. A services tag on the embedded field
// restricts the service methods to the listed names:
//
//	type CarFactory struct {
//		inject.Factory `services:"CreateEngine,CreateCar"`
//	}
//
// Methods promoted from other embedded fields are not service methods
// unless the services tag names them. This includes factory methods that
// shadow a promoted method of the same name.
type Factory struct{}

var factoryType = reflect.TypeOf(Factory{})

const servicesTag = "services"

// NewFactoryRegistry validates that factory embeds Factory and returns a
// registry with one method definition per service method, in method order.
func NewFactoryRegistry(factory any, resolver ParameterResolver) (ServiceDefinitionRegistry, error) {
	definitions, err := factoryDefinitions(factory, resolver)
	if err != nil {
		return nil, err
	}
	return NewServiceDefinitionRegistry(definitions...)
}

func factoryDefinitions(factory any, resolver ParameterResolver) ([]*ServiceDefinition, error) {
	fv := reflect.ValueOf(factory)
	if reflection.IsNil(fv) {
		return nil, nilArgument("factory")
	}

	ft := fv.Type()
	marker, ok := factoryMarker(ft)
	if !ok {
		return nil, ConfigurationError{Type: ft, Operation: "factory", Cause: ErrNotFactory}
	}

	if names := marker.Tag.Get(servicesTag); names != "" {
		var definitions []*ServiceDefinition
		for _, name := range strings.Split(names, ",") {
			definition, err := NewNamedMethodDefinition(factory, strings.TrimSpace(name), resolver)
			if err != nil {
				return nil, err
			}
			definitions = append(definitions, definition)
		}
		return definitions, nil
	}

	promoted := promotedMethods(ft)
	definitions := make([]*ServiceDefinition, 0, ft.NumMethod())
	for i := 0; i < ft.NumMethod(); i++ {
		method := ft.Method(i)
		if promoted[method.Name] {
			continue
		}
		if _, err := reflection.Default.AnalyzeMethod(method); err != nil {
			continue
		}

		definition, err := NewMethodDefinition(factory, method, resolver)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}
	return definitions, nil
}

// factoryMarker returns the embedded Factory field of a struct or pointer
// to struct type.
func factoryMarker(t reflect.Type) (reflect.StructField, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == factoryType {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

// promotedMethods returns the names of the methods t gains from embedded
// fields other than Factory.
func promotedMethods(t reflect.Type) map[string]bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	names := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous || field.Type == factoryType {
			continue
		}

		embedded := field.Type
		if embedded.Kind() != reflect.Pointer && embedded.Kind() != reflect.Interface {
			embedded = reflect.PointerTo(embedded)
		}
		for j := 0; j < embedded.NumMethod(); j++ {
			names[embedded.Method(j).Name] = true
		}
	}
	return names
}
