// Package inject provides a reflection-based dependency injection container.
//
// # Overview
//
// A Container resolves a requested type to the services registered for it,
// creates them lazily and caches them for its lifetime. Services come from
// a chain of registries:
//
//   - singletons and explicit service definitions
//   - factories: structs embedding inject.Factory whose exported methods
//     produce services
//   - constructor injection: declared constructors, or the zero value of a
//     struct type
//   - an optional parent finder
//
// # Basic Usage
//
//	c, err := inject.NewBuilder().
//	    Singleton(&FuelPump{}).
//	    InjectConstructor(NewEngine).
//	    Factory(&CarFactory{}).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	car, err := inject.Resolve[*Car](c)
//
// # Service Definitions
//
// A ServiceDefinition binds a type to one of three creation strategies:
//
//   - Constant: a fixed instance
//   - Constructor: a constructor function, or the zero value of a struct
//   - Method: an exported method of a factory
//
// Definitions are built with NewConstantDefinition, NewConstructorDefinition
// and NewMethodDefinition and can be registered directly with
// Builder.ServiceDefinition.
//
// # Constructors
//
// Constructors are declared explicitly:
//
//	builder.Constructor(NewEngine)            // declared
//	builder.InjectConstructor(NewTurboEngine) // declared and selected
//
// A type with a single declared constructor that takes no parameters uses
// it. Otherwise exactly one declared constructor must be registered with
// InjectConstructor. Struct and pointer-to-struct types without declared
// constructors are created from their zero value.
//
// # Collection Parameters
//
// Constructor and factory method parameters receive exactly one service of
// their type, except for collections, which receive every service of their
// element type:
//
//	func NewGarage(cars iter.Seq[*Car]) *Garage           // in finder order
//	func NewFleet(cars map[*Car]struct{}) *Fleet          // deduplicated
//	func NewParkingLot(cars []*Car) *ParkingLot           // fresh slice
//
// Collections whose element type is itself a collection or a generic
// instantiation fall back to a single-service lookup of the declared type.
//
// # Errors
//
// FindService and Resolve fail with a NoUniqueServiceError when the
// requested type itself has no or several services. A failure anywhere in
// the dependency graph surfaces as a ServiceCreationError whose cause chain
// names the consumer and the dependency that could not be resolved.
// Dependency cycles are reported as a CircularDependencyError.
//
// # Request Scopes
//
// A Scope creates a short-lived child container over an application
// container, usually one per request:
//
//	scope, err := inject.NewScope(app, []any{NewUserController})
//
//	c, err := scope.NewContainer(r.Context(), r)
//	ctx := inject.NewContext(r.Context(), c)
//
// Child containers see the context and values passed to NewContainer, the
// scope constructors and the services of the parent. The http, gin, echo
// and fiber modules wrap this in middleware.
//
// # Concurrency
//
// Containers are safe for concurrent use. A type is created at most once
// even when several goroutines request it at the same time. Builders are
// not safe for concurrent use.
package inject
