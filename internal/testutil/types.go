package testutil

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/junioryono/inject"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrConstructor = errors.New("constructor error")
)

// FuelPump has no dependencies.
type FuelPump struct {
	ID string
}

// Engine depends on a FuelPump.
type Engine struct {
	FuelPump *FuelPump
}

func NewEngine(pump *FuelPump) *Engine {
	return &Engine{FuelPump: pump}
}

// NewFailingEngine always fails.
func NewFailingEngine(*FuelPump) (*Engine, error) {
	return nil, ErrConstructor
}

// Wheel is registered several times to exercise collection parameters.
type Wheel struct {
	Position string
}

// Vehicle is implemented by Car.
type Vehicle interface {
	Drive() string
}

// Car depends on one Engine and every Wheel.
type Car struct {
	Engine *Engine
	Wheels []*Wheel
}

func NewCar(engine *Engine, wheels []*Wheel) *Car {
	return &Car{Engine: engine, Wheels: wheels}
}

func (c *Car) Drive() string {
	return fmt.Sprintf("driving on %d wheels", len(c.Wheels))
}

// CarFactory produces engines and cars and counts how often it was asked
// to.
type CarFactory struct {
	inject.Factory

	EnginesCreated atomic.Int32
	CarsCreated    atomic.Int32
}

func (f *CarFactory) CreateEngine(pump *FuelPump) *Engine {
	f.EnginesCreated.Add(1)
	return NewEngine(pump)
}

func (f *CarFactory) CreateCar(engine *Engine, wheels []*Wheel) (*Car, error) {
	f.CarsCreated.Add(1)
	return NewCar(engine, wheels), nil
}

// Greeter is an interface with no implementation known to the container.
type Greeter interface {
	Greet() string
}

// StaticGreeter returns a fixed greeting.
type StaticGreeter struct {
	Greeting string
}

func (g *StaticGreeter) Greet() string {
	return g.Greeting
}
