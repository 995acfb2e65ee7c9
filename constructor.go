package inject

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/junioryono/inject/internal/reflection"
)

// Constructor is a function declared as a way to create values of its
// first result type. Inject marks the constructor the container should
// pick when a type declares more than one.
type Constructor struct {
	Func   reflect.Value
	Inject bool

	info *reflection.FuncInfo
}

// NewConstructor validates fn and returns it as a Constructor. fn must be
// a non-variadic function returning T or (T, error).
func NewConstructor(fn any, inject bool) (Constructor, error) {
	fv := reflect.ValueOf(fn)

	info, err := reflection.Default.AnalyzeFunc(fv)
	if err != nil {
		var t reflect.Type
		if fv.IsValid() {
			t = fv.Type()
		}
		return Constructor{}, ConfigurationError{Type: t, Operation: "constructor", Cause: err}
	}

	return Constructor{Func: fv, Inject: inject, info: info}, nil
}

// Type returns the type the constructor produces.
func (c Constructor) Type() reflect.Type {
	if c.info == nil {
		return nil
	}
	return c.info.Result
}

// Parameters returns the parameter types in declaration order.
func (c Constructor) Parameters() []reflect.Type {
	if c.info == nil {
		return nil
	}
	return c.info.Parameters
}

func (c Constructor) String() string {
	if !c.Func.IsValid() {
		return "<zero value>"
	}
	if c.Inject {
		return "inject " + c.Func.Type().String()
	}
	return c.Func.Type().String()
}

// ConstructorCatalog records the constructors declared for each type, in
// declaration order. It is safe for concurrent use.
type ConstructorCatalog struct {
	mu           sync.RWMutex
	constructors map[reflect.Type][]Constructor
}

// NewConstructorCatalog returns an empty catalog.
func NewConstructorCatalog() *ConstructorCatalog {
	return &ConstructorCatalog{
		constructors: make(map[reflect.Type][]Constructor),
	}
}

// Declare adds fn as a constructor of its first result type and returns
// that type.
func (c *ConstructorCatalog) Declare(fn any, inject bool) (reflect.Type, error) {
	constructor, err := NewConstructor(fn, inject)
	if err != nil {
		return nil, err
	}

	t := constructor.Type()

	c.mu.Lock()
	c.constructors[t] = append(c.constructors[t], constructor)
	c.mu.Unlock()

	return t, nil
}

// Constructors returns the constructors declared for t.
func (c *ConstructorCatalog) Constructors(t reflect.Type) []Constructor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	declared := c.constructors[t]
	if len(declared) == 0 {
		return nil
	}

	out := make([]Constructor, len(declared))
	copy(out, declared)
	return out
}

// Len returns the number of types with at least one declared constructor.
func (c *ConstructorCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.constructors)
}

// Injectable selects the constructor used to create t:
//
//   - a single declared constructor without parameters is used as is;
//   - otherwise exactly one declared constructor must be marked Inject;
//   - a struct or pointer-to-struct type without declared constructors is
//     created from its zero value, reported as the zero Constructor.
//
// Interface types and other kinds without declared constructors are
// rejected with ErrAbstractType.
func (c *ConstructorCatalog) Injectable(t reflect.Type) (Constructor, error) {
	declared := c.Constructors(t)

	if len(declared) == 0 {
		if reflection.IsZeroConstructible(t) {
			return Constructor{}, nil
		}
		return Constructor{}, ConfigurationError{Type: t, Operation: "constructor", Cause: ErrAbstractType}
	}

	if len(declared) == 1 && len(declared[0].Parameters()) == 0 {
		return declared[0], nil
	}

	var (
		selected Constructor
		marked   int
	)
	for _, constructor := range declared {
		if constructor.Inject {
			selected = constructor
			marked++
		}
	}

	switch marked {
	case 0:
		return Constructor{}, ConfigurationError{
			Type:      t,
			Operation: "constructor",
			Cause:     fmt.Errorf("%w among %d declared", ErrNoInjectableConstructor, len(declared)),
		}
	case 1:
		return selected, nil
	default:
		return Constructor{}, ConfigurationError{
			Type:      t,
			Operation: "constructor",
			Cause:     fmt.Errorf("%w: %d marked", ErrAmbiguousConstructor, marked),
		}
	}
}

func (c *ConstructorCatalog) clone() *ConstructorCatalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := NewConstructorCatalog()
	for t, declared := range c.constructors {
		out.constructors[t] = append([]Constructor(nil), declared...)
	}
	return out
}
