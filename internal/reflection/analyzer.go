package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

var (
	ErrNotFunction      = errors.New("value is not a function")
	ErrNilFunction      = errors.New("function cannot be nil")
	ErrNoResult         = errors.New("function must return a value")
	ErrTooManyResults   = errors.New("function must return at most 2 values")
	ErrInvalidSecondOut = errors.New("function's second return value must be error")
	ErrVariadic         = errors.New("variadic functions are not supported")
)

// Analyzer performs reflection-based analysis of constructor and factory
// method signatures. It caches analysis results per function type.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[funcKey]*FuncInfo
}

// funcKey separates a method expression from a plain function of the same
// signature.
type funcKey struct {
	typ  reflect.Type
	skip int
}

// FuncInfo describes a function that produces exactly one service.
type FuncInfo struct {
	Type           reflect.Type
	Parameters     []reflect.Type
	Result         reflect.Type
	HasErrorReturn bool
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[funcKey]*FuncInfo),
	}
}

// Default is the analyzer shared by the root package.
var Default = New()

// AnalyzeFunc analyzes a function value of the form func(A, B, ...) T or
// func(A, B, ...) (T, error).
func (a *Analyzer) AnalyzeFunc(fn reflect.Value) (*FuncInfo, error) {
	if !fn.IsValid() {
		return nil, ErrNilFunction
	}

	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %v", ErrNotFunction, fn.Type())
	}

	if fn.IsNil() {
		return nil, ErrNilFunction
	}

	return a.analyzeType(fn.Type(), 0)
}

// AnalyzeMethod analyzes a method obtained from reflect.Type.Method. The
// receiver, which is the first input of m.Type, is not reported as a
// parameter.
func (a *Analyzer) AnalyzeMethod(m reflect.Method) (*FuncInfo, error) {
	if m.Type == nil {
		return nil, ErrNilFunction
	}

	return a.analyzeType(m.Type, 1)
}

func (a *Analyzer) analyzeType(fnType reflect.Type, skip int) (*FuncInfo, error) {
	key := funcKey{typ: fnType, skip: skip}

	a.mu.RLock()
	if cached, ok := a.cache[key]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	if fnType.IsVariadic() {
		return nil, ErrVariadic
	}

	info := &FuncInfo{Type: fnType}

	switch fnType.NumOut() {
	case 0:
		return nil, ErrNoResult
	case 1:
		if fnType.Out(0) == errType {
			return nil, ErrNoResult
		}
	case 2:
		if fnType.Out(1) != errType {
			return nil, ErrInvalidSecondOut
		}
		info.HasErrorReturn = true
	default:
		return nil, ErrTooManyResults
	}

	if fnType.NumIn() < skip {
		return nil, ErrNotFunction
	}

	info.Result = fnType.Out(0)

	info.Parameters = make([]reflect.Type, 0, fnType.NumIn()-skip)
	for i := skip; i < fnType.NumIn(); i++ {
		info.Parameters = append(info.Parameters, fnType.In(i))
	}

	a.mu.Lock()
	a.cache[key] = info
	a.mu.Unlock()

	return info, nil
}

// Len reports how many signatures are cached.
func (a *Analyzer) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Clear drops every cached analysis.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[funcKey]*FuncInfo)
}
