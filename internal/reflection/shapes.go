package reflection

import (
	"reflect"
	"strings"
)

// Shape classifies a parameter type for collection injection.
type Shape int

const (
	// Single is any type that is not a recognized collection.
	Single Shape = iota

	// Seq is iter.Seq[E].
	Seq

	// Set is map[E]struct{} or map[E]bool.
	Set

	// Slice is []E.
	Slice
)

func (s Shape) String() string {
	switch s {
	case Single:
		return "Single"
	case Seq:
		return "Seq"
	case Set:
		return "Set"
	case Slice:
		return "Slice"
	default:
		return "Unknown"
	}
}

var boolType = reflect.TypeOf(false)

// ShapeOf returns the collection shape of t together with its element
// type. Only one level of element information is inspected: when the
// element type is itself a collection or a generic instantiation the
// shape degrades to Single.
func ShapeOf(t reflect.Type) (Shape, reflect.Type) {
	if t == nil {
		return Single, nil
	}

	shape, elem := rawShapeOf(t)
	if shape == Single || !IsConcrete(elem) {
		return Single, nil
	}

	if shape == Set && !elem.Comparable() {
		return Single, nil
	}

	return shape, elem
}

func rawShapeOf(t reflect.Type) (Shape, reflect.Type) {
	switch t.Kind() {
	case reflect.Slice:
		return Slice, t.Elem()
	case reflect.Map:
		if v := t.Elem(); v == boolType || (v.Kind() == reflect.Struct && v.NumField() == 0) {
			return Set, t.Key()
		}
	case reflect.Func:
		if isSeq(t) {
			return Seq, t.In(0).In(0)
		}
	}
	return Single, nil
}

// isSeq reports whether t is an instantiation of iter.Seq.
func isSeq(t reflect.Type) bool {
	if t.PkgPath() != "iter" || !strings.HasPrefix(t.Name(), "Seq[") {
		return false
	}

	// func(yield func(E) bool)
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}

	yield := t.In(0)
	return yield.Kind() == reflect.Func && yield.NumIn() == 1 && yield.NumOut() == 1 && yield.Out(0) == boolType
}

// IsConcrete reports whether t can be matched against registered service
// types: it is neither a collection shape itself nor an instantiated
// generic type.
func IsConcrete(t reflect.Type) bool {
	if t == nil {
		return false
	}

	if shape, _ := rawShapeOf(t); shape != Single {
		return false
	}

	if t.Kind() == reflect.Array {
		return false
	}

	return !strings.Contains(t.Name(), "[")
}

// IsNil reports whether v holds a nil pointer, interface, map, slice,
// func or chan. Other kinds are never nil.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}

// IsZeroConstructible reports whether a zero value of t is a usable
// service: a struct or a pointer to a struct.
func IsZeroConstructible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// NewZero allocates a zero value of a zero-constructible type; pointer
// types get a freshly allocated element.
func NewZero(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem())
	}
	return reflect.New(t).Elem()
}
