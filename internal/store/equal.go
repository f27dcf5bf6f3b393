package store

import (
	"go/token"
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Identifier is implemented by values that compare by identity id, such as
// chart contexts.
type Identifier interface {
	ID() string
}

// Identical is the default cell equality. Comparable values compare with
// ==, except that NaN equals NaN. Maps, slices, funcs and channels
// compare by reference: a slice is identical only to a slice sharing the
// same backing array start and length.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 {
			return va.IsNil() == vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}
	defer func() { _ = recover() }()
	return a == b
}

var deepOptions = cmp.Options{
	cmpopts.EquateNaNs(),
	cmp.Comparer(func(x, y Identifier) bool {
		return x.ID() == y.ID()
	}),
	cmp.FilterPath(func(p cmp.Path) bool {
		sf, ok := p.Last().(cmp.StructField)
		return ok && !token.IsExported(sf.Name())
	}, cmp.Ignore()),
}

// DeepEqual is the structural equality used by deep cells. It is a
// documented simplification, not a total order:
//
//   - identical values (see Identical) are equal;
//   - values implementing Identifier are equal iff their ids match;
//   - two slices are equal iff they have the same length and their
//     elements are pairwise DeepEqual;
//   - anything else is compared field by field with go-cmp: maps by key,
//     NaN equal to NaN, unexported struct fields ignored, funcs equal only
//     when both are nil. Numbers of different Go types are unequal.
//
// Values go-cmp refuses to compare are reported unequal.
func DeepEqual(a, b any) (equal bool) {
	if Identical(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if ia, ok := a.(Identifier); ok {
		ib, ok := b.(Identifier)
		return ok && ia.ID() == ib.ID()
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Slice && vb.Kind() == reflect.Slice {
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !DeepEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return cmp.Equal(a, b, deepOptions)
}
