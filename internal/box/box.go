// Copyright 2020 Ahmad Sameh(asmsh)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package box implements the reflective value container used to carry a
// promise's settled value across a chain whose link types are only known at
// the call site, never statically ahead of time. Continuations themselves are
// not stored in a Box.
package box

import (
	"fmt"
	"reflect"
)

// Box is a type-erased container holding, at most, one value of arbitrary
// declared type. The zero value is the Empty box.
//
// Three mutually exclusive states exist:
//   - Empty: no value was ever stored here (the zero value).
//   - Null: the distinguished "no continuation here, pass through" marker.
//   - Value: holds exactly one value, of whatever type it was constructed with.
type Box struct {
	present bool
	null    bool
	val     any
}

// Empty returns the empty Box.
func Empty() Box { return Box{} }

// Null returns the pass-through marker Box.
func Null() Box { return Box{null: true} }

// Of wraps v in a Box. Of(nil) is a Value box holding a nil interface, which
// is distinct from both Empty and Null.
func Of(v any) Box { return Box{present: true, val: v} }

// IsEmpty reports whether b holds no value at all.
func (b Box) IsEmpty() bool { return !b.present && !b.null }

// IsNull reports whether b is the pass-through marker.
func (b Box) IsNull() bool { return b.null }

// IsValue reports whether b holds an actual value (possibly a nil interface).
func (b Box) IsValue() bool { return b.present }

// Interface returns the stored value as-is, or nil if b holds no value.
func (b Box) Interface() any {
	if !b.present {
		return nil
	}
	return b.val
}

// Type returns the dynamic type of the stored value, or nil if b is Empty,
// Null, or holds an untyped nil.
func (b Box) Type() reflect.Type {
	if !b.present || b.val == nil {
		return nil
	}
	return reflect.TypeOf(b.val)
}

// BadCastError is returned by As when the stored value's dynamic type does
// not match the requested type exactly.
type BadCastError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *BadCastError) Error() string {
	got := "<empty>"
	if e.Got != nil {
		got = e.Got.String()
	}
	want := "<nil>"
	if e.Want != nil {
		want = e.Want.String()
	}
	return fmt.Sprintf("box: bad cast: stored value has type %s, requested %s", got, want)
}

// As performs an exact-type downcast of b's stored value to T. It fails with
// a *BadCastError if b holds no value, or if the stored value's dynamic type
// is not exactly T (no implicit widening, no interface satisfaction beyond
// Go's own type-assertion rules).
func As[T any](b Box) (T, error) {
	var zero T
	if !b.present {
		return zero, &BadCastError{Want: reflect.TypeOf(zero), Got: b.Type()}
	}
	v, ok := b.val.(T)
	if !ok {
		return zero, &BadCastError{Want: reflect.TypeOf(zero), Got: b.Type()}
	}
	return v, nil
}

// String renders b for debug/call-stack output; it never panics.
func (b Box) String() string {
	switch {
	case b.null:
		return "<null>"
	case !b.present:
		return "<empty>"
	default:
		return fmt.Sprintf("%v", b.val)
	}
}
