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

package promise

import (
	"github.com/asmsh/contprom/internal/box"
	"github.com/asmsh/contprom/internal/rlock"
)

// Promise[T] is the public, typed handle over a View. Every chaining
// function below returns a (possibly differently typed) Promise wrapping
// the very same *View the operation attached its continuation to — per
// §4.5, "then" hands back the same promise view rather than a logically new
// promise; only the Go-side type parameter changes.
type Promise[T any] struct {
	view *View
}

// newPromiseView creates a pending Holder/View pair and synchronously runs
// executor against a Defer for it (§6 new_promise). A panicking executor
// rejects the promise with the recovered value (§7).
func newPromiseView(executor func(*Defer)) *View {
	h := newHolder()
	v := newView(h)
	d := &Defer{view: v}
	func() {
		defer func() {
			if r := recover(); r != nil {
				d.Reject(r)
			}
		}()
		executor(d)
	}()
	return v
}

func resolvedView(v any) *View {
	h := newHolder()
	h.status = h.status.WithResolved()
	h.value = box.Of(v)
	return newView(h)
}

func rejectedView(v any) *View {
	h := newHolder()
	h.status = h.status.WithRejected()
	h.value = box.Of(v)
	return newView(h)
}

// NewPromise creates a pending promise and synchronously invokes executor
// with a Defer that resolves or rejects it (§6 new_promise).
func NewPromise[T any](executor func(d *Defer)) Promise[T] {
	return Promise[T]{view: newPromiseView(executor)}
}

// Resolved returns a promise already settled to v.
func Resolved[T any](v T) Promise[T] {
	return Promise[T]{view: resolvedView(v)}
}

// Rejected returns a promise already settled to rejected with e.
func Rejected[T any](e any) Promise[T] {
	return Promise[T]{view: rejectedView(e)}
}

// Then appends a resolved-path continuation that transforms T into U. If the
// promise is rejected, f is skipped and the rejection propagates unchanged
// (§4.5 then).
func Then[T, U any](p Promise[T], f func(T) U) Promise[U] {
	onResolved := func(b box.Box) Outcome {
		v, err := box.As[T](b)
		if err != nil {
			return Outcome{Rejected: true, Value: box.Of(err)}
		}
		return Outcome{Value: box.Of(f(v))}
	}
	nv := attachTask(p.view, onResolved, nil, callerLoc(1))
	return Promise[U]{view: nv}
}

// ThenPromise appends a resolved-path continuation whose return value is
// itself a promise to adopt (§4.3 step 6, §4.4 join; testable property 4).
func ThenPromise[T, U any](p Promise[T], f func(T) Promise[U]) Promise[U] {
	onResolved := func(b box.Box) Outcome {
		v, err := box.As[T](b)
		if err != nil {
			return Outcome{Rejected: true, Value: box.Of(err)}
		}
		inner := f(v)
		return Outcome{Adopt: inner.view}
	}
	nv := attachTask(p.view, onResolved, nil, callerLoc(1))
	return Promise[U]{view: nv}
}

// Fail appends a rejected-path continuation that can observe any rejection
// payload and recover it into a value of T (§4.5 fail).
func Fail[T any](p Promise[T], f func(any) T) Promise[T] {
	onRejected := func(b box.Box) Outcome {
		return Outcome{Value: box.Of(f(b.Interface()))}
	}
	nv := attachTask(p.view, nil, onRejected, callerLoc(1))
	return Promise[T]{view: nv}
}

// FailAs appends a rejected-path continuation typed to a specific rejection
// payload type E. If the stored rejection isn't exactly an E, this is a
// pass-through: the rejection propagates unchanged, rather than converting
// to a bad-cast error (§4.3 step 6 rejected path, §7 "Bad cast ... on the
// rejected path this is treated as pass-through").
func FailAs[E, T any](p Promise[T], f func(E) T) Promise[T] {
	onRejected := func(b box.Box) Outcome {
		e, err := box.As[E](b)
		if err != nil {
			return Outcome{Rejected: true, Value: b}
		}
		return Outcome{Value: box.Of(f(e))}
	}
	nv := attachTask(p.view, nil, onRejected, callerLoc(1))
	return Promise[T]{view: nv}
}

// Always appends the same continuation to both the resolved and rejected
// paths (§4.5 always).
func Always[T any](p Promise[T], f func(any) T) Promise[T] {
	h := func(b box.Box) Outcome {
		return Outcome{Value: box.Of(f(b.Interface()))}
	}
	nv := attachTask(p.view, h, h, callerLoc(1))
	return Promise[T]{view: nv}
}

// Finally runs f on either path for its side effects only: the upstream
// value and state pass through unchanged regardless of what f does, and any
// panic inside f is swallowed (§4.5 finally, testable property 5).
func Finally[T any](p Promise[T], f func()) Promise[T] {
	run := func() {
		defer func() { recover() }()
		f()
	}
	onResolved := func(b box.Box) Outcome {
		run()
		return Outcome{Value: b}
	}
	onRejected := func(b box.Box) Outcome {
		run()
		return Outcome{Rejected: true, Value: b}
	}
	nv := attachTask(p.view, onResolved, onRejected, callerLoc(1))
	return Promise[T]{view: nv}
}

// All waits for every input to resolve and returns their values in input
// order, or rejects with the first rejection encountered (§4.7 all).
func All[T any](inputs ...Promise[T]) Promise[[]T] {
	views := make([]*View, len(inputs))
	for i, p := range inputs {
		views[i] = p.view
	}
	out := allView(views)
	typed := Then(Promise[[]any]{view: out}, func(vs []any) []T {
		result := make([]T, len(vs))
		for i, v := range vs {
			if v == nil {
				continue
			}
			result[i] = v.(T)
		}
		return result
	})
	return typed
}

// Race settles with whichever input first settles (§4.7 race).
func Race[T any](inputs ...Promise[T]) Promise[T] {
	return raceTyped(inputs, raceOnly)
}

// RaceAndResolve is Race, then force-resolves every non-winning input
// (§4.7 raceAndResolve).
func RaceAndResolve[T any](inputs ...Promise[T]) Promise[T] {
	return raceTyped(inputs, raceThenResolve)
}

// RaceAndReject is Race, then force-rejects every non-winning input
// (§4.7 raceAndReject).
func RaceAndReject[T any](inputs ...Promise[T]) Promise[T] {
	return raceTyped(inputs, raceThenReject)
}

func raceTyped[T any](inputs []Promise[T], mode raceMode) Promise[T] {
	views := make([]*View, len(inputs))
	for i, p := range inputs {
		views[i] = p.view
	}
	var zero T
	var forceValue any
	if mode == raceThenResolve {
		forceValue = zero
	}
	out := raceView(views, mode, forceValue)
	return Promise[T]{view: out}
}

// CallStack returns the bounded debug call stack recorded against p's
// current holder (§6 call_stack, §9's explicit sanction to re-architect the
// thread-local "current holders" stack as something simpler; this exposes
// it per-promise instead of per-goroutine, since every Holder already keeps
// its own bounded deque).
func (p Promise[T]) CallStack() []CallLocation {
	tok := rlock.NewToken()
	h := p.view.lock(tok)
	out := append([]CallLocation(nil), h.callStack...)
	h.lock.Unlock(tok)
	return out
}
