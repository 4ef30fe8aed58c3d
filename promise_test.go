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

package promise_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmsh/contprom"
)

// settledState blocks until p settles and reports whether it rejected, along
// with the raw payload (works regardless of whether T matches the rejection
// payload's type).
func settledState(p promise.Promise[int]) (value int, rejected bool, payload any) {
	ch := make(chan struct{})
	var v int
	var rj bool
	var pl any
	done := func(val int, isRej bool, pay any) {
		v, rj, pl = val, isRej, pay
		close(ch)
	}
	recovered := promise.Fail(p, func(e any) int {
		done(0, true, e)
		return 0
	})
	promise.Then(recovered, func(val int) int {
		select {
		case <-ch:
		default:
			done(val, false, val)
		}
		return val
	})
	<-ch
	return v, rj, pl
}

// S1
func TestScenarioValueChain(t *testing.T) {
	p := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve(42) })
	p2 := promise.Then(p, func(v int) int { return v + 1 })
	p3 := promise.Then(p2, func(v int) int { return v * 2 })
	v, rejected, _ := settledState(p3)
	require.False(t, rejected)
	assert.Equal(t, 86, v)
}

// S2
func TestScenarioFailRecoversIntoValue(t *testing.T) {
	p := promise.NewPromise[string](func(d *promise.Defer) { d.Reject("x") })
	recovered := promise.Fail(p, func(e any) string {
		s, _ := e.(string)
		return s
	})
	lengths := promise.Then(recovered, func(v string) int { return len(v) })
	v, rejected, _ := settledState(lengths)
	require.False(t, rejected)
	assert.Equal(t, 1, v)
}

// S3
func TestScenarioAdoption(t *testing.T) {
	p := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve(1) })
	adopted := promise.ThenPromise(p, func(v int) promise.Promise[int] {
		return promise.NewPromise[int](func(d2 *promise.Defer) { d2.Resolve(v + 10) })
	})
	final := promise.Then(adopted, func(v int) int { return v })
	v, rejected, _ := settledState(final)
	require.False(t, rejected)
	assert.Equal(t, 11, v)
}

// S4
func TestScenarioAllRejectsWithFirstError(t *testing.T) {
	a := promise.Resolved(1)
	b := promise.NewPromise[int](func(d *promise.Defer) { d.Reject("err") })
	out := promise.All(a, b)

	ch := make(chan struct{})
	var payload any
	var rejected bool
	promise.Fail(out, func(e any) []int {
		payload = e
		rejected = true
		close(ch)
		return nil
	})
	promise.Then(out, func(v []int) []int {
		select {
		case <-ch:
		default:
			close(ch)
		}
		return v
	})
	<-ch
	require.True(t, rejected)
	assert.Equal(t, "err", payload)
}

// S5
func TestScenarioDoWhileBreak(t *testing.T) {
	i := 0
	loop := promise.DoWhile[int](func(l *promise.Loop) {
		i++
		if i >= 3 {
			l.Break(i)
			return
		}
		l.Continue()
	})
	v, rejected, _ := settledState(loop)
	require.False(t, rejected)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, i)
}

// S6 / property 7: the sink fires exactly once for an unobserved rejection.
func TestUncaughtRejectionFiresOnce(t *testing.T) {
	var calls int32
	var payload atomic.Value
	promise.SetUncaughtHandler(func(p any) {
		atomic.AddInt32(&calls, 1)
		payload.Store(p)
	})
	defer promise.SetUncaughtHandler(nil)

	func() {
		_ = promise.NewPromise[int](func(d *promise.Defer) {
			d.Reject("boom")
		})
	}()

	// The View goes out of scope above; give the GC a chance to notice and
	// run the cleanup that fires the sink.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		runtimeGC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "boom", payload.Load())
}

// property 1: FIFO per holder.
func TestFIFOOrdering(t *testing.T) {
	p := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve(0) })
	var order []int
	var mu sync.Mutex
	record := func(n int) func(int) int {
		return func(v int) int {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return v
		}
	}
	a := promise.Then(p, record(1))
	b := promise.Then(a, record(2))
	c := promise.Then(b, record(3))
	settledState(c)
	assert.True(t, cmp.Equal([]int{1, 2, 3}, order))
}

// property 2: at most one settlement takes effect.
func TestDeferSettlesOnce(t *testing.T) {
	var calls int32
	p := promise.NewPromise[int](func(d *promise.Defer) {
		d.Resolve(1)
		d.Resolve(2)
		d.Reject("nope")
	})
	promise.Always(p, func(v any) int {
		atomic.AddInt32(&calls, 1)
		return v.(int)
	})
	v, rejected, _ := settledState(p)
	assert.False(t, rejected)
	assert.Equal(t, 1, v)
}

// property 5: finally preserves the upstream value/state.
func TestFinallyPreservesValue(t *testing.T) {
	p := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve(7) })
	var ran bool
	after := promise.Finally(p, func() {
		ran = true
		panic("side effects should be swallowed")
	})
	v, rejected, _ := settledState(after)
	assert.True(t, ran)
	assert.False(t, rejected)
	assert.Equal(t, 7, v)
}

// property 6: all() keeps positional order regardless of completion order.
func TestAllOrdering(t *testing.T) {
	slow := promise.NewPromise[int](func(d *promise.Defer) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			d.Resolve(1)
		}()
	})
	fast := promise.Resolved(2)
	out := promise.All(slow, fast)

	ch := make(chan []int, 1)
	promise.Always(out, func(v any) []int {
		vs, _ := v.([]int)
		ch <- vs
		return vs
	})
	got := <-ch
	assert.Equal(t, []int{1, 2}, got)
}

func TestRaceAndResolveForcesLosers(t *testing.T) {
	winner := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve(1) })
	loser := promise.NewPromise[int](func(d *promise.Defer) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			d.Resolve(2)
		}()
	})
	out := promise.RaceAndResolve(winner, loser)
	v, rejected, _ := settledState(out)
	assert.False(t, rejected)
	assert.Equal(t, 1, v)

	lv, lrejected, _ := settledState(loser)
	assert.False(t, lrejected)
	assert.Equal(t, 0, lv)
}

func TestBadCastOnResolvedPathRejects(t *testing.T) {
	// The promise is declared to carry an int, but its executor resolves it
	// with a string instead — Then's stored-type downcast must reject
	// rather than silently miscompute.
	p := promise.NewPromise[int](func(d *promise.Defer) { d.Resolve("not an int") })
	casted := promise.Then(p, func(v int) int { return v })
	_, rejected, payload := settledState(casted)
	assert.True(t, rejected)
	var bc *promise.BadCastError
	require.ErrorAs(t, anyToErr(payload), &bc)
}

func anyToErr(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return nil
}

func runtimeGC() { runtime.GC() }
