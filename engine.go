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
	"fmt"
	"os"
	"weak"

	"github.com/asmsh/contprom/internal/box"
	"github.com/asmsh/contprom/internal/rlock"
	"github.com/asmsh/contprom/internal/status"
)

// attachTask appends a new Task carrying onResolved/onRejected to v's
// current Holder and drives the engine, per §4.5 "then(on_resolved,
// on_rejected)". It returns v itself: the spec calls for the caller to keep
// seeing the same promise view, since tasks execute in order and each one's
// result becomes the Holder's next value.
func attachTask(v *View, onResolved, onRejected Handler, loc CallLocation) *View {
	tok := rlock.NewToken()
	h := v.lock(tok)
	t := &Task{onResolved: onResolved, onRejected: onRejected, loc: loc}
	t.parent = weak.Make(h)
	if t.observes() {
		h.status = h.status.WithObserved()
	}
	h.appendTask(t)
	final := drive(h, tok)
	final.lock.Unlock(tok)
	return v
}

// drive is the `call` dispatch loop of §4.3: it advances h's pendingTasks
// one at a time, synchronously walking through already-settled holders
// (including ones reached by adoption via join) until either the queue
// empties or the head task must wait on a still-pending holder. The caller
// must hold h.lock for tok. drive returns the holder it ends on, still
// locked under tok — callers must unlock *that* holder, not the one they
// originally passed in, since join may have moved the dispatch onto a
// different Holder entirely.
func drive(h *Holder, tok *rlock.Token) *Holder {
	for {
		assertInvariants(h)
		if len(h.pendingTasks) == 0 {
			return h
		}
		t := h.pendingTasks[0]

		parent := t.parent.Value()
		if parent == nil {
			// The holder this task was queued against is gone; drop it.
			h.pendingTasks = h.pendingTasks[1:]
			continue
		}
		if parent != h {
			// join rewrote this task's parent to a different holder
			// after it was already queued on h; follow it there.
			h = parent
			continue
		}
		if !t.state.IsPending() {
			return h
		}
		if h.status.IsPending() {
			// The head task must wait for a future resolve/reject.
			return h
		}

		h.pendingTasks = h.pendingTasks[1:]
		h.pushCallStack(t.loc)
		debugTrace(debugTaskDispatch, "holder=%s loc=%s rejected=%v", h.id, t.loc, h.status.IsRejected())

		outcome, adopt := runTask(h, tok, t)
		t.onResolved = nil
		t.onRejected = nil
		if adopt != nil {
			t.state = t.state.WithResolved() // the task itself ran to completion
			h = joinHolders(h, adopt, tok) // h is discarded; joinHolders returns the survivor
			continue
		}

		t.state = boolToSettledStatus(outcome.Rejected)
		h.value = outcome.Value
		if outcome.Rejected {
			h.status = h.status.WithRejected()
		} else {
			h.status = h.status.WithResolved()
		}
	}
}

// runTask executes t's matching handler (resolved or rejected path,
// depending on h's current state) with h's lock released, per §4.3 step 6.
// If the handler returned a promise to adopt, runTask returns a non-nil
// *View and a zero Outcome; otherwise it returns the settled Outcome.
func runTask(h *Holder, tok *rlock.Token, t *Task) (Outcome, *View) {
	rejected := h.status.IsRejected()
	var handler Handler
	if rejected {
		handler = t.onRejected
	} else {
		handler = t.onResolved
	}
	if handler == nil {
		// Empty/pass-through: value and state carry forward unchanged.
		return Outcome{Value: h.value, Rejected: rejected}, nil
	}

	// Block re-entrant resolve/reject races from inside the handler by
	// making the holder transiently pending while it runs (§4.3 step 6).
	h.status = h.status.WithPending()
	value := h.value
	depth := h.lock.UnlockAll(tok)
	outcome := invokeHandler(handler, value)
	h.lock.RelockAll(tok, depth)

	if outcome.Adopt != nil {
		return Outcome{}, outcome.Adopt
	}
	return outcome, nil
}

// invokeHandler calls handler with v, converting any panic into a rejection
// Outcome (§4.3 step 7, §7 propagation policy).
func invokeHandler(handler Handler, v box.Box) (result Outcome) {
	defer func() {
		if r := recover(); r != nil {
			result = Outcome{Rejected: true, Value: box.Of(r)}
		}
	}()
	return handler(v)
}

// joinHolders merges discarded (the holder of the handler that just fired
// and returned a promise to adopt) into survivor (the returned promise's own
// holder), per §4.4. survivor is the *new home*: its own settled state and
// value are left completely untouched by this function, since it may
// already be resolved or rejected by the time adoption happens — the
// overwhelmingly common case for a handler that synchronously returns an
// already-settled promise (spec scenario S3, testable property 4). What
// moves is discarded's pending task queue and owners, onto the end of
// survivor's; discarded itself is then forced resolved with its value
// cleared purely so its own eventual destruction never also reports an
// uncaught rejection for a holder nothing can observe anymore. Locks are
// acquired survivor-then-discarded to match the canonical order used
// everywhere else two holders must be locked together (§5 Locking
// discipline); discarded's prior recursion depth under tok is restored on
// survivor before returning so the caller's own unlock sequence stays
// balanced.
func joinHolders(discarded *Holder, survivorView *View, tok *rlock.Token) *Holder {
	discardedDepth := discarded.lock.UnlockAll(tok)

	var survivor *Holder
	for {
		survivor = survivorView.holderPtr.Load()
		if survivor == discarded {
			// Already the same holder (nothing to merge): break out
			// without taking survivor's lock, since discarded's own mutex
			// is currently fully released (see UnlockAll above) and must
			// be reacquired fresh by RelockAll below, not re-entered.
			break
		}
		survivor.lock.Lock(tok)
		if survivorView.holderPtr.Load() == survivor {
			break
		}
		survivor.lock.Unlock(tok)
	}

	if survivor == discarded {
		discarded.lock.RelockAll(tok, discardedDepth)
		return discarded
	}

	discarded.lock.Lock(tok)
	debugTrace(debugJoin, "survivor=%s discarded=%s", survivor.id, discarded.id)

	// 2. transfer discarded's pending tasks, rewriting their parent. Any
	// transferred task able to observe a rejection must carry its
	// "observed" bit over to survivor, since survivor is now the holder
	// whose destruction decides whether the uncaught sink fires.
	for _, t := range discarded.pendingTasks {
		t.parent = weak.Make(survivor)
		if t.observes() {
			survivor.status = survivor.status.WithObserved()
		}
	}
	survivor.pendingTasks = append(survivor.pendingTasks, discarded.pendingTasks...)
	discarded.pendingTasks = nil

	// 3. prepend discarded's call stack into survivor's for debug continuity.
	merged := make([]CallLocation, 0, len(discarded.callStack)+len(survivor.callStack))
	merged = append(merged, discarded.callStack...)
	merged = append(merged, survivor.callStack...)
	if over := len(merged) - callStackLimit; over > 0 {
		merged = merged[over:]
	}
	survivor.callStack = merged

	// 4. transfer discarded's owners, repointing each live View at survivor.
	migrated := 0
	for _, wv := range discarded.owners {
		v := wv.Value()
		if v == nil {
			continue
		}
		v.holderPtr.Store(survivor)
		survivor.owners = append(survivor.owners, wv)
		migrated++
	}
	discarded.owners = nil
	if migrated > joinOwnerWarnThreshold {
		fmt.Fprintf(os.Stderr, "promise: join migrated %d owners from one holder; possible leak\n", migrated)
	}

	// 5. mark discarded resolved so its own onDestroy won't also report an
	// uncaught rejection, and drop its value. survivor's own state/value
	// are untouched — it keeps whatever it already settled, or stays
	// pending, in which case drive's next loop iteration correctly finds
	// the head task still waiting on it.
	discarded.status = discarded.status.WithResolved()
	discarded.value = box.Empty()
	discarded.lock.Unlock(tok)

	// Restore discarded's pre-join recursion depth under tok, now on survivor.
	for i := 1; i < discardedDepth; i++ {
		survivor.lock.Lock(tok)
	}
	return survivor
}

func boolToSettledStatus(rejected bool) status.PromStatus {
	var s status.PromStatus
	if rejected {
		return s.WithRejected()
	}
	return s.WithResolved()
}
