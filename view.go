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
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/asmsh/contprom/internal/rlock"
)

// View is a shared handle to a Holder (§3). Every user-facing promise value
// holds one. The Holder it names is stored behind an atomic pointer because
// join (§4.4) can rewire it concurrently; lock revalidates after acquiring
// to detect and retry across that race (§4.2 View.lock, §9 "lock-pointer
// swap on join").
type View struct {
	holderPtr atomic.Pointer[Holder]
}

// cleanupState is the argument runtime.AddCleanup retains for a View's
// cleanup. holder is a strong reference, so the Holder is still there for
// viewCleanup to inspect after the View is collected; self is weak so the
// cleanup itself never keeps the View reachable.
type cleanupState struct {
	holder *Holder
	self   weak.Pointer[View]
}

// newView creates a View over h, registers it in h.owners, and arranges for
// viewCleanup to run once the View becomes unreachable. This is the Go
// stand-in for "destroyed when the last View is dropped" (§3 Lifecycle):
// rather than an explicit destructor, a runtime.AddCleanup callback notices
// collection and performs the same bookkeeping.
func newView(h *Holder) *View {
	v := &View{}
	v.holderPtr.Store(h)
	self := weak.Make(v)
	h.owners = append(h.owners, self)
	state := cleanupState{holder: h, self: self}
	runtime.AddCleanup(v, viewCleanup, state)
	return v
}

// viewCleanup runs after a View is garbage collected. It removes the View's
// weak entry from its Holder's owners and, if that was the last owner, runs
// the Holder's onDestroy (the uncaught-rejection sink check, §4.8).
func viewCleanup(state cleanupState) {
	h := state.holder
	tok := rlock.NewToken()
	h.lock.Lock(tok)
	h.removeOwner(state.self)
	if len(h.owners) == 0 {
		h.onDestroy()
	}
	h.lock.Unlock(tok)
}

// lock acquires v's current Holder's mutex for tok, retrying if join rewires
// v's Holder pointer between the load and the lock (§4.2, §9).
func (v *View) lock(tok *rlock.Token) *Holder {
	for {
		h := v.holderPtr.Load()
		h.lock.Lock(tok)
		if v.holderPtr.Load() == h {
			return h
		}
		h.lock.Unlock(tok)
	}
}
