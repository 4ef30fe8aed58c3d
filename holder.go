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
	"io"
	"weak"

	"github.com/google/uuid"

	"github.com/asmsh/contprom/internal/box"
	"github.com/asmsh/contprom/internal/rlock"
	"github.com/asmsh/contprom/internal/status"
)

// callStackLimit bounds the debug call stack kept per Holder (§3: "bounded
// deque of debug records (most recent N)").
const callStackLimit = 32

// joinOwnerWarnThreshold is the owner-count leak heuristic from §4.4 step 6.
const joinOwnerWarnThreshold = 100

// Holder is the canonical object storing a promise's settled state and its
// queue of waiting continuations (§3). Every Holder has a recursive mutex;
// its identity never changes, but a Holder can stop being addressable after
// join merges it into another Holder (§4.4, invariant 2).
type Holder struct {
	id uuid.UUID

	lock *rlock.Mutex

	status status.PromStatus
	value  box.Box

	pendingTasks []*Task

	// owners holds a weak back-reference to every View currently naming
	// this Holder, matching §3's "set of weak back-references to every
	// View". Weak so that a Holder with zero reachable owners can be
	// collected instead of being kept alive by its own bookkeeping.
	owners []weak.Pointer[View]

	callStack []CallLocation
}

func newHolder() *Holder {
	return &Holder{
		id:   uuid.New(),
		lock: new(rlock.Mutex),
	}
}

// appendTask pushes t onto the FIFO tail of h.pendingTasks. Caller must hold
// h.lock.
func (h *Holder) appendTask(t *Task) {
	h.pendingTasks = append(h.pendingTasks, t)
}

// pushCallStack appends loc, truncating to callStackLimit from the front
// (§3's "most recent N"). Caller must hold h.lock.
func (h *Holder) pushCallStack(loc CallLocation) {
	h.callStack = append(h.callStack, loc)
	if over := len(h.callStack) - callStackLimit; over > 0 {
		h.callStack = h.callStack[over:]
	}
}

// removeOwner drops the owner entry that weakly points at the same View as
// self, if still present. Caller must hold h.lock.
func (h *Holder) removeOwner(self weak.Pointer[View]) {
	for i, wv := range h.owners {
		if wv == self {
			h.owners = append(h.owners[:i], h.owners[i+1:]...)
			return
		}
	}
}

// onDestroy fires the uncaught-rejection sink if h settled rejected and no
// rejection-observing continuation was ever attached (§3 Lifecycle, §4.8).
// Caller must hold h.lock.
func (h *Holder) onDestroy() {
	if h.status.IsRejected() && !h.status.IsObserved() {
		fireUncaught(h.value)
	}
}

// Dump writes a one-line diagnostic summary of h to w: its debug identity,
// settlement status, queue depth, live owner count, and most recent call
// site. It never takes h.lock itself — callers already holding it (e.g. from
// within a Then callback debugging a stuck chain) can call it directly, and
// callers that don't can wrap it with their own lock/unlock.
func (h *Holder) Dump(w io.Writer) {
	loc := "<none>"
	if n := len(h.callStack); n > 0 {
		loc = h.callStack[n-1].String()
	}
	fmt.Fprintf(w, "holder %s: status=%s pending=%d owners=%d last=%s\n",
		h.id, h.status, len(h.pendingTasks), len(h.owners), loc)
}
