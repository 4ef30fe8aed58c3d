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
	"sync/atomic"

	"github.com/asmsh/contprom/internal/box"
	"github.com/asmsh/contprom/internal/rlock"
)

// Defer is a View paired with the authority to settle the promise it was
// created for (§3). The executor passed to NewPromise receives one; only the
// first Resolve or Reject call has any effect (§4.2, testable property 2).
//
// The original design carries this guard as a Task whose state flips out of
// pending; here it is an atomic.Bool, since nothing about the guard needs to
// participate in a Holder's pendingTasks queue — Go's atomic package is the
// idiomatic tool for an exactly-once gate and the observable behavior is
// identical.
type Defer struct {
	view    *View
	settled atomic.Bool
}

// Resolve settles the associated promise as resolved with v. A second call
// (Resolve or Reject) is a no-op.
func (d *Defer) Resolve(v any) { d.settle(box.Of(v), false) }

// Reject settles the associated promise as rejected with v. A second call
// (Resolve or Reject) is a no-op.
func (d *Defer) Reject(v any) { d.settle(box.Of(v), true) }

func (d *Defer) settle(val box.Box, rejected bool) {
	if !d.settled.CompareAndSwap(false, true) {
		return
	}
	tok := rlock.NewToken()
	h := d.view.lock(tok)
	if !h.status.IsPending() {
		// Already settled through some other path (e.g. a combinator
		// forcing a loser's holder); leave it alone.
		h.lock.Unlock(tok)
		return
	}
	if rejected {
		h.status = h.status.WithRejected()
	} else {
		h.status = h.status.WithResolved()
	}
	h.value = val
	final := drive(h, tok)
	final.lock.Unlock(tok)
}
