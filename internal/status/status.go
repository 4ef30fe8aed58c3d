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

package status

// PromStatus holds a Holder's settlement state plus its "observed" bit. It
// is only ever mutated while the owning Holder's lock is held, so unlike its
// predecessor in this codebase's lineage, it does not need to be its own
// atomically CAS-updated word; the Holder's rlock.Mutex already serializes
// every read and write.
//
// What survives from that predecessor is the bit layout: a 2-bit state
// section, and a flag recording whether a continuation able to observe a
// rejection has ever been attached, which is exactly the fact the
// uncaught-rejection sink needs gated on.
type PromStatus uint8

const (
	statePending  PromStatus = 0
	stateResolved PromStatus = 1
	stateRejected PromStatus = 2
	stateBitsMask PromStatus = 0b011

	// observed records that a continuation able to see a rejection (a
	// non-empty, non-null onRejected handler, or a join that merged in such
	// a continuation) has been attached to this Holder at some point.
	observed PromStatus = 0b100
)

// IsPending reports whether the state bits are "pending".
func (s PromStatus) IsPending() bool { return s&stateBitsMask == statePending }

// IsResolved reports whether the state bits are "resolved" (fulfilled).
func (s PromStatus) IsResolved() bool { return s&stateBitsMask == stateResolved }

// IsRejected reports whether the state bits are "rejected".
func (s PromStatus) IsRejected() bool { return s&stateBitsMask == stateRejected }

// IsObserved reports whether a rejection-observing continuation has ever
// been attached.
func (s PromStatus) IsObserved() bool { return s&observed != 0 }

// WithResolved returns s with the state bits set to "resolved".
func (s PromStatus) WithResolved() PromStatus { return (s &^ stateBitsMask) | stateResolved }

// WithRejected returns s with the state bits set to "rejected".
func (s PromStatus) WithRejected() PromStatus { return (s &^ stateBitsMask) | stateRejected }

// WithPending returns s with the state bits cleared back to "pending". The
// engine uses this to block re-entrant resolve/reject calls while a handler
// that was dispatched off this Holder's value is running (§4.3 step 6).
func (s PromStatus) WithPending() PromStatus { return s &^ stateBitsMask }

// WithObserved returns s with the observed bit set.
func (s PromStatus) WithObserved() PromStatus { return s | observed }

func (s PromStatus) String() string {
	var st string
	switch {
	case s.IsPending():
		st = "pending"
	case s.IsResolved():
		st = "resolved"
	case s.IsRejected():
		st = "rejected"
	}
	if s.IsObserved() {
		return st + "+observed"
	}
	return st
}
