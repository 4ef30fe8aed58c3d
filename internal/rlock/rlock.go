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

// Package rlock implements the recursive locking discipline a Holder needs:
// the dispatch engine re-enters a Holder's critical section from within a
// call it's already holding the lock for (a Defer.resolve call driving the
// first iteration of the dispatch loop), and it must release every level of
// that recursion before invoking user code, then restore the same depth
// afterward. Go has no goroutine-id to key a classic recursive mutex on, so
// recursion here is explicit: every entry point threads a Token down to
// whatever it calls, and the Mutex compares Tokens by identity to tell
// "I already hold this" from "someone else holds this".
package rlock

import "sync"

// Token identifies one logical holder of a Mutex across a nested call chain.
// Callers obtain a fresh Token at the outermost entry point (e.g. Defer.Resolve,
// attachTask) and pass it down to anything that might re-enter the same Mutex,
// such as View.lock.
type Token struct{ _ int }

// NewToken returns a Token distinct from every other Token (including the nil
// Token), suitable for one top-level critical section.
func NewToken() *Token { return new(Token) }

// Mutex is a depth-counted, Token-keyed recursive mutex guarding one Holder.
type Mutex struct {
	mu     sync.Mutex
	holder *Token
	depth  int
}

// Lock acquires m for tok. If tok already holds m (same Token pointer as the
// current holder), the depth counter is incremented and Lock returns
// immediately; otherwise it blocks until m is free.
func (m *Mutex) Lock(tok *Token) {
	if tok != nil && m.holder == tok {
		m.depth++
		return
	}
	m.mu.Lock()
	m.holder = tok
	m.depth = 1
}

// Unlock releases one level of m, held by tok. Once depth reaches zero the
// underlying lock is released for other Tokens to acquire.
func (m *Mutex) Unlock(tok *Token) {
	if tok != m.holder {
		panic("rlock: Unlock called by a Token that doesn't hold the lock")
	}
	m.depth--
	if m.depth == 0 {
		m.holder = nil
		m.mu.Unlock()
	}
}

// Depth returns the current recursion depth held by tok, or 0 if tok doesn't
// hold m right now.
func (m *Mutex) Depth(tok *Token) int {
	if tok == nil || m.holder != tok {
		return 0
	}
	return m.depth
}

// UnlockAll fully releases m (regardless of depth) and returns the depth that
// was held, so a later RelockAll call can restore it. It is the "unlock_guard"
// half of the engine's release-before-user-callback discipline (§4.3 step 6):
// the engine must release every level of recursion before running a
// continuation, since the continuation may itself call resolve/reject and
// expects to observe an unlocked Holder.
func (m *Mutex) UnlockAll(tok *Token) (depth int) {
	if tok != m.holder {
		panic("rlock: UnlockAll called by a Token that doesn't hold the lock")
	}
	depth = m.depth
	m.holder = nil
	m.depth = 0
	m.mu.Unlock()
	return depth
}

// RelockAll re-acquires m for tok at the given depth, undoing a prior
// UnlockAll. Note that by the time this runs, tok may no longer be the
// logically "right" owner if a join() rewired the Holder this Mutex guards
// onto a different Mutex entirely; callers are expected to re-resolve which
// Mutex to use before calling RelockAll, exactly as View.lock re-validates
// after acquiring.
func (m *Mutex) RelockAll(tok *Token, depth int) {
	m.mu.Lock()
	m.holder = tok
	m.depth = depth
}
