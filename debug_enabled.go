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

//go:build enable_promise_debug

package promise

import (
	"fmt"
	"os"
)

type debugEvent uint8

const (
	debugTaskDispatch debugEvent = iota
	debugJoin
	debugUncaught
)

func (e debugEvent) String() string {
	switch e {
	case debugTaskDispatch:
		return "dispatch"
	case debugJoin:
		return "join"
	case debugUncaught:
		return "uncaught"
	default:
		return "unknown"
	}
}

// debugTrace prints a trace line to stderr. Built only with
// -tags enable_promise_debug; see debug.go for the default no-op.
func debugTrace(event debugEvent, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[promise debug] %s: %s\n", event, msg)
}

// assertInvariants walks the cheap-to-check structural invariants of h and
// panics with a descriptive message if one is violated. Caller must hold
// h.lock. Built only with -tags enable_promise_debug; see debug.go for the
// default no-op, so release builds pay nothing for this.
func assertInvariants(h *Holder) {
	if n := len(h.callStack); n > callStackLimit {
		panic(fmt.Sprintf("promise: holder %s call stack exceeds bound (%d > %d)", h.id, n, callStackLimit))
	}
	observes := false
	for _, t := range h.pendingTasks {
		if t.observes() {
			observes = true
			break
		}
	}
	if observes && !h.status.IsObserved() {
		panic(fmt.Sprintf("promise: holder %s has a rejection-observing task queued but its observed bit is unset", h.id))
	}
}
