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
	"runtime"
	"weak"

	"github.com/asmsh/contprom/internal/box"
	"github.com/asmsh/contprom/internal/status"
)

// Outcome is what a Handler produces: either a new settled value (possibly a
// rejection), or another promise to adopt via join.
type Outcome struct {
	Value    box.Box
	Rejected bool
	Adopt    *View
}

// Handler is one half of a Task: the resolved-path or rejected-path
// continuation, already adapted from whatever typed func the caller wrote
// down to operate on the dynamic box. A nil Handler is the "empty/pass
// through" marker described in §4.2: the engine leaves value and state
// untouched when it dispatches to a nil Handler.
type Handler func(box.Box) Outcome

// CallLocation is a (file, line) pair captured at the call site of a
// chaining method, carried through to the bounded per-Holder call stack.
type CallLocation struct {
	File string
	Line int
}

func (l CallLocation) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// callerLoc captures the call site skip frames above the function that
// called callerLoc (skip 0 is that function's own call site).
func callerLoc(skip int) CallLocation {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallLocation{}
	}
	return CallLocation{File: file, Line: line}
}

// Task is one continuation node queued on a Holder's pendingTasks. It mirrors
// how that particular continuation settled in its own state field, distinct
// from the Holder's state, since a Task is only ever dispatched once.
type Task struct {
	state      status.PromStatus
	parent     weak.Pointer[Holder]
	onResolved Handler
	onRejected Handler
	loc        CallLocation
}

// observes reports whether this Task carries a handler able to see a
// rejection (used to flip the Holder's observed bit when the task is
// attached, per §4.2/§4.8).
func (t *Task) observes() bool {
	return t.onRejected != nil
}
