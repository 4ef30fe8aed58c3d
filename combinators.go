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
	"sync"

	"github.com/asmsh/contprom/internal/box"
)

// allView implements §4.7 all(list): positional aggregation, first rejection
// wins. An empty list resolves immediately with an empty aggregate.
func allView(inputs []*View) *View {
	outHolder := newHolder()
	outView := newView(outHolder)
	outDefer := &Defer{view: outView}

	n := len(inputs)
	if n == 0 {
		outDefer.Resolve([]any{})
		return outView
	}

	results := make([]any, n)
	var mu sync.Mutex
	remaining := n

	for i, inV := range inputs {
		i := i
		attachTask(inV,
			func(b box.Box) Outcome {
				mu.Lock()
				results[i] = b.Interface()
				remaining--
				fin := remaining == 0
				var out []any
				if fin {
					out = append([]any(nil), results...)
				}
				mu.Unlock()
				if fin {
					outDefer.Resolve(out)
				}
				return Outcome{Value: box.Empty()}
			},
			func(b box.Box) Outcome {
				outDefer.Reject(b.Interface())
				return Outcome{Rejected: true, Value: b}
			},
			callerLoc(2),
		)
	}
	return outView
}

// raceMode selects what happens to non-winning inputs once the race settles.
type raceMode uint8

const (
	raceOnly raceMode = iota
	raceThenResolve
	raceThenReject
)

// raceView implements race/raceAndResolve/raceAndReject (§4.7): the output
// settles with whichever input first settles, then optionally forces every
// other still-pending input to a fixed outcome. forceValue is whatever the
// typed layer considers a safe stand-in value to force a loser with — for
// raceThenResolve this must be the zero value of the caller's element type,
// so a typed consumer chained off a forced loser doesn't see a spurious
// bad-cast; for raceThenReject it is just an arbitrary payload since reject
// handlers take the payload as `any`.
func raceView(inputs []*View, mode raceMode, forceValue any) *View {
	outHolder := newHolder()
	outView := newView(outHolder)
	outDefer := &Defer{view: outView}

	var mu sync.Mutex
	winner := -1

	settle := func(i int, rejected bool, val any) {
		mu.Lock()
		first := winner == -1
		if first {
			winner = i
		}
		mu.Unlock()
		if !first {
			return
		}
		if rejected {
			outDefer.Reject(val)
		} else {
			outDefer.Resolve(val)
		}
		if mode == raceOnly {
			return
		}
		for j, inV := range inputs {
			if j == i {
				continue
			}
			loser := &Defer{view: inV}
			if mode == raceThenResolve {
				loser.Resolve(forceValue)
			} else {
				loser.Reject(forceValue)
			}
		}
	}

	for i, inV := range inputs {
		i := i
		attachTask(inV,
			func(b box.Box) Outcome {
				settle(i, false, b.Interface())
				return Outcome{Value: b}
			},
			func(b box.Box) Outcome {
				settle(i, true, b.Interface())
				return Outcome{Rejected: true, Value: b}
			},
			callerLoc(2),
		)
	}
	return outView
}
