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

import "github.com/asmsh/contprom/internal/box"

// breakTag is the sentinel payload shape do_while recognizes to terminate
// iteration with a user-supplied value (§4.6, §7, GLOSSARY "Break tag").
type breakTag struct{ value any }

// Loop is handed to a do_while body so it can drive the next iteration.
type Loop struct {
	d *Defer
}

// Continue resolves the current iteration, causing the outer chain to
// schedule another call to body.
func (l *Loop) Continue() { l.d.Resolve(struct{}{}) }

// Break terminates the loop, resolving the overall do_while promise with v.
func (l *Loop) Break(v any) { l.d.Reject(breakTag{value: v}) }

// Reject terminates the loop, rejecting the overall do_while promise with e.
func (l *Loop) Reject(e any) { l.d.Reject(e) }

// doWhileView implements §4.6: it creates one iteration's promise, runs body
// synchronously against it, then attaches a continuation that either
// recurses into the next iteration (on Continue) or unwraps a break/plain
// rejection (on Break/Reject).
func doWhileView(body func(*Loop)) *View {
	v := newPromiseView(func(d *Defer) {
		body(&Loop{d: d})
	})

	onResolved := func(box.Box) Outcome {
		return Outcome{Adopt: doWhileView(body)}
	}
	onRejected := func(b box.Box) Outcome {
		if bt, ok := b.Interface().(breakTag); ok {
			return Outcome{Value: box.Of(bt.value)}
		}
		return Outcome{Rejected: true, Value: b}
	}
	return attachTask(v, onResolved, onRejected, callerLoc(1))
}

// DoWhile runs body repeatedly until it calls loop.Break(v) or loop.Reject(e)
// (§4.6, §6 do_while, testable property 8).
func DoWhile[T any](body func(*Loop)) Promise[T] {
	return Promise[T]{view: doWhileView(body)}
}
