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

// Package promise implements a JavaScript-style promise: a chain of
// continuations that run when an antecedent value becomes available or an
// antecedent failure occurs, with exactly-once progression per chain.
//
// The data model (see the Holder, View, Task, and Defer types) follows the
// original async-continuation design directly:
//
//   - A Holder is the authoritative state of one logical promise: its
//     settlement (pending, resolved, or rejected), its settled value, and
//     the FIFO queue of continuations waiting on it.
//
//   - A View is a shared, reassignable handle to a Holder. Promise[T] wraps
//     one. Multiple Views end up pointing at the same Holder once two
//     chains are joined together (see below).
//
//   - A Task is one continuation: a resolved-path handler, a rejected-path
//     handler, and a weak back-link to the Holder that will fire it.
//
//   - A Defer is a View plus the authority to settle it; NewPromise hands
//     one to its executor, which calls Resolve or Reject exactly once.
//
// Chaining a continuation onto a promise (Then, Fail, Always, Finally, ...)
// appends a Task to its Holder's queue and drives the dispatch engine
// immediately. The engine runs tasks strictly in append order, running each
// continuation with the Holder's lock released so the continuation is free
// to resolve or reject other promises, including the one it's running on.
//
// When a continuation returns another promise (ThenPromise), the two chains
// are joined: the Holder that's waiting gets merged into the Holder the
// returned promise names, and every continuation queued on either side
// continues to run in its original order against the merged Holder. This is
// "promise adoption" and is what lets a chain transparently flatten
// nested asynchronous work.
//
// Every Holder is safe to resolve or reject from any goroutine, but the
// continuations on any one chain run one at a time, on whatever goroutine
// happened to settle the antecedent — there is no thread pool or scheduler
// here, by design. Event-loop collaborators (timers, I/O) are expected to
// call Resolve/Reject on their own goroutine when work completes.
//
// A promise that settles rejected and is never observed by a rejected-path
// continuation reports itself to the process-wide uncaught-rejection sink
// (see SetUncaughtHandler) once its last View is garbage collected.
package promise
