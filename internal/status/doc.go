// Package status represents a Holder's settlement state as a small bitfield.
//
// The value has two sections:
//
//   - state (2 bits): pending, resolved, or rejected. Pending is transiently
//     re-entered by the dispatch engine while a continuation it dispatched is
//     running, to block a recursive resolve/reject call from a user handler
//     from racing the engine's own state transition; this is always followed
//     by a second, final transition to resolved or rejected once the handler
//     returns.
//
//   - observed (1 bit): set the first time a continuation capable of seeing a
//     rejection (a non-empty, non-null onRejected handler, or a promise
//     adoption that merges one in) is attached. The uncaught-rejection sink
//     (see the parent package's holder.go) only fires for a Holder that is
//     rejected and never became observed.
//
// All mutation happens with the owning Holder's lock held, so unlike an
// earlier, lock-free ancestor of this type, there is no CAS loop here: the
// bitfield is just a compact way to store two small, related facts.
package status
