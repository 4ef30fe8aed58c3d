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

//go:build !enable_promise_debug

package promise

// debugEvent names a point in the engine worth tracing when built with the
// enable_promise_debug tag.
type debugEvent uint8

const (
	debugTaskDispatch debugEvent = iota
	debugJoin
	debugUncaught
)

// debugTrace is a no-op in ordinary builds; see debug_enabled.go for the
// tracing version, enabled with -tags enable_promise_debug.
func debugTrace(event debugEvent, format string, args ...any) {}

// assertInvariants is a no-op in ordinary builds; see debug_enabled.go for
// the checked version, enabled with -tags enable_promise_debug.
func assertInvariants(h *Holder) {}
