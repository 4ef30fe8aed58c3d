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
	"os"
	"sync/atomic"

	"github.com/asmsh/contprom/internal/box"
)

// UncaughtHandler is invoked when a rejected promise is garbage collected
// with no rejection-observing continuation ever attached (§4.8).
type UncaughtHandler func(payload any)

var uncaughtHandler atomic.Pointer[UncaughtHandler]

func init() {
	h := UncaughtHandler(defaultUncaughtHandler)
	uncaughtHandler.Store(&h)
}

// SetUncaughtHandler installs h as the process-wide uncaught-rejection sink,
// replacing whatever was installed before. Passing nil restores the default
// (stderr-printing) handler.
func SetUncaughtHandler(h UncaughtHandler) {
	if h == nil {
		h = defaultUncaughtHandler
	}
	uncaughtHandler.Store(&h)
}

// inSink guards against the sink re-entrantly triggering itself: since
// runtime.AddCleanup callbacks run serialized on the runtime's own cleanup
// goroutine, a single process-wide flag is the practical equivalent of the
// thread-local re-entry guard described in §4.8 and §4.2 — in this runtime
// there is effectively one "thread" these callbacks ever run on.
var inSink atomic.Bool

func fireUncaught(payload box.Box) {
	if !inSink.CompareAndSwap(false, true) {
		return
	}
	defer inSink.Store(false)
	debugTrace(debugUncaught, "payload=%v", payload)
	h := uncaughtHandler.Load()
	(*h)(payload.Interface())
}

func defaultUncaughtHandler(payload any) {
	if err, ok := payload.(error); ok {
		fmt.Fprintf(os.Stderr, "promise: uncaught rejection: %s\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "promise: uncaught rejection: %v\n", payload)
}
