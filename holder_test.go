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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asmsh/contprom/internal/box"
)

func TestHolderDump(t *testing.T) {
	h := newHolder()
	h.status = h.status.WithResolved()
	h.pushCallStack(CallLocation{File: "somewhere.go", Line: 42})

	var sb strings.Builder
	h.Dump(&sb)

	out := sb.String()
	assert.Contains(t, out, h.id.String())
	assert.Contains(t, out, "resolved")
	assert.Contains(t, out, "somewhere.go:42")
}

func TestAssertInvariantsNoOpWithoutDebugTag(t *testing.T) {
	// Without -tags enable_promise_debug, assertInvariants must not panic
	// even when fed a holder that would violate the checked invariant.
	h := newHolder()
	h.pendingTasks = append(h.pendingTasks, &Task{onRejected: func(b box.Box) Outcome { return Outcome{} }})
	assertInvariants(h)
}
