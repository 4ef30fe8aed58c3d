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

package rlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecursiveLock(t *testing.T) {
	var m Mutex
	tok := NewToken()
	m.Lock(tok)
	m.Lock(tok)
	assert.Equal(t, 2, m.Depth(tok))
	m.Unlock(tok)
	assert.Equal(t, 1, m.Depth(tok))
	m.Unlock(tok)
	assert.Equal(t, 0, m.Depth(tok))
}

func TestDistinctTokensBlock(t *testing.T) {
	var m Mutex
	tokA := NewToken()
	tokB := NewToken()
	m.Lock(tokA)

	unlocked := make(chan struct{})
	go func() {
		m.Lock(tokB)
		close(unlocked)
		m.Unlock(tokB)
	}()

	select {
	case <-unlocked:
		t.Fatal("tokB should not acquire the lock while tokA holds it")
	case <-time.After(20 * time.Millisecond):
	}
	m.Unlock(tokA)
	<-unlocked
}

func TestUnlockAllThenRelockAll(t *testing.T) {
	var m Mutex
	tok := NewToken()
	m.Lock(tok)
	m.Lock(tok)
	m.Lock(tok)
	depth := m.UnlockAll(tok)
	assert.Equal(t, 3, depth)
	assert.Equal(t, 0, m.Depth(tok))

	var wg sync.WaitGroup
	wg.Add(1)
	otherTok := NewToken()
	go func() {
		defer wg.Done()
		m.Lock(otherTok)
		m.Unlock(otherTok)
	}()
	wg.Wait()

	m.RelockAll(tok, depth)
	assert.Equal(t, depth, m.Depth(tok))
	for i := 0; i < depth; i++ {
		m.Unlock(tok)
	}
}

func TestUnlockByWrongTokenPanics(t *testing.T) {
	var m Mutex
	tok := NewToken()
	m.Lock(tok)
	defer m.Unlock(tok)
	assert.Panics(t, func() {
		m.Unlock(NewToken())
	})
}
