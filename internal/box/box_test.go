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

package box

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBox(t *testing.T) {
	b := Empty()
	assert.True(t, b.IsEmpty())
	assert.False(t, b.IsNull())
	assert.False(t, b.IsValue())
	assert.Nil(t, b.Interface())
	assert.Nil(t, b.Type())
}

func TestNullBox(t *testing.T) {
	b := Null()
	assert.False(t, b.IsEmpty())
	assert.True(t, b.IsNull())
	assert.False(t, b.IsValue())
}

func TestOfAndAs(t *testing.T) {
	b := Of(42)
	assert.True(t, b.IsValue())
	v, err := As[int](b)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAsBadCast(t *testing.T) {
	b := Of("a string")
	_, err := As[int](b)
	require.Error(t, err)
	var bc *BadCastError
	require.ErrorAs(t, err, &bc)
	assert.Contains(t, err.Error(), "bad cast")
}

func TestAsOnEmpty(t *testing.T) {
	_, err := As[int](Empty())
	require.Error(t, err)
}

func TestOfNilIsAValue(t *testing.T) {
	b := Of(nil)
	assert.True(t, b.IsValue())
	assert.False(t, b.IsEmpty())
	assert.Nil(t, b.Type())
}
