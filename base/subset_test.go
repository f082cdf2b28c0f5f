// Copyright 2025 taste Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarginalSubSet(t *testing.T) {
	set := NewMarginalSubSet([]int32{4, 2, 0}, []float32{40, 20, 0})
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []int32{0, 2, 4}, set.Indices)
	assert.Equal(t, []float32{0, 20, 40}, set.Values)
	assert.Equal(t, float32(20), set.Mean())
	indices := make([]int32, 0)
	values := make([]float32, 0)
	set.ForEach(func(i int, index int32, value float32) {
		indices = append(indices, index)
		values = append(values, value)
	})
	assert.Equal(t, []int32{0, 2, 4}, indices)
	assert.Equal(t, []float32{0, 20, 40}, values)
}

func TestMarginalSubSet_Mean_Empty(t *testing.T) {
	set := NewMarginalSubSet(nil, nil)
	assert.Zero(t, set.Mean())
}

func TestMarginalSubSet_ForIntersection(t *testing.T) {
	a := NewMarginalSubSet([]int32{0, 1, 2, 3}, []float32{1, 1, 1, 1})
	b := NewMarginalSubSet([]int32{1, 2, 3, 4}, []float32{2, 2, 2, 2})
	indices := make([]int32, 0)
	a.ForIntersection(b, func(index int32, av, bv float32) {
		indices = append(indices, index)
		assert.Equal(t, float32(1), av)
		assert.Equal(t, float32(2), bv)
	})
	assert.Equal(t, []int32{1, 2, 3}, indices)
	assert.Equal(t, 3, a.CountIntersection(b))
}
