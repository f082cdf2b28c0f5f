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

package floats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	Add(a, []float32{2, 3, 4, 5})
	assert.Equal(t, []float32{3, 5, 7, 9}, a)
	assert.Panics(t, func() { Add([]float32{1}, []float32{1, 2}) })
}

func TestSub(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	Sub(a, []float32{2, 3, 4, 5})
	assert.Equal(t, []float32{-1, -1, -1, -1}, a)
	assert.Panics(t, func() { Sub([]float32{1}, []float32{1, 2}) })
}

func TestSubTo(t *testing.T) {
	dst := make([]float32, 4)
	SubTo([]float32{1, 2, 3, 4}, []float32{2, 3, 4, 5}, dst)
	assert.Equal(t, []float32{-1, -1, -1, -1}, dst)
	assert.Panics(t, func() { SubTo([]float32{1}, []float32{1, 2}, dst) })
}

func TestMulConst(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	MulConst(a, 2)
	assert.Equal(t, []float32{2, 4, 6, 8}, a)
}

func TestMulConstTo(t *testing.T) {
	dst := make([]float32, 4)
	MulConstTo([]float32{1, 2, 3, 4}, 2, dst)
	assert.Equal(t, []float32{2, 4, 6, 8}, dst)
	assert.Panics(t, func() { MulConstTo([]float32{1}, 2, dst) })
}

func TestMulConstAddTo(t *testing.T) {
	dst := []float32{1, 1, 1, 1}
	MulConstAddTo([]float32{1, 2, 3, 4}, 2, dst)
	assert.Equal(t, []float32{3, 5, 7, 9}, dst)
	assert.Panics(t, func() { MulConstAddTo([]float32{1}, 2, dst) })
}

func TestDot(t *testing.T) {
	assert.Equal(t, float32(40), Dot([]float32{1, 2, 3, 4}, []float32{2, 3, 4, 5}))
	assert.Panics(t, func() { Dot([]float32{1}, []float32{1, 2}) })
}

func TestSum(t *testing.T) {
	assert.Equal(t, float32(10), Sum([]float32{1, 2, 3, 4}))
}

func TestMean(t *testing.T) {
	assert.Equal(t, float32(2.5), Mean([]float32{1, 2, 3, 4}))
}

func TestStdDev(t *testing.T) {
	// mean 5, sum of squared deviations 80, sample variance 80/9
	assert.InDelta(t, 2.9814, StdDev([]float32{1, 3, 5, 7, 9, 1, 3, 5, 7, 9}), 1e-3)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, float32(1), Min([]float32{3, 1, 4, 1, 5}))
	assert.Equal(t, float32(5), Max([]float32{3, 1, 4, 1, 5}))
	assert.Panics(t, func() { Min(nil) })
	assert.Panics(t, func() { Max(nil) })
}
