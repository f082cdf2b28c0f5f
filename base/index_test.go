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

func TestIndex(t *testing.T) {
	// Create a indexer
	index := NewMapIndex()
	assert.Zero(t, index.Len())
	// Add Names
	index.Add("1")
	index.Add("2")
	index.Add("4")
	index.Add("8")
	index.Add("1")
	assert.Equal(t, int32(4), index.Len())
	assert.Equal(t, int32(0), index.ToNumber("1"))
	assert.Equal(t, int32(1), index.ToNumber("2"))
	assert.Equal(t, int32(2), index.ToNumber("4"))
	assert.Equal(t, int32(3), index.ToNumber("8"))
	assert.Equal(t, NotId, index.ToNumber("1000"))
	assert.Equal(t, "1", index.ToName(0))
	assert.Equal(t, "2", index.ToName(1))
	assert.Equal(t, "4", index.ToName(2))
	assert.Equal(t, "8", index.ToName(3))
	// Get names
	assert.Equal(t, []string{"1", "2", "4", "8"}, index.GetNames())
	// Nil index
	var nilIndex *Index
	assert.Zero(t, nilIndex.Len())
}
