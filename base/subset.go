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
	"sort"

	"github.com/samber/lo"
)

// MarginalSubSet is one row (or column) of a sparse rating matrix: the
// ratings of a single user over items, or of a single item over users.
// Indices are dense indices of counterpart entities, kept sorted so that
// intersections run in linear time.
type MarginalSubSet struct {
	Indices []int32
	Values  []float32
}

// NewMarginalSubSet creates a MarginalSubSet and sorts entries by index.
func NewMarginalSubSet(indices []int32, values []float32) *MarginalSubSet {
	set := &MarginalSubSet{Indices: indices, Values: values}
	sort.Sort(set)
	return set
}

// Len returns the number of entries.
func (set *MarginalSubSet) Len() int {
	return len(set.Indices)
}

func (set *MarginalSubSet) Less(i, j int) bool {
	return set.Indices[i] < set.Indices[j]
}

func (set *MarginalSubSet) Swap(i, j int) {
	set.Indices[i], set.Indices[j] = set.Indices[j], set.Indices[i]
	set.Values[i], set.Values[j] = set.Values[j], set.Values[i]
}

// Mean of all values. Zero for an empty subset.
func (set *MarginalSubSet) Mean() float32 {
	if set.Len() == 0 {
		return 0
	}
	return lo.Sum(set.Values) / float32(set.Len())
}

// ForEach iterates entries in index order.
func (set *MarginalSubSet) ForEach(f func(i int, index int32, value float32)) {
	for i, index := range set.Indices {
		f(i, index, set.Values[i])
	}
}

// ForIntersection iterates entries whose indices exist in both subsets.
// Both subsets are sorted by index so a merge walk suffices.
func (set *MarginalSubSet) ForIntersection(other *MarginalSubSet, f func(index int32, a, b float32)) {
	i, j := 0, 0
	for i < set.Len() && j < other.Len() {
		if set.Indices[i] == other.Indices[j] {
			f(set.Indices[i], set.Values[i], other.Values[j])
			i++
			j++
		} else if set.Indices[i] < other.Indices[j] {
			i++
		} else {
			j++
		}
	}
}

// CountIntersection returns the number of common indices.
func (set *MarginalSubSet) CountIntersection(other *MarginalSubSet) int {
	count := 0
	set.ForIntersection(other, func(_ int32, _, _ float32) {
		count++
	})
	return count
}
