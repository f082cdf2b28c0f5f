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

package rating

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhenghaoz/taste/base"
)

func newTestDataSet(t *testing.T, triples [][3]interface{}) *DataSet {
	dataset := NewDataSet()
	for _, triple := range triples {
		err := dataset.AddRating(triple[0].(string), triple[1].(string), float32(triple[2].(float64)))
		require.NoError(t, err)
	}
	return dataset
}

func TestDataSet_AddRating(t *testing.T) {
	dataset := NewDataSet()
	assert.NoError(t, dataset.AddRating("1", "2", 3))
	assert.NoError(t, dataset.AddRating("1", "4", 5))
	assert.NoError(t, dataset.AddRating("2", "4", 1))
	assert.Equal(t, 3, dataset.Count())
	assert.Equal(t, 2, dataset.UserCount())
	assert.Equal(t, 2, dataset.ItemCount())
	// duplicate (user, item) pairs are rejected
	err := dataset.AddRating("1", "2", 4)
	assert.ErrorIs(t, errors.Cause(err), ErrDuplicateRating)
	assert.Equal(t, 3, dataset.Count())
}

func TestDataSet_GlobalMean(t *testing.T) {
	dataset := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 5.0},
		{"u1", "i2", 3.0},
		{"u2", "i1", 4.0},
		{"u2", "i2", 2.0},
	})
	assert.InDelta(t, 3.5, dataset.GlobalMean(), 1e-6)
	minRating, maxRating := dataset.RatingRange()
	assert.Equal(t, float32(2), minRating)
	assert.Equal(t, float32(5), maxRating)
}

func TestDataSet_MarginalViews(t *testing.T) {
	dataset := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 5.0},
		{"u1", "i2", 3.0},
		{"u2", "i1", 4.0},
	})
	userRatings := dataset.UserRatings()
	assert.Equal(t, 2, len(userRatings))
	assert.Equal(t, 2, userRatings[dataset.UserIndex.ToNumber("u1")].Len())
	assert.Equal(t, 1, userRatings[dataset.UserIndex.ToNumber("u2")].Len())
	itemRatings := dataset.ItemRatings()
	assert.Equal(t, 2, len(itemRatings))
	assert.Equal(t, 2, itemRatings[dataset.ItemIndex.ToNumber("i1")].Len())
	// views follow subsequent inserts
	assert.NoError(t, dataset.AddRating("u2", "i2", 1))
	assert.Equal(t, 2, dataset.UserRatings()[dataset.UserIndex.ToNumber("u2")].Len())
}

func TestDataSet_SubSet(t *testing.T) {
	dataset := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 5.0},
		{"u2", "i2", 3.0},
		{"u3", "i3", 1.0},
	})
	subset := dataset.SubSet([]int{0, 1})
	assert.Equal(t, 2, subset.Count())
	// entities absent from the subset are unknown
	assert.Equal(t, base.NotId, subset.UserIndex.ToNumber("u3"))
	assert.Equal(t, base.NotId, subset.ItemIndex.ToNumber("i3"))
	assert.NotEqual(t, base.NotId, subset.UserIndex.ToNumber("u1"))
}

func TestDataSet_Split(t *testing.T) {
	dataset := NewDataSet()
	for u := 0; u < 10; u++ {
		for i := 0; i < 10; i++ {
			assert.NoError(t, dataset.AddRating(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), float32(i%5)+1))
		}
	}
	train, test := dataset.Split(0.2, 42)
	assert.Equal(t, 80, train.Count())
	assert.Equal(t, 20, test.Count())
	// re-merging the partitions recovers every pair exactly once
	merged := make(map[string]float32)
	for _, fold := range []*DataSet{train, test} {
		for i := 0; i < fold.Count(); i++ {
			userId, itemId, rating := fold.Get(i)
			key := userId + "\t" + itemId
			_, exist := merged[key]
			assert.False(t, exist)
			merged[key] = rating
		}
	}
	assert.Equal(t, dataset.Count(), len(merged))
	for i := 0; i < dataset.Count(); i++ {
		userId, itemId, rating := dataset.Get(i)
		assert.Equal(t, rating, merged[userId+"\t"+itemId])
	}
	// same seed, same split
	train2, test2 := dataset.Split(0.2, 42)
	assert.Equal(t, train.Count(), train2.Count())
	for i := 0; i < test.Count(); i++ {
		userA, itemA, _ := test.Get(i)
		userB, itemB, _ := test2.Get(i)
		assert.Equal(t, userA, userB)
		assert.Equal(t, itemA, itemB)
	}
}

func TestNewKFoldSplitter(t *testing.T) {
	dataset := NewDataSet()
	for u := 0; u < 5; u++ {
		for i := 0; i < 5; i++ {
			assert.NoError(t, dataset.AddRating(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 3))
		}
	}
	trainFolds, testFolds := NewKFoldSplitter(5)(dataset, 0)
	assert.Equal(t, 5, len(trainFolds))
	assert.Equal(t, 5, len(testFolds))
	seen := make(map[string]int)
	for i := range trainFolds {
		assert.Equal(t, dataset.Count(), trainFolds[i].Count()+testFolds[i].Count())
		for j := 0; j < testFolds[i].Count(); j++ {
			userId, itemId, _ := testFolds[i].Get(j)
			seen[userId+"\t"+itemId]++
		}
	}
	// each rating lands in exactly one test fold
	assert.Equal(t, dataset.Count(), len(seen))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestNewRatioSplitter(t *testing.T) {
	dataset := NewDataSet()
	for u := 0; u < 10; u++ {
		assert.NoError(t, dataset.AddRating(fmt.Sprintf("u%d", u), "i0", 3))
	}
	trainFolds, testFolds := NewRatioSplitter(3, 0.3)(dataset, 0)
	assert.Equal(t, 3, len(trainFolds))
	for i := range trainFolds {
		assert.Equal(t, 7, trainFolds[i].Count())
		assert.Equal(t, 3, testFolds[i].Count())
	}
}

func TestLoadDataFromCSV(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "ratings.csv")
	text := "user_id,item_id,rating\n" +
		"1,2,3\n" +
		"4,5,6\n" +
		"7,8,9\n"
	require.NoError(t, os.WriteFile(fileName, []byte(text), 0644))
	dataset, err := LoadDataFromCSV(fileName, ",", true)
	require.NoError(t, err)
	assert.Equal(t, 3, dataset.Count())
	userId, itemId, rating := dataset.Get(0)
	assert.Equal(t, "1", userId)
	assert.Equal(t, "2", itemId)
	assert.Equal(t, float32(3), rating)
}
