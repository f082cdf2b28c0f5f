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
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/zhenghaoz/taste/base"
)

// ErrDuplicateRating is returned when a (user, item) pair is rated twice.
var ErrDuplicateRating = errors.New("duplicate rating")

// DataSet contains preprocessed rating triples for recommendation models.
// User IDs and item IDs are opaque strings mapped to dense indices. Each
// (user, item) pair appears at most once.
type DataSet struct {
	UserIndex *base.Index
	ItemIndex *base.Index
	Users     []int32   // dense user index of each rating
	Items     []int32   // dense item index of each rating
	Ratings   []float32 // score of each rating
	// indexed views, built on first use
	userRatings []*base.MarginalSubSet
	itemRatings []*base.MarginalSubSet
	pairs       map[int64]struct{}
}

// NewDataSet creates an empty data set.
func NewDataSet() *DataSet {
	s := new(DataSet)
	s.UserIndex = base.NewMapIndex()
	s.ItemIndex = base.NewMapIndex()
	s.pairs = make(map[int64]struct{})
	return s
}

func ratingKey(userIndex, itemIndex int32) int64 {
	return int64(userIndex)<<32 | int64(itemIndex)
}

// AddRating adds a rating triple. Adding the same (user, item) pair twice
// fails with ErrDuplicateRating.
func (dataset *DataSet) AddRating(userId, itemId string, rating float32) error {
	dataset.UserIndex.Add(userId)
	dataset.ItemIndex.Add(itemId)
	userIndex := dataset.UserIndex.ToNumber(userId)
	itemIndex := dataset.ItemIndex.ToNumber(itemId)
	key := ratingKey(userIndex, itemIndex)
	if _, exist := dataset.pairs[key]; exist {
		return errors.Annotatef(ErrDuplicateRating, "user %v, item %v", userId, itemId)
	}
	dataset.pairs[key] = struct{}{}
	dataset.Users = append(dataset.Users, userIndex)
	dataset.Items = append(dataset.Items, itemIndex)
	dataset.Ratings = append(dataset.Ratings, rating)
	// invalidate indexed views
	dataset.userRatings = nil
	dataset.itemRatings = nil
	return nil
}

// Count returns the number of ratings.
func (dataset *DataSet) Count() int {
	return len(dataset.Ratings)
}

// UserCount returns the number of distinct users.
func (dataset *DataSet) UserCount() int {
	return int(dataset.UserIndex.Len())
}

// ItemCount returns the number of distinct items.
func (dataset *DataSet) ItemCount() int {
	return int(dataset.ItemIndex.Len())
}

// GetIndex gets the i-th rating as <user index, item index, rating>.
func (dataset *DataSet) GetIndex(i int) (int32, int32, float32) {
	return dataset.Users[i], dataset.Items[i], dataset.Ratings[i]
}

// Get gets the i-th rating as <user ID, item ID, rating>.
func (dataset *DataSet) Get(i int) (string, string, float32) {
	return dataset.UserIndex.ToName(dataset.Users[i]), dataset.ItemIndex.ToName(dataset.Items[i]), dataset.Ratings[i]
}

// GlobalMean computes the mean of all ratings. Zero for an empty data set.
func (dataset *DataSet) GlobalMean() float32 {
	if dataset.Count() == 0 {
		return 0
	}
	return lo.Sum(dataset.Ratings) / float32(dataset.Count())
}

// RatingRange returns the minimum and maximum observed ratings.
func (dataset *DataSet) RatingRange() (float32, float32) {
	if dataset.Count() == 0 {
		return 0, 0
	}
	return lo.Min(dataset.Ratings), lo.Max(dataset.Ratings)
}

// UserRatings returns the ratings of each user over items. The i-th subset
// maps item indices to scores for the user with dense index i.
func (dataset *DataSet) UserRatings() []*base.MarginalSubSet {
	if dataset.userRatings == nil {
		dataset.userRatings = buildMarginal(dataset.UserCount(), dataset.Users, dataset.Items, dataset.Ratings)
	}
	return dataset.userRatings
}

// ItemRatings returns the ratings of each item over users. The i-th subset
// maps user indices to scores for the item with dense index i.
func (dataset *DataSet) ItemRatings() []*base.MarginalSubSet {
	if dataset.itemRatings == nil {
		dataset.itemRatings = buildMarginal(dataset.ItemCount(), dataset.Items, dataset.Users, dataset.Ratings)
	}
	return dataset.itemRatings
}

func buildMarginal(n int, keys, counterparts []int32, values []float32) []*base.MarginalSubSet {
	indices := make([][]int32, n)
	scores := make([][]float32, n)
	for i, key := range keys {
		indices[key] = append(indices[key], counterparts[i])
		scores[key] = append(scores[key], values[i])
	}
	sets := make([]*base.MarginalSubSet, n)
	for i := range sets {
		sets[i] = base.NewMarginalSubSet(indices[i], scores[i])
	}
	return sets
}

// SubSet creates a data set from selected ratings. Users and items are
// re-indexed so that entities absent from the subset are truly unknown.
func (dataset *DataSet) SubSet(indices []int) *DataSet {
	subset := NewDataSet()
	for _, i := range indices {
		userId, itemId, rating := dataset.Get(i)
		// the parent has no duplicates, so neither has the subset
		_ = subset.AddRating(userId, itemId, rating)
	}
	return subset
}

// Split the data set to a train set and a test set by the given ratio of test
// ratings. The split is reproducible for the same seed.
func (dataset *DataSet) Split(testRatio float32, seed int64) (*DataSet, *DataSet) {
	rng := base.NewRandomGenerator(seed)
	testSize := int(float32(dataset.Count()) * testRatio)
	testIndices := rng.Sample(0, dataset.Count(), testSize)
	isTest := make([]bool, dataset.Count())
	for _, i := range testIndices {
		isTest[i] = true
	}
	trainIndices := make([]int, 0, dataset.Count()-testSize)
	for i := 0; i < dataset.Count(); i++ {
		if !isTest[i] {
			trainIndices = append(trainIndices, i)
		}
	}
	return dataset.SubSet(trainIndices), dataset.SubSet(testIndices)
}

// KFold splits the data set to k disjoint folds of train and test sets.
func (dataset *DataSet) KFold(k int, seed int64) ([]*DataSet, []*DataSet) {
	return NewKFoldSplitter(k)(dataset, seed)
}

/* Splitters */

// Splitter splits a data set to train folds and test folds.
type Splitter func(dataSet *DataSet, seed int64) ([]*DataSet, []*DataSet)

// NewKFoldSplitter creates a k-fold splitter. Folds are disjoint and cover
// the whole data set.
func NewKFoldSplitter(k int) Splitter {
	return func(dataset *DataSet, seed int64) ([]*DataSet, []*DataSet) {
		trainFolds := make([]*DataSet, k)
		testFolds := make([]*DataSet, k)
		rng := base.NewRandomGenerator(seed)
		perm := rng.Perm(dataset.Count())
		foldSize := dataset.Count() / k
		begin, end := 0, 0
		for i := 0; i < k; i++ {
			end += foldSize
			if i < dataset.Count()%k {
				end++
			}
			testFolds[i] = dataset.SubSet(perm[begin:end])
			trainIndices := make([]int, 0, dataset.Count()-(end-begin))
			trainIndices = append(trainIndices, perm[:begin]...)
			trainIndices = append(trainIndices, perm[end:]...)
			trainFolds[i] = dataset.SubSet(trainIndices)
			begin = end
		}
		return trainFolds, testFolds
	}
}

// NewRatioSplitter creates a repeated random train/test splitter.
func NewRatioSplitter(repeat int, testRatio float32) Splitter {
	return func(dataset *DataSet, seed int64) ([]*DataSet, []*DataSet) {
		trainFolds := make([]*DataSet, repeat)
		testFolds := make([]*DataSet, repeat)
		for i := 0; i < repeat; i++ {
			trainFolds[i], testFolds[i] = dataset.Split(testRatio, seed+int64(i))
		}
		return trainFolds, testFolds
	}
}

// LoadDataFromCSV loads a data set from a delimited text file. The file
// should be:
//   [optional header]
//   <userId 1> <sep> <itemId 1> <sep> <rating 1> <sep> <extras>
//   <userId 2> <sep> <itemId 2> <sep> <rating 2> <sep> <extras>
//   ...
// For example, the `u.data` from MovieLens 100K is:
//   196\t242\t3\t881250949
//   186\t302\t3\t891717742
//   22\t377\t1\t878887116
func LoadDataFromCSV(fileName, sep string, hasHeader bool) (*DataSet, error) {
	dataset := NewDataSet()
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// skip header
		if hasHeader {
			hasHeader = false
			continue
		}
		fields := strings.Split(line, sep)
		// skip empty lines
		if len(fields) < 3 {
			continue
		}
		rating, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err = dataset.AddRating(fields[0], fields[1], float32(rating)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return dataset, nil
}
