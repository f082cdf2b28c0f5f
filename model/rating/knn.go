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
	"sort"
	"time"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/zhenghaoz/taste/base"
	"github.com/zhenghaoz/taste/base/log"
	"github.com/zhenghaoz/taste/model"
	"go.uber.org/zap"
	"modernc.org/mathutil"
)

const (
	basic    = "basic"
	centered = "centered"
	zScore   = "z_score"
	baseline = "baseline"
)

// KNN predicts ratings from the weighted ratings of the k nearest neighbors.
// In user-based mode the neighbors of user u are other users who rated item i,
// in item-based mode the neighbors of item i are other items rated by user u.
// Four variants differ only in how neighbor ratings are aggregated:
//
//	basic    - The weighted average of raw neighbor ratings.
//	centered - Neighbor ratings centered by the neighbor's mean rating.
//	z_score  - Neighbor ratings normalized by mean and standard deviation.
//	baseline - Neighbor ratings centered by their baseline estimates.
//
// Hyper-parameters:
//
//	UserBased  - Neighborhood over users instead of items. Default is true.
//	Similarity - The similarity metric: cosine, pearson or msd.
//	             Default is msd.
//	K          - The maximum number of neighbors. Default is 40.
//	MinK       - The minimum number of neighbors required for an estimate.
//	             Default is 1.
//	MinSupport - The minimum number of common ratings required to keep a
//	             similarity. Default is 1.
type KNN struct {
	model.BaseModel
	knnType      string
	UserIndex    *base.Index
	ItemIndex    *base.Index
	LeftRatings  []*base.MarginalSubSet
	RightRatings []*base.MarginalSubSet
	SimMatrix    [][]float32
	Means        []float32 // centered and z_score
	StdDevs      []float32 // z_score
	Baseline     *BaseLine // baseline
	GlobalMean   float32
	// Hyper parameters
	userBased      bool
	similarityName string
	k              int
	minK           int
	minSupport     int
}

// NewKNN creates a basic KNN model.
func NewKNN(params model.Params) *KNN {
	return newKNN(basic, params)
}

// NewKNNWithMeans creates a KNN model with mean-centered neighbor ratings.
func NewKNNWithMeans(params model.Params) *KNN {
	return newKNN(centered, params)
}

// NewKNNWithZScore creates a KNN model with z-score normalized neighbor ratings.
func NewKNNWithZScore(params model.Params) *KNN {
	return newKNN(zScore, params)
}

// NewKNNBaseline creates a KNN model with baseline-centered neighbor ratings.
func NewKNNBaseline(params model.Params) *KNN {
	return newKNN(baseline, params)
}

func newKNN(knnType string, params model.Params) *KNN {
	knn := new(KNN)
	// The variant travels with the parameters so that clones rebuild it.
	if err := knn.SetParams(params.Overwrite(model.Params{model.Type: knnType})); err != nil {
		log.Logger().Error("invalid hyper-parameters", zap.Error(err))
	}
	return knn
}

// SetParams sets hyper-parameters of the KNN model.
func (knn *KNN) SetParams(params model.Params) error {
	if err := knn.BaseModel.SetParams(params); err != nil {
		return errors.Trace(err)
	}
	knn.knnType = knn.Params.GetString(model.Type, basic)
	knn.userBased = knn.Params.GetBool(model.UserBased, true)
	knn.similarityName = knn.Params.GetString(model.Similarity, model.SimilarityMSD)
	knn.k = knn.Params.GetInt(model.K, 40)
	knn.minK = knn.Params.GetInt(model.MinK, 1)
	knn.minSupport = knn.Params.GetInt(model.MinSupport, 1)
	if _, err := NewSimilarity(knn.similarityName); err != nil {
		return errors.Trace(err)
	}
	switch knn.knnType {
	case basic, centered, zScore, baseline:
	default:
		return errors.Errorf("unknown KNN variant %v", knn.knnType)
	}
	if knn.k < 1 {
		return errors.Errorf("K must be positive, got %v", knn.k)
	} else if knn.minK < 1 {
		return errors.Errorf("MinK must be positive, got %v", knn.minK)
	} else if knn.minK > knn.k {
		return errors.Errorf("MinK (%v) must not exceed K (%v)", knn.minK, knn.k)
	} else if knn.minSupport < 1 {
		return errors.Errorf("MinSupport must be positive, got %v", knn.minSupport)
	}
	return nil
}

func (knn *KNN) GetParamsGrid() model.ParamsGrid {
	return model.ParamsGrid{
		model.Similarity: []interface{}{model.SimilarityCosine, model.SimilarityPearson, model.SimilarityMSD},
		model.K:          []interface{}{10, 20, 40, 80},
		model.MinK:       []interface{}{1, 3, 5},
	}
}

// Clear model weights.
func (knn *KNN) Clear() {
	knn.UserIndex = nil
	knn.ItemIndex = nil
	knn.LeftRatings = nil
	knn.RightRatings = nil
	knn.SimMatrix = nil
	knn.Means = nil
	knn.StdDevs = nil
	knn.Baseline = nil
	knn.GlobalMean = 0
}

// Invalid reports whether the model is unfitted.
func (knn *KNN) Invalid() bool {
	return knn == nil || knn.UserIndex == nil || knn.ItemIndex == nil || knn.SimMatrix == nil
}

// Fit the KNN model. The similarity matrix over users (or items) is
// computed up front so that prediction only ranks neighbors.
func (knn *KNN) Fit(trainSet *DataSet, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if trainSet.Count() == 0 {
		return errors.New("empty train set")
	}
	log.Logger().Info("fit KNN",
		zap.String("type", knn.knnType),
		zap.Bool("user_based", knn.userBased),
		zap.String("similarity", knn.similarityName),
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("jobs", config.Jobs))
	fitStart := time.Now()
	knn.UserIndex = trainSet.UserIndex
	knn.ItemIndex = trainSet.ItemIndex
	knn.GlobalMean = trainSet.GlobalMean()
	if knn.userBased {
		knn.LeftRatings = trainSet.UserRatings()
		knn.RightRatings = trainSet.ItemRatings()
	} else {
		knn.LeftRatings = trainSet.ItemRatings()
		knn.RightRatings = trainSet.UserRatings()
	}
	// Aggregation statistics
	switch knn.knnType {
	case centered, zScore:
		knn.Means = make([]float32, len(knn.LeftRatings))
		for i, set := range knn.LeftRatings {
			if set.Len() > 0 {
				knn.Means[i] = set.Mean()
			}
		}
		if knn.knnType == zScore {
			knn.StdDevs = make([]float32, len(knn.LeftRatings))
			for i, set := range knn.LeftRatings {
				sum := float32(0)
				set.ForEach(func(_ int, _ int32, value float32) {
					sum += (value - knn.Means[i]) * (value - knn.Means[i])
				})
				if set.Len() > 0 {
					knn.StdDevs[i] = math32.Sqrt(sum / float32(set.Len()))
				}
			}
		}
	case baseline:
		knn.Baseline = NewBaseLine(model.Params{
			model.Reg:         knn.Params.GetFloat32(model.Reg, 0.02),
			model.Lr:          knn.Params.GetFloat32(model.Lr, 0.005),
			model.NEpochs:     knn.Params.GetInt(model.NEpochs, 20),
			model.RandomState: knn.Params.GetInt64(model.RandomState, 0),
		})
		if err := knn.Baseline.Fit(trainSet, config); err != nil {
			return errors.Trace(err)
		}
	}
	// Pairwise similarities
	similarity, err := NewSimilarity(knn.similarityName)
	if err != nil {
		return errors.Trace(err)
	}
	knn.SimMatrix = similarityMatrix(knn.LeftRatings, similarity, knn.minSupport, config.Jobs)
	log.Logger().Info("fit KNN complete",
		zap.String("fit_time", time.Since(fitStart).String()))
	return nil
}

// Predict by the KNN model. The estimate falls back to the global mean when
// the user or item is unknown or when fewer than MinK neighbors with positive
// similarity exist.
func (knn *KNN) Predict(userId, itemId string) Prediction {
	userIndex := knn.UserIndex.ToNumber(userId)
	itemIndex := knn.ItemIndex.ToNumber(itemId)
	prediction := Prediction{UserId: userId, ItemId: itemId}
	if userIndex == base.NotId || itemIndex == base.NotId {
		prediction.Estimate = knn.GlobalMean
		prediction.Impossible = true
		return prediction
	}
	leftIndex, rightIndex := userIndex, itemIndex
	if !knn.userBased {
		leftIndex, rightIndex = itemIndex, userIndex
	}
	// Collect neighbors with positive similarity among raters of the target.
	neighbors := make([]neighbor, 0, knn.RightRatings[rightIndex].Len())
	knn.RightRatings[rightIndex].ForEach(func(_ int, index int32, value float32) {
		sim := knn.SimMatrix[leftIndex][index]
		if sim > 0 {
			neighbors = append(neighbors, neighbor{index: index, similarity: sim, rating: value})
		}
	})
	if len(neighbors) < knn.minK {
		prediction.Estimate = knn.GlobalMean
		prediction.Impossible = true
		return prediction
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].index < neighbors[j].index
	})
	neighbors = neighbors[:mathutil.Min(knn.k, len(neighbors))]
	// Weighted aggregation
	weightSum, weightRating := float32(0), float32(0)
	for _, n := range neighbors {
		weightSum += n.similarity
		switch knn.knnType {
		case basic:
			weightRating += n.similarity * n.rating
		case centered:
			weightRating += n.similarity * (n.rating - knn.Means[n.index])
		case zScore:
			deviation := float32(0)
			if knn.StdDevs[n.index] > 0 {
				deviation = (n.rating - knn.Means[n.index]) / knn.StdDevs[n.index]
			}
			weightRating += n.similarity * deviation
		case baseline:
			weightRating += n.similarity * (n.rating - knn.neighborBaseline(n.index, rightIndex))
		}
	}
	prediction.Estimate = weightRating / weightSum
	switch knn.knnType {
	case centered:
		prediction.Estimate += knn.Means[leftIndex]
	case zScore:
		prediction.Estimate = knn.Means[leftIndex] + knn.StdDevs[leftIndex]*prediction.Estimate
	case baseline:
		prediction.Estimate += knn.targetBaseline(userIndex, itemIndex)
	}
	return prediction
}

// neighborBaseline returns the baseline estimate for a (neighbor, target)
// pair weighted during aggregation.
func (knn *KNN) neighborBaseline(neighborIndex, rightIndex int32) float32 {
	if knn.userBased {
		return knn.Baseline.internalPredict(neighborIndex, rightIndex)
	}
	return knn.Baseline.internalPredict(rightIndex, neighborIndex)
}

func (knn *KNN) targetBaseline(userIndex, itemIndex int32) float32 {
	return knn.Baseline.internalPredict(userIndex, itemIndex)
}

type neighbor struct {
	index      int32
	similarity float32
	rating     float32
}
