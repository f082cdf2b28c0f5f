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
	"time"

	"github.com/juju/errors"
	"github.com/zhenghaoz/taste/base"
	"github.com/zhenghaoz/taste/base/log"
	"github.com/zhenghaoz/taste/floats"
	"github.com/zhenghaoz/taste/model"
	"go.uber.org/zap"
)

// SVD is the matrix factorization model popularized by the Netflix Prize.
// The prediction is set as:
//
//	\hat{r}_{ui} = μ + b_u + b_i + q_i^T p_u
//
// If user u is unknown, the bias b_u and the factors p_u are assumed to be
// zero. The same applies for item i with b_i and q_i. Parameters are fitted
// by stochastic gradient descent on the regularized squared error.
// Hyper-parameters:
//
//	UseBias    - Add user and item biases to the estimate. Default is true.
//	Reg        - The regularization parameter of the cost function that is
//	             optimized. Default is 0.02.
//	Lr         - The learning rate of SGD. Default is 0.005.
//	NFactors   - The number of latent factors. Default is 100.
//	NEpochs    - The number of iterations of the SGD procedure. Default is 20.
//	InitMean   - The mean of initial random latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial random latent factors.
//	             Default is 0.1.
type SVD struct {
	model.BaseModel
	UserIndex  *base.Index
	ItemIndex  *base.Index
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	UserBias   []float32   // b_u
	ItemBias   []float32   // b_i
	GlobalMean float32     // mu
	MinRating  float32
	MaxRating  float32
	// Hyper parameters
	useBias    bool
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewSVD creates a SVD model.
func NewSVD(params model.Params) *SVD {
	svd := new(SVD)
	if err := svd.SetParams(params); err != nil {
		log.Logger().Error("invalid hyper-parameters", zap.Error(err))
	}
	return svd
}

// SetParams sets hyper-parameters of the SVD model.
func (svd *SVD) SetParams(params model.Params) error {
	if err := svd.BaseModel.SetParams(params); err != nil {
		return errors.Trace(err)
	}
	svd.useBias = svd.Params.GetBool(model.UseBias, true)
	svd.nFactors = svd.Params.GetInt(model.NFactors, 100)
	svd.nEpochs = svd.Params.GetInt(model.NEpochs, 20)
	svd.lr = svd.Params.GetFloat32(model.Lr, 0.005)
	svd.reg = svd.Params.GetFloat32(model.Reg, 0.02)
	svd.initMean = svd.Params.GetFloat32(model.InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(model.InitStdDev, 0.1)
	if svd.nFactors <= 0 {
		return errors.Errorf("NFactors must be positive, got %v", svd.nFactors)
	} else if svd.nEpochs <= 0 {
		return errors.Errorf("NEpochs must be positive, got %v", svd.nEpochs)
	} else if svd.lr <= 0 {
		return errors.Errorf("Lr must be positive, got %v", svd.lr)
	} else if svd.reg < 0 {
		return errors.Errorf("Reg must be non-negative, got %v", svd.reg)
	} else if svd.initStdDev < 0 {
		return errors.Errorf("InitStdDev must be non-negative, got %v", svd.initStdDev)
	}
	return nil
}

func (svd *SVD) GetParamsGrid() model.ParamsGrid {
	return model.ParamsGrid{
		model.NFactors:   []interface{}{8, 16, 32, 64, 128},
		model.Lr:         []interface{}{0.001, 0.005, 0.01, 0.05},
		model.Reg:        []interface{}{0.001, 0.01, 0.05, 0.1},
		model.InitStdDev: []interface{}{0.001, 0.005, 0.01, 0.05, 0.1},
	}
}

// Clear model weights.
func (svd *SVD) Clear() {
	svd.UserIndex = nil
	svd.ItemIndex = nil
	svd.UserFactor = nil
	svd.ItemFactor = nil
	svd.UserBias = nil
	svd.ItemBias = nil
	svd.GlobalMean = 0
	svd.MinRating = 0
	svd.MaxRating = 0
}

// Invalid reports whether the model is unfitted.
func (svd *SVD) Invalid() bool {
	return svd == nil ||
		svd.UserIndex == nil ||
		svd.ItemIndex == nil ||
		svd.UserFactor == nil ||
		svd.ItemFactor == nil
}

// Predict by the SVD model. Estimates are clipped to the rating range seen
// during training.
func (svd *SVD) Predict(userId, itemId string) Prediction {
	userIndex := svd.UserIndex.ToNumber(userId)
	itemIndex := svd.ItemIndex.ToNumber(itemId)
	return Prediction{
		UserId:     userId,
		ItemId:     itemId,
		Estimate:   svd.clip(svd.internalPredict(userIndex, itemIndex)),
		Impossible: userIndex == base.NotId || itemIndex == base.NotId,
	}
}

func (svd *SVD) internalPredict(userIndex, itemIndex int32) float32 {
	ret := svd.GlobalMean
	if userIndex != base.NotId && svd.useBias {
		ret += svd.UserBias[userIndex]
	}
	if itemIndex != base.NotId && svd.useBias {
		ret += svd.ItemBias[itemIndex]
	}
	if userIndex != base.NotId && itemIndex != base.NotId {
		ret += floats.Dot(svd.UserFactor[userIndex], svd.ItemFactor[itemIndex])
	}
	return ret
}

func (svd *SVD) clip(estimate float32) float32 {
	if estimate < svd.MinRating {
		return svd.MinRating
	}
	if estimate > svd.MaxRating {
		return svd.MaxRating
	}
	return estimate
}

// Fit the SVD model by stochastic gradient descent.
func (svd *SVD) Fit(trainSet *DataSet, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if trainSet.Count() == 0 {
		return errors.New("empty train set")
	}
	log.Logger().Info("fit SVD",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("n_factors", svd.nFactors),
		zap.Int("n_epochs", svd.nEpochs))
	fitStart := time.Now()
	// Initialize parameters
	rng := svd.GetRandomGenerator()
	svd.UserIndex = trainSet.UserIndex
	svd.ItemIndex = trainSet.ItemIndex
	svd.GlobalMean = trainSet.GlobalMean()
	svd.MinRating, svd.MaxRating = trainSet.RatingRange()
	svd.UserBias = make([]float32, trainSet.UserCount())
	svd.ItemBias = make([]float32, trainSet.ItemCount())
	svd.UserFactor = rng.NormalMatrix(trainSet.UserCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	svd.ItemFactor = rng.NormalMatrix(trainSet.ItemCount(), svd.nFactors, svd.initMean, svd.initStdDev)
	// Pre-update copies keep the item gradient independent of the user update
	// within the same step.
	userCopy := make([]float32, svd.nFactors)
	itemCopy := make([]float32, svd.nFactors)
	step := make([]float32, svd.nFactors)
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		cost := float32(0)
		for _, i := range rng.Perm(trainSet.Count()) {
			userIndex, itemIndex, rating := trainSet.GetIndex(i)
			userFactor := svd.UserFactor[userIndex]
			itemFactor := svd.ItemFactor[itemIndex]
			// Compute error: e_{ui} = r_{ui} - \hat{r}_{ui}
			diff := rating - svd.internalPredict(userIndex, itemIndex)
			cost += diff * diff
			if svd.useBias {
				userBias := svd.UserBias[userIndex]
				itemBias := svd.ItemBias[itemIndex]
				// Update user bias: b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
				svd.UserBias[userIndex] += svd.lr * (diff - svd.reg*userBias)
				// Update item bias: b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
				svd.ItemBias[itemIndex] += svd.lr * (diff - svd.reg*itemBias)
			}
			copy(userCopy, userFactor)
			copy(itemCopy, itemFactor)
			// Update user latent factor: p_u <- p_u + \gamma (e_{ui} q_i - \lambda p_u)
			floats.MulConstTo(itemCopy, diff, step)
			floats.MulConstAddTo(userCopy, -svd.reg, step)
			floats.MulConstAddTo(step, svd.lr, userFactor)
			// Update item latent factor: q_i <- q_i + \gamma (e_{ui} p_u - \lambda q_i)
			floats.MulConstTo(userCopy, diff, step)
			floats.MulConstAddTo(itemCopy, -svd.reg, step)
			floats.MulConstAddTo(step, svd.lr, itemFactor)
		}
		if epoch == svd.nEpochs || epoch%10 == 0 {
			log.Logger().Debug("fit SVD",
				zap.Int("epoch", epoch),
				zap.Float32("squared_error", cost))
		}
	}
	log.Logger().Info("fit SVD complete",
		zap.String("fit_time", time.Since(fitStart).String()))
	return nil
}
