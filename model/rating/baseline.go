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
	"github.com/zhenghaoz/taste/model"
	"go.uber.org/zap"
)

// BaseLine predicts the baseline estimate for a given user and item:
//
//	\hat{r}_{ui} = b_{ui} = μ + b_u + b_i
//
// If user u is unknown, the bias b_u is assumed to be zero. The same applies
// for item i with b_i. Biases are fitted by stochastic gradient descent
// minimizing the regularized squared error. Hyper-parameters:
//
//	Reg     - The regularization parameter of the cost function that is
//	          optimized. Default is 0.02.
//	Lr      - The learning rate of SGD. Default is 0.005.
//	NEpochs - The number of iterations of the SGD procedure. Default is 20.
type BaseLine struct {
	model.BaseModel
	UserIndex  *base.Index
	ItemIndex  *base.Index
	UserBias   []float32 // b_u
	ItemBias   []float32 // b_i
	GlobalMean float32   // mu
	// Hyper parameters
	reg     float32
	lr      float32
	nEpochs int
}

// NewBaseLine creates a BaseLine model.
func NewBaseLine(params model.Params) *BaseLine {
	baseLine := new(BaseLine)
	if err := baseLine.SetParams(params); err != nil {
		log.Logger().Error("invalid hyper-parameters", zap.Error(err))
	}
	return baseLine
}

// SetParams sets hyper-parameters of the BaseLine model.
func (baseLine *BaseLine) SetParams(params model.Params) error {
	if err := baseLine.BaseModel.SetParams(params); err != nil {
		return errors.Trace(err)
	}
	baseLine.reg = baseLine.Params.GetFloat32(model.Reg, 0.02)
	baseLine.lr = baseLine.Params.GetFloat32(model.Lr, 0.005)
	baseLine.nEpochs = baseLine.Params.GetInt(model.NEpochs, 20)
	if baseLine.nEpochs <= 0 {
		return errors.Errorf("NEpochs must be positive, got %v", baseLine.nEpochs)
	} else if baseLine.lr <= 0 {
		return errors.Errorf("Lr must be positive, got %v", baseLine.lr)
	} else if baseLine.reg < 0 {
		return errors.Errorf("Reg must be non-negative, got %v", baseLine.reg)
	}
	return nil
}

func (baseLine *BaseLine) GetParamsGrid() model.ParamsGrid {
	return model.ParamsGrid{
		model.Reg:     []interface{}{0.001, 0.005, 0.01, 0.05, 0.1},
		model.Lr:      []interface{}{0.001, 0.005, 0.01, 0.05, 0.1},
		model.NEpochs: []interface{}{10, 20, 50},
	}
}

// Clear model weights.
func (baseLine *BaseLine) Clear() {
	baseLine.UserIndex = nil
	baseLine.ItemIndex = nil
	baseLine.UserBias = nil
	baseLine.ItemBias = nil
	baseLine.GlobalMean = 0
}

// Invalid reports whether the model is unfitted.
func (baseLine *BaseLine) Invalid() bool {
	return baseLine == nil ||
		baseLine.UserIndex == nil ||
		baseLine.ItemIndex == nil ||
		baseLine.UserBias == nil ||
		baseLine.ItemBias == nil
}

// Predict by the BaseLine model.
func (baseLine *BaseLine) Predict(userId, itemId string) Prediction {
	userIndex := baseLine.UserIndex.ToNumber(userId)
	itemIndex := baseLine.ItemIndex.ToNumber(itemId)
	return Prediction{
		UserId:     userId,
		ItemId:     itemId,
		Estimate:   baseLine.internalPredict(userIndex, itemIndex),
		Impossible: userIndex == base.NotId || itemIndex == base.NotId,
	}
}

func (baseLine *BaseLine) internalPredict(userIndex, itemIndex int32) float32 {
	ret := baseLine.GlobalMean
	if userIndex != base.NotId {
		ret += baseLine.UserBias[userIndex]
	}
	if itemIndex != base.NotId {
		ret += baseLine.ItemBias[itemIndex]
	}
	return ret
}

// Fit the BaseLine model by stochastic gradient descent.
func (baseLine *BaseLine) Fit(trainSet *DataSet, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if trainSet.Count() == 0 {
		return errors.New("empty train set")
	}
	log.Logger().Info("fit baseline",
		zap.Int("train_set_size", trainSet.Count()),
		zap.String("params", baseLine.GetParams().ToString()))
	fitStart := time.Now()
	// Initialize parameters
	baseLine.UserIndex = trainSet.UserIndex
	baseLine.ItemIndex = trainSet.ItemIndex
	baseLine.GlobalMean = trainSet.GlobalMean()
	baseLine.UserBias = make([]float32, trainSet.UserCount())
	baseLine.ItemBias = make([]float32, trainSet.ItemCount())
	// Stochastic gradient descent
	rng := baseLine.GetRandomGenerator()
	for epoch := 0; epoch < baseLine.nEpochs; epoch++ {
		for _, i := range rng.Perm(trainSet.Count()) {
			userIndex, itemIndex, rating := trainSet.GetIndex(i)
			userBias := baseLine.UserBias[userIndex]
			itemBias := baseLine.ItemBias[itemIndex]
			// Compute error: e_{ui} = r_{ui} - b_{ui}
			diff := rating - baseLine.internalPredict(userIndex, itemIndex)
			// Update user bias: b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
			baseLine.UserBias[userIndex] += baseLine.lr * (diff - baseLine.reg*userBias)
			// Update item bias: b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
			baseLine.ItemBias[itemIndex] += baseLine.lr * (diff - baseLine.reg*itemBias)
		}
	}
	log.Logger().Info("fit baseline complete",
		zap.String("fit_time", time.Since(fitStart).String()))
	return nil
}
