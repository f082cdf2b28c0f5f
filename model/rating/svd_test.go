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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhenghaoz/taste/model"
)

func TestSVD_ConstantRatings(t *testing.T) {
	dataset := NewDataSet()
	for u := 0; u < 4; u++ {
		for i := 0; i < 4; i++ {
			require.NoError(t, dataset.AddRating(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 3))
		}
	}
	svd := NewSVD(model.Params{
		model.UseBias:     false,
		model.InitStdDev:  float32(0),
		model.NFactors:    4,
		model.RandomState: int64(0),
	})
	require.NoError(t, svd.Fit(dataset, NewFitConfig().SetVerbose(false)))
	// zero factors and no bias leave the global mean
	prediction := svd.Predict("u0", "i0")
	assert.False(t, prediction.Impossible)
	assert.Equal(t, float32(3), prediction.Estimate)
}

func TestSVD_Fit(t *testing.T) {
	dataset := newAdditiveDataSet(t, 12, 10)
	svd := NewSVD(model.Params{
		model.NFactors:    4,
		model.NEpochs:     100,
		model.Lr:          float32(0.02),
		model.Reg:         float32(0.001),
		model.RandomState: int64(42),
	})
	require.NoError(t, svd.Fit(dataset, NewFitConfig().SetVerbose(false)))
	score, err := RMSE(EvaluateRegression(svd, dataset))
	require.NoError(t, err)
	assert.Less(t, score, float32(0.3))
}

func TestSVD_Clipping(t *testing.T) {
	dataset := newAdditiveDataSet(t, 12, 10)
	svd := NewSVD(model.Params{model.NFactors: 4, model.RandomState: int64(1)})
	require.NoError(t, svd.Fit(dataset, NewFitConfig().SetVerbose(false)))
	minRating, maxRating := dataset.RatingRange()
	for u := 0; u < 12; u++ {
		for i := 0; i < 10; i++ {
			prediction := svd.Predict(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i))
			assert.GreaterOrEqual(t, prediction.Estimate, minRating)
			assert.LessOrEqual(t, prediction.Estimate, maxRating)
		}
	}
}

func TestSVD_UnknownEntities(t *testing.T) {
	dataset := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 5.0},
		{"u2", "i1", 3.0},
	})
	svd := NewSVD(model.Params{model.NFactors: 2, model.RandomState: int64(0)})
	require.NoError(t, svd.Fit(dataset, NewFitConfig().SetVerbose(false)))
	prediction := svd.Predict("unseen", "i1")
	assert.True(t, prediction.Impossible)
	prediction = svd.Predict("unseen", "unseen")
	assert.True(t, prediction.Impossible)
	// both sides unknown falls back to the clipped global mean
	assert.InDelta(t, dataset.GlobalMean(), prediction.Estimate, 1e-5)
}

func TestSVD_Idempotence(t *testing.T) {
	dataset := newAdditiveDataSet(t, 8, 8)
	first := NewSVD(model.Params{model.NFactors: 4, model.RandomState: int64(9)})
	require.NoError(t, first.Fit(dataset, NewFitConfig().SetVerbose(false)))
	second := NewSVD(model.Params{model.NFactors: 4, model.RandomState: int64(9)})
	require.NoError(t, second.Fit(dataset, NewFitConfig().SetVerbose(false)))
	assert.Equal(t, first.UserFactor, second.UserFactor)
	assert.Equal(t, first.ItemFactor, second.ItemFactor)
	assert.Equal(t, first.Predict("u0", "i0"), second.Predict("u0", "i0"))
}

func TestSVD_SetParams(t *testing.T) {
	svd := new(SVD)
	assert.Error(t, svd.SetParams(model.Params{model.NFactors: 0}))
	assert.Error(t, svd.SetParams(model.Params{model.NEpochs: -1}))
	assert.Error(t, svd.SetParams(model.Params{model.Lr: float32(0)}))
	assert.Error(t, svd.SetParams(model.Params{model.InitStdDev: float32(-1)}))
	assert.NoError(t, svd.SetParams(model.Params{model.NFactors: 8}))
}
