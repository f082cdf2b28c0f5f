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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSE(t *testing.T) {
	predictions := []Prediction{
		{Rating: 5, Estimate: 4, HasRating: true},
		{Rating: 3, Estimate: 3, HasRating: true},
		{Rating: 1, Estimate: 2, HasRating: true},
	}
	score, err := RMSE(predictions)
	require.NoError(t, err)
	assert.InDelta(t, 0.8165, score, 1e-4)
}

func TestMAE(t *testing.T) {
	predictions := []Prediction{
		{Rating: 5, Estimate: 4, HasRating: true},
		{Rating: 3, Estimate: 3, HasRating: true},
		{Rating: 1, Estimate: 2, HasRating: true},
	}
	score, err := MAE(predictions)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, score, 1e-4)
}

func TestMetric_NoGroundTruth(t *testing.T) {
	_, err := RMSE(nil)
	assert.ErrorIs(t, errors.Cause(err), ErrNoGroundTruth)
	_, err = MAE([]Prediction{{Estimate: 3}})
	assert.ErrorIs(t, errors.Cause(err), ErrNoGroundTruth)
}

func TestEvaluateRegression(t *testing.T) {
	trainSet := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 5.0},
		{"u2", "i1", 3.0},
	})
	testSet := newTestDataSet(t, [][3]interface{}{
		{"u1", "i1", 4.0},
		{"unseen", "i1", 2.0},
	})
	baseLine := NewBaseLine(nil)
	require.NoError(t, baseLine.Fit(trainSet, NewFitConfig().SetVerbose(false)))
	predictions := EvaluateRegression(baseLine, testSet)
	require.Equal(t, 2, len(predictions))
	// every test rating is carried as ground truth
	assert.True(t, predictions[0].HasRating)
	assert.Equal(t, float32(4), predictions[0].Rating)
	// fallback estimates are scored like any other
	assert.True(t, predictions[1].Impossible)
	assert.True(t, predictions[1].HasRating)
}
