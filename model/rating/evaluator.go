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
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// ErrNoGroundTruth is returned by metrics when no prediction carries an
// observed rating to compare against.
var ErrNoGroundTruth = errors.New("no prediction with ground truth")

// Metric aggregates the error of a batch of predictions into a single score.
// Lower is better.
type Metric func(predictions []Prediction) (float32, error)

// RMSE is the root mean square error:
//
//	\sqrt{\frac{1}{|T|} \sum_{(u,i) \in T} (r_{ui} - \hat{r}_{ui})^2}
func RMSE(predictions []Prediction) (float32, error) {
	sum, count := float32(0), 0
	for _, p := range predictions {
		if p.HasRating {
			diff := p.Rating - p.Estimate
			sum += diff * diff
			count++
		}
	}
	if count == 0 {
		return 0, errors.Trace(ErrNoGroundTruth)
	}
	return math32.Sqrt(sum / float32(count)), nil
}

// MAE is the mean absolute error:
//
//	\frac{1}{|T|} \sum_{(u,i) \in T} |r_{ui} - \hat{r}_{ui}|
func MAE(predictions []Prediction) (float32, error) {
	sum, count := float32(0), 0
	for _, p := range predictions {
		if p.HasRating {
			sum += math32.Abs(p.Rating - p.Estimate)
			count++
		}
	}
	if count == 0 {
		return 0, errors.Trace(ErrNoGroundTruth)
	}
	return sum / float32(count), nil
}

// EvaluateRegression predicts every rating in the test set with a fitted
// model. Fallback estimates are scored like any other so that metrics cover
// the full test set.
func EvaluateRegression(estimator Model, testSet *DataSet) []Prediction {
	predictions := make([]Prediction, testSet.Count())
	for i := 0; i < testSet.Count(); i++ {
		userId, itemId, rating := testSet.Get(i)
		predictions[i] = estimator.Predict(userId, itemId)
		predictions[i].Rating = rating
		predictions[i].HasRating = true
	}
	return predictions
}
