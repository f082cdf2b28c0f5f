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

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/zhenghaoz/taste/base"
	"github.com/zhenghaoz/taste/base/log"
	"github.com/zhenghaoz/taste/base/parallel"
	"github.com/zhenghaoz/taste/model"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// CrossValidateResult holds the out-of-fold scores of one metric.
type CrossValidateResult struct {
	TestScores []float32
}

// Mean of the fold scores.
func (result CrossValidateResult) Mean() float32 {
	return float32(stat.Mean(float64Slice(result.TestScores), nil))
}

// StdDev of the fold scores.
func (result CrossValidateResult) StdDev() float32 {
	return float32(stat.StdDev(float64Slice(result.TestScores), nil))
}

func float64Slice(a []float32) []float64 {
	b := make([]float64, len(a))
	for i, v := range a {
		b[i] = float64(v)
	}
	return b
}

// CrossValidate evaluates a model by cross-validation. The entity indices of
// each training fold are rebuilt from the fold's own ratings, so test-only
// users and items stay unknown to the fitted model. Folds run concurrently
// on clones of the estimator, each fitted with a single job. It returns one
// CrossValidateResult per metric, scores ordered by fold.
func CrossValidate(estimator Model, dataSet *DataSet, splitter Splitter, seed int64,
	config *FitConfig, metrics ...Metric) ([]CrossValidateResult, error) {
	config = config.LoadDefaultIfNil()
	trainFolds, testFolds := splitter(dataSet, seed)
	results := make([]CrossValidateResult, len(metrics))
	for i := range results {
		results[i].TestScores = make([]float32, len(trainFolds))
	}
	completed := atomic.NewInt32(0)
	err := parallel.Parallel(len(trainFolds), config.Jobs, func(workerId, foldId int) error {
		foldModel := Clone(estimator)
		foldConfig := NewFitConfig().SetJobs(1).SetVerbose(false)
		if err := foldModel.Fit(trainFolds[foldId], foldConfig); err != nil {
			return errors.Trace(err)
		}
		predictions := EvaluateRegression(foldModel, testFolds[foldId])
		for i, metric := range metrics {
			score, err := metric(predictions)
			if err != nil {
				return errors.Trace(err)
			}
			results[i].TestScores[foldId] = score
		}
		done := completed.Inc()
		if config.Verbose {
			log.Logger().Info("cross validation",
				zap.Int32("fold_completed", done),
				zap.Int("fold_count", len(trainFolds)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return results, nil
}

// ModelSearchResult contains the scores of every evaluated parameter
// combination and the best one found. Combinations whose fit failed carry a
// NaN score and never win. BestModel is an unfitted clone configured with
// BestParams, ready to fit on the full data set.
type ModelSearchResult struct {
	BestModel  Model
	BestScore  float32
	BestParams model.Params
	BestIndex  int
	Scores     []float32
	Params     []model.Params
}

// GridSearchCV searches the best hyper-parameters over the cartesian product
// of the grid, scored by cross-validation with the first metric. Lower is
// better. An empty grid searches the candidates of the model's own
// GetParamsGrid.
func GridSearchCV(estimator Model, dataSet *DataSet, paramsGrid model.ParamsGrid,
	splitter Splitter, seed int64, config *FitConfig, metrics ...Metric) (ModelSearchResult, error) {
	if len(metrics) == 0 {
		return ModelSearchResult{}, errors.New("GridSearchCV requires at least one metric")
	}
	config = config.LoadDefaultIfNil()
	// An empty grid searches the model's own default candidates.
	if paramsGrid.Len() == 0 {
		paramsGrid = model.ParamsGrid{}
		paramsGrid.Fill(estimator.GetParamsGrid())
	}
	// Retrieve parameter names and units
	paramNames := make([]model.ParamName, 0, paramsGrid.Len())
	for paramName := range paramsGrid {
		paramNames = append(paramNames, paramName)
	}
	// Construct DFS procedure
	results := ModelSearchResult{
		BestScore: math32.Inf(1),
		BestIndex: -1,
		Scores:    make([]float32, 0, paramsGrid.NumCombinations()),
		Params:    make([]model.Params, 0, paramsGrid.NumCombinations()),
	}
	var bar *progressbar.ProgressBar
	if config.Verbose {
		bar = progressbar.Default(int64(paramsGrid.NumCombinations()), "grid search")
	}
	var dfs func(deep int, params model.Params) error
	dfs = func(deep int, params model.Params) error {
		if deep == len(paramNames) {
			if bar != nil {
				_ = bar.Add(1)
			}
			score, err := evaluateCombination(estimator, dataSet, params, splitter, seed, config, metrics[0])
			if err != nil {
				// An invalid combination is recorded but never wins.
				log.Logger().Warn("grid search: combination failed",
					zap.Any("params", params), zap.Error(err))
				score = math32.NaN()
			}
			results.Scores = append(results.Scores, score)
			results.Params = append(results.Params, params.Copy())
			if !math32.IsNaN(score) && score < results.BestScore {
				results.BestScore = score
				results.BestParams = params.Copy()
				results.BestIndex = len(results.Scores) - 1
			}
			return nil
		}
		paramName := paramNames[deep]
		for _, paramValue := range paramsGrid[paramName] {
			params[paramName] = paramValue
			if err := dfs(deep+1, params); err != nil {
				return errors.Trace(err)
			}
		}
		delete(params, paramName)
		return nil
	}
	start := time.Now()
	if err := dfs(0, make(model.Params)); err != nil {
		return ModelSearchResult{}, errors.Trace(err)
	}
	if results.BestIndex < 0 {
		return ModelSearchResult{}, errors.New("grid search: all combinations failed")
	}
	results.BestModel = Clone(estimator)
	// the winning combination already passed validation
	_ = results.BestModel.SetParams(results.BestModel.GetParams().Overwrite(results.BestParams))
	log.Logger().Info("grid search complete",
		zap.Int("combinations", len(results.Scores)),
		zap.Float32("best_score", results.BestScore),
		zap.String("best_params", results.BestParams.ToString()),
		zap.String("search_time", time.Since(start).String()))
	return results, nil
}

// RandomSearchCV searches the best hyper-parameters over numTrials random
// combinations drawn from the grid. When the grid holds no more combinations
// than numTrials, it falls back to an exhaustive grid search.
func RandomSearchCV(estimator Model, dataSet *DataSet, paramsGrid model.ParamsGrid, numTrials int,
	splitter Splitter, seed int64, config *FitConfig, metrics ...Metric) (ModelSearchResult, error) {
	if len(metrics) == 0 {
		return ModelSearchResult{}, errors.New("RandomSearchCV requires at least one metric")
	}
	if paramsGrid.Len() == 0 {
		paramsGrid = model.ParamsGrid{}
		paramsGrid.Fill(estimator.GetParamsGrid())
	}
	if paramsGrid.NumCombinations() <= numTrials {
		return GridSearchCV(estimator, dataSet, paramsGrid, splitter, seed, config, metrics...)
	}
	config = config.LoadDefaultIfNil()
	rng := base.NewRandomGenerator(seed)
	results := ModelSearchResult{
		BestScore: math32.Inf(1),
		BestIndex: -1,
		Scores:    make([]float32, 0, numTrials),
		Params:    make([]model.Params, 0, numTrials),
	}
	var bar *progressbar.ProgressBar
	if config.Verbose {
		bar = progressbar.Default(int64(numTrials), "random search")
	}
	start := time.Now()
	for trial := 0; trial < numTrials; trial++ {
		if bar != nil {
			_ = bar.Add(1)
		}
		params := make(model.Params)
		for paramName, values := range paramsGrid {
			params[paramName] = values[rng.Intn(len(values))]
		}
		score, err := evaluateCombination(estimator, dataSet, params, splitter, seed, config, metrics[0])
		if err != nil {
			log.Logger().Warn("random search: combination failed",
				zap.Any("params", params), zap.Error(err))
			score = math32.NaN()
		}
		results.Scores = append(results.Scores, score)
		results.Params = append(results.Params, params)
		if !math32.IsNaN(score) && score < results.BestScore {
			results.BestScore = score
			results.BestParams = params.Copy()
			results.BestIndex = len(results.Scores) - 1
		}
	}
	if results.BestIndex < 0 {
		return ModelSearchResult{}, errors.New("random search: all combinations failed")
	}
	results.BestModel = Clone(estimator)
	_ = results.BestModel.SetParams(results.BestModel.GetParams().Overwrite(results.BestParams))
	log.Logger().Info("random search complete",
		zap.Int("trials", len(results.Scores)),
		zap.Float32("best_score", results.BestScore),
		zap.String("best_params", results.BestParams.ToString()),
		zap.String("search_time", time.Since(start).String()))
	return results, nil
}

// evaluateCombination scores one parameter combination by the mean
// cross-validation score of a single metric.
func evaluateCombination(estimator Model, dataSet *DataSet, params model.Params,
	splitter Splitter, seed int64, config *FitConfig, metric Metric) (float32, error) {
	candidate := Clone(estimator)
	if err := candidate.SetParams(candidate.GetParams().Overwrite(params)); err != nil {
		return 0, errors.Trace(err)
	}
	cvConfig := NewFitConfig().SetJobs(config.Jobs).SetVerbose(false)
	cv, err := CrossValidate(candidate, dataSet, splitter, seed, cvConfig, metric)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return cv[0].Mean(), nil
}
