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

// Package rating implements collaborative filtering models for explicit
// feedback: neighborhood models over pluggable similarity metrics and a
// latent factor model trained by stochastic gradient descent.
package rating

import (
	"reflect"

	"github.com/zhenghaoz/taste/model"
)

// FitConfig controls the resources of a fit task.
type FitConfig struct {
	Jobs    int
	Verbose bool
}

// NewFitConfig creates the default fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: true,
	}
}

func (config *FitConfig) SetJobs(nJobs int) *FitConfig {
	config.Jobs = nJobs
	return config
}

func (config *FitConfig) SetVerbose(verbose bool) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// Prediction is the result of a single rating estimation. When the model
// falls back to the global mean because the user or the item was never seen
// during training, Impossible is set and Estimate carries the fallback.
type Prediction struct {
	UserId     string
	ItemId     string
	Rating     float32 // ground truth
	HasRating  bool
	Estimate   float32
	Impossible bool
}

// Model is the interface of rating prediction models. A model is fitted once
// and read-only afterwards: concurrent Predict calls on a fitted model are
// safe.
type Model interface {
	model.Model
	// Fit a model with a train set. Only a fitted model predicts.
	Fit(trainSet *DataSet, config *FitConfig) error
	// Predict the rating given by a user to an item.
	Predict(userId, itemId string) Prediction
}

// Clone creates an unfitted model of the same type with the same
// hyper-parameters.
func Clone(m Model) Model {
	copied := reflect.New(reflect.TypeOf(m).Elem()).Interface().(Model)
	// the source model holds validated parameters
	_ = copied.SetParams(m.GetParams().Copy())
	return copied
}
