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
	"github.com/zhenghaoz/taste/base"
	"github.com/zhenghaoz/taste/base/parallel"
	"github.com/zhenghaoz/taste/model"
)

// FuncSimilarity computes the similarity between a pair of entities from
// their ratings over common counterparts. NaN means no common counterpart.
type FuncSimilarity func(a, b *base.MarginalSubSet) float32

// CosineSimilarity computes the cosine similarity between a pair of entities.
func CosineSimilarity(a, b *base.MarginalSubSet) float32 {
	m, n, l := float32(0), float32(0), float32(0)
	a.ForIntersection(b, func(_ int32, a, b float32) {
		m += a * a
		n += b * b
		l += a * b
	})
	return l / (math32.Sqrt(m) * math32.Sqrt(n))
}

// MSDSimilarity computes the mean squared difference similarity between a
// pair of entities.
func MSDSimilarity(a, b *base.MarginalSubSet) float32 {
	count, sum := float32(0), float32(0)
	a.ForIntersection(b, func(_ int32, a, b float32) {
		sum += (a - b) * (a - b)
		count++
	})
	return 1.0 / (sum/count + 1)
}

// PearsonSimilarity computes the Pearson correlation coefficient between a
// pair of entities. Ratings are centered by the entity mean so that the
// metric captures the correlation of rating patterns rather than raw
// magnitude.
func PearsonSimilarity(a, b *base.MarginalSubSet) float32 {
	meanA := a.Mean()
	meanB := b.Mean()
	// mean-centered cosine
	m, n, l := float32(0), float32(0), float32(0)
	a.ForIntersection(b, func(_ int32, a, b float32) {
		ratingA := a - meanA
		ratingB := b - meanB
		m += ratingA * ratingA
		n += ratingB * ratingB
		l += ratingA * ratingB
	})
	return l / (math32.Sqrt(m) * math32.Sqrt(n))
}

// NewSimilarity returns the similarity function of the given name. Unknown
// names fail.
func NewSimilarity(name string) (FuncSimilarity, error) {
	switch name {
	case model.SimilarityCosine:
		return CosineSimilarity, nil
	case model.SimilarityPearson:
		return PearsonSimilarity, nil
	case model.SimilarityMSD:
		return MSDSimilarity, nil
	default:
		return nil, errors.Errorf("unknown similarity metric %v", name)
	}
}

// similarityMatrix computes the pairwise similarity matrix of entities. The
// matrix is symmetric with unit diagonal for rated entities. Pairs with
// fewer than minSupport common counterparts keep similarity NaN. Rows are
// independent so they are computed in parallel.
func similarityMatrix(sets []*base.MarginalSubSet, sim FuncSimilarity, minSupport, nJobs int) [][]float32 {
	similarities := base.NewNaNMatrix32(len(sets), len(sets))
	_ = parallel.Parallel(len(sets), nJobs, func(_, i int) error {
		if sets[i].Len() > 0 {
			similarities[i][i] = 1
		}
		for j := i + 1; j < len(sets); j++ {
			if minSupport > 1 && sets[i].CountIntersection(sets[j]) < minSupport {
				continue
			}
			ret := sim(sets[i], sets[j])
			if !math32.IsNaN(ret) {
				// cell (j, i) is owned by the worker of row i, no race
				similarities[i][j] = ret
				similarities[j][i] = ret
			}
		}
		return nil
	})
	return similarities
}
