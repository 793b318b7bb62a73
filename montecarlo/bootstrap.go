// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package montecarlo

import "sort"

// valuePool holds the bootstrap sample values for each regime, used when
// resampling an annual return series by value (the annual history itself is
// replayed, not an index into it).
type valuePool struct {
	growth []float64
	crisis []float64
}

// buildValuePools partitions an annual history into growth/crisis value
// pools per its regime labels, falling back to neutral samples when a
// regime has no members so a downstream draw never indexes an empty slice.
func buildValuePools(history []float64, labels []Regime) valuePool {
	var pool valuePool
	for i, v := range history {
		if labels[i] == Crisis {
			pool.crisis = append(pool.crisis, v)
		} else {
			pool.growth = append(pool.growth, v)
		}
	}

	if len(pool.crisis) == 0 {
		sorted := append([]float64(nil), history...)
		sort.Float64s(sorted)
		n := len(sorted)
		k := n * 35 / 100
		if k < 4 {
			k = 4
		}
		if k > n {
			k = n
		}
		pool.crisis = append([]float64(nil), sorted[:k]...)
	}
	if len(pool.growth) == 0 {
		pool.growth = append([]float64(nil), history...)
	}

	return pool
}

// indexPool holds the bootstrap sample indices for each regime, used when
// resampling a monthly return series by index (so block-bootstrap can
// advance contiguously through the underlying history after a seed index is
// drawn).
type indexPool struct {
	growth []int
	crisis []int
}

// buildIndexPools partitions a monthly history into growth/crisis index
// pools, with safe fallbacks mirroring buildValuePools.
func buildIndexPools(history []float64, labels []Regime) indexPool {
	var pool indexPool
	for i := range history {
		if labels[i] == Crisis {
			pool.crisis = append(pool.crisis, i)
		} else {
			pool.growth = append(pool.growth, i)
		}
	}

	if len(pool.crisis) == 0 {
		type idxVal struct {
			idx int
			val float64
		}
		all := make([]idxVal, len(history))
		for i, v := range history {
			all[i] = idxVal{i, v}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].val < all[j].val })

		n := len(history)
		k := n * 30 / 100
		if k < 12 {
			k = 12
		}
		if k > n {
			k = n
		}
		idxs := make([]int, k)
		for i := 0; i < k; i++ {
			idxs[i] = all[i].idx
		}
		sort.Ints(idxs)
		pool.crisis = idxs
	}
	if len(pool.growth) == 0 {
		pool.growth = make([]int, len(history))
		for i := range history {
			pool.growth[i] = i
		}
	}

	return pool
}

// sampleValue draws a uniform sample from the pool for the given regime.
func (p valuePool) sampleValue(r *Rand, regime Regime) float64 {
	if regime == Crisis {
		return p.crisis[r.IntN(len(p.crisis))]
	}
	return p.growth[r.IntN(len(p.growth))]
}

// sampleIndex draws a uniform index from the pool for the given regime.
func (p indexPool) sampleIndex(r *Rand, regime Regime) int {
	if regime == Crisis {
		return p.crisis[r.IntN(len(p.crisis))]
	}
	return p.growth[r.IntN(len(p.growth))]
}
