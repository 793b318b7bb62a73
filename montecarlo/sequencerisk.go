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

import (
	"sort"
	"strconv"

	"github.com/penny-vault/retirement-mc/common"
)

var sequenceRiskLabels = [5]string{
	"Q1 (worst early sequence)",
	"Q2",
	"Q3",
	"Q4",
	"Q5 (best early sequence)",
}

// earlySequenceMean averages the first min(10, len(annualRealReturns))
// annual real returns, as the ranking key for sequence-of-returns risk.
func earlySequenceMean(annualRealReturns []float64) float64 {
	n := len(annualRealReturns)
	if n == 0 {
		return 0
	}
	take := n
	if take > 10 {
		take = 10
	}
	var sum float64
	for i := 0; i < take; i++ {
		sum += annualRealReturns[i]
	}
	return sum / float64(take)
}

// bucketSequenceRisk ranks sims by early-sequence mean return and splits
// them into 5 quantile buckets, reporting each bucket's ruin probability and
// ending-balance median. Ranking reuses common.PairList -- the reference
// repo's own sortable (label, value) pair, there used to rank tickers by
// momentum and here repurposed to rank simulations by early sequence luck.
func bucketSequenceRisk(annualRealReturns [][]float64, depleted []bool, finalBalances []float64) []SequenceRiskBucket {
	n := len(finalBalances)
	if n == 0 {
		return nil
	}

	pairs := make(common.PairList, n)
	for i := range finalBalances {
		pairs[i] = common.Pair{Key: strconv.Itoa(i), Value: earlySequenceMean(annualRealReturns[i])}
	}
	sort.Sort(pairs)

	buckets := make([]SequenceRiskBucket, 5)
	for b := 0; b < 5; b++ {
		lo := b * n / 5
		hi := (b + 1) * n / 5
		members := pairs[lo:hi]

		var ruined int
		endings := make([]float64, 0, len(members))
		for _, pr := range members {
			idx, _ := strconv.Atoi(pr.Key)
			if depleted[idx] || finalBalances[idx] <= 0 {
				ruined++
			}
			endings = append(endings, finalBalances[idx])
		}

		var ruinProb, endingMedian float64
		if len(members) > 0 {
			ruinProb = float64(ruined) / float64(len(members))
			sort.Float64s(endings)
			endingMedian = percentile(endings, 0.5)
		}

		buckets[b] = SequenceRiskBucket{
			Label:           sequenceRiskLabels[b],
			RuinProbability: ruinProb,
			EndingMedian:    endingMedian,
			Count:           len(members),
		}
	}

	return buckets
}
