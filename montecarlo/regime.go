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
	"math"

	"gonum.org/v1/gonum/stat"
)

// detectRegimes labels each point of a return series as Growth or Crisis.
// window is the trailing lookback (3 for annual, 6 for monthly) and c is the
// crisis-threshold multiplier (0.65 annual, 0.75 monthly); stdMultiplier is
// the rolling-volatility multiplier (1.15 annual, 1.20 monthly).
//
// The base spec leaves the std=0 case ambiguous (mean-c*std == mean, so the
// "<=" predicate is trivially true and every point would label crisis). This
// implementation short-circuits that degenerate case to all-growth -- see
// DESIGN.md "Open Question decisions".
func detectRegimes(series []float64, window int, c, stdMultiplier float64) []Regime {
	n := len(series)
	labels := make([]Regime, n)
	if n == 0 {
		return labels
	}

	mean := stat.Mean(series, nil)
	variance := stat.PopVariance(series, nil)
	std := math.Sqrt(variance)

	if std == 0 {
		return labels // all Growth
	}

	crisisThreshold := mean - c*std

	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		rollingStd := math.Sqrt(stat.PopVariance(series[start:i+1], nil))

		if series[i] <= crisisThreshold || rollingStd >= stdMultiplier*std {
			labels[i] = Crisis
		}
	}

	// Single gap-fill pass: an isolated Growth point surrounded by Crisis on
	// both sides is folded into Crisis. Intentionally not iterated to a
	// fixed point -- see the base spec's explicit note on this.
	filled := make([]Regime, n)
	copy(filled, labels)
	for i := 1; i < n-1; i++ {
		if labels[i] == Growth && labels[i-1] == Crisis && labels[i+1] == Crisis {
			filled[i] = Crisis
		}
	}
	return filled
}

// detectAnnualRegimes labels an annual return series.
func detectAnnualRegimes(series []float64) []Regime {
	return detectRegimes(series, 3, 0.65, 1.15)
}

// detectMonthlyRegimes labels a monthly return series.
func detectMonthlyRegimes(series []float64) []Regime {
	return detectRegimes(series, 6, 0.75, 1.20)
}

// markovStays estimates stay probabilities from a sequence of regime labels,
// falling back to the stated priors when a regime is never observed
// transitioning (e.g. a label vector of length < 2, or one dominated by a
// single regime).
func markovStays(labels []Regime) (stayGrowth, stayCrisis float64) {
	var growthTotal, growthStay, crisisTotal, crisisStay int
	for i := 1; i < len(labels); i++ {
		prev := labels[i-1]
		curr := labels[i]
		switch prev {
		case Growth:
			growthTotal++
			if curr == Growth {
				growthStay++
			}
		case Crisis:
			crisisTotal++
			if curr == Crisis {
				crisisStay++
			}
		}
	}

	if growthTotal == 0 {
		stayGrowth = 0.88
	} else {
		stayGrowth = float64(growthStay) / float64(growthTotal)
	}
	if crisisTotal == 0 {
		stayCrisis = 0.72
	} else {
		stayCrisis = float64(crisisStay) / float64(crisisTotal)
	}

	return clampTransition(stayGrowth), clampTransition(stayCrisis)
}

// stationaryGrowthProbability is the long-run share of time spent in the
// growth regime under the two-state Markov model.
func stationaryGrowthProbability(stayGrowth, stayCrisis float64) float64 {
	denom := 2 - stayGrowth - stayCrisis
	if math.Abs(denom) <= 1e-9 {
		return 0.5
	}
	return (1 - stayCrisis) / denom
}
