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

import "math"

var ruinSpendingMultipliers = []float64{0.8, 0.9, 1.0, 1.1, 1.2}
var ruinRetirementAgeOffsets = []int{-6, -3, 0, 3, 6}

// maxRuinSurfaceSims bounds how many of the main run's growth-factor
// trajectories the ruin surface replays per cell -- min(simCount, 800).
const maxRuinSurfaceSims = 800

// computeRuinSurface reports ruin probability over a grid of (spending
// multiplier, retirement age) cells by replaying each cell's cashflow
// schedule against the already-generated growth-factor trajectories from the
// main run -- the stochastic return stream is held fixed across cells, so
// only the cashflow timing and amount vary.
func computeRuinSurface(input RetirementInput, periods []SpendingPeriod, incomes []IncomeSource, lumps []LumpSumEvent, growthFactors [][]float64) []RuinCell {
	cells := make([]RuinCell, 0, len(ruinSpendingMultipliers)*len(ruinRetirementAgeOffsets))

	months := int(math.Round((input.SimulateUntilAge - input.CurrentAge) * 12))
	if months < 1 {
		months = 1
	}

	simCount := len(growthFactors)
	if simCount > maxRuinSurfaceSims {
		simCount = maxRuinSurfaceSims
	}

	// Offsets ascend, so the clamped, rounded ages are already sorted and
	// duplicates are adjacent.
	cellAges := make([]float64, 0, len(ruinRetirementAgeOffsets))
	for _, offset := range ruinRetirementAgeOffsets {
		age := math.Round(clamp(input.RetirementAge+float64(offset), input.CurrentAge+1, input.SimulateUntilAge-1))
		if k := len(cellAges); k == 0 || cellAges[k-1] != age {
			cellAges = append(cellAges, age)
		}
	}

	for _, mult := range ruinSpendingMultipliers {
		cellPeriods := scaleSpending(periods, mult)

		for _, cellAge := range cellAges {
			cellInput := input
			cellInput.RetirementAge = cellAge

			cellIncomes := overrideDefaultIncomeToAge(incomes, cellAge)
			monthlyNetFlow, lumpSumByMonth := buildCashflows(cellInput, cellPeriods, cellIncomes, lumps, months)

			ruined := 0
			for sim := 0; sim < simCount; sim++ {
				if replayRuins(growthFactors[sim], monthlyNetFlow, lumpSumByMonth, input.CurrentSavings) {
					ruined++
				}
			}

			prob := 0.0
			if simCount > 0 {
				prob = float64(ruined) / float64(simCount)
			}

			cells = append(cells, RuinCell{
				SpendingMultiplier: mult,
				RetirementAge:      int(math.Round(cellAge)),
				RuinProbability:    prob,
			})
		}
	}

	return cells
}

// replayRuins applies a pre-recorded growth-factor trajectory to a cell's
// cashflow schedule and reports whether the balance is ever depleted.
func replayRuins(trajectory, monthlyNetFlow, lumpSumByMonth []float64, startingBalance float64) bool {
	balance := startingBalance
	months := len(trajectory)
	if len(monthlyNetFlow) < months {
		months = len(monthlyNetFlow)
	}
	for m := 0; m < months; m++ {
		balance = (balance + monthlyNetFlow[m] + lumpSumByMonth[m]) * trajectory[m]
		if balance <= 0 {
			return true
		}
	}
	return false
}

// ruinProbabilityAtMultiplier interpolates the ruin surface's probability at
// an arbitrary spending multiplier, holding retirement age fixed at the
// household's planned age. Used by BreakEvenMultiplier's root search, which
// needs a continuous function rather than discrete grid cells.
func ruinProbabilityAtMultiplier(cells []RuinCell, retirementAge int, multiplier float64) float64 {
	type point struct {
		mult float64
		prob float64
	}
	var points []point
	for _, c := range cells {
		if c.RetirementAge == retirementAge {
			points = append(points, point{c.SpendingMultiplier, c.RuinProbability})
		}
	}
	if len(points) == 0 {
		return 1
	}
	if len(points) == 1 {
		return points[0].prob
	}

	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if multiplier >= a.mult && multiplier <= b.mult {
			if b.mult == a.mult {
				return a.prob
			}
			frac := (multiplier - a.mult) / (b.mult - a.mult)
			return a.prob + frac*(b.prob-a.prob)
		}
	}
	if multiplier < points[0].mult {
		return points[0].prob
	}
	return points[len(points)-1].prob
}

// BreakEvenMultiplier finds the spending multiplier whose interpolated ruin
// probability equals targetRuinProbability, via a bisection/false position
// hybrid root finder -- the same approach used elsewhere to invert a
// monotone financial function (there, an IRR; here, a spending level).
// Returns ok=false if the surface never brackets the target within the
// sampled multiplier range.
func BreakEvenMultiplier(cells []RuinCell, retirementAge int, targetRuinProbability float64) (float64, bool) {
	lo := ruinSpendingMultipliers[0]
	hi := ruinSpendingMultipliers[len(ruinSpendingMultipliers)-1]

	fLo := ruinProbabilityAtMultiplier(cells, retirementAge, lo) - targetRuinProbability
	fHi := ruinProbabilityAtMultiplier(cells, retirementAge, hi) - targetRuinProbability
	if fLo == 0 {
		return lo, true
	}
	if fHi == 0 {
		return hi, true
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, false
	}

	const maxIter = 60
	const tol = 1e-6
	for i := 0; i < maxIter; i++ {
		mid := lo + (hi-lo)*(0-fLo)/(fHi-fLo) // false position
		if mid <= lo || mid >= hi {
			mid = (lo + hi) / 2 // bisection fallback when fp stalls at an edge
		}
		fMid := ruinProbabilityAtMultiplier(cells, retirementAge, mid) - targetRuinProbability

		if math.Abs(fMid) < tol || (hi-lo) < tol {
			return mid, true
		}

		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi, fHi = mid, fMid
		}
	}
	return (lo + hi) / 2, true
}
