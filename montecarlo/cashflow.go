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

// inflationIndex returns the expected cumulative inflation multiplier
// between currentAge and age, using the household's expected (not
// regime-specific) inflation mean -- this is the deflator used to express
// non-inflation-adjusted cashflows in today's dollars at a future age.
func inflationIndex(currentAge, age, inflationMean float64) float64 {
	years := math.Max(0, age-currentAge)
	return math.Max(1e-9, math.Pow(1+inflationMean, years))
}

// matchesAge implements the half-open [fromAge, toAge) predicate shared by
// spending periods and income sources.
func matchesAge(fromAge, toAge, age float64) bool {
	return fromAge <= age && age < toAge
}

// buildCashflows expands spending periods, income sources, and lump-sum
// events into per-month arrays over the simulation horizon. monthlyNetFlow
// is (income-spending)/12 for each month; lumpSumByMonth accumulates any
// lump sums landing in that month.
func buildCashflows(input RetirementInput, periods []SpendingPeriod, incomes []IncomeSource, lumps []LumpSumEvent, months int) (monthlyNetFlow, lumpSumByMonth []float64) {
	monthlyNetFlow = make([]float64, months)
	lumpSumByMonth = make([]float64, months)

	inflMean := input.InflationMoments.Mean
	currentAge := input.CurrentAge

	for m := 0; m < months; m++ {
		age := currentAge + float64(m)/12
		idx := inflationIndex(currentAge, age, inflMean)

		var income, spending float64
		for _, src := range incomes {
			if matchesAge(src.FromAge, src.ToAge, age) {
				amt := src.YearlyAmount
				if !isInflationAdjusted(src.InflationAdjusted) {
					amt /= idx
				}
				income += amt
			}
		}
		for _, sp := range periods {
			if matchesAge(sp.FromAge, sp.ToAge, age) {
				amt := sp.YearlyAmount
				if !isInflationAdjusted(sp.InflationAdjusted) {
					amt /= idx
				}
				spending += amt
			}
		}

		monthlyNetFlow[m] = (income - spending) / 12
	}

	for _, ev := range lumps {
		index := int(math.Round((ev.Age - currentAge) * 12))
		if index >= 0 && index < months {
			lumpSumByMonth[index] += ev.Amount
		}
	}

	return monthlyNetFlow, lumpSumByMonth
}

// scaleSpending returns a copy of periods with every YearlyAmount scaled by
// multiplier, used by the ruin surface to replay cashflows under a spending
// stress multiplier without mutating the caller's input.
func scaleSpending(periods []SpendingPeriod, multiplier float64) []SpendingPeriod {
	out := make([]SpendingPeriod, len(periods))
	for i, p := range periods {
		out[i] = p
		out[i].YearlyAmount = p.YearlyAmount * multiplier
	}
	return out
}

// overrideDefaultIncomeToAge returns a copy of incomes with ToAge set to
// cellAge on the default salary source (id == "is-default"), used by the
// ruin surface to model working until a replayed retirement age.
func overrideDefaultIncomeToAge(incomes []IncomeSource, cellAge float64) []IncomeSource {
	out := make([]IncomeSource, len(incomes))
	for i, src := range incomes {
		out[i] = src
		if src.ID == defaultSourceID {
			out[i].ToAge = cellAge
		}
	}
	return out
}
