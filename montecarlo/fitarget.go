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

const fiSuccessThreshold = 0.95

type fiOutcome struct {
	retirementBalance float64
	endingBalance     float64
}

// fiTargetFromOutcomes finds the smallest retirement balance such that the
// subset of sims whose retirement balance is at least that large achieves
// empirical success (ending balance > 0) at or above fiSuccessThreshold. If
// no suffix-from-i qualifies, the largest observed retirement balance is
// used, matching the base spec's "else use the last" fallback.
func fiTargetFromOutcomes(retirementBalances, endingBalances []float64) float64 {
	n := len(retirementBalances)
	if n == 0 {
		return 0
	}

	outcomes := make([]fiOutcome, n)
	for i := range retirementBalances {
		outcomes[i] = fiOutcome{retirementBalances[i], endingBalances[i]}
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].retirementBalance < outcomes[j].retirementBalance })

	suffixSuccess := make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		suffixSuccess[i] = suffixSuccess[i+1]
		if outcomes[i].endingBalance > 0 {
			suffixSuccess[i]++
		}
	}

	target := outcomes[n-1].retirementBalance
	for i := 0; i < n; i++ {
		remaining := n - i
		if float64(suffixSuccess[i])/float64(remaining) >= fiSuccessThreshold {
			target = outcomes[i].retirementBalance
			break
		}
	}

	if target < 0 {
		return 0
	}
	return target
}

// spendingAtAge sums spending-period amounts matching age, deflated by
// inflationIndex (callers pass 1.0 for "today's dollars" per the base spec's
// SWR-target definition).
func spendingAtAge(age float64, periods []SpendingPeriod, inflationIdx float64) float64 {
	var total float64
	for _, sp := range periods {
		if matchesAge(sp.FromAge, sp.ToAge, age) {
			amt := sp.YearlyAmount
			if !isInflationAdjusted(sp.InflationAdjusted) {
				amt /= inflationIdx
			}
			total += amt
		}
	}
	return total
}

// fiTargetSwr computes the safe-withdrawal-rate FI target: the retirement
// balance whose safeWithdrawalRate fraction exactly funds spending at the
// requested retirement age.
func fiTargetSwr(retirementAge float64, periods []SpendingPeriod, safeWithdrawalRate float64) float64 {
	spend := spendingAtAge(retirementAge, periods, 1.0)
	rate := safeWithdrawalRate
	if rate < 0.01 {
		rate = 0.01
	}
	return spend / rate
}

// fiProbability is the fraction of sims whose retirement balance met or
// exceeded target.
func fiProbability(retirementBalances []float64, target float64) float64 {
	if len(retirementBalances) == 0 {
		return 0
	}
	var count int
	for _, b := range retirementBalances {
		if b >= target {
			count++
		}
	}
	return float64(count) / float64(len(retirementBalances))
}
