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
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// defaultSeed is the initial value of the run's base seed. Per-simulation
// seeds are derived from it only when input.Seed is set (which replaces it);
// an unseeded run draws every path from crypto/rand and is not reproducible.
var defaultSeed = 42.0

// RunMonteCarlo drives a complete retirement projection: simCount simulated
// paths, the percentile bands and scalar statistics derived from them, the
// financial-independence target solve, sequence-of-returns-risk buckets, and
// the spending/retirement-age ruin surface. progress, if non-nil, receives
// coarse-grained completion updates and must not block or mutate engine
// state.
func RunMonteCarlo(input RetirementInput, periods []SpendingPeriod, incomes []IncomeSource, lumps []LumpSumEvent, progress ProgressSink) (Result, error) {
	if err := validateInput(input); err != nil {
		return Result{}, err
	}

	simCount := input.Simulations
	if simCount < 400 {
		simCount = 400
	}

	baseSeed := defaultSeed
	if input.Seed != nil {
		baseSeed = *input.Seed
	}

	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}
	report(0)

	seedRand := NewRand(input.Seed)
	setup := buildSimSetup(input, periods, incomes, lumps, seedRand)

	balances := make([][]float64, simCount)
	finalBalances := make([]float64, simCount)
	retireBalances := make([]float64, simCount)
	depleted := make([]bool, simCount)
	annualRealReturns := make([][]float64, simCount)
	shortfalls := make([]float64, simCount)
	depletedMonthCounts := make([]float64, simCount)
	allReturns := make([]float64, 0, simCount*setup.months/12)

	growthFactorCap := simCount
	if growthFactorCap > maxRuinSurfaceSims {
		growthFactorCap = maxRuinSurfaceSims
	}
	growthFactors := make([][]float64, 0, growthFactorCap)

	lastReported := 0
	for sim := 0; sim < simCount; sim++ {
		var r *Rand
		if input.Seed != nil {
			seed := DeriveSeed(baseSeed, sim)
			r = NewRand(&seed)
		} else {
			r = NewRand(nil)
		}

		simSetupForSim := setup
		outcome := runSingleSimulation(simSetupForSim, r)

		balances[sim] = outcome.balances
		finalBalances[sim] = outcome.finalBalance
		retireBalances[sim] = outcome.retireBalance
		depleted[sim] = outcome.depleted
		annualRealReturns[sim] = outcome.annualRealReturns
		shortfalls[sim] = outcome.shortfall
		depletedMonthCounts[sim] = float64(outcome.depletedMonths) / 12
		allReturns = append(allReturns, outcome.annualRealReturns...)
		if len(growthFactors) < growthFactorCap {
			growthFactors = append(growthFactors, outcome.growthFactors)
		}

		pct := 10 + int(float64(sim+1)/float64(simCount)*70)
		if pct >= lastReported+10 && pct < 90 {
			lastReported = pct
			report(pct)
		}
	}
	report(90)

	months := setup.months
	ages := make([]float64, months)
	for m := 0; m < months; m++ {
		ages[m] = math.Round((input.CurrentAge+float64(m)/12)*100) / 100
	}

	percentiles := percentileSeriesOverMonths(balances, months)
	finalPct := percentileScalars(finalBalances)
	retirePct := percentileScalars(retireBalances)

	var successCount int
	for _, d := range depleted {
		if !d {
			successCount++
		}
	}
	successProbability := float64(successCount) / float64(simCount)

	returnMoments := computeReturnMoments(allReturns)

	sequenceRisk := bucketSequenceRisk(annualRealReturns, depleted, finalBalances)

	fiTarget := fiTargetFromOutcomes(retireBalances, finalBalances)
	// fiTarget == fiTargetP95 is an explicit invariant: both are the same
	// §4.9 solver output, not independently computed percentiles.
	fiTargetP95 := fiTarget
	fiTargetSwrValue := fiTargetSwr(input.RetirementAge, periods, input.SafeWithdrawalRate)

	ruinSurface := computeRuinSurface(input, periods, incomes, lumps, growthFactors)
	report(95)

	result := Result{
		RunID:    uuid.NewString(),
		SimCount: simCount,
		Simulation: Simulation{
			Months:            months,
			Ages:              ages,
			RetireMonth:       setup.retireMonth,
			Percentiles:       percentiles,
			FinalPercentiles:  finalPct,
			RetirePercentiles: retirePct,
		},
		Stats: Stats{
			FiTarget:           fiTarget,
			FiTargetSwr:        fiTargetSwrValue,
			FiTargetP95:        fiTargetP95,
			SuccessProbability: successProbability,
			FiProbabilitySwr:   fiProbability(retireBalances, fiTargetSwrValue),
			FiProbabilityP95:   fiProbability(retireBalances, fiTargetP95),
			ReturnMoments:      returnMoments,
			SequenceRisk:       sequenceRisk,
			RuinSurface:        ruinSurface,
			Shortfall:          lowMedianHigh(shortfalls),
			DepletedYears:      lowMedianHigh(depletedMonthCounts),
			Retire:             lowMedianHigh(retireBalances),
			Final:              lowMedianHigh(finalBalances),
		},
	}

	report(100)
	return result, nil
}

// validateInput rejects household configurations that cannot be simulated,
// rather than letting them surface as a NaN or a divide-by-zero deep inside
// the engine.
func validateInput(input RetirementInput) error {
	if input.SimulateUntilAge <= input.CurrentAge {
		return errors.New("montecarlo: simulateUntilAge must be after currentAge")
	}
	if input.RetirementAge < input.CurrentAge {
		return errors.New("montecarlo: retirementAge must not precede currentAge")
	}
	if input.CurrentSavings < 0 {
		return fmt.Errorf("montecarlo: currentSavings must be non-negative, got %.2f", input.CurrentSavings)
	}
	return nil
}
