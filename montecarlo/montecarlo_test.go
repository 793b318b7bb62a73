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

package montecarlo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/retirement-mc/montecarlo"
)

func baseInput() montecarlo.RetirementInput {
	seed := 12345.0
	return montecarlo.RetirementInput{
		CurrentAge:       35,
		RetirementAge:    65,
		SimulateUntilAge: 95,
		CurrentSavings:   250000,
		ReturnMoments: montecarlo.Moments{
			Mean:        0.07,
			Variability: 0.15,
			Skewness:    -0.4,
			Kurtosis:    4.5,
		},
		InflationMoments: montecarlo.Moments{
			Mean:        0.025,
			Variability: 0.01,
		},
		AnnualFeeRate:      0.005,
		GainTaxRate:        0.15,
		SafeWithdrawalRate: 0.04,
		Simulations:        150,
		Seed:               &seed,
		Mode:               montecarlo.Parametric,
		Regime: montecarlo.RegimeParams{
			StayGrowth: 0.92,
			StayCrisis: 0.55,
			GrowthMean: 0.09,
			GrowthStd:  0.12,
			CrisisMean: -0.12,
			CrisisStd:  0.25,
		},
	}
}

func basePeriods() []montecarlo.SpendingPeriod {
	return []montecarlo.SpendingPeriod{
		{ID: "sp-core", Label: "core spending", FromAge: 65, ToAge: 95, YearlyAmount: 60000},
	}
}

func baseIncomes() []montecarlo.IncomeSource {
	return []montecarlo.IncomeSource{
		{ID: "is-default", Label: "salary", FromAge: 35, ToAge: 65, YearlyAmount: 110000},
	}
}

var _ = Describe("RunMonteCarlo", func() {
	It("produces a result with non-negative p10 balances and a success probability in [0, 1]", func() {
		result, err := montecarlo.RunMonteCarlo(baseInput(), basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Simulation.Percentiles.P10).NotTo(BeEmpty())
		for _, v := range result.Simulation.Percentiles.P10 {
			Expect(v).To(BeNumerically(">=", 0))
		}

		Expect(result.Stats.SuccessProbability).To(BeNumerically(">=", 0))
		Expect(result.Stats.SuccessProbability).To(BeNumerically("<=", 1))
	})

	It("is bit-identically reproducible for a given seed", func() {
		input := baseInput()
		r1, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())
		r2, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(r1.Simulation.Percentiles.P50).To(Equal(r2.Simulation.Percentiles.P50))
		Expect(r1.Stats.SuccessProbability).To(Equal(r2.Stats.SuccessProbability))
		Expect(r1.Stats.FiTarget).To(Equal(r2.Stats.FiTarget))
	})

	It("reports fiTarget equal to fiTargetP95", func() {
		input := baseInput()
		input.Simulations = 400
		result, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stats.FiTarget).To(BeNumerically(">=", 0))
		Expect(result.Stats.FiTargetP95).To(Equal(result.Stats.FiTarget))
	})

	It("produces monotonically non-decreasing percentile bands at every month", func() {
		result, err := montecarlo.RunMonteCarlo(baseInput(), basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		p := result.Simulation.Percentiles
		for m := range p.P50 {
			Expect(p.P10[m]).To(BeNumerically("<=", p.P25[m]))
			Expect(p.P25[m]).To(BeNumerically("<=", p.P50[m]))
			Expect(p.P50[m]).To(BeNumerically("<=", p.P75[m]))
			Expect(p.P75[m]).To(BeNumerically("<=", p.P90[m]))
		}
	})

	It("reports five sequence-of-returns-risk buckets that partition every simulation", func() {
		result, err := montecarlo.RunMonteCarlo(baseInput(), basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Stats.SequenceRisk).To(HaveLen(5))
		var total int
		for _, b := range result.Stats.SequenceRisk {
			total += b.Count
		}
		Expect(total).To(Equal(result.SimCount))
	})

	It("invokes the progress sink from 0 through 100", func() {
		var percents []int
		_, err := montecarlo.RunMonteCarlo(baseInput(), basePeriods(), baseIncomes(), nil, func(pct int) {
			percents = append(percents, pct)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(percents).NotTo(BeEmpty())
		Expect(percents[0]).To(Equal(0))
		Expect(percents[len(percents)-1]).To(Equal(100))
	})

	It("rejects a simulation horizon that ends before it starts", func() {
		input := baseInput()
		input.SimulateUntilAge = input.CurrentAge
		_, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).To(HaveOccurred())
	})

	It("computes a non-empty ruin surface across the spending/retirement-age grid", func() {
		input := baseInput()
		input.Simulations = 60
		result, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stats.RuinSurface).NotTo(BeEmpty())
		for _, cell := range result.Stats.RuinSurface {
			Expect(cell.RuinProbability).To(BeNumerically(">=", 0))
			Expect(cell.RuinProbability).To(BeNumerically("<=", 1))
		}
	})
})

var _ = Describe("BreakEvenMultiplier", func() {
	It("finds a multiplier bracketed by the sampled ruin surface", func() {
		input := baseInput()
		input.Simulations = 60
		result, err := montecarlo.RunMonteCarlo(input, basePeriods(), baseIncomes(), nil, nil)
		Expect(err).NotTo(HaveOccurred())

		mult, ok := montecarlo.BreakEvenMultiplier(result.Stats.RuinSurface, int(input.RetirementAge), 0.5)
		if ok {
			Expect(mult).To(BeNumerically(">=", 0.8))
			Expect(mult).To(BeNumerically("<=", 1.2))
		}
	})
})
