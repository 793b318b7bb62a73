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

import "testing"

func testInput() RetirementInput {
	return RetirementInput{
		CurrentAge:       40,
		RetirementAge:    65,
		SimulateUntilAge: 90,
		CurrentSavings:   100000,
		ReturnMoments:    Moments{Mean: 0.07, Variability: 0.15, Skewness: -0.3, Kurtosis: 4},
		InflationMoments: Moments{Mean: 0.02, Variability: 0.01},
		AnnualFeeRate:    0.01,
		GainTaxRate:      0.2,
		Mode:             Parametric,
		Regime: RegimeParams{
			StayGrowth: 0.9, StayCrisis: 0.6,
			GrowthMean: 0.09, GrowthStd: 0.12,
			CrisisMean: -0.1, CrisisStd: 0.22,
		},
	}
}

func TestBuildSimSetupMonthsAndRetireMonth(t *testing.T) {
	seed := 5.0
	r := NewRand(&seed)
	setup := buildSimSetup(testInput(), nil, nil, nil, r)

	if setup.months != 600 {
		t.Fatalf("expected 600 months (50 years), got %d", setup.months)
	}
	if setup.retireMonth != 300 {
		t.Fatalf("expected retireMonth 300 (age 65 at month 300), got %d", setup.retireMonth)
	}
}

func TestRunSingleSimulationNeverGoesNegative(t *testing.T) {
	seed := 21.0
	r := NewRand(&seed)
	setup := buildSimSetup(testInput(), []SpendingPeriod{
		{FromAge: 65, ToAge: 90, YearlyAmount: 80000},
	}, nil, nil, r)

	outcome := runSingleSimulation(setup, r)
	for m, b := range outcome.balances {
		if b < 0 {
			t.Fatalf("balance went negative at month %d: %v", m, b)
		}
	}
}

func TestRunSingleSimulationRecordsRetireBalance(t *testing.T) {
	seed := 8.0
	r := NewRand(&seed)
	setup := buildSimSetup(testInput(), nil, nil, nil, r)
	outcome := runSingleSimulation(setup, r)

	retireIdx := setup.retireMonth - 1
	if retireIdx < 0 {
		retireIdx = 0
	}
	if retireIdx > setup.months-1 {
		retireIdx = setup.months - 1
	}
	if outcome.retireBalance != outcome.balances[retireIdx] {
		t.Fatalf("retireBalance %v did not match balances[%d] %v", outcome.retireBalance, retireIdx, outcome.balances[retireIdx])
	}
}

func TestApplyMomentTargetingIsIdempotent(t *testing.T) {
	history := []float64{0.01, 0.05, -0.02, 0.08, 0.03, -0.01}
	once := applyMomentTargeting(history, 0.04, 0.05)
	twice := applyMomentTargeting(once, 0.04, 0.05)

	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("moment targeting was not idempotent at index %d: %v != %v", i, once[i], twice[i])
		}
	}
}

func TestGenerateParametricHistoryLength(t *testing.T) {
	seed := 17.0
	r := NewRand(&seed)
	history := generateParametricHistory(testInput(), 30, r)
	if len(history) != 30 {
		t.Fatalf("expected 30 years of history, got %d", len(history))
	}
	for i, v := range history {
		if v < -0.95 || v > 1.20 {
			t.Fatalf("history[%d] = %v outside clampAnnual bounds", i, v)
		}
	}
}
