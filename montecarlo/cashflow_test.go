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
	"testing"
)

func TestMatchesAgeHalfOpenInterval(t *testing.T) {
	if !matchesAge(65, 95, 65) {
		t.Fatal("fromAge should be inclusive")
	}
	if matchesAge(65, 95, 95) {
		t.Fatal("toAge should be exclusive")
	}
	if !matchesAge(65, 95, 94.99) {
		t.Fatal("expected a value just under toAge to match")
	}
}

func TestBuildCashflowsSpendingOnly(t *testing.T) {
	input := RetirementInput{
		CurrentAge:       60,
		InflationMoments: Moments{Mean: 0},
	}
	periods := []SpendingPeriod{
		{ID: "sp", FromAge: 60, ToAge: 61, YearlyAmount: 12000},
	}

	months := 12
	netFlow, lumps := buildCashflows(input, periods, nil, nil, months)

	if len(netFlow) != months || len(lumps) != months {
		t.Fatalf("expected %d-length arrays, got %d/%d", months, len(netFlow), len(lumps))
	}

	var total float64
	for _, v := range netFlow {
		total += v
	}
	if math.Abs(total-(-12000)) > 1e-6 {
		t.Fatalf("expected monthly net flow to sum to -12000 over the year, got %v", total)
	}
	for _, v := range lumps {
		if v != 0 {
			t.Fatal("expected no lump sums")
		}
	}
}

func TestBuildCashflowsAppliesLumpSumAtTheRightMonth(t *testing.T) {
	input := RetirementInput{CurrentAge: 50}
	lumps := []LumpSumEvent{{ID: "ls", Age: 51, Amount: 5000}}

	_, lumpByMonth := buildCashflows(input, nil, nil, lumps, 36)

	if lumpByMonth[12] != 5000 {
		t.Fatalf("expected the lump sum at month 12 (age 51), got %v at that index", lumpByMonth[12])
	}
	for m, v := range lumpByMonth {
		if m != 12 && v != 0 {
			t.Fatalf("unexpected lump sum %v at month %d", v, m)
		}
	}
}

func TestScaleSpendingDoesNotMutateInput(t *testing.T) {
	original := []SpendingPeriod{{ID: "sp", YearlyAmount: 1000}}
	scaled := scaleSpending(original, 1.5)

	if original[0].YearlyAmount != 1000 {
		t.Fatalf("scaleSpending mutated its input: %v", original[0].YearlyAmount)
	}
	if scaled[0].YearlyAmount != 1500 {
		t.Fatalf("scaled amount = %v, want 1500", scaled[0].YearlyAmount)
	}
}

func TestOverrideDefaultIncomeToAge(t *testing.T) {
	incomes := []IncomeSource{
		{ID: "is-default", ToAge: 65},
		{ID: "is-pension", ToAge: 95},
	}
	overridden := overrideDefaultIncomeToAge(incomes, 68)

	if overridden[0].ToAge != 68 {
		t.Fatalf("expected the default source's ToAge to move to 68, got %v", overridden[0].ToAge)
	}
	if overridden[1].ToAge != 95 {
		t.Fatalf("expected the non-default source to be untouched, got %v", overridden[1].ToAge)
	}
}
