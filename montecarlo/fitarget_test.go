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

func TestFiTargetFromOutcomesEmpty(t *testing.T) {
	if got := fiTargetFromOutcomes(nil, nil); got != 0 {
		t.Fatalf("fiTargetFromOutcomes(nil) = %v, want 0", got)
	}
}

func TestFiTargetFromOutcomesAllSucceed(t *testing.T) {
	retire := []float64{100, 200, 300, 400, 500}
	ending := []float64{10, 20, 30, 40, 50}
	got := fiTargetFromOutcomes(retire, ending)
	if got != 100 {
		t.Fatalf("expected the lowest retirement balance (100) when every sim succeeds, got %v", got)
	}
}

func TestFiTargetFromOutcomesFallsBackToHighestWhenNoneQualify(t *testing.T) {
	retire := []float64{100, 200, 300}
	ending := []float64{0, 0, 0}
	got := fiTargetFromOutcomes(retire, ending)
	if got != 300 {
		t.Fatalf("expected the fallback of the highest retirement balance (300), got %v", got)
	}
}

func TestFiTargetSwrUsesRateFloor(t *testing.T) {
	periods := []SpendingPeriod{{FromAge: 65, ToAge: 95, YearlyAmount: 40000}}
	got := fiTargetSwr(65, periods, 0)
	want := 40000 / 0.01
	if got != want {
		t.Fatalf("fiTargetSwr with a zero rate = %v, want the floored %v", got, want)
	}
}

func TestFiProbabilityEmpty(t *testing.T) {
	if got := fiProbability(nil, 100); got != 0 {
		t.Fatalf("fiProbability(nil) = %v, want 0", got)
	}
}

func TestFiProbabilityCountsMeetOrExceed(t *testing.T) {
	balances := []float64{50, 100, 150, 200}
	got := fiProbability(balances, 100)
	if got != 0.75 {
		t.Fatalf("fiProbability = %v, want 0.75", got)
	}
}
