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

func TestDetectRegimesConstantSeriesIsAllGrowth(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 0.05
	}
	labels := detectAnnualRegimes(series)
	for i, l := range labels {
		if l != Growth {
			t.Fatalf("index %d labeled %v on a constant series, want Growth", i, l)
		}
	}
}

func TestDetectRegimesEmptySeries(t *testing.T) {
	labels := detectAnnualRegimes(nil)
	if len(labels) != 0 {
		t.Fatalf("expected no labels for an empty series, got %d", len(labels))
	}
}

func TestDetectRegimesFlagsACrash(t *testing.T) {
	series := []float64{0.08, 0.10, 0.07, 0.09, -0.45, 0.08, 0.09, 0.10, 0.07, 0.08}
	labels := detectAnnualRegimes(series)
	if labels[4] != Crisis {
		t.Fatalf("expected the crash year to be labeled Crisis, got %v", labels[4])
	}
}

func TestMarkovStaysDefaultsOnShortInput(t *testing.T) {
	stayGrowth, stayCrisis := markovStays(nil)
	if stayGrowth != 0.88 {
		t.Fatalf("stayGrowth default = %v, want 0.88", stayGrowth)
	}
	if stayCrisis != 0.72 {
		t.Fatalf("stayCrisis default = %v, want 0.72", stayCrisis)
	}
}

func TestMarkovStaysWithinTransitionRange(t *testing.T) {
	labels := []Regime{Growth, Growth, Crisis, Crisis, Crisis, Growth, Growth, Crisis, Growth, Growth}
	stayGrowth, stayCrisis := markovStays(labels)
	if stayGrowth < 0.001 || stayGrowth > 0.999 {
		t.Fatalf("stayGrowth out of clamp range: %v", stayGrowth)
	}
	if stayCrisis < 0.001 || stayCrisis > 0.999 {
		t.Fatalf("stayCrisis out of clamp range: %v", stayCrisis)
	}
}

func TestStationaryGrowthProbabilityIdentity(t *testing.T) {
	// With symmetric stay probabilities the stationary distribution is 50/50.
	p := stationaryGrowthProbability(0.8, 0.8)
	if p != 0.5 {
		t.Fatalf("stationaryGrowthProbability(0.8, 0.8) = %v, want 0.5", p)
	}
}

func TestStationaryGrowthProbabilityDegenerateDenominator(t *testing.T) {
	p := stationaryGrowthProbability(1.0, 1.0)
	if p != 0.5 {
		t.Fatalf("expected 0.5 fallback when stays sum to 2, got %v", p)
	}
}
