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

func TestComputeReturnMomentsEmpty(t *testing.T) {
	m := computeReturnMoments(nil)
	if m.Mean != 0 || m.Kurtosis != 3 {
		t.Fatalf("unexpected degenerate moments for empty input: %+v", m)
	}
}

func TestComputeReturnMomentsSingleValue(t *testing.T) {
	m := computeReturnMoments([]float64{0.05})
	if math.IsNaN(m.Std) {
		t.Fatal("single-value series produced a NaN std")
	}
	if m.Std != 0 {
		t.Fatalf("expected a zero std for a single observation, got %v", m.Std)
	}
	if math.Abs(m.Mean-0.05) > 1e-9 {
		t.Fatalf("mean = %v, want 0.05", m.Mean)
	}
}

func TestComputeReturnMomentsConstantSeries(t *testing.T) {
	values := []float64{0.03, 0.03, 0.03, 0.03}
	m := computeReturnMoments(values)
	if m.Std != 0 {
		t.Fatalf("expected zero std for a constant series, got %v", m.Std)
	}
	if m.Kurtosis != 3 {
		t.Fatalf("expected the degenerate kurtosis of 3, got %v", m.Kurtosis)
	}
}

func TestPercentileSeriesOverMonthsShape(t *testing.T) {
	balances := [][]float64{
		{100, 200, 300},
		{110, 210, 310},
		{90, 190, 290},
	}
	series := percentileSeriesOverMonths(balances, 3)
	if len(series.P50) != 3 {
		t.Fatalf("expected 3 months of p50, got %d", len(series.P50))
	}
	if series.P50[0] != 100 {
		t.Fatalf("p50 at month 0 = %v, want 100 (the median of 90/100/110)", series.P50[0])
	}
}

func TestLowMedianHighOrdering(t *testing.T) {
	values := []float64{5, 1, 9, 3, 7}
	lmh := lowMedianHigh(values)
	if lmh.Low > lmh.Median || lmh.Median > lmh.High {
		t.Fatalf("expected Low <= Median <= High, got %+v", lmh)
	}
}
