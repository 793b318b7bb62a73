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

func TestCornishFisherReducesToZAtZeroShape(t *testing.T) {
	for _, z := range []float64{-2, -0.5, 0, 0.5, 2} {
		got := cornishFisherShape(z, 0, 3)
		if math.Abs(got-z) > 1e-9 {
			t.Fatalf("cornishFisherShape(%v, 0, 3) = %v, want %v", z, got, z)
		}
	}
}

func TestClampTransitionRange(t *testing.T) {
	cases := map[float64]float64{
		-1:  0.001,
		0:   0.001,
		0.5: 0.5,
		1:   0.999,
		2:   0.999,
	}
	for in, want := range cases {
		if got := clampTransition(in); got != want {
			t.Fatalf("clampTransition(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestClampAnnualAndMonthlyBounds(t *testing.T) {
	if got := clampAnnual(5); got != 1.20 {
		t.Fatalf("clampAnnual(5) = %v, want 1.20", got)
	}
	if got := clampAnnual(-5); got != -0.95 {
		t.Fatalf("clampAnnual(-5) = %v, want -0.95", got)
	}
	if got := clampMonthly(5); got != 0.60 {
		t.Fatalf("clampMonthly(5) = %v, want 0.60", got)
	}
	if got := clampMonthly(-5); got != -0.60 {
		t.Fatalf("clampMonthly(-5) = %v, want -0.60", got)
	}
}

func TestDfFromKurtosisNearNormalIsHigh(t *testing.T) {
	df := dfFromKurtosis(3.0)
	if df < 30 {
		t.Fatalf("expected a near-normal df for excess kurtosis 0, got %v", df)
	}
}

func TestDfFromKurtosisFatTailsIsLow(t *testing.T) {
	df := dfFromKurtosis(20.0)
	if df < 5 || df > 60 {
		t.Fatalf("df out of clamp range: %v", df)
	}
	// excess kurtosis 17 gives 4+6/17 ~= 4.35, clamped up to the floor of 5.
	if df != 5 {
		t.Fatalf("expected fat tails to map to the minimum df of 5, got %v", df)
	}
}

func TestPercentileEndpoints(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := percentile(sorted, 0); got != 1 {
		t.Fatalf("percentile(0) = %v, want 1", got)
	}
	if got := percentile(sorted, 1); got != 5 {
		t.Fatalf("percentile(1) = %v, want 5", got)
	}
	if got := percentile(sorted, 0.5); got != 3 {
		t.Fatalf("percentile(0.5) = %v, want 3", got)
	}
}

func TestPercentileDegenerateLengths(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Fatalf("percentile(nil) = %v, want 0", got)
	}
	if got := percentile([]float64{42}, 0.9); got != 42 {
		t.Fatalf("percentile(single) = %v, want 42", got)
	}
}

func TestStudentTDrawFiniteAndVaried(t *testing.T) {
	seed := 3.0
	r := NewRand(&seed)
	var draws []float64
	for i := 0; i < 20; i++ {
		v := studentTDraw(r, 8)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("studentTDraw produced non-finite value: %v", v)
		}
		draws = append(draws, v)
	}
	allSame := true
	for _, v := range draws[1:] {
		if v != draws[0] {
			allSame = false
		}
	}
	if allSame {
		t.Fatal("expected varied draws from studentTDraw")
	}
}
