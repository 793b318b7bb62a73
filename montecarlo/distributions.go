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

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampAnnual bounds an annual return to the range treated as plausible for
// any asset-class aggregate.
func clampAnnual(v float64) float64 {
	return clamp(v, -0.95, 1.20)
}

// clampMonthly bounds a monthly return.
func clampMonthly(v float64) float64 {
	return clamp(v, -0.60, 0.60)
}

// clampTransition bounds a Markov transition probability away from the
// absorbing edges.
func clampTransition(v float64) float64 {
	return clamp(v, 0.001, 0.999)
}

// cornishFisherShape applies a Cornish-Fisher expansion to a standard normal
// z, bending it to approximate a distribution with the given skew and excess
// kurtosis.
func cornishFisherShape(z, skew, kurtosis float64) float64 {
	s := clamp(skew, -1.5, 1.5)
	k := clamp(kurtosis-3, 0, 8)
	return z + (s/6)*(z*z-1) + (k/24)*(z*z*z-3*z) - (s*s/36)*(2*z*z*z-5*z)
}

// drawMonthlyShaped draws a single monthly return from an annual (mean, std)
// pair plus skew/kurtosis, via a Cornish-Fisher-shaped standard normal.
func drawMonthlyShaped(r *Rand, annualMean, annualStd, skew, kurtosis float64) float64 {
	z := r.Normal(0, 1)
	shaped := cornishFisherShape(z, skew, kurtosis)
	return annualMean/12 + (annualStd/math.Sqrt(12))*shaped
}

// dfFromKurtosis maps excess kurtosis to Student-t degrees of freedom: fat
// tails (high excess kurtosis) imply a low df; a near-normal series (excess
// kurtosis near 0) is represented by a high df that is effectively normal.
func dfFromKurtosis(kurtosis float64) float64 {
	excess := math.Max(kurtosis-3, 0)
	if excess < 0.05 {
		return 40
	}
	return clamp(4+6/excess, 5, 60)
}

// studentTDraw draws a single Student-t variate with the given degrees of
// freedom, constructed from df+1 independent standard normals (one
// numerator, df for the chi-square denominator).
func studentTDraw(r *Rand, df float64) float64 {
	n := int(math.Max(3, math.Round(df)))
	z := r.Normal(0, 1)
	var chiSq float64
	for i := 0; i < n; i++ {
		ni := r.Normal(0, 1)
		chiSq += ni * ni
	}
	return z / math.Sqrt(chiSq/float64(n))
}

// percentile returns the p-th percentile (p in [0,1]) of an already-sorted
// slice via linear interpolation between order statistics -- the
// conventional "linear interpolation of the empirical CDF" definition.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	p = clamp(p, 0, 1)
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
