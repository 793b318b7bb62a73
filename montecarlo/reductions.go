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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// percentileSeriesOverMonths computes p10..p90 for each month across sims,
// given balances[sim][month].
func percentileSeriesOverMonths(balances [][]float64, months int) PercentileSeries {
	out := PercentileSeries{
		P10: make([]float64, months),
		P25: make([]float64, months),
		P50: make([]float64, months),
		P75: make([]float64, months),
		P90: make([]float64, months),
	}

	column := make([]float64, len(balances))
	for m := 0; m < months; m++ {
		for s := range balances {
			column[s] = balances[s][m]
		}
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)
		out.P10[m] = percentile(sorted, 0.10)
		out.P25[m] = percentile(sorted, 0.25)
		out.P50[m] = percentile(sorted, 0.50)
		out.P75[m] = percentile(sorted, 0.75)
		out.P90[m] = percentile(sorted, 0.90)
	}
	return out
}

// percentileScalars computes p10..p90 over a flat slice of per-sim scalars.
func percentileScalars(values []float64) PercentileScalar {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return PercentileScalar{
		P10: percentile(sorted, 0.10),
		P25: percentile(sorted, 0.25),
		P50: percentile(sorted, 0.50),
		P75: percentile(sorted, 0.75),
		P90: percentile(sorted, 0.90),
	}
}

// lowMedianHigh reduces a flat slice of per-sim scalars to its p10/p50/p90.
func lowMedianHigh(values []float64) LowMedianHigh {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return LowMedianHigh{
		Low:    percentile(sorted, 0.10),
		Median: percentile(sorted, 0.50),
		High:   percentile(sorted, 0.90),
	}
}

// computeReturnMoments summarizes a return series by mean, geometric mean,
// population std, skew (m3/sigma^3), and kurtosis (m4/sigma^4), with
// degenerate branches for n=0 and near-zero variance.
func computeReturnMoments(values []float64) ReturnMoments {
	n := len(values)
	if n == 0 {
		return ReturnMoments{Mean: 0, GeometricMean: 0, Std: 0, Skew: 0, Kurtosis: 3}
	}

	mean := stat.Mean(values, nil)

	geoProd := 1.0
	for _, v := range values {
		geoProd *= math.Max(0.0001, 1+v)
	}
	geoMean := math.Pow(geoProd, 1/float64(n)) - 1

	var m2, m3, m4 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2, m3, m4 = m2/float64(n), m3/float64(n), m4/float64(n)

	std := math.Sqrt(math.Max(0, m2))
	if std <= 1e-9 || math.IsNaN(std) {
		return ReturnMoments{Mean: mean, GeometricMean: geoMean, Std: 0, Skew: 0, Kurtosis: 3}
	}

	skew := m3 / (std * std * std)
	kurt := m4 / (m2 * m2)

	return ReturnMoments{
		Mean:          mean,
		GeometricMean: geoMean,
		Std:           std,
		Skew:          skew,
		Kurtosis:      kurt,
	}
}
