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

func TestEarlySequenceMeanCapsAtTenYears(t *testing.T) {
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = float64(i) * 0.01
	}
	got := earlySequenceMean(returns)

	var want float64
	for i := 0; i < 10; i++ {
		want += returns[i]
	}
	want /= 10
	if got != want {
		t.Fatalf("earlySequenceMean = %v, want %v (average of the first 10 years only)", got, want)
	}
}

func TestBucketSequenceRiskPartitionsAllSims(t *testing.T) {
	n := 25
	returns := make([][]float64, n)
	final := make([]float64, n)
	depleted := make([]bool, n)
	for i := 0; i < n; i++ {
		returns[i] = []float64{float64(i) * 0.01}
		final[i] = float64(i) * 1000
		depleted[i] = i < 5
	}

	buckets := bucketSequenceRisk(returns, depleted, final)
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(buckets))
	}

	var total int
	for _, b := range buckets {
		total += b.Count
	}
	if total != n {
		t.Fatalf("bucket counts sum to %d, want %d", total, n)
	}
}

func TestBucketSequenceRiskEmpty(t *testing.T) {
	buckets := bucketSequenceRisk(nil, nil, nil)
	if buckets != nil {
		t.Fatalf("expected nil buckets for empty input, got %+v", buckets)
	}
}
