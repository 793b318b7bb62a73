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

import "github.com/rs/zerolog"

// MarshalZerologObject lets a Result be passed directly to zerolog's
// Object()/Interface() field builders, logging only the scalars a human
// operator cares about at a glance rather than the full per-month
// percentile series.
func (res Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("runId", res.RunID).
		Int("simCount", res.SimCount).
		Int("months", res.Simulation.Months).
		Int("retireMonth", res.Simulation.RetireMonth).
		Object("stats", res.Stats)
}

// MarshalZerologObject logs the headline statistics of a run.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("fiTarget", s.FiTarget).
		Float64("fiTargetSwr", s.FiTargetSwr).
		Float64("fiTargetP95", s.FiTargetP95).
		Float64("successProbability", s.SuccessProbability).
		Float64("returnMean", s.ReturnMoments.Mean).
		Float64("returnStd", s.ReturnMoments.Std).
		Float64("finalMedian", s.Final.Median)
}

// MarshalZerologObject logs one ruin-surface cell.
func (c RuinCell) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("spendingMultiplier", c.SpendingMultiplier).
		Int("retirementAge", c.RetirementAge).
		Float64("ruinProbability", c.RuinProbability)
}

// MarshalZerologObject logs one sequence-of-returns-risk bucket.
func (b SequenceRiskBucket) MarshalZerologObject(e *zerolog.Event) {
	e.Str("label", b.Label).
		Float64("ruinProbability", b.RuinProbability).
		Float64("endingMedian", b.EndingMedian).
		Int("count", b.Count)
}
