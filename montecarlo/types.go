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

// Package montecarlo implements a regime-switching, bootstrapped Monte Carlo
// retirement projection engine: cashflow modeling, a simulation driver, and
// the statistical reductions (percentile bands, sequence-of-returns risk,
// financial-independence target solving, and ruin-surface replay) computed
// over the resulting trajectories.
package montecarlo

// SimulationMode selects how the return-generating process is calibrated.
type SimulationMode string

const (
	// Historical calibrates against user-supplied annual/monthly return series.
	Historical SimulationMode = "historical"
	// Parametric synthesizes a bootstrap history from the regime model.
	Parametric SimulationMode = "parametric"
)

// Regime is a two-state label describing the statistical mode of returns and
// inflation at a point in time.
type Regime uint8

const (
	Growth Regime = 0
	Crisis Regime = 1
)

// RegimeParams are the Markov stay probabilities and per-regime moments used
// by the parametric bootstrap-history generator and the stationary-state
// calculations.
type RegimeParams struct {
	StayGrowth  float64 `json:"stayGrowth" yaml:"stayGrowth"`
	StayCrisis  float64 `json:"stayCrisis" yaml:"stayCrisis"`
	GrowthMean  float64 `json:"growthMean" yaml:"growthMean"`
	GrowthStd   float64 `json:"growthStd" yaml:"growthStd"`
	CrisisMean  float64 `json:"crisisMean" yaml:"crisisMean"`
	CrisisStd   float64 `json:"crisisStd" yaml:"crisisStd"`
}

// Moments describes a distribution by its first four moments, as supplied by
// the host for returns and inflation alike.
type Moments struct {
	Mean        float64 `json:"mean" yaml:"mean"`
	Variability float64 `json:"variability" yaml:"variability"`
	Skewness    float64 `json:"skewness" yaml:"skewness"`
	Kurtosis    float64 `json:"kurtosis" yaml:"kurtosis"`
}

// RetirementInput is the immutable household and market configuration for a
// single Monte Carlo run.
type RetirementInput struct {
	CurrentAge        float64 `json:"currentAge" yaml:"currentAge"`
	RetirementAge     float64 `json:"retirementAge" yaml:"retirementAge"`
	SimulateUntilAge  float64 `json:"simulateUntilAge" yaml:"simulateUntilAge"`
	CurrentSavings    float64 `json:"currentSavings" yaml:"currentSavings"`

	ReturnMoments    Moments `json:"returnMoments" yaml:"returnMoments"`
	InflationMoments Moments `json:"inflationMoments" yaml:"inflationMoments"`
	// InflationCrisisSpread is the requested gap between growth-regime and
	// crisis-regime expected inflation. Zero means "use the default".
	InflationCrisisSpread float64 `json:"inflationCrisisSpread,omitempty" yaml:"inflationCrisisSpread,omitempty"`

	AnnualFeeRate        float64 `json:"annualFeeRate" yaml:"annualFeeRate"`
	GainTaxRate          float64 `json:"gainTaxRate" yaml:"gainTaxRate"`
	SafeWithdrawalRate   float64 `json:"safeWithdrawalRate" yaml:"safeWithdrawalRate"`

	Simulations int    `json:"simulations" yaml:"simulations"`
	Seed        *float64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Mode        SimulationMode `json:"mode" yaml:"mode"`

	MomentTarget bool `json:"momentTarget,omitempty" yaml:"momentTarget,omitempty"`
	// BlockLength is the block-bootstrap run length for monthly calibration.
	// Zero means "use the default of 6".
	BlockLength int `json:"blockLength,omitempty" yaml:"blockLength,omitempty"`

	Regime RegimeParams `json:"regime" yaml:"regime"`

	HistoricalAnnual  []float64 `json:"historicalAnnual,omitempty" yaml:"historicalAnnual,omitempty"`
	HistoricalMonthly []float64 `json:"historicalMonthly,omitempty" yaml:"historicalMonthly,omitempty"`
}

// SpendingPeriod is a span of years over which a constant (in today's
// dollars) annual spending amount applies.
type SpendingPeriod struct {
	ID                string  `json:"id" yaml:"id"`
	Label             string  `json:"label" yaml:"label"`
	FromAge           float64 `json:"fromAge" yaml:"fromAge"`
	ToAge             float64 `json:"toAge" yaml:"toAge"`
	YearlyAmount      float64 `json:"yearlyAmount" yaml:"yearlyAmount"`
	InflationAdjusted *bool   `json:"inflationAdjusted,omitempty" yaml:"inflationAdjusted,omitempty"`
}

// IncomeSource is a span of years over which a constant (in today's
// dollars) annual income amount applies.
type IncomeSource struct {
	ID                string  `json:"id" yaml:"id"`
	Label             string  `json:"label" yaml:"label"`
	FromAge           float64 `json:"fromAge" yaml:"fromAge"`
	ToAge             float64 `json:"toAge" yaml:"toAge"`
	YearlyAmount      float64 `json:"yearlyAmount" yaml:"yearlyAmount"`
	InflationAdjusted *bool   `json:"inflationAdjusted,omitempty" yaml:"inflationAdjusted,omitempty"`
}

// defaultSourceID identifies the household's default salary income source;
// the ruin surface overrides its ToAge to match each replayed retirement age.
const defaultSourceID = "is-default"

// LumpSumEvent is a single point-in-time cash inflow or outflow, expressed
// in today's dollars.
type LumpSumEvent struct {
	ID     string  `json:"id" yaml:"id"`
	Label  string  `json:"label" yaml:"label"`
	Age    float64 `json:"age" yaml:"age"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// isInflationAdjusted returns the effective inflation-adjusted flag, which
// defaults to true when unset.
func isInflationAdjusted(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

// ProgressSink receives coarse-grained progress updates (0, ~10..~90, 100)
// during a run. It must be non-blocking and must not mutate engine state.
type ProgressSink func(percent int)

// PercentileSeries holds the five tracked percentile bands.
type PercentileSeries struct {
	P10 []float64 `json:"p10"`
	P25 []float64 `json:"p25"`
	P50 []float64 `json:"p50"`
	P75 []float64 `json:"p75"`
	P90 []float64 `json:"p90"`
}

// PercentileScalar holds the five tracked percentiles of a scalar
// distribution (e.g. final balance across sims).
type PercentileScalar struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// LowMedianHigh is a compact three-point summary used throughout Stats.
type LowMedianHigh struct {
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
}

// Simulation is the time-series half of a run's result.
type Simulation struct {
	Months             int              `json:"months"`
	Ages               []float64        `json:"ages"`
	RetireMonth        int              `json:"retireMonth"`
	Percentiles        PercentileSeries `json:"percentiles"`
	FinalPercentiles   PercentileScalar `json:"finalPercentiles"`
	RetirePercentiles  PercentileScalar `json:"retirePercentiles"`
}

// ReturnMoments summarizes a return series by its first four moments plus a
// geometric mean.
type ReturnMoments struct {
	Mean          float64 `json:"mean"`
	GeometricMean float64 `json:"geometricMean"`
	Std           float64 `json:"std"`
	Skew          float64 `json:"skew"`
	Kurtosis      float64 `json:"kurtosis"`
}

// SequenceRiskBucket reports ruin risk for one quintile of simulations,
// ranked by the mean of their first (up to ten) simulated years of annual
// real returns.
type SequenceRiskBucket struct {
	Label           string  `json:"label"`
	RuinProbability float64 `json:"ruinProbability"`
	EndingMedian    float64 `json:"endingMedian"`
	Count           int     `json:"count"`
}

// RuinCell is one (spending multiplier, retirement age) cell of the ruin
// surface.
type RuinCell struct {
	SpendingMultiplier float64 `json:"spendingMultiplier"`
	RetirementAge      int     `json:"retirementAge"`
	RuinProbability    float64 `json:"ruinProbability"`
}

// Stats is the scalar/statistical half of a run's result.
type Stats struct {
	FiTarget            float64              `json:"fiTarget"`
	FiTargetSwr         float64              `json:"fiTargetSwr"`
	FiTargetP95         float64              `json:"fiTargetP95"`
	SuccessProbability  float64              `json:"successProbability"`
	FiProbabilitySwr    float64              `json:"fiProbabilitySwr"`
	FiProbabilityP95    float64              `json:"fiProbabilityP95"`
	ReturnMoments       ReturnMoments        `json:"returnMoments"`
	SequenceRisk        []SequenceRiskBucket `json:"sequenceRisk"`
	RuinSurface         []RuinCell           `json:"ruinSurface"`
	Shortfall           LowMedianHigh        `json:"shortfall"`
	DepletedYears       LowMedianHigh        `json:"depletedYears"`
	Retire              LowMedianHigh        `json:"retire"`
	Final               LowMedianHigh        `json:"final"`
}

// Result is the top-level return value of RunMonteCarlo.
type Result struct {
	RunID      string     `json:"runId"`
	Simulation Simulation `json:"simulation"`
	Stats      Stats      `json:"stats"`
	SimCount   int        `json:"simCount"`
}
