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

const (
	defaultBlockLength     = 6
	defaultInflationSpread = 0.015
	defaultStayGrowth      = 0.92
	defaultStayCrisis      = 0.55

	minAnnualHistoryLen  = 25
	minMonthlyHistoryLen = 120

	// parametricHistoryYears is the fixed length of the synthesized annual
	// bootstrap source used whenever historical bootstrap is disabled or the
	// supplied history is too short.
	parametricHistoryYears = 120
)

// simSetup is computed once per run and shared, read-only, across every
// simulation path -- the expensive parts (regime detection, pool
// construction, cashflow expansion) do not belong inside the per-sim loop.
type simSetup struct {
	months      int
	retireMonth int

	useMonthlyCalibration bool
	// pureParametric is true only when neither historical bootstrap mode
	// (annual or monthly) is active -- i.e. the annual history itself came
	// from generateParametricHistory rather than the host. It gates the
	// stress overlay in the per-month loop.
	pureParametric bool
	blockLength    int

	annualHistory []float64
	annualPools   valuePool

	monthlyHistory []float64
	monthlyPools   indexPool

	stayGrowth float64
	stayCrisis float64

	inflationGrowthMean float64
	inflationCrisisMean float64
	inflationStd        float64
	inflationSkew float64
	inflationKurt float64

	growthMean  float64
	growthStd   float64
	crisisMean  float64
	crisisStd   float64
	returnSkew  float64
	returnKurt  float64

	feeRate         float64
	taxRate         float64
	monthlyFeeFactor float64

	currentSavings float64

	monthlyNetFlow []float64
	lumpSumByMonth []float64
}

// regimeMoments resolves the growth/crisis (mean, std) pair used by the
// parametric history generator and the per-month stress overlay: the
// host-supplied regime params when a std is given, else regimes derived from
// the overall return moments. A safety floor keeps crisisStd meaningfully
// above growthStd even when the host supplies degenerate values.
func regimeMoments(input RetirementInput) (growthMean, growthStd, crisisMean, crisisStd float64) {
	growthMean = input.Regime.GrowthMean
	growthStd = input.Regime.GrowthStd
	crisisMean = input.Regime.CrisisMean
	crisisStd = input.Regime.CrisisStd

	if growthStd <= 0 && crisisStd <= 0 {
		growthMean = input.ReturnMoments.Mean
		growthStd = input.ReturnMoments.Variability
		crisisMean = input.ReturnMoments.Mean - 2*input.ReturnMoments.Variability
		crisisStd = input.ReturnMoments.Variability * 1.5
	}

	if growthStd < 0.01 {
		growthStd = 0.01
	}
	if crisisStd < growthStd+0.01 {
		crisisStd = growthStd + 0.01
	}
	return growthMean, growthStd, crisisMean, crisisStd
}

// filterFiniteAndClampMonthly drops non-finite entries from a host-supplied
// monthly history and clamps the rest, per the per-element data-quality
// guard the historical calibration path requires.
func filterFiniteAndClampMonthly(history []float64) []float64 {
	out := make([]float64, 0, len(history))
	for _, v := range history {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, clampMonthly(v))
	}
	return out
}

// buildSimSetup prepares the shared, per-run state consumed by every
// simulated path: effective return history (the host's historical series
// when long enough, else a synthesized parametric one), regime labels and
// bootstrap pools over that history, monthly Markov stays, the inflation
// regime split, and the expanded monthly cashflow schedule.
func buildSimSetup(input RetirementInput, periods []SpendingPeriod, incomes []IncomeSource, lumps []LumpSumEvent, r *Rand) simSetup {
	months := int(math.Round((input.SimulateUntilAge - input.CurrentAge) * 12))
	if months < 1 {
		months = 1
	}
	retireMonth := int(math.Round((input.RetirementAge - input.CurrentAge) * 12))
	if retireMonth < 0 {
		retireMonth = 0
	}
	if retireMonth > months {
		retireMonth = months
	}

	setup := simSetup{
		months:         months,
		retireMonth:    retireMonth,
		currentSavings: input.CurrentSavings,
		feeRate:        clamp(input.AnnualFeeRate, 0, 1),
		taxRate:        clamp(input.GainTaxRate, 0, 1),
	}
	setup.monthlyFeeFactor = math.Max(0, 1-setup.feeRate/12)

	setup.blockLength = input.BlockLength
	if setup.blockLength < 1 {
		setup.blockLength = defaultBlockLength
	}

	// Effective monthly history: only ever populated in historical mode, and
	// only ever used for calibration once it clears the minimum length.
	var monthlyHistory []float64
	if input.Mode == Historical {
		monthlyHistory = filterFiniteAndClampMonthly(input.HistoricalMonthly)
		if input.MomentTarget && len(monthlyHistory) > 0 {
			monthlyHistory = applyMomentTargeting(monthlyHistory, input.ReturnMoments.Mean/12, input.ReturnMoments.Variability/math.Sqrt(12))
			for i, v := range monthlyHistory {
				monthlyHistory[i] = clampMonthly(v)
			}
		}
	}
	setup.useMonthlyCalibration = len(monthlyHistory) >= minMonthlyHistoryLen

	// Effective annual history: the host's series when long enough, else a
	// synthesized one -- built regardless of calibration mode, since annual
	// pools back the non-monthly-calibration return draw either way.
	var annualHistory []float64
	historicalAnnualUsed := false
	if input.Mode == Historical && len(input.HistoricalAnnual) >= minAnnualHistoryLen {
		annualHistory = append([]float64(nil), input.HistoricalAnnual...)
		historicalAnnualUsed = true
	} else {
		annualHistory = generateParametricHistory(input, parametricHistoryYears, r)
	}
	if input.MomentTarget {
		annualHistory = applyMomentTargeting(annualHistory, input.ReturnMoments.Mean, input.ReturnMoments.Variability)
	}
	for i, v := range annualHistory {
		annualHistory[i] = clampAnnual(v)
	}
	setup.pureParametric = !historicalAnnualUsed && !setup.useMonthlyCalibration

	annualLabels := detectAnnualRegimes(annualHistory)
	setup.annualHistory = annualHistory
	setup.annualPools = buildValuePools(annualHistory, annualLabels)

	if setup.useMonthlyCalibration {
		monthlyLabels := detectMonthlyRegimes(monthlyHistory)
		setup.monthlyHistory = monthlyHistory
		setup.monthlyPools = buildIndexPools(monthlyHistory, monthlyLabels)
		setup.stayGrowth, setup.stayCrisis = markovStays(monthlyLabels)
	} else {
		var annualStayGrowth, annualStayCrisis float64
		if input.Regime.StayGrowth > 0 && input.Regime.StayCrisis > 0 {
			annualStayGrowth = clampTransition(input.Regime.StayGrowth)
			annualStayCrisis = clampTransition(input.Regime.StayCrisis)
		} else {
			annualStayGrowth, annualStayCrisis = markovStays(annualLabels)
		}
		// Monthly Markov stays = (stayGrowth^(1/12), stayCrisis^(1/12)) when
		// calibration isn't already at monthly frequency.
		setup.stayGrowth = clampTransition(math.Pow(annualStayGrowth, 1.0/12))
		setup.stayCrisis = clampTransition(math.Pow(annualStayCrisis, 1.0/12))
	}
	if setup.stayGrowth == 0 {
		setup.stayGrowth = defaultStayGrowth
	}
	if setup.stayCrisis == 0 {
		setup.stayCrisis = defaultStayCrisis
	}

	// Inflation regime split: the crisis/growth inflation means diverge from
	// the household's expected mean in proportion to how much time is spent
	// in each regime, capped so the split can never imply a variance larger
	// than the host's own inflation variability.
	pg := stationaryGrowthProbability(setup.stayGrowth, setup.stayCrisis)
	pc := 1 - pg
	sReq := input.InflationCrisisSpread
	if sReq == 0 {
		sReq = defaultInflationSpread
	}
	inflVar := math.Max(0, input.InflationMoments.Variability)
	var sMax float64
	if pg*pc > 1e-9 {
		sMax = math.Sqrt(inflVar * inflVar / (pg * pc))
	}
	s := math.Min(sReq, 0.8*sMax)
	setup.inflationGrowthMean = input.InflationMoments.Mean - pc*s
	setup.inflationCrisisMean = input.InflationMoments.Mean + pg*s
	setup.inflationStd = inflVar
	setup.inflationSkew = input.InflationMoments.Skewness
	setup.inflationKurt = input.InflationMoments.Kurtosis

	setup.growthMean, setup.growthStd, setup.crisisMean, setup.crisisStd = regimeMoments(input)
	setup.returnSkew = input.ReturnMoments.Skewness
	setup.returnKurt = input.ReturnMoments.Kurtosis

	setup.monthlyNetFlow, setup.lumpSumByMonth = buildCashflows(input, periods, incomes, lumps, months)

	return setup
}

// applyMomentTargeting shifts and rescales a return series so its mean and
// population standard deviation match (targetMean, targetStd), leaving
// its shape (skew, kurtosis, ordering) untouched. Applying it twice with the
// same targets is a no-op past the first pass, since the series already
// matches the targets.
func applyMomentTargeting(history []float64, targetMean, targetStd float64) []float64 {
	n := len(history)
	if n == 0 || targetStd <= 0 {
		return history
	}
	moments := computeReturnMoments(history)
	if moments.Std <= 1e-9 {
		out := make([]float64, n)
		for i := range out {
			out[i] = targetMean
		}
		return out
	}

	scale := targetStd / moments.Std
	out := make([]float64, n)
	for i, v := range history {
		out[i] = targetMean + (v-moments.Mean)*scale
	}
	return out
}

// generateParametricHistory synthesizes an annual bootstrap-source history
// from the regime model: a Markov chain over (Growth, Crisis) states, each
// emitting a Student-t draw (shifted by a skew term) from its own (mean,
// std), used whenever historical bootstrap is disabled or too short.
func generateParametricHistory(input RetirementInput, years int, r *Rand) []float64 {
	growthMean, growthStd, crisisMean, crisisStd := regimeMoments(input)

	stayGrowth := input.Regime.StayGrowth
	if stayGrowth <= 0 {
		stayGrowth = defaultStayGrowth
	}
	stayCrisis := input.Regime.StayCrisis
	if stayCrisis <= 0 {
		stayCrisis = defaultStayCrisis
	}
	stayGrowth = clampTransition(stayGrowth)
	stayCrisis = clampTransition(stayCrisis)

	pg := clampTransition(stationaryGrowthProbability(stayGrowth, stayCrisis))
	regime := Growth
	if r.Float64() >= pg {
		regime = Crisis
	}

	df := dfFromKurtosis(input.ReturnMoments.Kurtosis)
	skewShift := clamp(input.ReturnMoments.Skewness, -2, 2) * 0.12

	history := make([]float64, years)
	for i := 0; i < years; i++ {
		var mean, std float64
		if regime == Growth {
			mean, std = growthMean, growthStd
		} else {
			mean, std = crisisMean, crisisStd
		}
		t := studentTDraw(r, df)
		history[i] = clampAnnual(mean + std*(t+skewShift))

		u := r.Float64()
		if regime == Growth {
			if u >= stayGrowth {
				regime = Crisis
			}
		} else {
			if u >= stayCrisis {
				regime = Growth
			}
		}
	}
	return history
}

// simOutcome is the full trajectory and scalar summary of one simulated
// path.
type simOutcome struct {
	balances      []float64
	growthFactors []float64

	finalBalance   float64
	retireBalance  float64
	depleted       bool
	shortfall      float64
	depletedMonths int

	annualRealReturns []float64
}

// blockCursor tracks an in-progress monthly block-bootstrap draw: once a
// seed index is drawn from the regime pool, the following blockLength-1
// months replay contiguously from the source history rather than redrawing,
// which is what makes it a *block* bootstrap instead of an iid one.
type blockCursor struct {
	index     int
	remaining int
}

// runSingleSimulation drives one Monte Carlo path to completion, recording
// both the balance trajectory and the real (after-fee, after-tax,
// inflation-deflated) monthly growth-factor trajectory the ruin surface
// later replays under alternate cashflow schedules.
func runSingleSimulation(setup simSetup, r *Rand) simOutcome {
	out := simOutcome{
		balances:      make([]float64, setup.months),
		growthFactors: make([]float64, setup.months),
	}

	balance := setup.currentSavings

	pg := clampTransition(stationaryGrowthProbability(setup.stayGrowth, setup.stayCrisis))
	regime := Growth
	if r.Float64() >= pg {
		regime = Crisis
	}

	var cursor blockCursor
	var activeMonthlyReturn float64
	if !setup.useMonthlyCalibration && len(setup.annualHistory) > 0 {
		annual := setup.annualPools.sampleValue(r, regime)
		activeMonthlyReturn = math.Pow(1+clampAnnual(annual), 1.0/12) - 1
	}

	var annualAssetReturn, annualInflation float64

	for m := 0; m < setup.months; m++ {
		regimeChanged := m == 0
		if m > 0 {
			u := r.Float64()
			next := regime
			if regime == Growth {
				if u >= setup.stayGrowth {
					next = Crisis
				}
			} else {
				if u >= setup.stayCrisis {
					next = Growth
				}
			}
			regimeChanged = next != regime
			regime = next
		}

		var activeReturn float64
		switch {
		case setup.useMonthlyCalibration && len(setup.monthlyHistory) > 0:
			if cursor.remaining <= 0 || regimeChanged {
				cursor.index = setup.monthlyPools.sampleIndex(r, regime)
				cursor.remaining = setup.blockLength
			} else {
				cursor.index = (cursor.index + 1) % len(setup.monthlyHistory)
			}
			cursor.remaining--
			activeReturn = clampMonthly(setup.monthlyHistory[cursor.index])

		case len(setup.annualHistory) > 0:
			if m > 0 && m%12 == 0 {
				annual := setup.annualPools.sampleValue(r, regime)
				activeMonthlyReturn = math.Pow(1+clampAnnual(annual), 1.0/12) - 1
			}
			activeReturn = clampMonthly(activeMonthlyReturn)
		}

		if setup.pureParametric {
			var stressDrift, stressNoise float64
			if regime == Crisis {
				stressDrift = 0.1 * (setup.crisisMean - setup.growthMean)
				stressNoise = 0.08 * setup.crisisStd
			} else {
				stressNoise = 0.04 * setup.growthStd
			}
			activeReturn += drawMonthlyShaped(r, stressDrift, stressNoise, setup.returnSkew, setup.returnKurt)
		}

		afterTax := activeReturn
		if afterTax > 0 {
			afterTax *= 1 - setup.taxRate
		}
		growthFactor := (1 + afterTax) * setup.monthlyFeeFactor

		var regimeInflMean float64
		if regime == Crisis {
			regimeInflMean = setup.inflationCrisisMean
		} else {
			regimeInflMean = setup.inflationGrowthMean
		}
		monthlyInflation := drawMonthlyShaped(r, regimeInflMean, setup.inflationStd, setup.inflationSkew, setup.inflationKurt)

		annualAssetReturn = (1+annualAssetReturn)*growthFactor - 1
		annualInflation = (1+annualInflation)*(1+monthlyInflation) - 1

		inflDenom := 1 + monthlyInflation
		if inflDenom < 1e-9 {
			inflDenom = 1e-9
		}
		realGrowthFactor := growthFactor / inflDenom

		balance = (balance + setup.monthlyNetFlow[m] + setup.lumpSumByMonth[m]) * realGrowthFactor
		out.growthFactors[m] = realGrowthFactor
		if balance <= 0 {
			out.shortfall += math.Max(0, -balance)
			out.depleted = true
			balance = 0
		}

		if m%12 == 11 || m == setup.months-1 {
			annualReal := (1+annualAssetReturn)/math.Max(0.0001, 1+annualInflation) - 1
			out.annualRealReturns = append(out.annualRealReturns, annualReal)
			// Unconditional reset every 12 months regardless of calibration
			// mode -- see DESIGN.md "Open Question decisions".
			annualAssetReturn = 0
			annualInflation = 0
		}

		if balance == 0 {
			out.depletedMonths++
		}

		out.balances[m] = balance
	}

	out.finalBalance = out.balances[setup.months-1]

	retireIdx := setup.retireMonth - 1
	if retireIdx < 0 {
		retireIdx = 0
	}
	if retireIdx > setup.months-1 {
		retireIdx = setup.months - 1
	}
	out.retireBalance = out.balances[retireIdx]

	return out
}
