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

// Package historical loads historical return series from CSV so a
// RetirementInput can be calibrated against observed market history instead
// of the parametric regime model.
package historical

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/rocketlaunchr/dataframe-go/imports"
)

// Series is one named annual or monthly return column loaded from a CSV
// history file, expressed as fractional returns (0.07 for 7%), not prices.
type Series struct {
	Name    string
	Returns []float64
}

// LoadReturnSeries reads a CSV with a header row and one return column
// (named by column) from r, returning the parsed returns in file order.
// Rows that fail to parse as a float are reported via the returned error
// rather than silently skipped, since a bad row usually means the wrong
// column was requested.
func LoadReturnSeries(ctx context.Context, r io.Reader, column string) (Series, error) {
	df, err := imports.LoadFromCSV(ctx, r, imports.CSVLoadOptions{
		DictateDataType: map[string]interface{}{
			column: float64(0),
		},
	})
	if err != nil {
		return Series{}, fmt.Errorf("historical: parsing csv: %w", err)
	}

	col, err := df.NameToColumn(column)
	if err != nil {
		return Series{}, fmt.Errorf("historical: column %q not found: %w", column, err)
	}
	series := df.Series[col]

	n := series.NRows()
	returns := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		val := series.Value(i)
		f, ok := val.(float64)
		if !ok {
			return Series{}, fmt.Errorf("historical: row %d of column %q is not numeric: %v", i, column, val)
		}
		if math.IsNaN(f) {
			continue
		}
		returns = append(returns, f)
	}

	return Series{Name: column, Returns: returns}, nil
}

// PricesToReturns converts a series of period-end prices/index levels into
// fractional period returns, the form the engine's regime detector and
// bootstrap pools expect.
func PricesToReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			returns[i-1] = 0
			continue
		}
		returns[i-1] = prices[i]/prev - 1
	}
	return returns
}

// MonthlyToAnnual compounds a monthly return series into calendar-year
// (12-month block) annual returns, dropping any trailing partial year.
func MonthlyToAnnual(monthly []float64) []float64 {
	years := len(monthly) / 12
	annual := make([]float64, years)
	for y := 0; y < years; y++ {
		prod := 1.0
		for m := 0; m < 12; m++ {
			prod *= 1 + monthly[y*12+m]
		}
		annual[y] = prod - 1
	}
	return annual
}
