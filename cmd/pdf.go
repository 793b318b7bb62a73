// Copyright 2021-2023
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

package cmd

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/penny-vault/retirement-mc/montecarlo"
)

// writePDFReport writes the tabular statistics summary (laid out with
// maroto's row/column grid) to path, and the balance-percentile chart
// (drawn with fpdf's line-drawing primitives, which maroto doesn't expose)
// to a sibling "-chart.pdf" file next to it.
func writePDFReport(result montecarlo.Result, path string) error {
	if err := writeSummaryPDF(result, path); err != nil {
		return fmt.Errorf("writing summary report: %w", err)
	}

	chartPath := chartPathFor(path)
	if err := writePercentileChartPDF(result, chartPath); err != nil {
		return fmt.Errorf("writing percentile chart: %w", err)
	}

	return nil
}

func chartPathFor(path string) string {
	if strings.HasSuffix(path, ".pdf") {
		return strings.TrimSuffix(path, ".pdf") + "-chart.pdf"
	}
	return path + "-chart.pdf"
}

// writeSummaryPDF renders the run's headline statistics as a one-page
// maroto document.
func writeSummaryPDF(result montecarlo.Result, path string) error {
	m := maroto.New(config.NewBuilder().
		WithPageSize("A4").
		WithMargins(10, 15, 10).
		Build())

	m.AddRow(12, text.NewCol(12, "Retirement Monte Carlo Report", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))

	m.AddRow(8, text.NewCol(12, fmt.Sprintf("Run %s  -  %d simulations", result.RunID, result.SimCount), props.Text{
		Size:  9,
		Align: align.Center,
	}))

	summaryRows := [][2]string{
		{"Success probability", formatPct(result.Stats.SuccessProbability)},
		{"FI target", formatDollars(result.Stats.FiTarget)},
		{"FI target (SWR)", formatDollars(result.Stats.FiTargetSwr)},
		{"FI target (p95)", formatDollars(result.Stats.FiTargetP95)},
		{"Retirement balance (median)", formatDollars(result.Stats.Retire.Median)},
		{"Final balance (median)", formatDollars(result.Stats.Final.Median)},
	}
	for _, r := range summaryRows {
		m.AddRow(7,
			text.NewCol(7, r[0], props.Text{Size: 10}),
			text.NewCol(5, r[1], props.Text{Size: 10, Align: align.Right}),
		)
	}

	m.AddRow(2, row.New(2))

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating maroto document: %w", err)
	}
	return doc.Save(path)
}

// writePercentileChartPDF draws the p10/p50/p90 balance bands as a simple
// line chart.
func writePercentileChartPDF(result montecarlo.Result, path string) error {
	pdf := fpdf.New("L", "mm", "A5", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(10, 8, "Balance percentiles over time (p10 red / p50 gray / p90 green)")

	p := result.Simulation.Percentiles
	if len(p.P50) == 0 {
		pdf.Text(10, 20, "no data")
		return pdf.OutputFileAndClose(path)
	}

	maxVal := p.P90[0]
	for _, v := range p.P90 {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	const chartW, chartH = 190.0, 100.0
	const originX, originY = 10.0, 15.0

	plot := func(series []float64, r, g, b int) {
		pdf.SetDrawColor(r, g, b)
		n := len(series)
		for i := 1; i < n; i++ {
			x0 := originX + chartW*float64(i-1)/float64(n-1)
			y0 := originY + chartH*(1-series[i-1]/maxVal)
			x1 := originX + chartW*float64(i)/float64(n-1)
			y1 := originY + chartH*(1-series[i]/maxVal)
			pdf.Line(x0, y0, x1, y1)
		}
	}

	plot(p.P10, 200, 80, 80)
	plot(p.P50, 40, 40, 40)
	plot(p.P90, 80, 160, 80)

	return pdf.OutputFileAndClose(path)
}
