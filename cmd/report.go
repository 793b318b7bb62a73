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
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/retirement-mc/montecarlo"
	"github.com/spf13/cobra"
)

var (
	reportScenarioFile string
	reportPDFOut       string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportScenarioFile, "scenario", "s", "scenario.yaml", "scenario YAML file describing the household plan")
	reportCmd.Flags().StringVar(&reportPDFOut, "pdf", "", "also write a PDF report to this path")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a simulation and print a formatted report",
	Long:  `Report runs a simulation and renders a stats table and a percentile chart, optionally also writing a PDF report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(reportScenarioFile)
		if err != nil {
			return err
		}

		result, err := runScenario(sc, false)
		if err != nil {
			return err
		}

		printResultTable(result)
		fmt.Println()
		printPercentileChart(result)

		if reportPDFOut != "" {
			if err := writePDFReport(result, reportPDFOut); err != nil {
				return fmt.Errorf("writing pdf report: %w", err)
			}
			fmt.Printf("\nPDF report written to %s\n", reportPDFOut)
		}

		return nil
	},
}

// printResultTable renders the headline statistics of a run as an ASCII
// table.
func printResultTable(result montecarlo.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)

	rows := [][]string{
		{"Run ID", result.RunID},
		{"Simulations", strconv.Itoa(result.SimCount)},
		{"Success probability", formatPct(result.Stats.SuccessProbability)},
		{"FI target", formatDollars(result.Stats.FiTarget)},
		{"FI target (SWR)", formatDollars(result.Stats.FiTargetSwr)},
		{"FI target (p95)", formatDollars(result.Stats.FiTargetP95)},
		{"Retirement balance (median)", formatDollars(result.Stats.Retire.Median)},
		{"Final balance (median)", formatDollars(result.Stats.Final.Median)},
		{"Shortfall (median)", formatDollars(result.Stats.Shortfall.Median)},
		{"Annual real return (mean)", formatPct(result.Stats.ReturnMoments.Mean)},
		{"Annual real return (std)", formatPct(result.Stats.ReturnMoments.Std)},
	}
	table.AppendBulk(rows)
	table.Render()

	if len(result.Stats.SequenceRisk) > 0 {
		fmt.Println()
		riskTable := tablewriter.NewWriter(os.Stdout)
		riskTable.SetHeader([]string{"Sequence bucket", "Ruin probability", "Ending median", "Count"})
		for _, b := range result.Stats.SequenceRisk {
			riskTable.Append([]string{
				b.Label,
				formatPct(b.RuinProbability),
				formatDollars(b.EndingMedian),
				strconv.Itoa(b.Count),
			})
		}
		riskTable.Render()
	}
}

// printPercentileChart renders the p10/p50/p90 balance trajectory as a
// terminal line chart.
func printPercentileChart(result montecarlo.Result) {
	p := result.Simulation.Percentiles
	if len(p.P50) == 0 {
		return
	}

	graph := asciigraph.PlotMany(
		[][]float64{p.P10, p.P50, p.P90},
		asciigraph.Height(15),
		asciigraph.Caption("Balance percentiles over time (p10 / p50 / p90)"),
	)
	fmt.Println(graph)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func formatDollars(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
