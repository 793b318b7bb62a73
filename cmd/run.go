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

	"github.com/goccy/go-json"
	"github.com/penny-vault/retirement-mc/montecarlo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	runScenarioFile string
	runJSONOut      bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runScenarioFile, "scenario", "s", "scenario.yaml", "scenario YAML file describing the household plan")
	runCmd.Flags().BoolVar(&runJSONOut, "json", false, "print the raw result as JSON instead of a summary table")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a Monte Carlo retirement simulation",
	Long:  `Run loads a scenario file, drives the simulation engine, and prints either a summary table or raw JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(runScenarioFile)
		if err != nil {
			return err
		}

		result, err := runScenario(sc, true)
		if err != nil {
			return err
		}

		if runJSONOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResultTable(result)
		fmt.Println()
		printPercentileChart(result)
		return nil
	},
}

// runScenario drives RunMonteCarlo for a decoded Scenario, logging
// terse progress at the info level when verbose is true.
func runScenario(sc Scenario, verbose bool) (montecarlo.Result, error) {
	var progress montecarlo.ProgressSink
	if verbose {
		progress = func(pct int) {
			log.Info().Int("percent", pct).Msg("simulation progress")
		}
	}

	result, err := montecarlo.RunMonteCarlo(sc.Input, sc.SpendingPeriods, sc.IncomeSources, sc.LumpSumEvents, progress)
	if err != nil {
		return montecarlo.Result{}, fmt.Errorf("running simulation: %w", err)
	}

	log.Info().EmbedObject(result).Msg("simulation complete")
	return result, nil
}
