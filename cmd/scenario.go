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

	"github.com/penny-vault/retirement-mc/montecarlo"
	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk shape of a household's retirement plan: the
// montecarlo engine inputs plus the cashflow schedule RunMonteCarlo needs
// alongside them.
type Scenario struct {
	Input           montecarlo.RetirementInput   `yaml:"input"`
	SpendingPeriods []montecarlo.SpendingPeriod `yaml:"spendingPeriods"`
	IncomeSources   []montecarlo.IncomeSource   `yaml:"incomeSources"`
	LumpSumEvents   []montecarlo.LumpSumEvent   `yaml:"lumpSumEvents"`
}

// loadScenario reads and decodes a YAML scenario file from path.
func loadScenario(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()

	var sc Scenario
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario file: %w", err)
	}
	return sc, nil
}
