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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/penny-vault/retirement-mc/montecarlo"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort string

// accessLog is a dedicated logrus logger for HTTP access logging, kept
// separate from the zerolog logger the rest of the engine reports
// simulation progress and results through -- request-line access logs and
// structured simulation events have different consumers and don't belong
// in the same stream.
var accessLog = logrus.New()

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "port to listen on")
	accessLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// requestLogger logs one line per request via logrus: method, path, status,
// and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		accessLog.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation engine over HTTP",
	Long:  `Serve exposes POST /simulate, accepting a Scenario as JSON and returning a Result as JSON -- a minimal demo surface for driving the engine from a host application.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Use(requestLogger)

		r.Get("/healthz", handleHealthz)
		r.Post("/simulate", handleSimulate)

		addr := ":" + servePort
		log.Info().Str("addr", addr).Msg("listening")
		return http.ListenAndServe(addr, r)
	},
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// simulateRequest mirrors Scenario's shape so the HTTP body and a scenario
// file can be decoded by the same types.
type simulateRequest struct {
	Input           montecarlo.RetirementInput   `json:"input"`
	SpendingPeriods []montecarlo.SpendingPeriod `json:"spendingPeriods"`
	IncomeSources   []montecarlo.IncomeSource   `json:"incomeSources"`
	LumpSumEvents   []montecarlo.LumpSumEvent   `json:"lumpSumEvents"`
}

func handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := montecarlo.RunMonteCarlo(req.Input, req.SpendingPeriods, req.IncomeSources, req.LumpSumEvents, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("encoding simulate response")
	}
}
