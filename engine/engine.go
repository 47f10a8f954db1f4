// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package engine is the entry point for stress testing a portfolio against the built-in
// catalog of historical events. Every function is safe for concurrent use.
package engine

import (
	"time"

	"github.com/penny-vault/pv-stress/dataframe"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/penny-vault/pv-stress/series"
	"github.com/rs/zerolog/log"
)

// Result is the outcome of stress testing an allocation against a single event
type Result struct {
	Event         scenario.Event           `json:"event" msgpack:"event"`
	Allocation    portfolio.Allocation     `json:"allocation" msgpack:"allocation"`
	Path          *dataframe.DataFrame     `json:"path" msgpack:"path"`
	Window        *dataframe.DataFrame     `json:"window" msgpack:"window"`
	Contributions []portfolio.Contribution `json:"contributions" msgpack:"contributions"`
	Risk          portfolio.RiskSummary    `json:"risk" msgpack:"risk"`
}

// ListEvents returns the names of the built-in events in their fixed order
func ListEvents() []string {
	return scenario.Default().ListEvents()
}

// Events returns every built-in event in its fixed order
func Events() []scenario.Event {
	return scenario.Default().Events()
}

// GetEvent looks up a built-in event by name
func GetEvent(name string) (scenario.Event, error) {
	return scenario.Default().GetEvent(name)
}

// AvailableAssets returns the assets that may be weighted when testing the named event
func AvailableAssets(name string) ([]string, error) {
	return scenario.Default().AvailableAssets(name)
}

// BuildReturnSeries returns the cumulative return series of every asset class in the built-in
// catalog. The series is computed once; repeated calls return equal copies.
func BuildReturnSeries() *dataframe.DataFrame {
	return series.Default()
}

// NormalizeAllocation scales raw percentage weights so they sum to 1
func NormalizeAllocation(raw portfolio.Allocation) portfolio.Allocation {
	return portfolio.Normalize(raw)
}

// ComputePortfolioPath values a portfolio with normalized weights on every date of returns
func ComputePortfolioPath(returns *dataframe.DataFrame, weights portfolio.Allocation) *dataframe.DataFrame {
	return portfolio.ComputePath(returns, weights)
}

// SummarizeRisk computes draw down and volatility of the path between windowStart and windowEnd
func SummarizeRisk(path *dataframe.DataFrame, windowStart, windowEnd time.Time) portfolio.RiskSummary {
	return portfolio.SummarizeRisk(path, windowStart, windowEnd)
}

// Run stress tests the raw allocation against the named event: the weights are validated and
// normalized, the portfolio is valued over the full series, and contributions and risk are
// computed over the event window.
func Run(eventName string, raw portfolio.Allocation) (*Result, error) {
	event, err := GetEvent(eventName)
	if err != nil {
		return nil, err
	}

	if err := raw.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	weights := NormalizeAllocation(raw)
	returns := BuildReturnSeries()
	path := ComputePortfolioPath(returns, weights)

	result := &Result{
		Event:         event,
		Allocation:    weights,
		Path:          path,
		Window:        path.TrimMonths(event.StartDate, event.EndDate).Copy(),
		Contributions: portfolio.Contributions(returns, weights, event),
		Risk:          SummarizeRisk(path, event.StartDate, event.EndDate),
	}

	log.Debug().
		Str("Event", event.Name).
		Float64("MaxDrawDown", result.Risk.MaxDrawDown).
		Float64("AnnualizedVolatility", result.Risk.AnnualizedVolatility).
		Dur("Elapsed", time.Since(start)).
		Msg("stress test complete")

	return result, nil
}
