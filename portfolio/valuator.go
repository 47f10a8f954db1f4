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

package portfolio

import (
	"github.com/penny-vault/pv-stress/dataframe"
	"github.com/penny-vault/pv-stress/scenario"
)

const (
	// ValueColumn is the name of the single column of a portfolio path
	ValueColumn = "Portfolio Value"

	// BaseValue is the portfolio value on the first date of the series
	BaseValue = 100.0
)

// Contribution is the share of an asset class in the portfolio return at the end of an event
type Contribution struct {
	Asset            string  `json:"asset" msgpack:"asset"`
	Weight           float64 `json:"weight" msgpack:"weight"`
	Shock            float64 `json:"shock" msgpack:"shock"`
	CumulativeReturn float64 `json:"cumulativeReturn" msgpack:"cumulativeReturn"`
	Contribution     float64 `json:"contribution" msgpack:"contribution"`
}

// ComputePath values the portfolio on every date of the cumulative return series. The first
// value is BaseValue; every following value compounds the previous one by the weighted
// cumulative return of that period:
//
//	value(t) = value(t-1) * (1 + Σ weight[a] * cumulativeReturn(a, t))
//
// The growth factor is the weighted return since the origin of the series, not the return of
// the period itself. Assets in weights without a column in returns contribute 0.
func ComputePath(returns *dataframe.DataFrame, weights Allocation) *dataframe.DataFrame {
	path := dataframe.New(returns.Dates, ValueColumn)
	if returns.Len() == 0 {
		return path
	}

	type weightedCol struct {
		colIdx int
		weight float64
	}

	// sorted asset order keeps the floating point summation deterministic
	cols := make([]weightedCol, 0, len(weights))
	for _, asset := range weights.Assets() {
		if colIdx := returns.ColIndex(asset); colIdx != -1 {
			cols = append(cols, weightedCol{colIdx: colIdx, weight: weights[asset]})
		}
	}

	values := path.Vals[0]
	values[0] = BaseValue
	for rowIdx := 1; rowIdx < returns.Len(); rowIdx++ {
		periodReturn := 0.0
		for _, col := range cols {
			periodReturn += col.weight * returns.Vals[col.colIdx][rowIdx]
		}
		values[rowIdx] = values[rowIdx-1] * (1 + periodReturn)
	}

	return path
}

// Contributions computes weight * cumulativeReturn(asset, last date of the event window) for
// every weighted asset present in returns, in column order, along with the monthly shock the
// event applies to the asset (0 when unaffected). An event window without any rows in returns
// has no contributions.
func Contributions(returns *dataframe.DataFrame, weights Allocation, event scenario.Event) []Contribution {
	contributions := make([]Contribution, 0, len(weights))

	window := returns.TrimMonths(event.StartDate, event.EndDate)
	if window.Len() == 0 {
		return contributions
	}

	lastRow := window.Len() - 1
	for colIdx, asset := range window.ColNames {
		weight, ok := weights[asset]
		if !ok {
			continue
		}

		cumReturn := window.Vals[colIdx][lastRow]
		shock, _ := event.Shock(asset)
		contributions = append(contributions, Contribution{
			Asset:            asset,
			Weight:           weight,
			Shock:            shock,
			CumulativeReturn: cumReturn,
			Contribution:     weight * cumReturn,
		})
	}

	return contributions
}
