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
	"math"
	"time"

	"github.com/penny-vault/pv-stress/dataframe"
	"gonum.org/v1/gonum/stat"
)

// AnnualizationFactor converts the standard deviation of periodic returns to an annual figure.
// The trading day convention is applied even though the synthetic series is monthly.
var AnnualizationFactor = math.Sqrt(252)

// RiskSummary holds the risk statistics of a portfolio over an event window
type RiskSummary struct {
	MaxDrawDown          float64 `json:"maxDrawDown" msgpack:"maxDrawDown"`
	AnnualizedVolatility float64 `json:"annualizedVolatility" msgpack:"annualizedVolatility"`
}

// SummarizeRisk restricts the portfolio path to the months between windowStart and windowEnd
// (inclusive) and computes the maximum draw down and annualized volatility of that segment.
// Windows with fewer than 2 values, or holding a value that is not finite, have no risk and
// both statistics are 0.
func SummarizeRisk(path *dataframe.DataFrame, windowStart, windowEnd time.Time) RiskSummary {
	values := path.Window(ValueColumn, windowStart, windowEnd)
	if len(values) < 2 {
		return RiskSummary{}
	}

	return RiskSummary{
		MaxDrawDown:          MaxDrawDown(values),
		AnnualizedVolatility: AnnualizedVolatility(values),
	}
}

// MaxDrawDown computes the largest decline from a running peak, (value - peak) / peak, over
// the values. The result is always <= 0 and is 0 for a non-decreasing series. Points whose peak
// is 0 have no draw down. A series holding NaN or ±Inf has no measurable draw down and yields 0.
func MaxDrawDown(values []float64) float64 {
	if len(values) == 0 || !allFinite(values) {
		return 0
	}

	maxDrawDown := 0.0
	peak := values[0]
	for _, value := range values {
		peak = math.Max(peak, value)
		if peak == 0 {
			continue
		}
		maxDrawDown = math.Min(maxDrawDown, (value-peak)/peak)
	}

	return maxDrawDown
}

// AnnualizedVolatility computes the sample standard deviation of the period over period change
// of values scaled by AnnualizationFactor. Fewer than 2 changes, or any value that is not
// finite, yield 0.
func AnnualizedVolatility(values []float64) float64 {
	if !allFinite(values) {
		return 0
	}

	rets := periodReturns(values)
	if len(rets) < 2 {
		return 0
	}

	vol := stat.StdDev(rets, nil) * AnnualizationFactor
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0
	}
	return vol
}

func allFinite(values []float64) bool {
	for _, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}

// periodReturns computes the fractional change from the previous value; a change from a zero
// value is 0
func periodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	rets := make([]float64, len(values)-1)
	for idx := 1; idx < len(values); idx++ {
		if values[idx-1] == 0 {
			continue
		}
		rets[idx-1] = values[idx]/values[idx-1] - 1
	}

	return rets
}
