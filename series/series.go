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

// Package series builds the synthetic monthly return table that encodes every historical
// stress event in a scenario catalog.
package series

import (
	"sync"
	"time"

	"github.com/penny-vault/pv-stress/dataframe"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/rs/zerolog/log"
)

var (
	// DefaultBegin and DefaultEnd bound the historical range covered by the synthetic series
	DefaultBegin = time.Date(1987, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultEnd   = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

var (
	defaultSeries     *dataframe.DataFrame
	defaultSeriesOnce sync.Once
)

// Builder constructs shock and cumulative return tables for a catalog over a month-end axis
type Builder struct {
	Catalog *scenario.Catalog
	Begin   time.Time
	End     time.Time
}

// NewBuilder creates a builder covering the default historical range
func NewBuilder(catalog *scenario.Catalog) *Builder {
	return &Builder{
		Catalog: catalog,
		Begin:   DefaultBegin,
		End:     DefaultEnd,
	}
}

// Shocks returns the per-period shock of every asset class. Outside of an event window the
// shock is 0. Within a window every period receives the full event shock; when two windows
// overlap for the same asset the event registered last wins.
func (b *Builder) Shocks() *dataframe.DataFrame {
	dates := dataframe.MonthEnds(b.Begin, b.End)
	shocks := dataframe.New(dates, b.Catalog.AssetClasses()...)

	for _, event := range b.Catalog.Events() {
		for rowIdx, dt := range dates {
			if !event.Contains(dt) {
				continue
			}
			for _, shock := range event.Shocks {
				colIdx := shocks.ColIndex(shock.Asset)
				shocks.Vals[colIdx][rowIdx] = shock.Value
			}
		}
	}

	return shocks
}

// Build returns the cumulative return of every asset class relative to the start of the
// range, ∏(1 + shock_i) - 1, together with the catalog it was built from
func (b *Builder) Build() (*dataframe.DataFrame, *scenario.Catalog) {
	start := time.Now()
	cumulative := b.Shocks().CumulativeReturn()
	log.Debug().
		Time("Begin", b.Begin).
		Time("End", b.End).
		Int("NumPeriods", cumulative.Len()).
		Int("NumAssets", cumulative.ColCount()).
		Dur("Elapsed", time.Since(start)).
		Msg("built cumulative return series")
	return cumulative, b.Catalog
}

// Default returns the cumulative return series of the built-in catalog over the default range.
// The series is computed once per process; each caller receives its own copy.
func Default() *dataframe.DataFrame {
	defaultSeriesOnce.Do(func() {
		defaultSeries, _ = NewBuilder(scenario.Default()).Build()
	})
	return defaultSeries.Copy()
}
