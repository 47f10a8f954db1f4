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
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/penny-vault/pv-stress/scenario"
)

const (
	MaxWeight = 100.0
)

// Allocation maps an asset class to its portfolio weight. Raw allocations hold percentages in
// [0, 100]; normalized allocations hold fractions that sum to 1.
type Allocation map[string]float64

// defaultWeights mirror the initial slider positions offered to users
var defaultWeights = map[string]float64{
	scenario.Stocks: 30,
	scenario.Bonds:  40,
	scenario.Gold:   30,
}

// DefaultAllocation returns the starting raw allocation for the given assets: Stocks 30,
// Bonds 40, Gold 30 and 0 for everything else
func DefaultAllocation(assets []string) Allocation {
	alloc := make(Allocation, len(assets))
	for _, asset := range assets {
		alloc[asset] = defaultWeights[asset]
	}
	return alloc
}

// Sum returns the total weight of the allocation
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, w := range a {
		total += w
	}
	return total
}

// Assets returns the asset names of the allocation in sorted order
func (a Allocation) Assets() []string {
	assets := make([]string, 0, len(a))
	for asset := range a {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Validate checks that every raw weight is a number in [0, 100]
func (a Allocation) Validate() error {
	for _, asset := range a.Assets() {
		w := a[asset]
		if math.IsNaN(w) || w < 0 || w > MaxWeight {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeight, asset, w)
		}
	}
	return nil
}

// Normalize scales raw weights so they sum to 1. When the total weight is 0 the weights are
// returned unchanged (all zero), which yields a portfolio return of 0 in every period. The
// input is never modified.
func Normalize(raw Allocation) Allocation {
	total := raw.Sum()
	normalized := make(Allocation, len(raw))
	for asset, w := range raw {
		if total > 0 {
			normalized[asset] = w / total
		} else {
			normalized[asset] = w
		}
	}
	return normalized
}

// ParseWeights parses weights given as `Asset=percent`, e.g. "Stocks=60"
func ParseWeights(items []string) (Allocation, error) {
	alloc := make(Allocation, len(items))
	for _, item := range items {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedWeight, item)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedWeight, item)
		}

		alloc[strings.TrimSpace(parts[0])] = weight
	}
	return alloc, nil
}
