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

package scenario

import (
	"fmt"
	"math"
	"time"

	"github.com/penny-vault/pv-stress/dataframe"
)

// Shock is the fractional return applied to an asset class in every period of an event window
type Shock struct {
	Asset string  `json:"asset" msgpack:"asset"`
	Value float64 `json:"value" msgpack:"value"`
}

// Event is a named historical stress episode. Shocks are kept in definition order.
type Event struct {
	Name      string    `json:"name" msgpack:"name"`
	StartDate time.Time `json:"startDate" msgpack:"startDate"`
	EndDate   time.Time `json:"endDate" msgpack:"endDate"`
	Shocks    []Shock   `json:"shocks" msgpack:"shocks"`
}

// Contains reports whether t falls inside the event window. Data is monthly so the window
// covers every month from the start month through the end month.
func (e Event) Contains(t time.Time) bool {
	return dataframe.InMonthRange(t, e.StartDate, e.EndDate)
}

// Shock returns the shock for asset and whether the event affects it
func (e Event) Shock(asset string) (float64, bool) {
	for _, s := range e.Shocks {
		if s.Asset == asset {
			return s.Value, true
		}
	}
	return 0, false
}

// Assets returns the asset classes affected by the event in definition order
func (e Event) Assets() []string {
	assets := make([]string, len(e.Shocks))
	for idx, s := range e.Shocks {
		assets[idx] = s.Asset
	}
	return assets
}

// Validate checks that the event is well formed
func (e Event) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}

	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: %s (%s - %s)", ErrInvalidWindow, e.Name, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	}

	seen := make(map[string]bool, len(e.Shocks))
	for _, s := range e.Shocks {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value < -1 {
			return fmt.Errorf("%w: %s/%s = %f", ErrInvalidShock, e.Name, s.Asset, s.Value)
		}
		if s.Asset == "" || seen[s.Asset] {
			return fmt.Errorf("%w: %s has an empty or repeated asset %q", ErrInvalidShock, e.Name, s.Asset)
		}
		seen[s.Asset] = true
	}

	return nil
}

func (e Event) clone() Event {
	shocks := make([]Shock, len(e.Shocks))
	copy(shocks, e.Shocks)
	e.Shocks = shocks
	return e
}
