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
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	Stocks = "Stocks"
	Bonds  = "Bonds"
	Gold   = "Gold"
)

// BaselineAssets are always part of the asset universe, whether or not an event shocks them
var BaselineAssets = []string{Stocks, Bonds, Gold}

// Catalog is an immutable, ordered registry of historical events. Iteration order is the
// registration order, which also decides which event wins when two windows overlap.
type Catalog struct {
	events []Event
	index  map[string]int
	assets []string
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// NewCatalog validates the events and builds a catalog in the order given
func NewCatalog(events ...Event) (*Catalog, error) {
	catalog := &Catalog{
		events: make([]Event, 0, len(events)),
		index:  make(map[string]int, len(events)),
	}

	seenAssets := make(map[string]bool)
	for _, asset := range BaselineAssets {
		catalog.assets = append(catalog.assets, asset)
		seenAssets[asset] = true
	}

	for _, event := range events {
		if err := event.Validate(); err != nil {
			return nil, err
		}

		if _, ok := catalog.index[event.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEvent, event.Name)
		}

		catalog.index[event.Name] = len(catalog.events)
		catalog.events = append(catalog.events, event.clone())

		for _, asset := range event.Assets() {
			if !seenAssets[asset] {
				catalog.assets = append(catalog.assets, asset)
				seenAssets[asset] = true
			}
		}
	}

	return catalog, nil
}

// Default returns the built-in catalog of historical stress events. The catalog is built on
// first use; a malformed built-in definition is a programming error and panics.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		var err error
		defaultCatalog, err = NewCatalog(builtinEvents()...)
		if err != nil {
			log.Panic().Err(err).Msg("built-in scenario catalog is invalid")
		}
	})
	return defaultCatalog
}

// ListEvents returns the event names in registration order
func (c *Catalog) ListEvents() []string {
	names := make([]string, len(c.events))
	for idx, event := range c.events {
		names[idx] = event.Name
	}
	return names
}

// GetEvent looks up an event by name
func (c *Catalog) GetEvent(name string) (Event, error) {
	idx, ok := c.index[name]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.events[idx].clone(), nil
}

// Events returns a copy of every event in registration order
func (c *Catalog) Events() []Event {
	events := make([]Event, len(c.events))
	for idx, event := range c.events {
		events[idx] = event.clone()
	}
	return events
}

// AssetClasses returns the asset universe: the baseline assets followed by every asset
// referenced by an event, in first-seen order
func (c *Catalog) AssetClasses() []string {
	assets := make([]string, len(c.assets))
	copy(assets, c.assets)
	return assets
}

// AvailableAssets returns the assets offered when analyzing the named event: the baseline
// assets plus the assets the event shocks
func (c *Catalog) AvailableAssets(name string) ([]string, error) {
	event, err := c.GetEvent(name)
	if err != nil {
		return nil, err
	}

	assets := make([]string, 0, len(BaselineAssets)+len(event.Shocks))
	assets = append(assets, BaselineAssets...)
	for _, asset := range event.Assets() {
		baseline := false
		for _, b := range BaselineAssets {
			if asset == b {
				baseline = true
				break
			}
		}
		if !baseline {
			assets = append(assets, asset)
		}
	}

	return assets, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func builtinEvents() []Event {
	return []Event{
		{
			Name:      "1987 Crash",
			StartDate: date(1987, time.October, 1),
			EndDate:   date(1987, time.December, 1),
			Shocks: []Shock{
				{Asset: Stocks, Value: -0.30},
				{Asset: Bonds, Value: 0.05},
				{Asset: Gold, Value: 0.10},
			},
		},
		{
			Name:      "Asian Crisis",
			StartDate: date(1997, time.July, 1),
			EndDate:   date(1998, time.January, 1),
			Shocks: []Shock{
				{Asset: Stocks, Value: -0.20},
				{Asset: Bonds, Value: 0.08},
				{Asset: Gold, Value: 0.15},
				{Asset: "Emerging Markets", Value: -0.40},
			},
		},
		{
			Name:      "Dot-com Bubble Burst",
			StartDate: date(2000, time.March, 1),
			EndDate:   date(2002, time.October, 1),
			Shocks: []Shock{
				{Asset: Stocks, Value: -0.45},
				{Asset: Bonds, Value: 0.15},
				{Asset: Gold, Value: 0.20},
				{Asset: "Technology", Value: -0.60},
			},
		},
		{
			Name:      "2008 Financial Crisis",
			StartDate: date(2008, time.September, 1),
			EndDate:   date(2009, time.March, 1),
			Shocks: []Shock{
				{Asset: Stocks, Value: -0.55},
				{Asset: Bonds, Value: 0.20},
				{Asset: Gold, Value: 0.25},
				{Asset: "Real Estate", Value: -0.70},
				{Asset: "Credit", Value: -0.50},
			},
		},
		{
			Name:      "COVID-19 Pandemic",
			StartDate: date(2020, time.February, 1),
			EndDate:   date(2020, time.April, 1),
			Shocks: []Shock{
				{Asset: Stocks, Value: -0.35},
				{Asset: Bonds, Value: 0.10},
				{Asset: Gold, Value: 0.18},
				{Asset: "Oil", Value: -0.80},
				{Asset: "Travel & Leisure", Value: -0.65},
			},
		},
	}
}
