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
// Package chart renders stress test results as PNG or SVG images.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/vicanso/go-charts/v2"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

var (
	ErrNoData            = errors.New("nothing to chart")
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	ErrInvalidSize       = errors.New("chart size out of range")
)

const (
	DefaultWidth  = 900
	DefaultHeight = 500

	// MaxWidth and MaxHeight are the default bounds applied by Validate
	MaxWidth  = 4096
	MaxHeight = 4096

	// maxPlotValue is the largest magnitude the value axis is asked to scale
	maxPlotValue = 1e300
)

// Options control the size and encoding of a rendered chart
type Options struct {
	Width  int
	Height int
	Format Format
}

// ParseFormat converts a format name (png or svg, case insensitive) to a Format
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case PNG, "":
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type of images encoded in format f
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Validate checks that the chart fits in maxWidth x maxHeight pixels. A size of 0 selects the
// default; maxWidth or maxHeight <= 0 select MaxWidth and MaxHeight.
func (opts Options) Validate(maxWidth, maxHeight int) error {
	if maxWidth <= 0 {
		maxWidth = MaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = MaxHeight
	}

	if opts.Width < 0 || opts.Width > maxWidth || opts.Height < 0 || opts.Height > maxHeight {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrInvalidSize, opts.Width, opts.Height, maxWidth, maxHeight)
	}

	return nil
}

func plottable(value float64) bool {
	return !math.IsNaN(value) && math.Abs(value) <= maxPlotValue
}

func (opts Options) optionFuncs() []charts.OptionFunc {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	height := opts.Height
	if height <= 0 {
		height = DefaultHeight
	}

	funcs := []charts.OptionFunc{
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
		charts.ThemeOptionFunc(charts.ThemeLight),
	}

	if opts.Format == SVG {
		funcs = append(funcs, charts.SVGTypeOption())
	} else {
		funcs = append(funcs, charts.PNGTypeOption())
	}

	return funcs
}

// PortfolioValue draws the portfolio value over the whole series with the event window
// highlighted as a second line
func PortfolioValue(result *engine.Result, opts Options) ([]byte, error) {
	if result == nil || result.Path.Len() == 0 {
		return nil, ErrNoData
	}

	// values the value axis cannot scale are left out of both lines
	values := make([]float64, result.Path.Len())
	xLabels := make([]string, len(result.Path.Dates))
	highlight := make([]float64, len(values))
	for idx, dt := range result.Path.Dates {
		xLabels[idx] = dt.Format("2006-01")
		values[idx] = result.Path.Vals[0][idx]
		if !plottable(values[idx]) {
			values[idx] = charts.GetNullValue()
		}
		highlight[idx] = charts.GetNullValue()
		if result.Event.Contains(dt) {
			highlight[idx] = values[idx]
		}
	}

	splitNum := 12
	if len(xLabels) < 36 {
		splitNum = len(xLabels) / 3
		if splitNum < 1 {
			splitNum = 1
		}
	}

	subtitle := fmt.Sprintf("Max Draw Down %s • Annualized Volatility %s",
		common.FormatPercent(result.Risk.MaxDrawDown, 2),
		common.FormatPercent(result.Risk.AnnualizedVolatility, 2))

	funcs := append(opts.optionFuncs(),
		charts.TitleTextOptionFunc("Portfolio Value • "+result.Event.Name, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{portfolio.ValueColumn, result.Event.Name},
			Left: charts.PositionRight,
		}),
	)

	p, err := charts.LineRender([][]float64{values, highlight}, funcs...)
	if err != nil {
		return nil, fmt.Errorf("failed to render value chart: %w", err)
	}

	return p.Bytes()
}

// Contributions draws a bar per asset with its contribution, in percent, to the portfolio
// return at the end of the event
func Contributions(result *engine.Result, opts Options) ([]byte, error) {
	if result == nil || len(result.Contributions) == 0 {
		return nil, ErrNoData
	}

	assets := make([]string, len(result.Contributions))
	values := make([]float64, len(result.Contributions))
	for idx, contrib := range result.Contributions {
		assets[idx] = contrib.Asset
		values[idx] = contrib.Contribution * 100
		if !plottable(values[idx]) {
			values[idx] = charts.GetNullValue()
		}
	}

	funcs := append(opts.optionFuncs(),
		charts.TitleTextOptionFunc("Asset Contribution • "+result.Event.Name, "percent of portfolio value"),
		charts.XAxisDataOptionFunc(assets),
		charts.YAxisOptionFunc(charts.YAxisOption{
			DivideCount: 5,
		}),
	)

	p, err := charts.BarRender([][]float64{values}, funcs...)
	if err != nil {
		return nil, fmt.Errorf("failed to render contribution chart: %w", err)
	}

	return p.Bytes()
}
