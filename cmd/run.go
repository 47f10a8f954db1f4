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
package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-stress/chart"
	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runEvent             string
	runWeights           []string
	runJSON              bool
	runPlot              bool
	runValueChart        string
	runContributionChart string
)

func init() {
	runCmd.Flags().StringVarP(&runEvent, "event", "e", "", "name of the historical event to replay")
	runCmd.Flags().StringArrayVarP(&runWeights, "weight", "w", []string{}, "asset weight in percent as Asset=percent; may be repeated (default Stocks=30 Bonds=40 Gold=30)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the result as JSON")
	runCmd.Flags().BoolVar(&runPlot, "plot", false, "plot the portfolio value during the event")
	runCmd.Flags().StringVar(&runValueChart, "value-chart", "", "save a chart of the portfolio value to the file (.png or .svg)")
	runCmd.Flags().StringVar(&runContributionChart, "contribution-chart", "", "save a chart of the asset contributions to the file (.png or .svg)")

	if err := runCmd.MarkFlagRequired("event"); err != nil {
		log.Panic().Err(err).Msg("could not mark event flag as required")
	}

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stress test a portfolio allocation against a historical event",
	Example: `  pvstress run --event "1987 Crash" --weight Stocks=60 --weight Bonds=40
  pvstress run -e "COVID-19 Pandemic" -w Stocks=50 -w Oil=50 --plot --value-chart covid.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := allocationFromFlags(runEvent, runWeights)
		if err != nil {
			return err
		}

		result, err := engine.Run(runEvent, raw)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if runJSON {
			enc, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(enc))
		} else {
			printResult(out, result)
		}

		if runPlot {
			plotWindow(out, result)
		}

		if runValueChart != "" {
			if err := saveChart(runValueChart, result, chart.PortfolioValue); err != nil {
				return err
			}
		}

		if runContributionChart != "" {
			if err := saveChart(runContributionChart, result, chart.Contributions); err != nil {
				return err
			}
		}

		return nil
	},
}

// allocationFromFlags parses the weight flags; without any the default allocation of the event
// is used
func allocationFromFlags(event string, weights []string) (portfolio.Allocation, error) {
	if len(weights) != 0 {
		return portfolio.ParseWeights(weights)
	}

	assets, err := engine.AvailableAssets(event)
	if err != nil {
		return nil, err
	}
	return portfolio.DefaultAllocation(assets), nil
}

func printResult(out io.Writer, result *engine.Result) {
	fmt.Fprintf(out, "%s (%s through %s)\n\n", result.Event.Name,
		result.Event.StartDate.Format("Jan 2006"), result.Event.EndDate.Format("Jan 2006"))

	risk := tablewriter.NewWriter(out)
	risk.SetHeader([]string{"Metric", "Value"})
	risk.SetBorder(false)
	risk.Append([]string{"Max Draw Down", common.FormatPercent(result.Risk.MaxDrawDown, 2)})
	risk.Append([]string{"Annualized Volatility", common.FormatPercent(result.Risk.AnnualizedVolatility, 2)})
	risk.Render()
	fmt.Fprintln(out)

	contributions := tablewriter.NewWriter(out)
	contributions.SetHeader([]string{"Asset", "Weight", "Monthly Shock", "Cumulative Return", "Contribution"})
	contributions.SetBorder(false)
	for _, contrib := range result.Contributions {
		contributions.Append([]string{
			contrib.Asset,
			common.FormatPercent(contrib.Weight, 2),
			common.FormatPercent(contrib.Shock, 0),
			common.FormatPercent(contrib.CumulativeReturn, 2),
			common.FormatPercent(contrib.Contribution, 2),
		})
	}
	contributions.Render()
	fmt.Fprintln(out)

	fmt.Fprint(out, result.Window.Table())
}

func plotWindow(out io.Writer, result *engine.Result) {
	if result.Window.Len() == 0 {
		log.Warn().Str("Event", result.Event.Name).Msg("event window is outside of the series, nothing to plot")
		return
	}

	for _, val := range result.Window.Vals[0] {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			log.Warn().Str("Event", result.Event.Name).Msg("portfolio value is not finite during the event, nothing to plot")
			return
		}
	}

	graph := asciigraph.Plot(result.Window.Vals[0],
		asciigraph.Height(12),
		asciigraph.Caption(fmt.Sprintf("%s during %s", portfolio.ValueColumn, result.Event.Name)),
	)
	fmt.Fprintf(out, "\n%s\n", graph)
}

func saveChart(fn string, result *engine.Result, render func(*engine.Result, chart.Options) ([]byte, error)) error {
	format, err := chart.ParseFormat(strings.TrimPrefix(filepath.Ext(fn), "."))
	if err != nil {
		return err
	}

	opts := chart.Options{
		Width:  viper.GetInt("chart.width"),
		Height: viper.GetInt("chart.height"),
		Format: format,
	}
	if err := opts.Validate(viper.GetInt("chart.max_width"), viper.GetInt("chart.max_height")); err != nil {
		return err
	}

	img, err := render(result, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(fn, img, 0644); err != nil {
		return fmt.Errorf("could not save chart: %w", err)
	}

	log.Info().Str("FileName", fn).Str("Format", string(format)).Msg("saved chart")
	return nil
}
