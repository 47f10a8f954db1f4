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
	"time"

	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/penny-vault/pv-stress/series"
	"github.com/spf13/cobra"
)

var (
	seriesShocks bool
	seriesFrom   string
	seriesTo     string
)

func init() {
	seriesCmd.Flags().BoolVar(&seriesShocks, "shocks", false, "print the monthly shocks instead of the cumulative returns")
	seriesCmd.Flags().StringVar(&seriesFrom, "from", "", "first month to print (YYYY-MM)")
	seriesCmd.Flags().StringVar(&seriesTo, "to", "", "last month to print (YYYY-MM)")

	rootCmd.AddCommand(seriesCmd)
}

func parseMonth(val string, defaultValue time.Time) (time.Time, error) {
	if val == "" {
		return defaultValue, nil
	}
	t, err := time.Parse("2006-01", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", val, err)
	}
	return t, nil
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print the synthetic monthly return series of every asset class",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseMonth(seriesFrom, series.DefaultBegin)
		if err != nil {
			return err
		}
		to, err := parseMonth(seriesTo, series.DefaultEnd)
		if err != nil {
			return err
		}

		df := engine.BuildReturnSeries()
		if seriesShocks {
			df = series.NewBuilder(scenario.Default()).Shocks()
		}

		fmt.Fprint(cmd.OutOrStdout(), df.TrimMonths(from, to).Table())
		return nil
	},
}
