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
	"os"

	"github.com/penny-vault/pv-stress/chart"
	"github.com/penny-vault/pv-stress/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var Profile bool

// bindFlag binds a configuration key to a flag and, when env is not empty, to an environment
// variable
func bindFlag(key, env string, flag *pflag.Flag) {
	if env != "" {
		if err := viper.BindEnv(key, env); err != nil {
			log.Panic().Err(err).Str("Key", key).Msg("could not bind environment variable")
		}
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		log.Panic().Err(err).Str("Key", key).Msg("could not bind flag")
	}
}

func init() {
	// Logging configuration
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	bindFlag("log.level", "PVSTRESS_LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	bindFlag("log.report_caller", "PVSTRESS_LOG_REPORT_CALLER", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	bindFlag("log.output", "PVSTRESS_LOG_OUTPUT", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format log messages for humans instead of as JSON")
	bindFlag("log.pretty", "PVSTRESS_LOG_PRETTY", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Charts
	rootCmd.PersistentFlags().Int("chart-width", 900, "Width of rendered charts in pixels")
	bindFlag("chart.width", "", rootCmd.PersistentFlags().Lookup("chart-width"))

	rootCmd.PersistentFlags().Int("chart-height", 500, "Height of rendered charts in pixels")
	bindFlag("chart.height", "", rootCmd.PersistentFlags().Lookup("chart-height"))

	rootCmd.PersistentFlags().Int("chart-max-width", chart.MaxWidth, "Largest chart width in pixels a request may ask for")
	bindFlag("chart.max_width", "PVSTRESS_CHART_MAX_WIDTH", rootCmd.PersistentFlags().Lookup("chart-max-width"))

	rootCmd.PersistentFlags().Int("chart-max-height", chart.MaxHeight, "Largest chart height in pixels a request may ask for")
	bindFlag("chart.max_height", "PVSTRESS_CHART_MAX_HEIGHT", rootCmd.PersistentFlags().Lookup("chart-max-height"))

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
}

var rootCmd = &cobra.Command{
	Use:     "pvstress",
	Version: common.CurrentVersion.String(),
	Short:   "Stress test a portfolio against historical market crises",
	Long: `Replay a portfolio allocation through a catalog of historical market stress events
(the 1987 crash, the 2008 financial crisis, the COVID-19 pandemic, ...) and report
the portfolio path, draw down, volatility, and per-asset contributions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
