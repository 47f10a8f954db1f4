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
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the historical stress events",
	Run: func(cmd *cobra.Command, args []string) {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Event", "Start", "End", "Shocks per Month"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)

		for _, event := range engine.Events() {
			shocks := make([]string, len(event.Shocks))
			for idx, shock := range event.Shocks {
				shocks[idx] = fmt.Sprintf("%s %s", shock.Asset, common.FormatPercent(shock.Value, 0))
			}

			table.Append([]string{
				event.Name,
				event.StartDate.Format("2006-01"),
				event.EndDate.Format("2006-01"),
				strings.Join(shocks, ", "),
			})
		}

		table.Render()
	},
}
