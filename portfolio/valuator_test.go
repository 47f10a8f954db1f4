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
package portfolio_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/penny-vault/pv-stress/series"
)

var _ = Describe("Valuator", func() {
	var (
		crash scenario.Event
	)

	BeforeEach(func() {
		var err error
		crash, err = scenario.Default().GetEvent("1987 Crash")
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with a 100% stock portfolio", func() {
		It("values the portfolio on every date", func() {
			returns := series.Default()
			path := portfolio.ComputePath(returns, portfolio.Allocation{scenario.Stocks: 1})
			Expect(path.Len()).To(Equal(returns.Len()))
			Expect(path.ColNames).To(Equal([]string{portfolio.ValueColumn}))
			Expect(path.Vals[0][0]).To(Equal(portfolio.BaseValue))
		})

		It("stays at the base value before the first event", func() {
			path := portfolio.ComputePath(series.Default(), portfolio.Allocation{scenario.Stocks: 1})
			values := path.Window(portfolio.ValueColumn, time.Date(1987, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(1987, 9, 1, 0, 0, 0, 0, time.UTC))
			Expect(values).To(HaveLen(9))
			for _, v := range values {
				Expect(v).To(Equal(portfolio.BaseValue))
			}
		})

		It("compounds the cumulative return during the 1987 crash", func() {
			path := portfolio.ComputePath(series.Default(), portfolio.Allocation{scenario.Stocks: 1})
			values := path.Window(portfolio.ValueColumn, crash.StartDate, crash.EndDate)
			Expect(values).To(HaveLen(3))
			Expect(values[0]).To(BeNumerically("~", 70.0, 1e-9))
			Expect(values[1]).To(BeNumerically("~", 34.3, 1e-9))
			Expect(values[2]).To(BeNumerically("~", 11.7649, 1e-9))
		})
	})

	It("keeps a constant value for an all zero allocation", func() {
		path := portfolio.ComputePath(series.Default(), portfolio.Allocation{scenario.Stocks: 0, scenario.Gold: 0})
		for _, v := range path.Vals[0] {
			Expect(v).To(Equal(portfolio.BaseValue))
		}
	})

	It("ignores assets that are not part of the series", func() {
		returns := series.Default()
		withUnknown := portfolio.ComputePath(returns, portfolio.Allocation{scenario.Gold: 1, "Crypto": 0.5})
		goldOnly := portfolio.ComputePath(returns, portfolio.Allocation{scenario.Gold: 1})
		Expect(withUnknown.Vals[0]).To(Equal(goldOnly.Vals[0]))
	})

	Context("when computing contributions", func() {
		It("weights the cumulative return at the end of the window", func() {
			weights := portfolio.Normalize(portfolio.Allocation{scenario.Stocks: 50, scenario.Bonds: 25, scenario.Gold: 25})
			contributions := portfolio.Contributions(series.Default(), weights, crash)
			Expect(contributions).To(HaveLen(3))

			Expect(contributions[0].Asset).To(Equal(scenario.Stocks))
			Expect(contributions[0].Weight).To(BeNumerically("~", 0.5, 1e-12))
			Expect(contributions[0].CumulativeReturn).To(BeNumerically("~", -0.657, 1e-9))
			Expect(contributions[0].Contribution).To(BeNumerically("~", -0.3285, 1e-9))
			Expect(contributions[0].Shock).To(Equal(-0.30))

			Expect(contributions[1].Asset).To(Equal(scenario.Bonds))
			Expect(contributions[1].CumulativeReturn).To(BeNumerically("~", 0.157625, 1e-9))

			Expect(contributions[2].Asset).To(Equal(scenario.Gold))
			Expect(contributions[2].CumulativeReturn).To(BeNumerically("~", 0.331, 1e-9))
			Expect(contributions[2].Contribution).To(BeNumerically("~", 0.08275, 1e-9))
			Expect(contributions[2].Shock).To(Equal(0.10))
		})

		It("returns nothing when the window is outside the series", func() {
			builder := series.NewBuilder(scenario.Default())
			builder.Begin = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
			returns, _ := builder.Build()
			Expect(portfolio.Contributions(returns, portfolio.Allocation{scenario.Stocks: 1}, crash)).To(BeEmpty())
		})
	})
})
