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
package engine_test

import (
	"math"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/vmihailenco/msgpack/v5"
)

var _ = Describe("Engine", func() {
	It("lists the built-in events in order", func() {
		Expect(engine.ListEvents()).To(Equal([]string{
			"1987 Crash",
			"Asian Crisis",
			"Dot-com Bubble Burst",
			"2008 Financial Crisis",
			"COVID-19 Pandemic",
		}))
	})

	It("builds the same return series every time", func() {
		first := engine.BuildReturnSeries()
		second := engine.BuildReturnSeries()
		Expect(first.Equal(second)).To(BeTrue())

		first.Vals[0][0] = 42
		Expect(engine.BuildReturnSeries().Vals[0][0]).To(Equal(0.0))
	})

	It("reports unknown events", func() {
		_, err := engine.Run("Nonexistent", portfolio.Allocation{scenario.Stocks: 100})
		Expect(err).To(MatchError(scenario.ErrNotFound))
	})

	It("rejects invalid weights", func() {
		_, err := engine.Run("1987 Crash", portfolio.Allocation{scenario.Stocks: 150})
		Expect(err).To(MatchError(portfolio.ErrInvalidWeight))
	})

	Context("with a 100% stock allocation during the 1987 crash", func() {
		var result *engine.Result

		BeforeEach(func() {
			var err error
			result, err = engine.Run("1987 Crash", portfolio.Allocation{scenario.Stocks: 100, scenario.Bonds: 0})
			Expect(err).NotTo(HaveOccurred())
		})

		It("normalizes the allocation", func() {
			Expect(result.Allocation).To(Equal(portfolio.Allocation{scenario.Stocks: 1, scenario.Bonds: 0}))
		})

		It("values the portfolio over the full series", func() {
			Expect(result.Path.Len()).To(Equal(engine.BuildReturnSeries().Len()))
			Expect(result.Path.Vals[0][0]).To(Equal(portfolio.BaseValue))
		})

		It("restricts the window to the event months", func() {
			Expect(result.Window.Len()).To(Equal(3))
			Expect(result.Window.Vals[0][0]).To(BeNumerically("~", 70.0, 1e-9))
			Expect(result.Window.Vals[0][1]).To(BeNumerically("~", 34.3, 1e-9))
			Expect(result.Window.Vals[0][2]).To(BeNumerically("~", 11.7649, 1e-9))
		})

		It("summarizes the risk within the window", func() {
			Expect(result.Risk.MaxDrawDown).To(BeNumerically("~", 11.7649/70-1, 1e-9))
			Expect(result.Risk.MaxDrawDown).To(BeNumerically("<=", 0))
			Expect(result.Risk.AnnualizedVolatility).To(BeNumerically(">", 0))
		})

		It("attributes the loss to stocks", func() {
			Expect(result.Contributions).To(HaveLen(2))
			Expect(result.Contributions[0].Asset).To(Equal(scenario.Stocks))
			Expect(result.Contributions[0].Contribution).To(BeNumerically("~", -0.657, 1e-9))
			Expect(result.Contributions[0].Shock).To(Equal(-0.3))
			Expect(result.Contributions[1].Shock).To(Equal(0.05))
			Expect(result.Contributions[1].Contribution).To(Equal(0.0))
		})
	})

	DescribeTable("stress tests every event with the default allocation",
		func(name string) {
			assets, err := engine.AvailableAssets(name)
			Expect(err).NotTo(HaveOccurred())

			result, err := engine.Run(name, portfolio.DefaultAllocation(assets))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Allocation.Sum()).To(BeNumerically("~", 1.0, 1e-12))
			Expect(result.Contributions).To(HaveLen(len(assets)))

			Expect(math.IsNaN(result.Risk.MaxDrawDown)).To(BeFalse())
			Expect(math.IsNaN(result.Risk.AnnualizedVolatility)).To(BeFalse())
			Expect(result.Risk.MaxDrawDown).To(BeNumerically("<=", 0))
			Expect(result.Risk.MaxDrawDown).To(BeNumerically(">=", -1))
			Expect(result.Risk.AnnualizedVolatility).To(BeNumerically(">=", 0))
			Expect(math.IsInf(result.Risk.AnnualizedVolatility, 0)).To(BeFalse())

			body, err := json.Marshal(result)
			Expect(err).NotTo(HaveOccurred())
			decoded := engine.Result{}
			Expect(json.Unmarshal(body, &decoded)).To(Succeed())
			Expect(decoded.Path.Len()).To(Equal(result.Path.Len()))

			_, err = msgpack.Marshal(result)
			Expect(err).NotTo(HaveOccurred())
		},
		Entry("1987 Crash", "1987 Crash"),
		Entry("Asian Crisis", "Asian Crisis"),
		Entry("Dot-com Bubble Burst", "Dot-com Bubble Burst"),
		Entry("2008 Financial Crisis", "2008 Financial Crisis"),
		Entry("COVID-19 Pandemic", "COVID-19 Pandemic"),
	)

	It("has no risk for a zero allocation", func() {
		result, err := engine.Run("COVID-19 Pandemic", portfolio.Allocation{scenario.Stocks: 0, "Oil": 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Risk).To(Equal(portfolio.RiskSummary{}))
		for _, v := range result.Path.Vals[0] {
			Expect(v).To(Equal(portfolio.BaseValue))
		}
	})
})
