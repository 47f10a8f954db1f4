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

package dataframe_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-stress/dataframe"
)

var _ = Describe("When computing returns", func() {
	var (
		df1 *dataframe.DataFrame
	)

	BeforeEach(func() {
		df1 = &dataframe.DataFrame{
			Dates: []time.Time{
				time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.February, 28, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.March, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.April, 30, 0, 0, 0, 0, time.UTC),
			},
			Vals:     [][]float64{{0.0, -0.3, -0.3, 0.0}, {0.1, 0.0, 0.1, 0.0}},
			ColNames: []string{"Stocks", "Gold"},
		}
	})

	It("compounds periodic returns into cumulative returns", func() {
		cum := df1.CumulativeReturn()
		Expect(cum.Len()).To(Equal(4))
		Expect(cum.Vals[0][0]).To(BeNumerically("~", 0.0, 1e-12))
		Expect(cum.Vals[0][1]).To(BeNumerically("~", -0.3, 1e-12))
		Expect(cum.Vals[0][2]).To(BeNumerically("~", -0.51, 1e-12))
		Expect(cum.Vals[0][3]).To(BeNumerically("~", -0.51, 1e-12))
		Expect(cum.Vals[1][3]).To(BeNumerically("~", 0.21, 1e-12))
	})

	It("does not modify the source dataframe", func() {
		df1.CumulativeReturn()
		Expect(df1.Vals[0]).To(Equal([]float64{0.0, -0.3, -0.3, 0.0}))
	})

	It("scales every column", func() {
		scaled := df1.MulScalar(2)
		Expect(scaled.Vals[0]).To(Equal([]float64{0.0, -0.6, -0.6, 0.0}))
		Expect(scaled.Vals[1]).To(Equal([]float64{0.2, 0.0, 0.2, 0.0}))
	})
})

var _ = Describe("When generating month ends", func() {
	It("covers the full historical range", func() {
		dates := dataframe.MonthEnds(time.Date(1987, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		Expect(dates).To(HaveLen(37 * 12))
		Expect(dates[0]).To(Equal(time.Date(1987, 1, 31, 0, 0, 0, 0, time.UTC)))
		Expect(dates[len(dates)-1]).To(Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	})

	It("handles leap years", func() {
		dates := dataframe.MonthEnds(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC))
		Expect(dates).To(Equal([]time.Time{
			time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
		}))
	})

	It("returns nothing for an inverted range", func() {
		Expect(dataframe.MonthEnds(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))).To(BeEmpty())
	})

	DescribeTable("tests month membership", func(t time.Time, expected bool) {
		begin := time.Date(1987, 10, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(1987, 12, 1, 0, 0, 0, 0, time.UTC)
		Expect(dataframe.InMonthRange(t, begin, end)).To(Equal(expected))
	},
		Entry("before the window", time.Date(1987, 9, 30, 0, 0, 0, 0, time.UTC), false),
		Entry("first month", time.Date(1987, 10, 31, 0, 0, 0, 0, time.UTC), true),
		Entry("middle month", time.Date(1987, 11, 30, 0, 0, 0, 0, time.UTC), true),
		Entry("last month after the end day", time.Date(1987, 12, 31, 0, 0, 0, 0, time.UTC), true),
		Entry("after the window", time.Date(1988, 1, 31, 0, 0, 0, 0, time.UTC), false),
	)
})
