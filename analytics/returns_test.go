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

package analytics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/analytics"
)

var _ = Describe("Returns", func() {
	var (
		growth  *analytics.Series
		halved  *analytics.Series
		longRun *analytics.Series
	)

	BeforeEach(func() {
		growth = mustSeries("assets",
			[]time.Time{day(2022, 1, 1), day(2023, 1, 1), day(2024, 1, 1)},
			[]float64{100, 110, 121})
		halved = mustSeries("assets",
			[]time.Time{day(2022, 1, 1), day(2023, 1, 1)},
			[]float64{100, 50})
		longRun = mustSeries("SPY",
			[]time.Time{day(2019, 1, 2), day(2020, 6, 1), day(2021, 1, 4), day(2022, 12, 30), day(2023, 1, 3), day(2023, 12, 29)},
			[]float64{100, 90, 120, 150, 160, 200})
	})

	Context("when computing the trailing return of a window", func() {
		It("is 0 when only one observation falls in the window", func() {
			Expect(analytics.ReturnRate(growth, analytics.OneYear, day(2024, 3, 1))).To(Equal(0.0))
		})

		It("uses the first and last observation inside the window", func() {
			// 2023-01-03 (160) to 2023-12-29 (200)
			Expect(analytics.ReturnRate(longRun, analytics.OneYear, day(2023, 7, 1))).Should(BeNumerically("~", 25, 1e-9))
			// 2021-01-04 (120) to 2023-12-29 (200)
			Expect(analytics.ReturnRate(longRun, analytics.ThreeYears, day(2023, 7, 1))).Should(BeNumerically("~", 66.67, 1e-9))
		})

		It("clamps the start to the first observation when the series is shorter than the window", func() {
			// window starts 2019-01-01, series starts 2019-01-02
			Expect(analytics.ReturnRate(longRun, analytics.FiveYears, day(2023, 7, 1))).Should(BeNumerically("~", 100, 1e-9))
			Expect(analytics.ReturnRate(growth, analytics.FiveYears, day(2024, 3, 1))).Should(BeNumerically("~", 21, 1e-9))
		})

		It("ignores observations after the end of the window year", func() {
			// 2020-06-01 (90) to 2022-12-30 (150)
			Expect(analytics.ReturnRate(longRun, analytics.ThreeYears, day(2022, 2, 1))).Should(BeNumerically("~", 66.67, 1e-9))
		})

		It("returns 0 when the window holds no data", func() {
			Expect(analytics.ReturnRate(longRun, analytics.OneYear, day(2030, 1, 1))).To(Equal(0.0))
			Expect(analytics.ReturnRate(longRun, analytics.OneYear, day(2010, 1, 1))).To(Equal(0.0))
		})

		It("returns 0 for an empty series or an invalid window", func() {
			Expect(analytics.ReturnRate(nil, analytics.OneYear, day(2024, 1, 1))).To(Equal(0.0))
			Expect(analytics.ReturnRate(longRun, analytics.Window(0), day(2023, 1, 1))).To(Equal(0.0))
		})

		It("returns 0 when the start amount is 0", func() {
			s := mustSeries("assets", []time.Time{day(2023, 1, 1), day(2023, 6, 1)}, []float64{0, 100})
			Expect(analytics.ReturnRate(s, analytics.OneYear, day(2023, 7, 1))).To(Equal(0.0))
		})

		It("computes all standard windows", func() {
			rates := analytics.ReturnRates(longRun, day(2023, 7, 1))
			Expect(rates).To(HaveLen(3))
			Expect(rates).To(HaveKey(analytics.OneYear))
			Expect(rates).To(HaveKey(analytics.ThreeYears))
			Expect(rates).To(HaveKey(analytics.FiveYears))
		})
	})

	Context("when computing window bounds", func() {
		It("covers whole calendar years", func() {
			begin, end := analytics.ThreeYears.Bounds(day(2024, 5, 17))
			Expect(begin).To(Equal(day(2022, 1, 1)))
			Expect(end).To(Equal(day(2024, 12, 31)))
			Expect(analytics.ThreeYears.String()).To(Equal("3y"))
		})
	})

	Context("when computing the annualized return", func() {
		It("compounds over whole years", func() {
			cagr := analytics.AnnualizedReturn(growth)
			Expect(cagr).Should(BeNumerically("~", 10, 1e-9))
			Expect(analytics.FormatPercent(cagr)).To(Equal("10.00%"))
		})

		It("handles losses", func() {
			Expect(analytics.AnnualizedReturn(halved)).Should(BeNumerically("~", -50, 1e-9))
		})

		It("annualizes partial years", func() {
			// 21% over 2 years and a half, roughly 7.92% per year
			s := mustSeries("assets", []time.Time{day(2020, 1, 1), day(2022, 7, 2)}, []float64{100, 121})
			Expect(analytics.AnnualizedReturn(s)).Should(BeNumerically("~", 7.92, 0.02))
		})

		It("returns 0 when it cannot be computed", func() {
			Expect(analytics.AnnualizedReturn(nil)).To(Equal(0.0))
			single := mustSeries("assets", []time.Time{day(2022, 1, 1)}, []float64{100})
			Expect(analytics.AnnualizedReturn(single)).To(Equal(0.0))
			zero := mustSeries("assets", []time.Time{day(2022, 1, 1), day(2023, 1, 1)}, []float64{0, 100})
			Expect(analytics.AnnualizedReturn(zero)).To(Equal(0.0))
		})
	})

	Context("when counting years between dates", func() {
		It("counts calendar years exactly", func() {
			Expect(analytics.YearsBetween(day(2022, 1, 1), day(2024, 1, 1))).To(Equal(2.0))
			Expect(analytics.YearsBetween(day(2020, 2, 29), day(2021, 3, 1))).Should(BeNumerically("~", 1, 0.01))
		})

		It("returns 0 for a non-positive span", func() {
			Expect(analytics.YearsBetween(day(2022, 1, 1), day(2022, 1, 1))).To(Equal(0.0))
			Expect(analytics.YearsBetween(day(2023, 1, 1), day(2022, 1, 1))).To(Equal(0.0))
		})
	})
})
