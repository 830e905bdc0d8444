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

var _ = Describe("Drawdown", func() {
	It("is 0 for a strictly increasing sequence", func() {
		dd := analytics.CalculateDrawdown([]float64{100, 110, 121})
		Expect(*dd.Latest).To(Equal(121.0))
		Expect(*dd.HighPoint).To(Equal(121.0))
		Expect(*dd.Percent).To(Equal(0.0))
	})

	It("measures the decline from the high-water mark", func() {
		dd := analytics.CalculateDrawdown([]float64{100, 50})
		Expect(*dd.HighPoint).To(Equal(100.0))
		Expect(*dd.Percent).Should(BeNumerically("~", 50, 1e-9))
	})

	It("uses the maximum of the whole sequence", func() {
		dd := analytics.CalculateDrawdown([]float64{80, 150, 90, 120})
		Expect(*dd.HighPoint).To(Equal(150.0))
		Expect(*dd.Latest).To(Equal(120.0))
		Expect(*dd.Percent).Should(BeNumerically("~", 20, 1e-9))
	})

	It("is empty for an empty sequence", func() {
		dd := analytics.CalculateDrawdown(nil)
		Expect(dd.Latest).To(BeNil())
		Expect(dd.HighPoint).To(BeNil())
		Expect(dd.Percent).To(BeNil())
	})

	It("is 0 when the high point is 0", func() {
		dd := analytics.CalculateDrawdown([]float64{0, 0})
		Expect(*dd.Percent).To(Equal(0.0))
	})
})

var _ = Describe("Report", func() {
	It("lists the user's series before the benchmarks", func() {
		own := mustSeries("assets",
			[]time.Time{day(2022, 1, 1), day(2023, 1, 1), day(2024, 1, 1)},
			[]float64{100, 110, 121})
		spy := mustSeries("SPY",
			[]time.Time{day(2022, 1, 1), day(2023, 1, 1)},
			[]float64{100, 50})

		report := analytics.BuildReport(own, []*analytics.Series{spy}, day(2024, 3, 1))
		Expect(report.AsOf).To(Equal("2024-03-01"))
		Expect(report.LatestDate).To(Equal("2024-01-01"))
		Expect(*report.Summary.Latest).To(Equal(121.0))
		Expect(report.Series).To(HaveLen(2))

		Expect(report.Series[0].Label).To(Equal("assets"))
		Expect(report.Series[0].CAGRText).To(Equal("10.00%"))
		Expect(report.Series[0].Growth).To(Equal([]float64{0, 10, 21}))

		Expect(report.Series[1].Label).To(Equal("SPY"))
		Expect(report.Series[1].CAGR).Should(BeNumerically("~", -50, 1e-9))
		Expect(*report.Series[1].Drawdown.Percent).Should(BeNumerically("~", 50, 1e-9))
	})

	It("handles a user without data", func() {
		report := analytics.BuildReport(nil, nil, day(2024, 3, 1))
		Expect(report.LatestDate).To(BeEmpty())
		Expect(report.Summary.Latest).To(BeNil())
		Expect(report.Series).To(HaveLen(1))
		Expect(report.Series[0].Growth).To(BeEmpty())
	})
})
