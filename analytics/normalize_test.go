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
	"bytes"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ = Describe("Normalize", func() {
	It("rebases values to growth from the first element", func() {
		Expect(analytics.Normalize([]float64{100, 110, 121})).To(Equal([]float64{0, 10, 21}))
	})

	It("keeps the length of the input", func() {
		res := analytics.Normalize([]float64{5, 6, 7, 8, 9})
		Expect(res).To(HaveLen(5))
		Expect(res[0]).To(Equal(0.0))
	})

	It("rounds to 2 decimals", func() {
		res := analytics.Normalize([]float64{3, 4})
		Expect(res[1]).Should(BeNumerically("~", 33.33, 1e-9))
	})

	It("reports declines as negative growth", func() {
		Expect(analytics.Normalize([]float64{200, 150})).To(Equal([]float64{0, -25}))
	})

	It("returns an empty slice for empty input", func() {
		Expect(analytics.Normalize(nil)).To(BeEmpty())
	})

	It("returns zeros when the base is not usable", func() {
		Expect(analytics.Normalize([]float64{0, 10, 20})).To(Equal([]float64{0, 0, 0}))
		Expect(analytics.Normalize([]float64{math.NaN(), 10})).To(Equal([]float64{0, 0}))
	})

	It("warns when the base is not usable", func() {
		var buf bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = prev }()

		analytics.Normalize([]float64{0, 10})
		Expect(buf.String()).To(ContainSubstring("cannot rebase series"))
		Expect(buf.String()).To(ContainSubstring(`"level":"warn"`))
	})

	It("keeps dates when normalizing a series", func() {
		s := mustSeries("QQQ", []time.Time{day(2022, 1, 1), day(2022, 1, 2)}, []float64{50, 75})
		res := analytics.NormalizeSeries(s)
		Expect(res.Label).To(Equal("QQQ"))
		Expect(res.Dates()).To(Equal(s.Dates()))
		Expect(res.Amounts()).To(Equal([]float64{0, 50}))
	})
})

var _ = Describe("FormatPercent", func() {
	It("formats with 2 decimals and a percent sign", func() {
		Expect(analytics.FormatPercent(10)).To(Equal("10.00%"))
		Expect(analytics.FormatPercent(-50)).To(Equal("-50.00%"))
		Expect(analytics.FormatPercent(3.14159)).To(Equal("3.14%"))
	})

	It("formats non-finite values as zero", func() {
		Expect(analytics.FormatPercent(math.Inf(1))).To(Equal("0.00%"))
	})
})
