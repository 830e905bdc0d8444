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

package data_test

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/data"
)

func fixture(fn string) []byte {
	content, err := os.ReadFile("../testdata/" + fn)
	if err != nil {
		panic(err)
	}
	return content
}

func utcDay(year int, month time.Month, dd int) time.Time {
	return time.Date(year, month, dd, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Yahoo", func() {
	Context("when parsing a chart document", func() {
		It("skips null closes and maps timestamps to UTC dates", func() {
			s, err := data.ParseChart("SPY", fixture("yahoo_spy.json"))
			Expect(err).To(BeNil())
			Expect(s.Label).To(Equal("SPY"))
			Expect(s.Amounts()).To(Equal([]float64{477.71, 477.55, 468.38, 466.09}))
			Expect(s.Dates()).To(Equal([]time.Time{
				utcDay(2022, 1, 3), utcDay(2022, 1, 4), utcDay(2022, 1, 5), utcDay(2022, 1, 7),
			}))
		})

		It("reports provider errors", func() {
			_, err := data.ParseChart("XXX", fixture("yahoo_error.json"))
			Expect(errors.Is(err, data.ErrProviderError)).To(BeTrue())
		})

		It("fails on malformed documents", func() {
			_, err := data.ParseChart("SPY", []byte(`{"chart": [`))
			Expect(err).ToNot(BeNil())
		})
	})

	Context("when downloading", func() {
		var yahoo *data.Yahoo

		BeforeEach(func() {
			yahoo = data.NewYahoo("https://query1.finance.yahoo.com", 100)
		})

		It("requests the inclusive date range", func() {
			chartURL := yahoo.ChartURL("SPY", utcDay(2022, 1, 1), utcDay(2022, 1, 7))
			Expect(chartURL).To(Equal("https://query1.finance.yahoo.com/v8/finance/chart/SPY?events=history&interval=1d&period1=1640995200&period2=1641600000"))
		})

		It("returns the response body", func() {
			httpmock.RegisterResponder("GET", `=~^https://query1\.finance\.yahoo\.com/v8/finance/chart/SPY`,
				httpmock.NewBytesResponder(200, fixture("yahoo_spy.json")))

			body, err := yahoo.Download(context.Background(), "SPY", utcDay(2022, 1, 1), utcDay(2022, 1, 7))
			Expect(err).To(BeNil())
			Expect(body).To(Equal(fixture("yahoo_spy.json")))
		})

		It("fails on an error status code", func() {
			httpmock.RegisterResponder("GET", `=~^https://query1\.finance\.yahoo\.com/v8/finance/chart/SPY`,
				httpmock.NewStringResponder(500, "internal error"))

			_, err := yahoo.Download(context.Background(), "SPY", utcDay(2022, 1, 1), utcDay(2022, 1, 7))
			Expect(errors.Is(err, data.ErrInvalidStatusCode)).To(BeTrue())
		})

		It("rejects a reversed range without a request", func() {
			_, err := yahoo.Download(context.Background(), "SPY", utcDay(2022, 1, 7), utcDay(2022, 1, 1))
			Expect(errors.Is(err, data.ErrBeginAfterEnd)).To(BeTrue())
			Expect(httpmock.GetTotalCallCount()).To(Equal(0))
		})
	})
})

var _ = Describe("Exchange rate", func() {
	It("rounds the live rate to 2 decimals", func() {
		httpmock.RegisterResponder("GET", data.DefaultExchangeRateURL,
			httpmock.NewStringResponder(200, `{"source":"USD","target":"CNY","value":7.2345,"time":1700000000000}`))

		rate, err := data.FetchExchangeRate(context.Background(), data.DefaultExchangeRateURL)
		Expect(err).To(BeNil())
		Expect(rate).To(Equal(7.23))
	})

	It("fails when the value is missing", func() {
		httpmock.RegisterResponder("GET", data.DefaultExchangeRateURL,
			httpmock.NewStringResponder(200, `{"source":"USD","target":"CNY"}`))

		_, err := data.FetchExchangeRate(context.Background(), data.DefaultExchangeRateURL)
		Expect(errors.Is(err, data.ErrNoData)).To(BeTrue())
	})
})
