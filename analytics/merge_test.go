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

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/analytics"
)

var _ = Describe("Merge", func() {
	var (
		spy *analytics.Series
		btc *analytics.Series
	)

	BeforeEach(func() {
		spy = mustSeries("SPY",
			[]time.Time{day(2022, 1, 3), day(2022, 1, 4), day(2022, 1, 5)},
			[]float64{477.71, 477.55, 468.38})
		btc = mustSeries("BTC-USD",
			[]time.Time{day(2022, 1, 1), day(2022, 1, 2), day(2022, 1, 3), day(2022, 1, 4)},
			[]float64{47686.81, 47345.22, 46458.12, 45897.57})
	})

	It("creates one row per distinct date in ascending order", func() {
		rows := analytics.Merge(spy, btc)
		Expect(rows).To(HaveLen(5))
		dates := make([]string, len(rows))
		for idx, row := range rows {
			dates[idx] = row.Date
		}
		Expect(dates).To(Equal([]string{"2022-01-01", "2022-01-02", "2022-01-03", "2022-01-04", "2022-01-05"}))
	})

	It("only holds keys for series with data on that date", func() {
		rows := analytics.Merge(spy, btc)

		_, ok := rows[0].Value("SPY")
		Expect(ok).To(BeFalse())
		v, ok := rows[0].Value("BTC-USD")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(47686.81))

		Expect(rows[2].Values).To(HaveLen(2))

		_, ok = rows[4].Value("BTC-USD")
		Expect(ok).To(BeFalse())
	})

	It("covers the union of disjoint date sets", func() {
		eth := mustSeries("ETH-USD",
			[]time.Time{day(2022, 1, 6), day(2022, 1, 7)},
			[]float64{3410.97, 3196.05})

		rows := analytics.Merge(spy, eth)
		Expect(rows).To(HaveLen(5))
		for idx, row := range rows {
			Expect(row.Values).To(HaveLen(1))
			_, isSpy := row.Value("SPY")
			_, isEth := row.Value("ETH-USD")
			Expect(isSpy).To(Equal(idx < 3))
			Expect(isEth).To(Equal(idx >= 3))
		}
		Expect(rows[3].Date).To(Equal("2022-01-06"))
	})

	It("does not depend on argument order for the date axis", func() {
		a := analytics.Merge(spy, btc)
		b := analytics.Merge(btc, spy)
		Expect(len(a)).To(Equal(len(b)))
		for idx := range a {
			Expect(a[idx].Date).To(Equal(b[idx].Date))
			Expect(a[idx].Values).To(Equal(b[idx].Values))
		}
	})

	It("skips nil and empty series", func() {
		Expect(analytics.Merge()).To(BeEmpty())
		Expect(analytics.Merge(nil, &analytics.Series{Label: "QQQ"})).To(BeEmpty())
		Expect(analytics.Merge(nil, spy)).To(HaveLen(3))
	})

	It("flattens rows when encoding to JSON", func() {
		rows := analytics.Merge(spy, btc)
		buf, err := json.Marshal(rows[0])
		Expect(err).To(BeNil())
		Expect(string(buf)).To(MatchJSON(`{"date": "2022-01-01", "BTC-USD": 47686.81}`))
	})

	It("encodes observations with ISO dates", func() {
		buf, err := json.Marshal(spy.Observations[0])
		Expect(err).To(BeNil())
		Expect(string(buf)).To(MatchJSON(`{"date": "2022-01-03", "amount": 477.71}`))
	})
})
