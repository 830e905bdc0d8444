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

package calculator_test

import (
	"errors"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/calculator"
	"github.com/shopspring/decimal"
)

var _ = Describe("Calculator", func() {
	It("sums rows in CNY", func() {
		rows := []calculator.Row{
			{Amount: decimal.RequireFromString("1000"), Currency: calculator.CNY},
			{Amount: decimal.RequireFromString("100.5"), Currency: calculator.USD},
			{Amount: decimal.RequireFromString("0.25")},
		}
		total, err := calculator.Total(rows, calculator.DefaultUSDRate)
		Expect(err).To(BeNil())
		Expect(total.String()).To(Equal("1703.75"))
	})

	It("uses the given USD rate", func() {
		rows := []calculator.Row{{Amount: decimal.NewFromInt(10), Currency: calculator.USD}}
		total, err := calculator.Total(rows, decimal.RequireFromString("7.25"))
		Expect(err).To(BeNil())
		Expect(total.String()).To(Equal("72.5"))
	})

	It("rejects unknown currencies", func() {
		rows := []calculator.Row{{Amount: decimal.NewFromInt(10), Currency: "EUR"}}
		_, err := calculator.Total(rows, calculator.DefaultUSDRate)
		Expect(errors.Is(err, calculator.ErrUnknownCurrency)).To(BeTrue())
	})

	It("rejects a negative total", func() {
		rows := []calculator.Row{{Amount: decimal.NewFromInt(-10)}}
		_, err := calculator.Total(rows, calculator.DefaultUSDRate)
		Expect(errors.Is(err, calculator.ErrNegativeTotal)).To(BeTrue())
	})

	It("parses amounts with thousands separators", func() {
		amount, err := calculator.ParseAmount(" 1,234,567.89 ")
		Expect(err).To(BeNil())
		Expect(amount.String()).To(Equal("1234567.89"))

		_, err = calculator.ParseAmount("12abc")
		Expect(errors.Is(err, calculator.ErrInvalidAmount)).To(BeTrue())
	})

	It("decodes rows with numeric or string amounts", func() {
		var rows []calculator.Row
		err := json.Unmarshal([]byte(`[{"amount": 12.5, "currency": "USD"}, {"amount": "1,000", "currency": "CNY"}, {"amount": null}]`), &rows)
		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0].Amount.String()).To(Equal("12.5"))
		Expect(rows[1].Amount.String()).To(Equal("1000"))
		Expect(rows[2].Amount.IsZero()).To(BeTrue())
	})
})
