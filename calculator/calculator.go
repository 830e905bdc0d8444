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

package calculator

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CNY Currency = "CNY"
	USD Currency = "USD"
)

// DefaultUSDRate is the CNY value of one USD used when summing rows
var DefaultUSDRate = decimal.NewFromInt(7)

var (
	ErrInvalidAmount   = errors.New("amount must be a number")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrNegativeTotal   = errors.New("total must not be negative")
)

// Row is a single line of the calculator. Currency defaults to CNY.
type Row struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// UnmarshalJSON accepts the amount as a number or as a string that may
// contain thousands separators
func (row *Row) UnmarshalJSON(b []byte) error {
	var raw struct {
		Amount   json.RawMessage `json:"amount"`
		Currency Currency        `json:"currency"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	amount, err := ParseAmountJSON(raw.Amount)
	if err != nil {
		return err
	}

	row.Amount = amount
	row.Currency = raw.Currency
	return nil
}

// ParseAmount parses a decimal amount. Commas and surrounding whitespace are
// ignored; an empty string is 0.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", s, ErrInvalidAmount)
	}
	return amount, nil
}

// ParseAmountJSON parses a JSON number or string with ParseAmount. A missing
// or null value is 0.
func ParseAmountJSON(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		return ParseAmount(s)
	}

	return ParseAmount(string(raw))
}

// Rate returns the CNY value of one unit of currency
func Rate(currency Currency, usdRate decimal.Decimal) (decimal.Decimal, error) {
	switch Currency(strings.ToUpper(string(currency))) {
	case CNY, "":
		return decimal.NewFromInt(1), nil
	case USD:
		return usdRate, nil
	default:
		return decimal.Zero, fmt.Errorf("%s: %w", currency, ErrUnknownCurrency)
	}
}

// Total sums rows in CNY, rounded to 2 decimals
func Total(rows []Row, usdRate decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range rows {
		rate, err := Rate(row.Currency, usdRate)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(row.Amount.Mul(rate))
	}

	if total.IsNegative() {
		return decimal.Zero, ErrNegativeTotal
	}
	return total.Round(2), nil
}
