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

package data

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/penny-vault/nwapi/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultExchangeRateURL = "https://wise.com/rates/live?source=USD&target=CNY"
	DefaultExchangeRate    = 7.25
)

type wiseRate struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Time   int64   `json:"time"`
}

// FetchExchangeRate downloads the live USD to CNY rate, rounded to 2 decimals
func FetchExchangeRate(ctx context.Context, rateURL string) (float64, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "wise.FetchExchangeRate")
	defer span.End()

	span.SetAttributes(attribute.String("Url", rateURL))
	subLog := log.With().Str("Url", rateURL).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rateURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange rate request failed")
		subLog.Warn().Err(err).Msg("exchange rate request failed")
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, "exchange rate returned invalid response code")
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("exchange rate returned invalid response code")
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode)
	}

	var rate wiseRate
	if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not decode exchange rate")
		subLog.Warn().Err(err).Msg("could not decode exchange rate")
		return 0, err
	}

	if rate.Value <= 0 || math.IsNaN(rate.Value) || math.IsInf(rate.Value, 0) {
		span.SetStatus(codes.Error, "exchange rate missing from response")
		return 0, ErrNoData
	}

	return decimal.NewFromFloat(rate.Value).Round(2).InexactFloat64(), nil
}
