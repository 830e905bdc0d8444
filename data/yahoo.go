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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/penny-vault/nwapi/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	DefaultYahooURL       = "https://query1.finance.yahoo.com"
	DefaultYahooRateLimit = 5
	yahooUserAgent        = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Yahoo downloads daily closes from the Yahoo Finance chart API
type Yahoo struct {
	baseURL string
	limiter *rate.Limiter
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahoo creates a client for the chart API at baseURL limited to
// requestsPerSecond outbound requests
func NewYahoo(baseURL string, requestsPerSecond int) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultYahooRateLimit
	}
	return &Yahoo{
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// ChartURL returns the chart endpoint for symbol covering [begin, end]. The
// upper bound is moved to the following midnight so end itself is included.
func (y *Yahoo) ChartURL(symbol string, begin, end time.Time) string {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", analytics.Day(begin).Unix()))
	params.Set("period2", fmt.Sprintf("%d", analytics.Day(end).AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")
	params.Set("events", "history")
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), params.Encode())
}

// Download fetches the raw chart document for symbol
func (y *Yahoo) Download(ctx context.Context, symbol string, begin, end time.Time) ([]byte, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.Download")
	defer span.End()

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	if end.Before(begin) {
		span.SetStatus(codes.Error, ErrBeginAfterEnd.Error())
		return nil, ErrBeginAfterEnd
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	chartURL := y.ChartURL(symbol, begin, end)
	span.SetAttributes(
		attribute.String("Url", chartURL),
		attribute.String("Symbol", symbol),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "yahoo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read yahoo body"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
		msg := "yahoo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg(msg)
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode)
	}

	return body, nil
}

// ParseChart converts a chart document into a series labelled label. Null
// closes (days without a print) are skipped and timestamps are mapped to
// their UTC calendar date. When a date occurs more than once the later close
// wins.
func ParseChart(label string, body []byte) (*analytics.Series, error) {
	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		log.Error().Err(err).Str("Label", label).Msg("could not unmarshal yahoo chart")
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrProviderError, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return analytics.NewSeries(label, []analytics.Observation{})
	}
	closes := result.Indicators.Quote[0].Close

	obs := make([]analytics.Observation, 0, len(result.Timestamp))
	for idx, ts := range result.Timestamp {
		if idx >= len(closes) || closes[idx] == nil {
			continue
		}

		dt := analytics.Day(time.Unix(ts, 0).UTC())
		o := analytics.Observation{Date: dt, Amount: *closes[idx]}
		if n := len(obs); n > 0 && obs[n-1].Date.Equal(dt) {
			obs[n-1] = o
			continue
		}
		obs = append(obs, o)
	}

	return analytics.SortSeries(label, obs)
}
