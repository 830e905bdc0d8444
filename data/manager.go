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
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/penny-vault/nwapi/analytics"
	"github.com/penny-vault/nwapi/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Manager answers benchmark and exchange rate requests, downloading from the
// quote provider on a cache miss
type Manager struct {
	catalog      Catalog
	yahoo        *Yahoo
	exchangeURL  string
	defaultRate  float64
	maxInFlight  int
	refreshMutex sync.Mutex
}

// NewManager creates a manager for catalog configured from the quotes.*
// viper keys
func NewManager(catalog Catalog) *Manager {
	exchangeURL := viper.GetString("quotes.exchange_rate_url")
	if exchangeURL == "" {
		exchangeURL = DefaultExchangeRateURL
	}

	defaultRate := viper.GetFloat64("quotes.default_exchange_rate")
	if defaultRate <= 0 {
		defaultRate = DefaultExchangeRate
	}

	maxInFlight := viper.GetInt("quotes.max_in_flight")
	if maxInFlight <= 0 {
		maxInFlight = 4
	}

	return &Manager{
		catalog:     catalog,
		yahoo:       NewYahoo(viper.GetString("quotes.base_url"), viper.GetInt("quotes.rate_limit")),
		exchangeURL: exchangeURL,
		defaultRate: defaultRate,
		maxInFlight: maxInFlight,
	}
}

// Catalog returns the benchmark catalog of the manager
func (manager *Manager) Catalog() Catalog {
	return manager.catalog
}

func seriesCacheKey(symbol string, begin, end time.Time) string {
	return common.CacheKey("yahoo", symbol, begin.Format(analytics.DateFormat), end.Format(analytics.DateFormat))
}

// Series returns the closes of symbol in [begin, end] labelled label
func (manager *Manager) Series(ctx context.Context, label, symbol string, begin, end time.Time) (*analytics.Series, error) {
	return manager.loadSeries(ctx, label, symbol, begin, end, false)
}

// loadSeries downloads the chart when it is not cached or when refresh is set.
// A downloaded chart is written back to every cache tier.
func (manager *Manager) loadSeries(ctx context.Context, label, symbol string, begin, end time.Time, refresh bool) (*analytics.Series, error) {
	begin = analytics.Day(begin)
	end = analytics.Day(end)
	if end.Before(begin) {
		return nil, ErrBeginAfterEnd
	}

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	key := seriesCacheKey(symbol, begin, end)

	var (
		body   []byte
		err    error
		cached bool
	)
	if !refresh {
		body, err = common.CacheGet(ctx, key)
		cached = err == nil
	}
	if !cached {
		if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			subLog.Warn().Err(err).Msg("cache lookup failed")
		}
		body, err = manager.yahoo.Download(ctx, symbol, begin, end)
		if err != nil {
			return nil, err
		}
	}

	subLog.Debug().Bool("Cached", cached).Msg("loaded chart")

	series, err := ParseChart(label, body)
	if err != nil {
		return nil, err
	}

	if !cached {
		if err := common.CacheSet(ctx, key, body); err != nil {
			subLog.Warn().Err(err).Msg("could not cache chart")
		}
	}

	return series.Between(begin, end), nil
}

// Benchmarks downloads every benchmark in benchmarks concurrently. The result
// is in the same order as benchmarks; any failure fails the whole request.
func (manager *Manager) Benchmarks(ctx context.Context, benchmarks []Benchmark, begin, end time.Time) ([]*analytics.Series, error) {
	return manager.loadBenchmarks(ctx, benchmarks, begin, end, false)
}

func (manager *Manager) loadBenchmarks(ctx context.Context, benchmarks []Benchmark, begin, end time.Time, refresh bool) ([]*analytics.Series, error) {
	res := make([]*analytics.Series, len(benchmarks))
	if len(benchmarks) == 0 {
		return res, nil
	}

	ch := make(chan quoteResult)
	sem := make(chan struct{}, manager.maxInFlight)

	for idx := range benchmarks {
		go func(idx int, bench Benchmark) {
			sem <- struct{}{}
			defer func() { <-sem }()

			series, err := manager.loadSeries(ctx, bench.Key, bench.Symbol, begin, end, refresh)
			ch <- quoteResult{
				Idx:    idx,
				Symbol: bench.Symbol,
				Data:   series,
				Err:    err,
			}
		}(idx, benchmarks[idx])
	}

	var firstErr error
	for range benchmarks {
		v := <-ch
		if v.Err != nil {
			log.Warn().Err(v.Err).Str("Symbol", v.Symbol).Msg("cannot download benchmark data")
			if firstErr == nil {
				firstErr = v.Err
			}
			continue
		}
		res[v.Idx] = v.Data
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return res, nil
}

// ExchangeRate returns the live USD to CNY rate. If the rate cannot be
// fetched the configured default is returned instead.
func (manager *Manager) ExchangeRate(ctx context.Context) float64 {
	return manager.exchangeRate(ctx, false)
}

func (manager *Manager) exchangeRate(ctx context.Context, refresh bool) float64 {
	key := common.CacheKey("exchange-rate", manager.exchangeURL)
	if !refresh {
		if cached, err := common.CacheGet(ctx, key); err == nil {
			if rate, err := strconv.ParseFloat(string(cached), 64); err == nil {
				return rate
			}
		}
	}

	rate, err := FetchExchangeRate(ctx, manager.exchangeURL)
	if err != nil {
		log.Warn().Err(err).Float64("Default", manager.defaultRate).Msg("using default exchange rate")
		return manager.defaultRate
	}

	if err := common.CacheSet(ctx, key, []byte(strconv.FormatFloat(rate, 'f', -1, 64))); err != nil {
		log.Warn().Err(err).Msg("could not cache exchange rate")
	}

	return rate
}

// Refresh re-downloads the groups with a fixed start date and the exchange
// rate, overwriting both cache tiers, so the first request after a refresh
// does not wait on the provider
func (manager *Manager) Refresh(ctx context.Context) {
	manager.refreshMutex.Lock()
	defer manager.refreshMutex.Unlock()

	start := time.Now()

	now := time.Now().UTC()
	for name, group := range manager.catalog {
		since, ok, err := group.SinceDate()
		if err != nil || !ok {
			continue
		}

		benchmarks := group.Benchmarks
		if group.Proxy != "" {
			benchmarks = append([]Benchmark{{Key: OwnKey, Symbol: group.Proxy}}, benchmarks...)
		}

		if _, err := manager.loadBenchmarks(ctx, benchmarks, since, now, true); err != nil {
			log.Warn().Err(err).Str("Group", name).Msg("refresh of benchmark group failed")
		}
	}

	manager.exchangeRate(ctx, true)
	log.Info().Dur("Elapsed", time.Since(start)).Msg("refreshed benchmark data")
}
