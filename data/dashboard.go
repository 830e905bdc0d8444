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
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/rs/zerolog/log"
)

// Dashboard is the payload of the assets endpoint: the user's own series
// (or the visitor proxy), every benchmark of the group, the exchange rate
// and the analytics computed from them
type Dashboard struct {
	Keys         []string
	Series       map[string]*analytics.Series
	ExchangeRate float64
	Analytics    *analytics.Report
	Visitor      bool
}

// MarshalJSON encodes the dashboard as
// {"assets": [...], "<key>": [...], "exchangeRate": 7.25, "analytics": {...}}
func (dashboard *Dashboard) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(dashboard.Series)+3)
	for _, key := range dashboard.Keys {
		obs := []analytics.Observation{}
		if s := dashboard.Series[key]; s != nil {
			obs = s.Observations
		}
		flat[key] = obs
	}
	flat["exchangeRate"] = dashboard.ExchangeRate
	flat["analytics"] = dashboard.Analytics
	flat["visitor"] = dashboard.Visitor
	return json.Marshal(flat)
}

// Own returns the user's own series
func (dashboard *Dashboard) Own() *analytics.Series {
	return dashboard.Series[OwnKey]
}

// Benchmarks returns the benchmark series in catalog order
func (dashboard *Dashboard) Benchmarks() []*analytics.Series {
	res := make([]*analytics.Series, 0, len(dashboard.Keys))
	for _, key := range dashboard.Keys {
		if key == OwnKey {
			continue
		}
		res = append(res, dashboard.Series[key])
	}
	return res
}

func (manager *Manager) buildDashboard(ctx context.Context, own *analytics.Series, benchmarks []Benchmark, begin, end time.Time, now time.Time) (*Dashboard, error) {
	var (
		rate float64
		wg   sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		rate = manager.ExchangeRate(ctx)
	}()

	var (
		series []*analytics.Series
		err    error
	)
	if own.Len() > 0 {
		series, err = manager.Benchmarks(ctx, benchmarks, begin, end)
	} else {
		series = make([]*analytics.Series, len(benchmarks))
	}
	wg.Wait()

	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Keys:         make([]string, 0, len(benchmarks)+1),
		Series:       make(map[string]*analytics.Series, len(benchmarks)+1),
		ExchangeRate: rate,
	}

	dashboard.Keys = append(dashboard.Keys, OwnKey)
	dashboard.Series[OwnKey] = own
	for idx, bench := range benchmarks {
		s := series[idx]
		if s == nil {
			s = &analytics.Series{Label: bench.Key, Observations: []analytics.Observation{}}
		}
		dashboard.Keys = append(dashboard.Keys, bench.Key)
		dashboard.Series[bench.Key] = s
	}

	dashboard.Analytics = analytics.BuildReport(own, dashboard.Benchmarks(), now)
	return dashboard, nil
}

// VisitorDashboard builds the public demo dashboard: the visitor group's
// proxy symbol stands in for the user's own net worth from the group's
// start date until now
func (manager *Manager) VisitorDashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	group, err := manager.catalog.Group(GroupVisitor)
	if err != nil {
		return nil, err
	}

	begin, ok, err := group.SinceDate()
	if err != nil {
		return nil, err
	}
	if !ok {
		begin = now.AddDate(-1, 0, 0)
	}

	own, err := manager.Series(ctx, OwnKey, group.Proxy, begin, now)
	if err != nil {
		log.Error().Err(err).Str("Proxy", group.Proxy).Msg("could not load visitor series")
		return nil, err
	}

	dashboard, err := manager.buildDashboard(ctx, own, group.Benchmarks, begin, now, now)
	if err != nil {
		return nil, err
	}
	dashboard.Visitor = true
	return dashboard, nil
}

// AssetDashboard builds the dashboard of a signed-in user. Benchmarks cover
// the range between the first and last recorded net worth entry; a user with
// no entries gets empty benchmark series.
func (manager *Manager) AssetDashboard(ctx context.Context, own *analytics.Series, now time.Time) (*Dashboard, error) {
	group, err := manager.catalog.Group(GroupAssets)
	if err != nil {
		return nil, err
	}

	if own == nil {
		own = &analytics.Series{Label: OwnKey, Observations: []analytics.Observation{}}
	}

	first, _ := own.First()
	last, _ := own.Last()
	return manager.buildDashboard(ctx, own, group.Benchmarks, first.Date, last.Date, now)
}

// History returns the merged close history of the history group from its
// start date until now
func (manager *Manager) History(ctx context.Context, now time.Time) ([]analytics.MergedRow, error) {
	group, err := manager.catalog.Group(GroupHistory)
	if err != nil {
		return nil, err
	}

	begin, ok, err := group.SinceDate()
	if err != nil {
		return nil, err
	}
	if !ok {
		begin = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	series, err := manager.Benchmarks(ctx, group.Benchmarks, begin, now)
	if err != nil {
		return nil, err
	}

	return analytics.Merge(series...), nil
}
