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

package analytics

import "time"

// SeriesReport is the per-series block shown on the dashboard
type SeriesReport struct {
	Label    string             `json:"label"`
	Returns  map[Window]float64 `json:"returns"`
	CAGR     float64            `json:"cagr"`
	CAGRText string             `json:"cagrText"`
	Growth   []float64          `json:"growth"`
	Drawdown Drawdown           `json:"drawdown"`
}

// Report bundles the analytics of the user's own series and each benchmark
type Report struct {
	AsOf       string         `json:"asOf"`
	LatestDate string         `json:"latestDate,omitempty"`
	Summary    Drawdown       `json:"summary"`
	Series     []SeriesReport `json:"series"`
}

// BuildSeriesReport runs every transform over s
func BuildSeriesReport(s *Series, now time.Time) SeriesReport {
	var label string
	if s != nil {
		label = s.Label
	}

	cagr := AnnualizedReturn(s)
	return SeriesReport{
		Label:    label,
		Returns:  ReturnRates(s, now),
		CAGR:     cagr,
		CAGRText: FormatPercent(cagr),
		Growth:   Normalize(s.Amounts()),
		Drawdown: CalculateDrawdown(s.Amounts()),
	}
}

// BuildReport computes the dashboard analytics. own is listed first, followed
// by the benchmarks in the order given.
func BuildReport(own *Series, benchmarks []*Series, now time.Time) *Report {
	report := &Report{
		AsOf:    Day(now).Format(DateFormat),
		Summary: CalculateDrawdown(own.Amounts()),
		Series:  make([]SeriesReport, 0, len(benchmarks)+1),
	}

	if last, ok := own.Last(); ok {
		report.LatestDate = last.Date.Format(DateFormat)
	}

	report.Series = append(report.Series, BuildSeriesReport(own, now))
	for _, s := range benchmarks {
		report.Series = append(report.Series, BuildSeriesReport(s, now))
	}

	return report
}
