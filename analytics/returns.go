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

import (
	"math"
	"strconv"
	"time"
)

// Window is a trailing look-back period measured in calendar years. A window
// of 1 is "this year", 3 is this year plus the two before it, and so on.
type Window int

const (
	OneYear    Window = 1
	ThreeYears Window = 3
	FiveYears  Window = 5
)

// StandardWindows are the look-back periods shown on the dashboard
var StandardWindows = []Window{OneYear, ThreeYears, FiveYears}

// String returns the window formatted as e.g. "3y"
func (w Window) String() string {
	return strconv.Itoa(int(w)) + "y"
}

// MarshalText lets a Window be used as a JSON object key
func (w Window) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Bounds returns the first and last day covered by the window relative to now:
// January 1 of (now.Year() - w + 1) through December 31 of now.Year()
func (w Window) Bounds(now time.Time) (begin, end time.Time) {
	year := now.Year()
	begin = time.Date(year-int(w)+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return
}

// ReturnRate computes the percentage change of s over the trailing window.
// The start point is the first observation on or after the window start and
// the end point is the last observation on or before the window end. If the
// series starts inside the window the start point clamps to its first
// observation.
//
// Returns 0 if either point is missing, the start amount is 0 or window < 1.
func ReturnRate(s *Series, window Window, now time.Time) float64 {
	if s.Len() == 0 || window < 1 {
		return 0
	}

	begin, end := window.Bounds(now)

	startIdx := -1
	for idx, obs := range s.Observations {
		if !obs.Date.Before(begin) {
			startIdx = idx
			break
		}
	}

	endIdx := -1
	for idx := len(s.Observations) - 1; idx >= 0; idx-- {
		if !s.Observations[idx].Date.After(end) {
			endIdx = idx
			break
		}
	}

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return 0
	}

	startAmount := s.Observations[startIdx].Amount
	endAmount := s.Observations[endIdx].Amount
	if startAmount == 0 {
		return 0
	}

	return round2((endAmount - startAmount) / startAmount * 100)
}

// ReturnRates computes ReturnRate for each of the requested windows. If no
// windows are given StandardWindows is used.
func ReturnRates(s *Series, now time.Time, windows ...Window) map[Window]float64 {
	if len(windows) == 0 {
		windows = StandardWindows
	}

	res := make(map[Window]float64, len(windows))
	for _, w := range windows {
		res[w] = ReturnRate(s, w, now)
	}
	return res
}

// AnnualizedReturn computes the compound annual growth rate (as a percentage
// rounded to 2 decimals) between the first and last observation of s.
//
// Returns 0 for fewer than 2 observations, a non-positive elapsed time or a
// zero starting amount.
func AnnualizedReturn(s *Series) float64 {
	if s.Len() < 2 {
		return 0
	}

	start, _ := s.First()
	end, _ := s.Last()

	years := YearsBetween(start.Date, end.Date)
	if years <= 0 || start.Amount == 0 {
		return 0
	}

	return round2((math.Pow(end.Amount/start.Amount, 1/years) - 1) * 100)
}

// YearsBetween returns the fractional number of calendar years from begin to
// end. Whole years are counted on the calendar (Jan 1 to Jan 1 is exactly 1)
// and the remainder is the fraction of the following year that has elapsed.
// Returns 0 if end is not after begin.
func YearsBetween(begin, end time.Time) float64 {
	begin = Day(begin)
	end = Day(end)
	if !end.After(begin) {
		return 0
	}

	whole := end.Year() - begin.Year()
	anchor := begin.AddDate(whole, 0, 0)
	for anchor.After(end) {
		whole--
		anchor = begin.AddDate(whole, 0, 0)
	}

	next := begin.AddDate(whole+1, 0, 0)
	frac := end.Sub(anchor).Hours() / next.Sub(anchor).Hours()

	return float64(whole) + frac
}
