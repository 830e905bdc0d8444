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
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// DateFormat is the ISO layout used for series dates on the wire
const DateFormat = "2006-01-02"

var (
	ErrUnsorted      = errors.New("observations are not in ascending date order")
	ErrDuplicateDate = errors.New("observations contain a duplicate date")
	ErrInvalidAmount = errors.New("observation amount must be a finite, non-negative number")
)

// Observation is a single dated amount of a series. Dates have day resolution.
type Observation struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// MarshalJSON writes the date in DateFormat rather than RFC 3339
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}{
		Date:   o.Date.Format(DateFormat),
		Amount: o.Amount,
	})
}

// Series is an ordered sequence of observations sharing one label, e.g. the
// user's own net worth or a benchmark's closing price. A Series built with
// NewSeries is guaranteed to be in ascending date order with unique dates.
type Series struct {
	Label        string        `json:"label"`
	Observations []Observation `json:"observations"`
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewSeries validates observations and returns a new series. The input slice
// is copied; dates are truncated to day resolution before validation.
func NewSeries(label string, observations []Observation) (*Series, error) {
	obs := make([]Observation, len(observations))
	for idx, o := range observations {
		if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) || o.Amount < 0 {
			return nil, fmt.Errorf("%s @ %s: %w", label, o.Date.Format(DateFormat), ErrInvalidAmount)
		}
		obs[idx] = Observation{Date: Day(o.Date), Amount: o.Amount}
	}

	for idx := 1; idx < len(obs); idx++ {
		prev := obs[idx-1].Date
		curr := obs[idx].Date
		if curr.Equal(prev) {
			return nil, fmt.Errorf("%s @ %s: %w", label, curr.Format(DateFormat), ErrDuplicateDate)
		}
		if curr.Before(prev) {
			return nil, fmt.Errorf("%s @ %s: %w", label, curr.Format(DateFormat), ErrUnsorted)
		}
	}

	return &Series{
		Label:        label,
		Observations: obs,
	}, nil
}

// SortSeries sorts a copy of observations by date and then validates it with
// NewSeries. Use this for data whose order is not guaranteed by its source.
func SortSeries(label string, observations []Observation) (*Series, error) {
	obs := make([]Observation, len(observations))
	copy(obs, observations)
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
	return NewSeries(label, obs)
}

// Len returns the number of observations in the series
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// Amounts returns the amounts of the series in date order
func (s *Series) Amounts() []float64 {
	vals := make([]float64, s.Len())
	for idx := range vals {
		vals[idx] = s.Observations[idx].Amount
	}
	return vals
}

// Dates returns the dates of the series
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, s.Len())
	for idx := range dates {
		dates[idx] = s.Observations[idx].Date
	}
	return dates
}

// First returns the earliest observation; ok is false for an empty series
func (s *Series) First() (obs Observation, ok bool) {
	if s.Len() == 0 {
		return Observation{}, false
	}
	return s.Observations[0], true
}

// Last returns the latest observation; ok is false for an empty series
func (s *Series) Last() (obs Observation, ok bool) {
	if s.Len() == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Between returns a new series with the observations in [begin, end] (inclusive)
func (s *Series) Between(begin, end time.Time) *Series {
	begin = Day(begin)
	end = Day(end)
	res := &Series{Observations: []Observation{}}
	if s == nil {
		return res
	}
	res.Label = s.Label

	if end.Before(begin) {
		return res
	}

	startIdx := sort.Search(s.Len(), func(i int) bool {
		return !s.Observations[i].Date.Before(begin)
	})
	endIdx := sort.Search(s.Len(), func(i int) bool {
		return s.Observations[i].Date.After(end)
	})

	if startIdx < endIdx {
		res.Observations = make([]Observation, endIdx-startIdx)
		copy(res.Observations, s.Observations[startIdx:endIdx])
	}
	return res
}
