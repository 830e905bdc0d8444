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

	"github.com/rs/zerolog/log"
)

// Normalize rebases vals to percentage growth from the first element:
// res[i] = (vals[i] / vals[0] - 1) * 100, rounded to 2 decimals. The result
// always has the same length as vals.
//
// A zero or non-finite base cannot be rebased; in that case every element of
// the result is 0.
func Normalize(vals []float64) []float64 {
	res := make([]float64, len(vals))
	if len(vals) == 0 {
		return res
	}

	base := vals[0]
	if base == 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		log.Warn().Float64("Base", base).Int("Len", len(vals)).Msg("cannot rebase series with a zero or non-finite base")
		return res
	}

	for idx, v := range vals {
		res[idx] = round2((v/base - 1) * 100)
	}
	res[0] = 0

	return res
}

// NormalizeSeries applies Normalize to the amounts of s and keeps the dates
func NormalizeSeries(s *Series) *Series {
	res := &Series{Observations: make([]Observation, s.Len())}
	if s == nil {
		return res
	}
	res.Label = s.Label

	growth := Normalize(s.Amounts())
	for idx, o := range s.Observations {
		res.Observations[idx] = Observation{Date: o.Date, Amount: growth[idx]}
	}
	return res
}
