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
	"gonum.org/v1/gonum/floats"
)

// Drawdown summarizes how far the latest value sits below the high-water
// mark. All fields are nil when computed from an empty sequence.
type Drawdown struct {
	Latest    *float64 `json:"latest"`
	HighPoint *float64 `json:"highPoint"`
	Percent   *float64 `json:"drawdown"`
}

// CalculateDrawdown returns the latest value, the maximum over the whole
// sequence and the percentage decline of latest from that maximum
// ((high - latest) / high * 100, rounded to 2 decimals). vals must be in
// chronological order. A high point of 0 yields a drawdown of 0.
func CalculateDrawdown(vals []float64) Drawdown {
	if len(vals) == 0 {
		return Drawdown{}
	}

	latest := vals[len(vals)-1]
	high := floats.Max(vals)

	var pct float64
	if high != 0 {
		pct = round2((high - latest) / high * 100)
	}

	return Drawdown{
		Latest:    &latest,
		HighPoint: &high,
		Percent:   &pct,
	}
}
