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

	"github.com/shopspring/decimal"
)

// round2 rounds to 2 decimal places (half away from zero). NaN and +/-Inf
// collapse to 0 so that no transform ever hands a non-finite value to callers.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatPercent renders a percentage with 2 decimals, e.g. 10 => "10.00%"
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(round2(v)).StringFixed(2) + "%"
}
