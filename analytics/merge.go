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
	"sort"

	"github.com/goccy/go-json"
)

// MergedRow is one date of a multi-series table. Values only holds the labels
// of series that have an observation on Date; a missing key means "no data",
// which is not the same thing as a value of 0.
type MergedRow struct {
	Date   string
	Values map[string]float64
}

// Value returns the value of label on this row and whether it was present
func (row MergedRow) Value(label string) (float64, bool) {
	v, ok := row.Values[label]
	return v, ok
}

// MarshalJSON flattens the row into {"date": "2006-01-02", "<label>": value, ...}
func (row MergedRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(row.Values)+1)
	for k, v := range row.Values {
		flat[k] = v
	}
	flat["date"] = row.Date
	return json.Marshal(flat)
}

// Merge aligns all series on a shared, ascending date axis (a keyed outer
// join on the ISO date). There is exactly one row per distinct date across
// the inputs. Rows are created in first-seen order and then sorted; ISO dates
// sort lexically in date order. Nil series are skipped.
func Merge(series ...*Series) []MergedRow {
	rowIdx := make(map[string]int)
	rows := make([]MergedRow, 0)

	for _, s := range series {
		if s == nil {
			continue
		}
		for _, obs := range s.Observations {
			key := obs.Date.Format(DateFormat)
			idx, ok := rowIdx[key]
			if !ok {
				idx = len(rows)
				rowIdx[key] = idx
				rows = append(rows, MergedRow{
					Date:   key,
					Values: make(map[string]float64, len(series)),
				})
			}
			rows[idx].Values[s.Label] = obs.Amount
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date < rows[j].Date
	})

	return rows
}
