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

package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/rs/zerolog/log"
)

// FromMerged builds a dataframe from merged rows. cols selects and orders
// the columns; a label missing on a row becomes NaN.
func FromMerged(rows []analytics.MergedRow, cols ...string) *DataFrame {
	df := &DataFrame{
		Dates:    make([]time.Time, 0, len(rows)),
		ColNames: cols,
		Vals:     make([][]float64, len(cols)),
	}

	for colIdx := range cols {
		df.Vals[colIdx] = make([]float64, 0, len(rows))
	}

	for _, row := range rows {
		dt, err := time.Parse(analytics.DateFormat, row.Date)
		if err != nil {
			log.Warn().Err(err).Str("Date", row.Date).Msg("skipping row with invalid date")
			continue
		}
		df.Dates = append(df.Dates, dt)
		for colIdx, col := range cols {
			val, ok := row.Value(col)
			if !ok {
				val = math.NaN()
			}
			df.Vals[colIdx] = append(df.Vals[colIdx], val)
		}
	}

	return df
}

// FromSeries aligns series on a shared date axis; each series becomes a
// column named after its label
func FromSeries(series ...*analytics.Series) *DataFrame {
	cols := make([]string, 0, len(series))
	for _, s := range series {
		if s != nil {
			cols = append(cols, s.Label)
		}
	}
	return FromMerged(analytics.Merge(series...), cols...)
}

// ColIndex returns the index of the column or -1 if it doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}
	return -1
}

// Column returns the values of colName
func (df *DataFrame) Column(colName string) ([]float64, error) {
	idx := df.ColIndex(colName)
	if idx == -1 {
		return nil, fmt.Errorf("%s: %w", colName, ErrColumnNotFound)
	}
	return df.Vals[idx], nil
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// FFill replaces NaN values with the last valid value of the column and
// returns a new dataframe. Leading NaNs stay NaN.
func (df *DataFrame) FFill() *DataFrame {
	df = df.Copy()
	for _, col := range df.Vals {
		last := math.NaN()
		for rowIdx, val := range col {
			if math.IsNaN(val) {
				col[rowIdx] = last
				continue
			}
			last = val
		}
	}
	return df
}

// Rebase converts every column to percentage growth from its first valid
// value and returns a new dataframe. NaNs are preserved; a column whose
// first valid value is 0 becomes all 0.
func (df *DataFrame) Rebase() *DataFrame {
	df = df.Copy()
	for _, col := range df.Vals {
		start := -1
		for rowIdx, val := range col {
			if !math.IsNaN(val) {
				start = rowIdx
				break
			}
		}
		if start == -1 {
			continue
		}

		growth := analytics.Normalize(col[start:])
		for idx, val := range col[start:] {
			if math.IsNaN(val) {
				continue
			}
			col[start+idx] = growth[idx]
		}
	}
	return df
}

// Trim the dataframe to the specified date range (inclusive) and returns a
// new dataframe
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{},
		Vals:     make([][]float64, len(df.Vals)),
	}

	if end.Before(begin) || df.Len() == 0 {
		for colIdx := range df2.Vals {
			df2.Vals[colIdx] = []float64{}
		}
		return df2
	}

	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})
	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})
	if endIdx < beginIdx {
		endIdx = beginIdx
	}

	df2.Dates = df.Dates[beginIdx:endIdx]
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}

// Last returns a dataframe holding the final n rows. A non-positive n keeps
// every row.
func (df *DataFrame) Last(n int) *DataFrame {
	if n <= 0 || n >= df.Len() {
		return df
	}
	return df.Trim(df.Dates[df.Len()-n], df.Dates[df.Len()-1])
}

// Table renders an ASCII formatted table
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>"
	}

	tableCols := append([]string{"Date"}, df.ColNames...)

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for idx, date := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, date.Format(analytics.DateFormat))
		for _, col := range df.Vals {
			if math.IsNaN(col[idx]) {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", col[idx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}
