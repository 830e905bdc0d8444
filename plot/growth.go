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

package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/penny-vault/nwapi/dataframe"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrNotEnoughData = errors.New("need at least 2 data points")
)

// palette is cycled through in column order; the first column is the
// user's own net worth
var palette = []string{
	"2563eb", // blue
	"9ca3af", // gray
	"16a34a", // green
	"f59e0b", // amber
	"dc2626", // red
	"7c3aed", // violet
}

// Options controls the size and labels of a rendered chart
type Options struct {
	Title  string
	Width  int
	Height int
}

// DefaultOptions is used by RenderGrowth when opts is nil
var DefaultOptions = Options{
	Title:  "Growth",
	Width:  900,
	Height: 400,
}

// RenderGrowth renders a PNG line chart with one line per column of df.
// Values are expected to already be percentage growth (see
// DataFrame.Rebase). NaN values are skipped; columns with fewer than 2
// valid points are left out.
func RenderGrowth(df *dataframe.DataFrame, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &DefaultOptions
	}

	series := make([]chart.Series, 0, df.ColCount())
	for colIdx, colName := range df.ColNames {
		xValues := make([]time.Time, 0, df.Len())
		yValues := make([]float64, 0, df.Len())
		for rowIdx, val := range df.Vals[colIdx] {
			if math.IsNaN(val) {
				continue
			}
			xValues = append(xValues, df.Dates[rowIdx])
			yValues = append(yValues, val)
		}

		if len(xValues) < 2 {
			continue
		}

		style := chart.Style{
			StrokeColor: drawing.ColorFromHex(palette[colIdx%len(palette)]),
			StrokeWidth: 1.5,
		}
		if colIdx == 0 {
			style.StrokeWidth = 2.5
		}

		series = append(series, chart.TimeSeries{
			Name:    colName,
			Style:   style,
			XValues: xValues,
			YValues: yValues,
		})
	}

	if len(series) == 0 {
		return nil, ErrNotEnoughData
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
