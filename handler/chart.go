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

package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/analytics"
	"github.com/penny-vault/nwapi/dataframe"
	"github.com/penny-vault/nwapi/plot"
	"github.com/rs/zerolog/log"
)

const (
	minChartSize = 200
	maxChartSize = 2000
)

func chartSize(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if v < minChartSize {
		return minChartSize
	}
	if v > maxChartSize {
		return maxChartSize
	}
	return v
}

// Chart renders the normalized growth of the dashboard series as a PNG
func (h *Handler) Chart(c *fiber.Ctx) error {
	noStore(c)

	dashboard, err := h.dashboard(c)
	if err != nil {
		log.Error().Err(err).Msg("could not build dashboard for chart")
		return errorMessage(c, fiber.StatusInternalServerError, "Failed to load data")
	}

	series := append([]*analytics.Series{dashboard.Own()}, dashboard.Benchmarks()...)
	df := dataframe.FromSeries(series...).Rebase()

	buf, err := plot.RenderGrowth(df, &plot.Options{
		Title:  "Net worth growth",
		Width:  chartSize(c, "width", plot.DefaultOptions.Width),
		Height: chartSize(c, "height", plot.DefaultOptions.Height),
	})
	if err != nil {
		if errors.Is(err, plot.ErrNotEnoughData) {
			return errorMessage(c, fiber.StatusNotFound, "Not enough data to draw a chart")
		}
		log.Error().Err(err).Msg("could not render chart")
		return errorMessage(c, fiber.StatusInternalServerError, "Failed to render chart")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf)
}
