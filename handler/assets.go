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

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/calculator"
	"github.com/penny-vault/nwapi/data"
	"github.com/penny-vault/nwapi/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrAmountRequired = errors.New("amount is required")
)

type addRequest struct {
	Amount json.RawMessage  `json:"amount"`
	Rows   []calculator.Row `json:"rows"`
}

// dashboard builds the visitor dashboard for anonymous requests and the
// stored net worth dashboard for signed-in users
func (h *Handler) dashboard(c *fiber.Ctx) (*data.Dashboard, error) {
	ctx := c.UserContext()
	now := h.now()

	if _, ok := middleware.GetSession(c); !ok {
		return h.manager.VisitorDashboard(ctx, now)
	}

	if h.store == nil {
		return nil, data.ErrNotConnected
	}

	own, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return h.manager.AssetDashboard(ctx, own, now)
}

// Assets returns the dashboard with the analytics of the caller's net worth
// (or the visitor proxy) against every benchmark
func (h *Handler) Assets(c *fiber.Ctx) error {
	noStore(c)

	dashboard, err := h.dashboard(c)
	if err != nil {
		log.Error().Err(err).Str("RequestID", middleware.RequestID(c)).Msg("could not build dashboard")
		return errorMessage(c, fiber.StatusInternalServerError, "Failed to load data")
	}

	return c.JSON(dashboard)
}

// parseAddRequest returns the amount to record. When rows are present the
// calculator total is used, otherwise amount.
func (h *Handler) parseAddRequest(body []byte) (decimal.Decimal, error) {
	params := addRequest{}
	if err := json.Unmarshal(body, &params); err != nil {
		return decimal.Zero, err
	}

	if len(params.Rows) > 0 {
		return calculator.Total(params.Rows, h.usdRate)
	}

	if len(params.Amount) == 0 || string(params.Amount) == "null" {
		return decimal.Zero, ErrAmountRequired
	}

	amount, err := calculator.ParseAmountJSON(params.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, calculator.ErrNegativeTotal
	}
	return amount, nil
}

// Add records a net worth amount at the current time
func (h *Handler) Add(c *fiber.Ctx) error {
	amount, err := h.parseAddRequest(c.Body())
	if err != nil {
		log.Warn().Err(err).Msg("add amount bad request")
		return errorMessage(c, fiber.StatusBadRequest, err.Error())
	}

	if h.store == nil {
		return errorMessage(c, fiber.StatusInternalServerError, "Insert failed: database is not connected")
	}

	entry, err := h.store.Insert(c.UserContext(), amount, h.now())
	if err != nil {
		return errorMessage(c, fiber.StatusInternalServerError, "Insert failed")
	}

	return c.JSON(fiber.Map{
		"message": "Data inserted successfully",
		"amount":  entry.Amount.InexactFloat64(),
		"date":    entry.Date,
	})
}
