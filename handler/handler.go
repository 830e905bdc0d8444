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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/auth"
	"github.com/penny-vault/nwapi/calculator"
	"github.com/penny-vault/nwapi/data"
	"github.com/shopspring/decimal"
)

// Handler holds the dependencies of the API endpoints
type Handler struct {
	manager *data.Manager
	issuer  *auth.Issuer
	store   *data.AssetStore
	usdRate decimal.Decimal
	now     func() time.Time
}

// Option configures a Handler
type Option func(*Handler)

// WithClock replaces time.Now; used by tests
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithUSDRate sets the rate the calculator uses to convert USD rows to CNY
func WithUSDRate(rate decimal.Decimal) Option {
	return func(h *Handler) {
		if rate.IsPositive() {
			h.usdRate = rate
		}
	}
}

// New creates a handler. issuer may be nil when authentication is not
// configured; login and token validation then answer with 500.
func New(manager *data.Manager, issuer *auth.Issuer, store *data.AssetStore, opts ...Option) *Handler {
	h := &Handler{
		manager: manager,
		issuer:  issuer,
		store:   store,
		usdRate: calculator.DefaultUSDRate,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// noStore disables every layer of caching for responses that depend on the
// caller's session
func noStore(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
}

func errorMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}
