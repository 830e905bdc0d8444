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

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/auth"
	"github.com/penny-vault/nwapi/handler"
	"github.com/penny-vault/nwapi/middleware"
)

// SetupRoutes registers the v1 API. issuer may be nil when authentication
// is not configured; limiter throttles login attempts per client.
func SetupRoutes(app *fiber.App, h *handler.Handler, issuer *auth.Issuer, limiter *auth.Limiter) {
	api := app.Group("v1")
	api.Get("/", handler.Ping)
	api.Get("/health", h.Health)

	// Authentication
	api.Post("/login", middleware.RateLimit(limiter), h.Login)
	api.Post("/validate-token", h.ValidateToken)

	optional := middleware.Auth(issuer, false)
	required := middleware.Auth(issuer, true)

	// Net worth
	api.Post("/assets", optional, h.Assets)
	api.Post("/add", required, h.Add)
	api.Get("/history", optional, h.History)
	api.Get("/chart.png", optional, h.Chart)
}
