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
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/middleware"
	"github.com/rs/zerolog/log"
)

// History returns the merged close history of the history benchmarks.
// Anonymous callers get the visitor dashboard instead.
func (h *Handler) History(c *fiber.Ctx) error {
	noStore(c)

	if _, ok := middleware.GetSession(c); !ok {
		dashboard, err := h.manager.VisitorDashboard(c.UserContext(), h.now())
		if err != nil {
			log.Error().Err(err).Msg("could not build visitor dashboard")
			return errorMessage(c, fiber.StatusInternalServerError, "Failed to load data")
		}
		return c.JSON(dashboard)
	}

	rows, err := h.manager.History(c.UserContext(), h.now())
	if err != nil {
		log.Error().Err(err).Msg("could not load history")
		return errorMessage(c, fiber.StatusInternalServerError, "Failed to load data")
	}

	return c.JSON(rows)
}
