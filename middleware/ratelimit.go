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

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/auth"
	"github.com/rs/zerolog/log"
)

// RateLimit rejects requests with 429 once the client IP exhausts limiter
func RateLimit(limiter *auth.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.IP()) {
			log.Warn().Str("IP", c.IP()).Str("Path", c.Path()).Msg("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).
				JSON(fiber.Map{"status": "error", "message": "Too many attempts, try again later"})
		}
		return c.Next()
	}
}
