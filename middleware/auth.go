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
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/nwapi/auth"
	"github.com/rs/zerolog/log"
)

const (
	sessionKey  = "session"
	tokenCookie = "token"
)

// TokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the token cookie
func TokenFromRequest(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Cookies(tokenCookie)
}

// GetSession returns the session stored on the request by Auth
func GetSession(c *fiber.Ctx) (*auth.Session, bool) {
	session, ok := c.Locals(sessionKey).(*auth.Session)
	return session, ok && session != nil
}

// Auth validates the request token and stores the session on the request.
// When required is false a missing or bad token leaves the request anonymous.
// A nil issuer means authentication is not configured.
func Auth(issuer *auth.Issuer, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			if required {
				return c.Status(fiber.StatusUnauthorized).
					JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
			}
			return c.Next()
		}

		if issuer == nil {
			log.Error().Str("Path", c.Path()).Msg("token received but authentication is not configured")
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"status": "error", "message": "Server misconfiguration"})
		}

		session, err := issuer.Validate(token)
		if err != nil {
			log.Warn().Err(err).Str("Path", c.Path()).Msg("jwt authentication error")
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"status": "error", "message": TokenErrorMessage(err)})
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// TokenErrorMessage maps a validation error to its client facing message
func TokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, auth.ErrMissingToken):
		return "Token is required"
	default:
		return "Invalid token"
	}
}
