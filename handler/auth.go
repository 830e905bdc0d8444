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
	"github.com/penny-vault/nwapi/auth"
	"github.com/penny-vault/nwapi/middleware"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// Login exchanges the admin credential for a signed token. The token is
// returned in the body and set as an http-only cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	if h.issuer == nil {
		log.Error().Msg("login requested but authentication is not configured")
		return errorMessage(c, fiber.StatusInternalServerError, "Server misconfiguration")
	}

	params := loginRequest{}
	if err := json.Unmarshal(c.Body(), &params); err != nil {
		log.Warn().Err(err).Msg("login bad request")
		return errorMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	token, session, err := h.issuer.Login(params.Username, params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorMessage(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return errorMessage(c, fiber.StatusInternalServerError, "Login failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"token": token})
}

// ValidateToken reports whether the posted token is valid
func (h *Handler) ValidateToken(c *fiber.Ctx) error {
	if h.issuer == nil {
		log.Error().Msg("token validation requested but authentication is not configured")
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"valid": false, "error": "Server misconfiguration"})
	}

	params := validateRequest{}
	if err := json.Unmarshal(c.Body(), &params); err != nil || params.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false})
	}

	if _, err := h.issuer.Validate(params.Token); err != nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"valid": false, "error": middleware.TokenErrorMessage(err)})
	}

	return c.JSON(fiber.Map{"valid": true})
}
