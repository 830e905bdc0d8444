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

package auth_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/nwapi/auth"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Issuer", func() {
	var (
		issuer *auth.Issuer
		now    time.Time
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		var err error
		issuer, err = auth.NewIssuer("admin", "hunter2", "test-secret", auth.WithClock(func() time.Time { return now }))
		Expect(err).To(BeNil())
	})

	It("requires a complete configuration", func() {
		_, err := auth.NewIssuer("admin", "", "secret")
		Expect(errors.Is(err, auth.ErrMisconfigured)).To(BeTrue())
		_, err = auth.NewIssuer("admin", "pw", "")
		Expect(errors.Is(err, auth.ErrMisconfigured)).To(BeTrue())
	})

	It("accepts a pre-hashed password", func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
		Expect(err).To(BeNil())
		hashed, err := auth.NewIssuer("admin", string(hash), "test-secret")
		Expect(err).To(BeNil())
		_, _, err = hashed.Login("admin", "hunter2")
		Expect(err).To(BeNil())
	})

	Context("when logging in", func() {
		It("issues a token that expires after 30 days", func() {
			token, session, err := issuer.Login("admin", "hunter2")
			Expect(err).To(BeNil())
			Expect(token).ToNot(BeEmpty())
			Expect(session.UserID).To(Equal(auth.AdminUserID))
			Expect(session.ExpiresAt).To(Equal(now.Add(30 * 24 * time.Hour)))
		})

		It("rejects a wrong password", func() {
			_, _, err := issuer.Login("admin", "hunter3")
			Expect(errors.Is(err, auth.ErrInvalidCredentials)).To(BeTrue())
		})

		It("rejects an unknown user", func() {
			_, _, err := issuer.Login("root", "hunter2")
			Expect(errors.Is(err, auth.ErrInvalidCredentials)).To(BeTrue())
		})
	})

	Context("when validating a token", func() {
		var token string

		BeforeEach(func() {
			var err error
			token, _, err = issuer.Login("admin", "hunter2")
			Expect(err).To(BeNil())
		})

		It("returns the session of a valid token", func() {
			session, err := issuer.Validate(token)
			Expect(err).To(BeNil())
			Expect(session.UserID).To(Equal("1"))
			Expect(session.Username).To(Equal("admin"))
		})

		It("reports expired tokens", func() {
			now = now.Add(31 * 24 * time.Hour)
			_, err := issuer.Validate(token)
			Expect(errors.Is(err, auth.ErrTokenExpired)).To(BeTrue())
		})

		It("rejects tokens signed with another secret", func() {
			other, err := auth.NewIssuer("admin", "hunter2", "other-secret")
			Expect(err).To(BeNil())
			_, err = other.Validate(token)
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})

		It("rejects tokens issued to another admin", func() {
			renamed, err := auth.NewIssuer("root", "hunter2", "test-secret", auth.WithClock(func() time.Time { return now }))
			Expect(err).To(BeNil())
			_, err = renamed.Validate(token)
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})

		It("rejects garbage", func() {
			_, err := issuer.Validate("not.a.token")
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})

		It("requires a token", func() {
			_, err := issuer.Validate("  ")
			Expect(errors.Is(err, auth.ErrMissingToken)).To(BeTrue())
		})
	})
})

var _ = Describe("Limiter", func() {
	It("limits each client separately", func() {
		limiter := auth.NewLimiter(1, 2)
		Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		Expect(limiter.Allow("10.0.0.1")).To(BeFalse())
		Expect(limiter.Allow("10.0.0.2")).To(BeTrue())
	})
})
