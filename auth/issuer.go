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

package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTTL    = 30 * 24 * time.Hour
	AdminUserID   = "1"
	usernameClaim = "username"
)

var (
	ErrMisconfigured      = errors.New("authentication is not configured")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("token is required")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// Session identifies the signed-in user of a request
type Session struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issuer checks the admin credential and signs / validates HS256 tokens
type Issuer struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// IssuerOption configures an Issuer
type IssuerOption func(*Issuer)

// WithClock replaces time.Now; used by tests
func WithClock(now func() time.Time) IssuerOption {
	return func(issuer *Issuer) {
		issuer.now = now
	}
}

// WithTTL sets the lifetime of issued tokens
func WithTTL(ttl time.Duration) IssuerOption {
	return func(issuer *Issuer) {
		if ttl > 0 {
			issuer.ttl = ttl
		}
	}
}

// NewIssuer creates an issuer for a single admin account. password may be
// plain text or an existing bcrypt hash.
func NewIssuer(username, password, secret string, opts ...IssuerOption) (*Issuer, error) {
	if username == "" || password == "" || secret == "" {
		return nil, ErrMisconfigured
	}

	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Stack().Err(err).Msg("could not hash admin password")
			return nil, err
		}
	}

	issuer := &Issuer{
		username:     username,
		passwordHash: hash,
		secret:       []byte(secret),
		ttl:          DefaultTTL,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(issuer)
	}

	return issuer, nil
}

// NewIssuerFromConfig builds an issuer from the admin.* and jwt.* viper keys
func NewIssuerFromConfig() (*Issuer, error) {
	return NewIssuer(
		viper.GetString("admin.username"),
		viper.GetString("admin.password"),
		viper.GetString("jwt.secret"),
		WithTTL(viper.GetDuration("jwt.ttl")),
	)
}

// Login checks the credential and returns a signed token
func (issuer *Issuer) Login(username, password string) (string, *Session, error) {
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(issuer.username)) == 1
	pwErr := bcrypt.CompareHashAndPassword(issuer.passwordHash, []byte(password))
	if !userMatch || pwErr != nil {
		log.Warn().Str("Username", username).Msg("login failed")
		return "", nil, ErrInvalidCredentials
	}

	session := &Session{
		UserID:    AdminUserID,
		Username:  issuer.username,
		ExpiresAt: issuer.now().Add(issuer.ttl).Truncate(time.Second),
	}

	token, err := issuer.Sign(session)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("Username", username).Time("ExpiresAt", session.ExpiresAt).Msg("issued token")
	return token, session, nil
}

// Sign creates an HS256 token for session
func (issuer *Issuer) Sign(session *Session) (string, error) {
	tok := jwt.New()
	claims := map[string]interface{}{
		jwt.SubjectKey:    session.UserID,
		jwt.IssuedAtKey:   issuer.now(),
		jwt.ExpirationKey: session.ExpiresAt,
		usernameClaim:     session.Username,
	}
	for k, v := range claims {
		if err := tok.Set(k, v); err != nil {
			log.Error().Stack().Err(err).Str("Claim", k).Msg("could not set token claim")
			return "", err
		}
	}

	signed, err := jwt.Sign(tok, jwa.HS256, issuer.secret)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not sign token")
		return "", err
	}
	return string(signed), nil
}

// Validate verifies the signature of token and returns its session.
// Expired tokens return ErrTokenExpired, every other failure ErrInvalidToken.
// A token issued to a different username than the configured admin is
// invalid.
func (issuer *Issuer) Validate(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	tok, err := jwt.Parse([]byte(token), jwt.WithVerify(jwa.HS256, issuer.secret))
	if err != nil {
		log.Debug().Err(err).Msg("token verification failed")
		return nil, ErrInvalidToken
	}

	exp := tok.Expiration()
	if exp.IsZero() {
		return nil, ErrInvalidToken
	}
	if !issuer.now().Before(exp) {
		return nil, ErrTokenExpired
	}

	session := &Session{
		UserID:    tok.Subject(),
		ExpiresAt: exp,
	}
	if v, ok := tok.Get(usernameClaim); ok {
		session.Username, _ = v.(string)
	}

	if session.UserID == "" || session.Username != issuer.username {
		return nil, ErrInvalidToken
	}

	return session, nil
}
