// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// LoginRequest is the body of POST /v1/api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the successful answer of POST /v1/api/auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// AccessToken is a bearer credential with its expiry as read from the JWT
// "exp" claim. A zero ExpiresAt means the expiry is unknown.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the token is expired at now, allowing for leeway
// before the actual expiry.
func (t AccessToken) Expired(now time.Time, leeway time.Duration) bool {
	if t.Value == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(t.ExpiresAt)
}
