// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

// tokenLeeway renews a token this long before its "exp" claim.
const tokenLeeway = 30 * time.Second

// StaticCredentials serves a fixed bearer token, e.g. one passed on the
// command line. It cannot be refreshed.
type StaticCredentials struct {
	token string
}

// NewStaticCredentials returns a provider that always answers token.
func NewStaticCredentials(token string) *StaticCredentials {
	return &StaticCredentials{token: strings.TrimSpace(token)}
}

// Token implements [CredentialProvider].
func (s *StaticCredentials) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoCredentials
	}
	return s.token, nil
}

// Refresh implements [CredentialProvider]. A static token cannot be renewed,
// so it always fails with [ErrUnauthorized].
func (s *StaticCredentials) Refresh(context.Context) (string, error) {
	return "", fmt.Errorf("static token cannot be refreshed: %w", ErrUnauthorized)
}

// LoginCredentialProvider obtains tokens from POST /v1/api/auth/login and
// caches them until shortly before the JWT "exp" claim.
type LoginCredentialProvider struct {
	client   *utils.HTTPClient
	username string
	password string
	now      func() time.Time
	logger   *logger.Logger

	mu    sync.Mutex
	token models.AccessToken
}

// NewLoginCredentialProvider builds a provider that logs in with the
// username and password of cfg against cfg.HTTPAddress.
func NewLoginCredentialProvider(cfg config.ClientAdapter, log *logger.Logger) (*LoginCredentialProvider, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrNoCredentials
	}

	client := utils.NewHTTPClient(cfg.RequestTimeout)
	client.SetBaseURL(baseURL)

	return &LoginCredentialProvider{
		client:   client,
		username: cfg.Username,
		password: cfg.Password,
		now:      time.Now,
		logger:   log,
	}, nil
}

// Token implements [CredentialProvider]. It returns the cached token unless
// it is missing or about to expire, in which case it logs in again.
func (p *LoginCredentialProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.token.Expired(p.now(), tokenLeeway) {
		return p.token.Value, nil
	}
	return p.login(ctx)
}

// Refresh implements [CredentialProvider].
func (p *LoginCredentialProvider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = models.AccessToken{}
	return p.login(ctx)
}

func (p *LoginCredentialProvider) login(ctx context.Context) (string, error) {
	var out models.LoginResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{Username: p.username, Password: p.password}).
		SetResult(&out).
		Post(loginPath)
	if err != nil {
		return "", mapTransportError("login", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login: empty access token: %w", ErrUnauthorized)
	}

	expiresAt, err := utils.ParseTokenExpiry(out.AccessToken)
	if err != nil {
		// opaque tokens are kept until the backend rejects them
		p.logger.Warn().Err(err).
			Str("func", "*LoginCredentialProvider.login").
			Msg("access token is not a JWT, expiry unknown")
	}

	p.token = models.AccessToken{Value: out.AccessToken, ExpiresAt: expiresAt}

	p.logger.Debug().
		Str("func", "*LoginCredentialProvider.login").
		Time("expires_at", expiresAt).
		Msg("logged in")

	return out.AccessToken, nil
}
