// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/emotion-sync/internal/config"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/internal/workers"
	"github.com/MKhiriev/emotion-sync/models"
)

// hashHeader carries the HMAC-SHA256 of a request body when a hash key is
// configured.
const hashHeader = "HashSHA256"

type requestFunc func(r *resty.Request) (*resty.Response, error)

type httpRemoteDataSource struct {
	client *utils.HTTPClient
	creds  CredentialProvider

	hashKey       string
	healthTimeout time.Duration
	poolSize      int

	logger *logger.Logger
}

// NewHTTPRemoteDataSource constructs the REST implementation of
// [RemoteDataSource]. It normalises and validates the base URL from
// cfg.Adapter.HTTPAddress, applies the per-request timeout and initialises
// the shared HMAC hasher pool when cfg.App.HashKey is set. Collection bodies
// are decoded on up to cfg.Workers.PoolSize goroutines.
//
// Returns an error if the address is empty or cannot be parsed as a URL.
func NewHTTPRemoteDataSource(cfg *config.ClientConfig, creds CredentialProvider, log *logger.Logger) (RemoteDataSource, error) {
	baseURL, err := normalizeBaseURL(cfg.Adapter.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(cfg.Adapter.RequestTimeout)
	client.SetBaseURL(baseURL)

	if cfg.App.HashKey != "" {
		utils.InitHasherPool(cfg.App.HashKey)
	}

	return &httpRemoteDataSource{
		client:        client,
		creds:         creds,
		hashKey:       cfg.App.HashKey,
		healthTimeout: cfg.Adapter.HealthTimeout,
		poolSize:      cfg.Workers.PoolSize,
		logger:        log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// GetAll implements [RemoteDataSource]. It GETs /v1/api/{collection}/ and
// decodes the JSON array into concrete payloads of type t.
func (h *httpRemoteDataSource) GetAll(ctx context.Context, t models.EntityType) ([]models.Payload, error) {
	collection, err := collectionOf(t)
	if err != nil {
		return nil, err
	}

	resp, err := h.do(ctx, "get "+collection, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("collection", collection).Get(listPath)
	})
	if err != nil {
		return nil, err
	}

	payloads, err := h.decodeCollection(ctx, t, resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	h.logger.Debug().
		Str("func", "*httpRemoteDataSource.GetAll").
		Str("collection", collection).
		Int("count", len(payloads)).
		Msg("collection downloaded")

	return payloads, nil
}

// Create implements [RemoteDataSource]. It POSTs p to /v1/api/{collection}/.
func (h *httpRemoteDataSource) Create(ctx context.Context, p models.Payload) (models.Payload, error) {
	collection, err := collectionOf(p.EntityType())
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.EntityType(), err)
	}

	resp, err := h.do(ctx, "create "+collection, func(r *resty.Request) (*resty.Response, error) {
		return h.withBody(r, body).
			SetPathParam("collection", collection).
			Post(listPath)
	})
	if err != nil {
		return nil, err
	}

	return h.decodeEcho(p, resp.Body())
}

// Update implements [RemoteDataSource]. It PUTs p to
// /v1/api/{collection}/{id}.
func (h *httpRemoteDataSource) Update(ctx context.Context, p models.Payload) (models.Payload, error) {
	collection, err := collectionOf(p.EntityType())
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.EntityType(), err)
	}

	resp, err := h.do(ctx, "update "+collection, func(r *resty.Request) (*resty.Response, error) {
		return h.withBody(r, body).
			SetPathParams(map[string]string{"collection": collection, "id": p.EntityID()}).
			Put(resourcePath)
	})
	if err != nil {
		return nil, err
	}

	return h.decodeEcho(p, resp.Body())
}

// Delete implements [RemoteDataSource]. It sends DELETE
// /v1/api/{collection}/{id}.
func (h *httpRemoteDataSource) Delete(ctx context.Context, t models.EntityType, id string) error {
	collection, err := collectionOf(t)
	if err != nil {
		return err
	}

	_, err = h.do(ctx, "delete "+collection, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParams(map[string]string{"collection": collection, "id": id}).
			Delete(resourcePath)
	})
	return err
}

// HealthCheck implements [RemoteDataSource]. It GETs /health/ without
// credentials, bounded by the configured health timeout.
func (h *httpRemoteDataSource) HealthCheck(ctx context.Context) error {
	if h.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.healthTimeout)
		defer cancel()
	}

	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return mapTransportError("health check", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// do sends an authenticated request. A 401 answer triggers exactly one
// credential refresh and one retry.
func (h *httpRemoteDataSource) do(ctx context.Context, op string, send requestFunc) (*resty.Response, error) {
	token, err := h.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: credentials: %w", op, err)
	}

	resp, err := h.send(ctx, op, token, send)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		h.logger.Warn().
			Str("func", "*httpRemoteDataSource.do").
			Str("op", op).
			Msg("token rejected, refreshing credentials")

		token, err = h.creds.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: refresh credentials: %w", op, err)
		}

		resp, err = h.send(ctx, op, token, send)
		if err != nil {
			return nil, err
		}
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func (h *httpRemoteDataSource) send(ctx context.Context, op, token string, send requestFunc) (*resty.Response, error) {
	req := h.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := send(req)
	if err != nil {
		return nil, mapTransportError(op, err)
	}
	return resp, nil
}

func (h *httpRemoteDataSource) withBody(r *resty.Request, body []byte) *resty.Request {
	r.SetHeader("Content-Type", "application/json").SetBody(body)
	if h.hashKey != "" {
		r.SetHeader(hashHeader, hex.EncodeToString(utils.Hash(body)))
	}
	return r
}

func (h *httpRemoteDataSource) decodeCollection(ctx context.Context, t models.EntityType, body []byte) ([]models.Payload, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}

	return workers.Map(ctx, h.poolSize, raws, func(_ context.Context, raw json.RawMessage) (models.Payload, error) {
		return models.DecodePayload(t, raw)
	})
}

// decodeEcho decodes the backend's copy of a written entity. An empty body
// or a copy without an id yields sent unchanged.
func (h *httpRemoteDataSource) decodeEcho(sent models.Payload, body []byte) (models.Payload, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return sent, nil
	}

	p, err := models.DecodePayload(sent.EntityType(), body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", sent.EntityType(), err)
	}
	if p.EntityID() == "" {
		return sent, nil
	}
	return p, nil
}
