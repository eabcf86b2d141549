// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// LinkProber reports whether a network path to the backend exists.
type LinkProber interface {
	Probe(ctx context.Context) error
}

// HealthChecker probes the backend health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DialProber is a [LinkProber] that opens and immediately closes a TCP
// connection to the backend host. A refused or reset connection proves the
// host answered, so it counts as a present link; only timeouts, unreachable
// routes and resolver failures report the link as down.
type DialProber struct {
	address string
	timeout time.Duration
}

// NewDialProber derives host:port from baseURL. A missing scheme means http;
// a missing port is taken from the scheme.
func NewDialProber(baseURL string, timeout time.Duration) (*DialProber, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, fmt.Errorf("empty address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("address %q has no host", baseURL)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	return &DialProber{address: net.JoinHostPort(u.Hostname(), port), timeout: timeout}, nil
}

// Address returns the host:port being dialled.
func (p *DialProber) Address() string {
	return p.address
}

// Probe implements [LinkProber].
func (p *DialProber) Probe(ctx context.Context) error {
	d := net.Dialer{Timeout: p.timeout}

	conn, err := d.DialContext(ctx, "tcp", p.address)
	if isHostAnswer(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return conn.Close()
}

// isHostAnswer reports whether err came back from the remote host itself.
func isHostAnswer(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
