// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package httplog provides an http.RoundTripper that logs each request.
package httplog

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Transport logs every round trip through Base to Logger.
// Requests are logged at debug level when they start and at info level
// when they finish, with the number of requests in flight.
type Transport struct {
	Base   http.RoundTripper // nil means http.DefaultTransport
	Logger *slog.Logger      // nil means slog.Default()

	mu       sync.Mutex
	inflight int
	now      func() time.Time
}

// New returns a Transport wrapping base.
func New(base http.RoundTripper, logger *slog.Logger) *Transport {
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := t.now
	if now == nil {
		now = time.Now
	}

	t.mu.Lock()
	t.inflight++
	inflight := t.inflight
	t.mu.Unlock()

	// The URL never carries credentials; the token travels in a header.
	start := now()
	logger.DebugContext(r.Context(), "http request", "method", r.Method, "url", r.URL.String(), "inflight", inflight)

	resp, err := base.RoundTrip(r)

	t.mu.Lock()
	t.inflight--
	t.mu.Unlock()

	attrs := []any{
		"method", r.Method,
		"url", r.URL.String(),
		"elapsed", now().Sub(start).Round(time.Millisecond),
	}
	if resp != nil {
		attrs = append(attrs, "status", resp.StatusCode)
		if rem := resp.Header.Get("X-RateLimit-Remaining"); rem != "" {
			attrs = append(attrs, "ratelimit_remaining", rem)
		}
	}
	if err != nil {
		logger.WarnContext(r.Context(), "http error", append(attrs, "error", err)...)
		return resp, err
	}
	logger.InfoContext(r.Context(), "http response", attrs...)
	return resp, nil
}
