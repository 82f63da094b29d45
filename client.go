// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghissue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultMaxRetries is the number of times a request is retried
// after GitHub reports a rate limit.
const DefaultMaxRetries = 3

// A Client is an authenticated client for the GitHub issue API.
// It is safe for concurrent use.
type Client struct {
	gh         *github.Client
	logger     *slog.Logger
	limit      BodyLimit
	maxRetries int
	sleep      func(context.Context, time.Duration) error
}

type clientConfig struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	limit      BodyLimit
	maxRetries int
}

// An Option configures a Client.
type Option func(*clientConfig)

// WithHTTPClient sets the HTTP client whose transport carries requests.
// The client's transport is wrapped to add authentication.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithBaseURL sets the REST API root, for GitHub Enterprise
// (for example "https://github.example.com/api/v3/").
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithBodyLimit sets the limit applied to issue and comment bodies.
// The default is [DefaultBodyLimit].
func WithBodyLimit(l BodyLimit) Option {
	return func(c *clientConfig) { c.limit = l }
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) { c.maxRetries = n }
}

// NewClient returns a Client authenticating with the given GitHub token
// (a personal access token or an installation token).
// If token is empty, requests are unauthenticated.
func NewClient(token string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		limit:      DefaultBodyLimit,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	hc := &http.Client{}
	if cfg.httpClient != nil {
		*hc = *cfg.httpClient
	}
	if token != "" {
		hc.Transport = &oauth2.Transport{
			Source: &tokenSource{AccessToken: token},
			Base:   hc.Transport,
		}
	}

	gh := github.NewClient(hc)
	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		gh.BaseURL = u
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.maxRetries < 0 {
		cfg.maxRetries = 0
	}

	return &Client{
		gh:         gh,
		logger:     logger,
		limit:      cfg.limit,
		maxRetries: cfg.maxRetries,
		sleep:      sleep,
	}, nil
}

type tokenSource oauth2.Token

func (t *tokenSource) Token() (*oauth2.Token, error) {
	return (*oauth2.Token)(t), nil
}

// do runs call, pausing and retrying while GitHub reports a rate limit.
func (c *Client) do(ctx context.Context, call func() error) error {
	for try := 0; ; try++ {
		err := call()
		if err == nil {
			return nil
		}
		delay, ok := retryDelay(err, time.Now())
		if !ok || try >= c.maxRetries {
			return err
		}
		c.logger.Warn("github: pausing to respect rate limit",
			slog.Duration("delay", delay),
			slog.Int("retry", try+1),
			slog.String("error", err.Error()),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// retryDelay reports how long to wait before retrying a request that failed with err.
func retryDelay(err error, now time.Time) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		// Allow for clock skew between here and GitHub.
		d := rateErr.Rate.Reset.Sub(now) + time.Minute
		if d < time.Minute {
			d = time.Minute
		}
		return d, true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil && *abuseErr.RetryAfter > 0 {
			return *abuseErr.RetryAfter, true
		}
		return 5 * time.Second, true
	}
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
