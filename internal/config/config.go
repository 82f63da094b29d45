// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads ghissue configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rsc.io/ghissue"
	"rsc.io/ghissue/internal/auth"
)

// Config holds environment-based configuration.
type Config struct {
	// Token is the GitHub token.
	// Env: GITHUB_TOKEN
	Token string `envconfig:"GITHUB_TOKEN"`

	// TokenFile names a file holding the token.
	// Env: GITHUB_TOKEN_FILE (default: $HOME/.github-issue-token)
	TokenFile string `envconfig:"GITHUB_TOKEN_FILE"`

	// APIURL is the REST API root; set it for GitHub Enterprise.
	// Env: GITHUB_API_URL (default: https://api.github.com/)
	APIURL string `envconfig:"GITHUB_API_URL" default:"https://api.github.com/"`

	// Repository is the default owner/name repository.
	// Env: GITHUB_REPOSITORY
	Repository string `envconfig:"GITHUB_REPOSITORY"`

	// MaxRetries bounds retries after a rate limit.
	// Env: GITHUB_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"GITHUB_MAX_RETRIES" default:"3"`

	// BodyMaxLength is the longest body sent to GitHub, in characters.
	// Env: ISSUE_BODY_MAX_LENGTH (default: 65536)
	BodyMaxLength int `envconfig:"ISSUE_BODY_MAX_LENGTH" default:"65536"`

	// BodyReserve is the slack left below BodyMaxLength when a body is cut.
	// Env: ISSUE_BODY_RESERVE (default: 1000)
	BodyReserve int `envconfig:"ISSUE_BODY_RESERVE" default:"1000"`

	// BodyMarker is appended to truncated bodies.
	// Env: ISSUE_BODY_MARKER (default: "_Body truncated…_\n")
	BodyMarker string `envconfig:"ISSUE_BODY_MARKER"`

	// LogLevel is DEBUG, INFO, WARN or ERROR.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is text or json.
	// Env: LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads envFile, if it exists, into the environment without overriding
// variables already set, and then loads Config from the environment.
// An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, err
	}
	return LoadFromEnv()
}

// LoadDotEnv loads environment variables from a .env file.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads Config from environment variables.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if _, ok := os.LookupEnv("ISSUE_BODY_MARKER"); !ok {
		cfg.BodyMarker = ghissue.DefaultBodyLimit.Marker
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that would make every request misbehave.
func (c Config) Validate() error {
	if c.BodyMaxLength <= 0 {
		return fmt.Errorf("ISSUE_BODY_MAX_LENGTH must be positive, got %d", c.BodyMaxLength)
	}
	if c.BodyReserve < 0 {
		return fmt.Errorf("ISSUE_BODY_RESERVE must not be negative, got %d", c.BodyReserve)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("GITHUB_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// BodyLimit returns the configured body limit.
func (c Config) BodyLimit() ghissue.BodyLimit {
	return ghissue.BodyLimit{
		Max:     c.BodyMaxLength,
		Reserve: c.BodyReserve,
		Marker:  c.BodyMarker,
	}
}

// Repo parses the configured default repository.
func (c Config) Repo() (ghissue.Repo, error) {
	return ghissue.ParseRepo(c.Repository)
}

// TokenSources returns where to look for the GitHub token.
func (c Config) TokenSources() auth.Sources {
	return auth.Sources{
		Token:     c.Token,
		TokenFile: c.TokenFile,
	}
}
