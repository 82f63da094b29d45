// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auth locates the GitHub personal access token used by ghissue.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoToken is returned when no token source holds a token.
var ErrNoToken = errors.New(`no GitHub token found

Please create a personal access token at https://github.com/settings/tokens/new
and either set $GITHUB_TOKEN, write it to $HOME/.github-issue-token (mode 0600),
or add a line to $HOME/.netrc like

	machine api.github.com login <user> password <token>

The token only needs the repo scope, or public_repo for public repositories.`)

// DefaultHost is the netrc machine name holding GitHub credentials.
const DefaultHost = "api.github.com"

// Sources lists where to look for a token, in order:
// Token, then the token file, then the netrc file.
type Sources struct {
	// Token is an explicit token, usually from $GITHUB_TOKEN.
	Token string

	// TokenFile names a file holding only the token.
	// If empty, $HOME/.github-issue-token is used when it exists.
	TokenFile string

	// Netrc names the netrc file. If empty, $HOME/.netrc (_netrc on Windows) is used.
	Netrc string

	// Host is the netrc machine name. If empty, DefaultHost is used.
	Host string

	// User restricts the netrc lookup to that login. If empty, the first entry for Host wins.
	User string
}

// Lookup returns the first token found in s.
func (s Sources) Lookup() (string, error) {
	if tok := strings.TrimSpace(s.Token); tok != "" {
		return tok, nil
	}

	file := s.TokenFile
	if file == "" {
		if home, err := os.UserHomeDir(); err == nil {
			file = filepath.Join(home, ".github-issue-token")
		}
	}
	if file != "" {
		tok, err := ReadTokenFile(file)
		if err == nil {
			return tok, nil
		}
		if s.TokenFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	netrc := s.Netrc
	if netrc == "" {
		name := ".netrc"
		if runtime.GOOS == "windows" {
			name = "_netrc"
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", ErrNoToken
		}
		netrc = filepath.Join(home, name)
	}
	host := s.Host
	if host == "" {
		host = DefaultHost
	}
	if _, passwd, err := NetrcAuth(netrc, host, s.User); err == nil && passwd != "" {
		return passwd, nil
	}
	return "", ErrNoToken
}

// ReadTokenFile reads a token from file.
// The file must not be readable by group or others.
func ReadTokenFile(file string) (string, error) {
	fi, err := os.Stat(file)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	if runtime.GOOS != "windows" && fi.Mode()&0077 != 0 {
		return "", fmt.Errorf("reading token: %s mode is %#o, want %#o", file, fi.Mode()&0777, fi.Mode()&0700)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("reading token: %s is empty", file)
	}
	return tok, nil
}

// NetrcAuth returns the login and password listed for host in the netrc file.
// If user is not empty, only entries with that login match.
// Only single-line entries of the form
//
//	machine <host> login <user> password <token>
//
// are recognized.
func NetrcAuth(file, host, user string) (login, passwd string, err error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		f := strings.Fields(line)
		if len(f) >= 6 && f[0] == "machine" && f[1] == host && f[2] == "login" && f[4] == "password" && (user == "" || f[3] == user) {
			return f[3], f[5], nil
		}
	}
	return "", "", fmt.Errorf("cannot find netrc entry for %s", host)
}
