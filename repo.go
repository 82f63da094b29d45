// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghissue

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRepo is returned by [ParseRepo] for text not of the form owner/name.
var ErrInvalidRepo = errors.New("invalid repository: must be owner/repo, like golang/go")

// A Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo parses an "owner/name" repository reference.
func ParseRepo(s string) (Repo, error) {
	f := strings.Split(s, "/")
	if len(f) != 2 || f[0] == "" || f[1] == "" {
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return Repo{Owner: f[0], Name: f[1]}, nil
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}
