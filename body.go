// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghissue

import (
	"strings"
	"unicode/utf8"
)

// MaxBodyLength is the longest issue or comment body GitHub accepts,
// in characters.
const MaxBodyLength = 65536

// A BodyLimit describes how bodies are cut down to fit a length budget.
// All lengths are counted in runes.
type BodyLimit struct {
	// Max is the longest body allowed, including Marker.
	Max int

	// Reserve is the number of runes left unused below Max when a body is cut.
	// It keeps truncated bodies well clear of the limit, so that a
	// tracker that counts characters differently still accepts them.
	Reserve int

	// Marker is appended, on a line of its own, to every truncated body.
	Marker string
}

// DefaultBodyLimit is the limit used by [TruncateBody] and by a [Client]
// that has not been given [WithBodyLimit].
var DefaultBodyLimit = BodyLimit{
	Max:     MaxBodyLength,
	Reserve: 1000,
	Marker:  "_Body truncated…_\n",
}

// TruncateBody returns body cut down to fit [DefaultBodyLimit].
func TruncateBody(body string) string {
	return DefaultBodyLimit.Truncate(body)
}

// Truncate returns body if it is at most l.Max runes long.
// Otherwise it returns the longest run of complete leading lines of body
// that fits, followed by l.Marker, so that the result is at most l.Max runes.
// If no whole line fits, the first line is cut and, when l.Marker is
// not empty, "\n"+l.Marker follows the kept text, so the marker still
// starts on a line of its own.
//
// If the marker alone does not fit, Truncate returns the first l.Max
// runes of body with no marker.
func (l BodyLimit) Truncate(body string) string {
	if l.Max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(body) <= l.Max {
		return body
	}

	markerLen := utf8.RuneCountInString(l.Marker)
	if markerLen >= l.Max {
		return prefix(body, l.Max)
	}
	keep := l.Max - markerLen
	if l.Marker != "" {
		keep-- // newline before marker
	}
	if l.Reserve > 0 && l.Max-l.Reserve < keep {
		keep = l.Max - l.Reserve
	}
	if keep < 0 {
		keep = 0
	}

	head := prefix(body, keep)
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		head = head[:i+1]
	} else if head != "" && l.Marker != "" {
		head += "\n"
	}
	return head + l.Marker
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
