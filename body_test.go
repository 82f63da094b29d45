// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghissue

import (
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBody_Short(t *testing.T) {
	b := "Now is the winter of our discontent\nMade glorious summer by this sun of York;\n"
	assert.Equal(t, b, TruncateBody(b))
}

func TestTruncateBody_RichardIII(t *testing.T) {
	b, err := os.ReadFile("testdata/richard3.txt")
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/richard3.golden")
	require.NoError(t, err)

	got := TruncateBody(string(b))
	assert.NotEqual(t, string(b), got)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxBodyLength)
	assert.True(t, strings.HasSuffix(got, DefaultBodyLimit.Marker))
	assert.True(t, strings.HasPrefix(string(b), strings.TrimSuffix(got, DefaultBodyLimit.Marker)))
	assert.Equal(t, string(want), got)
}

func TestTruncateBody_Empty(t *testing.T) {
	assert.Equal(t, "", TruncateBody(""))
}

func TestTruncateBody_ExactlyMax(t *testing.T) {
	b := strings.Repeat("x", MaxBodyLength)
	assert.Equal(t, b, TruncateBody(b))
}

func TestTruncateBody_OneOver(t *testing.T) {
	b := strings.Repeat("x", MaxBodyLength+1)
	got := TruncateBody(b)
	assert.NotEqual(t, b, got)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxBodyLength)

	keep := MaxBodyLength - DefaultBodyLimit.Reserve
	assert.Equal(t, strings.Repeat("x", keep)+"\n"+DefaultBodyLimit.Marker, got)
}

func TestBodyLimit_Truncate(t *testing.T) {
	tests := []struct {
		name  string
		limit BodyLimit
		body  string
		want  string
	}{
		{
			name:  "cut at line",
			limit: BodyLimit{Max: 10, Marker: "…\n"},
			body:  "abc\ndefghij",
			want:  "abc\n…\n",
		},
		{
			name:  "no newline",
			limit: BodyLimit{Max: 10, Marker: "…\n"},
			body:  "abcdefghijk",
			want:  "abcdefg\n…\n",
		},
		{
			name:  "runes not bytes",
			limit: BodyLimit{Max: 5},
			body:  "héllo wörld",
			want:  "héllo",
		},
		{
			name:  "multibyte within budget",
			limit: BodyLimit{Max: 5},
			body:  "ñññññ",
			want:  "ñññññ",
		},
		{
			name:  "marker too long",
			limit: BodyLimit{Max: 3, Marker: "[truncated]"},
			body:  "abcdef",
			want:  "abc",
		},
		{
			name:  "reserve covers budget",
			limit: BodyLimit{Max: 10, Reserve: 10, Marker: "~\n"},
			body:  "aaaaaaaaaaaa",
			want:  "~\n",
		},
		{
			name:  "reserve",
			limit: BodyLimit{Max: 20, Reserve: 8, Marker: "~\n"},
			body:  "one\ntwo\nthree\nfour\nfive\n",
			want:  "one\ntwo\n~\n",
		},
		{
			name:  "zero budget",
			limit: BodyLimit{},
			body:  "anything",
			want:  "",
		},
		{
			name:  "invalid utf-8",
			limit: BodyLimit{Max: 2},
			body:  "\xff\xfe\xfd",
			want:  "\xff\xfe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limit.Truncate(tt.body))
		})
	}
}

func TestBodyLimit_Properties(t *testing.T) {
	limits := []BodyLimit{
		DefaultBodyLimit,
		{Max: 1},
		{Max: 7, Marker: "…\n"},
		{Max: 16, Reserve: 4, Marker: "[cut]\n"},
		{Max: 40, Marker: "_Body truncated…_\n"},
		{Max: 3, Marker: "toolong"},
	}
	bodies := []string{
		"",
		"a",
		"line\n",
		strings.Repeat("word ", 30),
		strings.Repeat("short line\n", 12),
		strings.Repeat("日本語のテキスト\n", 9),
		"no newline at all but fairly long text that goes past small limits",
	}

	for _, l := range limits {
		for _, b := range bodies {
			got := l.Truncate(b)
			n := utf8.RuneCountInString(b)

			assert.LessOrEqual(t, utf8.RuneCountInString(got), l.Max, "bound: %+v %q", l, b)
			assert.Equal(t, got, l.Truncate(got), "idempotence: %+v %q", l, b)
			if n <= l.Max {
				assert.Equal(t, b, got, "identity: %+v %q", l, b)
				continue
			}
			if utf8.RuneCountInString(l.Marker) >= l.Max {
				assert.Equal(t, prefix(b, l.Max), got, "marker too long: %+v %q", l, b)
				continue
			}
			require.True(t, strings.HasSuffix(got, l.Marker), "marker: %+v %q -> %q", l, b, got)
			head := strings.TrimSuffix(got, l.Marker)
			switch {
			case head == "":
			case strings.HasPrefix(b, head) && (l.Marker == "" || strings.HasSuffix(head, "\n")):
				// Whole lines, or a raw prefix when there is no marker.
			default:
				// A cut first line: the result is kept+"\n"+Marker.
				kept, ok := strings.CutSuffix(head, "\n")
				require.True(t, ok && l.Marker != "", "separator: %+v %q -> %q", l, b, got)
				assert.True(t, strings.HasPrefix(b, kept), "prefix: %+v %q -> %q", l, b, got)
				assert.NotContains(t, kept, "\n", "cut outside first line: %+v %q -> %q", l, b, got)
			}
		}
	}
}
