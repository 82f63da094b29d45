// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/ghissue"
	"rsc.io/ghissue/internal/ghtest"
)

const testRepo = "atomisthqa/handlers"

var envVars = []string{
	"GITHUB_TOKEN",
	"GITHUB_TOKEN_FILE",
	"GITHUB_API_URL",
	"GITHUB_REPOSITORY",
	"GITHUB_MAX_RETRIES",
	"ISSUE_BODY_MAX_LENGTH",
	"ISSUE_BODY_RESERVE",
	"ISSUE_BODY_MARKER",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run runs ghissue with args against srv.
// env overrides the default test environment; an empty value unsets a variable.
func run(t *testing.T, srv *ghtest.Server, stdin string, env map[string]string, args ...string) result {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	defaults := map[string]string{
		"GITHUB_TOKEN":      "test-token",
		"GITHUB_REPOSITORY": testRepo,
	}
	if srv != nil {
		defaults["GITHUB_API_URL"] = srv.BaseURL()
	}
	for k, v := range env {
		defaults[k] = v
	}
	for k, v := range defaults {
		if v != "" {
			t.Setenv(k, v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return result{stdout.String(), stderr.String(), err}
}

func newServer(t *testing.T) *ghtest.Server {
	srv := ghtest.NewServer(t)
	srv.Token = "test-token"
	return srv
}

func TestCreateShowClose(t *testing.T) {
	srv := newServer(t)

	r := run(t, srv, "", nil, "create", "-b", "It broke.\n", "-a", "alice", "-l", "bug", "Widget", "is", "broken")
	require.NoError(t, r.err)
	assert.Equal(t, "atomisthqa/handlers#1\topen\thttps://github.com/atomisthqa/handlers/issues/1\n", r.stdout)

	r = run(t, srv, "", nil, "show", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Title: Widget is broken\n")
	assert.Contains(t, r.stdout, "State: open\n")
	assert.Contains(t, r.stdout, "Assignees: alice\n")
	assert.Contains(t, r.stdout, "Labels: bug\n")
	assert.Contains(t, r.stdout, "\nReported by ghtest (")
	assert.True(t, strings.HasSuffix(r.stdout, "\n\tIt broke.\n"), "body at end: %q", r.stdout)

	r = run(t, srv, "", nil, "close", "--reason", "not_planned", "#1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "\tclosed\t")

	got, ok := srv.Issue(testRepo, 1)
	require.True(t, ok)
	assert.Equal(t, "closed", got.State)
	assert.Equal(t, "not_planned", got.StateReason)
	assert.Empty(t, got.Assignees)

	r = run(t, srv, "", nil, "reopen", "1")
	require.NoError(t, r.err)
	got, _ = srv.Issue(testRepo, 1)
	assert.Equal(t, "open", got.State)
}

func TestCloseMany(t *testing.T) {
	srv := newServer(t)
	for i := 0; i < 6; i++ {
		srv.Seed(testRepo, ghtest.Seed{Title: fmt.Sprintf("Stale %d", i), Assignees: []string{"alice"}})
	}

	r := run(t, srv, "", nil, "close", "1", "2", "3", "4", "5", "6")
	require.NoError(t, r.err)
	lines := strings.Split(strings.TrimSuffix(r.stdout, "\n"), "\n")
	require.Len(t, lines, 6)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("atomisthqa/handlers#%d\tclosed\t", i+1)), "line %d: %q", i, line)
	}
	for n := 1; n <= 6; n++ {
		got, _ := srv.Issue(testRepo, n)
		assert.Equal(t, "closed", got.State)
		assert.Empty(t, got.Assignees)
	}

	r = run(t, srv, "", nil, "close", "1", "x")
	assert.ErrorContains(t, r.err, `invalid issue number "x"`)

	r = run(t, srv, "", nil, "close", "--reason", "wontfix", "1")
	assert.ErrorContains(t, r.err, "invalid --reason")
}

func TestCreate_TruncatesBody(t *testing.T) {
	srv := newServer(t)
	env := map[string]string{
		"ISSUE_BODY_MAX_LENGTH": "30",
		"ISSUE_BODY_RESERVE":    "0",
		"ISSUE_BODY_MARKER":     "[cut]\n",
	}
	r := run(t, srv, strings.Repeat("0123456789\n", 5), env, "create", "-F", "-", "Long body")
	require.NoError(t, r.err)

	got, ok := srv.Issue(testRepo, 1)
	require.True(t, ok)
	assert.Equal(t, "0123456789\n0123456789\n[cut]\n", got.Body)
}

func TestUpdate(t *testing.T) {
	srv := newServer(t)
	n := srv.Seed(testRepo, ghtest.Seed{Title: "Old title", Body: "Old body", Assignees: []string{"alice"}})

	r := run(t, srv, "", nil, "update", "--title", "New title", "--assignee", "bob", "1")
	require.NoError(t, r.err)

	got, _ := srv.Issue(testRepo, n)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "Old body", got.Body)
	assert.Equal(t, []string{"bob"}, got.Assignees)

	r = run(t, srv, "", nil, "update", "--body", "", "1")
	assert.ErrorContains(t, r.err, "empty body")

	r = run(t, srv, "", nil, "update", "one")
	assert.ErrorContains(t, r.err, `invalid issue number "one"`)
}

func TestSearch(t *testing.T) {
	srv := newServer(t)
	srv.Seed(testRepo, ghtest.Seed{Title: "b flaky test"})
	srv.Seed(testRepo, ghtest.Seed{Title: "a flaky test"})
	srv.Seed(testRepo, ghtest.Seed{Title: "unrelated"})
	srv.Seed(testRepo, ghtest.Seed{Title: "fix flaky test", PullRequest: true})

	r := run(t, srv, "", nil, "search", "flaky")
	require.NoError(t, r.err)
	assert.Equal(t, "2\ta flaky test\n1\tb flaky test\n", r.stdout)

	r = run(t, srv, "", nil, "--json", "search", "flaky")
	require.NoError(t, r.err)
	var list []jsonIssue
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "atomisthqa/handlers#2", list[0].Ref)
	assert.Equal(t, []string{}, list[0].Labels)
}

func TestFind(t *testing.T) {
	srv := newServer(t)
	srv.Seed(testRepo, ghtest.Seed{Title: "Build fails", State: "closed"})
	srv.Seed(testRepo, ghtest.Seed{Title: "Build fails"})
	srv.Seed(testRepo, ghtest.Seed{Title: "Build fails on arm64"})

	r := run(t, srv, "", nil, "--json", "find", "Build fails")
	require.NoError(t, r.err)
	var j jsonIssue
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &j))
	assert.Equal(t, 2, j.Number)
	assert.Equal(t, "open", j.State)

	r = run(t, srv, "", nil, "find", "No such issue")
	assert.ErrorIs(t, r.err, ghissue.ErrNotFound)
}

func TestComment(t *testing.T) {
	srv := newServer(t)
	n := srv.Seed(testRepo, ghtest.Seed{Title: "Needs discussion"})

	r := run(t, srv, "Looks good to me.\n", nil, "comment", "-F", "-", "1")
	require.NoError(t, r.err)
	assert.Equal(t, []string{"Looks good to me.\n"}, srv.Comments(testRepo, n))

	r = run(t, srv, "", nil, "comment", "1")
	assert.ErrorContains(t, r.err, "comment body is empty")
}

func TestTruncate(t *testing.T) {
	env := map[string]string{
		"ISSUE_BODY_MAX_LENGTH": "30",
		"ISSUE_BODY_RESERVE":    "0",
		"ISSUE_BODY_MARKER":     "[cut]\n",
	}
	r := run(t, nil, strings.Repeat("0123456789\n", 5), env, "truncate")
	require.NoError(t, r.err)
	assert.Equal(t, "0123456789\n0123456789\n[cut]\n", r.stdout)

	r = run(t, nil, "short\n", nil, "truncate")
	require.NoError(t, r.err)
	assert.Equal(t, "short\n", r.stdout)

	r = run(t, nil, "short\n", map[string]string{"ISSUE_BODY_MAX_LENGTH": "0"}, "truncate")
	assert.ErrorContains(t, r.err, "ISSUE_BODY_MAX_LENGTH must be positive")
	assert.Empty(t, r.stdout)
}

func TestRepository(t *testing.T) {
	srv := newServer(t)

	r := run(t, srv, "", map[string]string{"GITHUB_REPOSITORY": ""}, "show", "1")
	assert.ErrorContains(t, r.err, "no repository")

	r = run(t, srv, "", map[string]string{"GITHUB_REPOSITORY": "handlers"}, "show", "1")
	assert.ErrorIs(t, r.err, ghissue.ErrInvalidRepo)
	assert.ErrorContains(t, r.err, "GITHUB_REPOSITORY")

	r = run(t, srv, "", nil, "-p", "golang", "show", "1")
	assert.ErrorIs(t, r.err, ghissue.ErrInvalidRepo)

	n := srv.Seed("golang/go", ghtest.Seed{Title: "Other repository"})
	r = run(t, srv, "", nil, "-p", "golang/go", "show", "1")
	require.NoError(t, r.err)
	assert.Equal(t, 1, n)
	assert.Contains(t, r.stdout, "Title: Other repository\n")
}

func TestLogHTTP(t *testing.T) {
	srv := newServer(t)
	srv.Seed(testRepo, ghtest.Seed{Title: "Logged"})

	r := run(t, srv, "", map[string]string{"LOG_FORMAT": "json"}, "--loghttp", "show", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, `"msg":"http response"`)
	assert.Contains(t, r.stderr, `"status":200`)
	assert.NotContains(t, r.stderr, "test-token")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("word ", 20)
	got := wrap(long, "\t")
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(strings.TrimPrefix(line, "\t")), 70)
	}
	assert.Equal(t, long, strings.ReplaceAll(got, "\n\t", ""))
	assert.Equal(t, "a\n\tb", wrap("a\r\nb", "\t"))

	for _, line := range []string{
		"a" + strings.Repeat("é", 50),
		strings.Repeat("x", 69) + "世界",
		strings.Repeat("日本語", 40),
	} {
		got := wrap(line, "\t")
		assert.True(t, utf8.ValidString(got), "wrap(%q) = %q", line, got)
		assert.Equal(t, line, strings.ReplaceAll(got, "\n\t", ""))
		for _, l := range strings.Split(got, "\n") {
			assert.LessOrEqual(t, len(strings.TrimPrefix(l, "\t")), 70)
		}
	}
}
