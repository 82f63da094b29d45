// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ghtest provides an in-memory fake of the GitHub issue and
// search REST endpoints, for tests.
package ghtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"
)

// A Server is a fake GitHub REST API holding issues in memory.
type Server struct {
	*httptest.Server

	// Token, if set, is the bearer token every request must carry.
	Token string

	// IgnoreType makes search ignore type:issue and type:pr qualifiers,
	// so that pull requests come back alongside issues.
	IgnoreType bool

	mu        sync.Mutex
	issues    map[string][]*wireIssue // by "owner/repo"
	comments  map[string][]string     // by "owner/repo#n"
	rateFails int
	requests  []string
}

// NewServer starts a Server. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		issues:   make(map[string][]*wireIssue),
		comments: make(map[string][]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues", s.createIssue)
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}", s.getIssue)
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/issues/{number}", s.editIssue)
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues/{number}/comments", s.createComment)
	mux.HandleFunc("GET /search/issues", s.searchIssues)
	s.Server = httptest.NewServer(s.wrap(mux))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root to pass to a GitHub client.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// FailWithRateLimit makes the next n requests fail with a primary rate limit error.
func (s *Server) FailWithRateLimit(n int) {
	s.mu.Lock()
	s.rateFails = n
	s.mu.Unlock()
}

// Requests returns "METHOD path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// A Seed describes an issue or pull request to preload with [Server.Seed].
type Seed struct {
	Title       string
	Body        string
	State       string // default "open"
	Assignees   []string
	PullRequest bool
}

// Seed adds an issue to repo ("owner/name") and returns its number.
func (s *Server) Seed(repo string, seed Seed) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.newIssueLocked(repo, seed.Title, seed.Body, seed.Assignees, nil)
	if seed.State != "" {
		x.setState(seed.State, nil)
	}
	if seed.PullRequest {
		x.PullRequest = &wirePullRequest{URL: x.URL}
	}
	return x.Number
}

// An Issue is the stored state of a fake issue.
type Issue struct {
	Number      int
	Title       string
	Body        string
	State       string
	StateReason string
	Assignees   []string
	Labels      []string
}

// Issue returns the stored state of issue number n in repo.
func (s *Server) Issue(repo string, n int) (Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.lookupLocked(repo, n)
	if x == nil {
		return Issue{}, false
	}
	out := Issue{
		Number: x.Number,
		Title:  x.Title,
		Body:   x.Body,
		State:  x.State,
	}
	if x.StateReason != nil {
		out.StateReason = *x.StateReason
	}
	for _, u := range x.Assignees {
		out.Assignees = append(out.Assignees, u.Login)
	}
	for _, l := range x.Labels {
		out.Labels = append(out.Labels, l.Name)
	}
	return out, true
}

// Comments returns the bodies of the comments on issue number n in repo.
func (s *Server) Comments(repo string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.comments[fmt.Sprintf("%s#%d", repo, n)]...)
}

type wireUser struct {
	Login string `json:"login"`
}

type wireLabel struct {
	Name string `json:"name"`
}

type wirePullRequest struct {
	URL string `json:"url"`
}

type wireIssue struct {
	Number      int              `json:"number"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	State       string           `json:"state"`
	StateReason *string          `json:"state_reason"`
	User        wireUser         `json:"user"`
	Assignees   []wireUser       `json:"assignees"`
	Labels      []wireLabel      `json:"labels"`
	URL         string           `json:"url"`
	HTMLURL     string           `json:"html_url"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	ClosedAt    *time.Time       `json:"closed_at"`
	PullRequest *wirePullRequest `json:"pull_request,omitempty"`
}

type issueRequest struct {
	Title       *string   `json:"title"`
	Body        *string   `json:"body"`
	State       *string   `json:"state"`
	StateReason *string   `json:"state_reason"`
	Assignees   *[]string `json:"assignees"`
	Labels      *[]string `json:"labels"`
}

func (x *wireIssue) setState(state string, reason *string) {
	now := time.Now().UTC()
	x.State = state
	x.StateReason = reason
	x.UpdatedAt = now
	if state == "closed" {
		x.ClosedAt = &now
	} else {
		x.ClosedAt = nil
	}
}

func users(logins []string) []wireUser {
	out := []wireUser{}
	for _, l := range logins {
		out = append(out, wireUser{Login: l})
	}
	return out
}

func labels(names []string) []wireLabel {
	out := []wireLabel{}
	for _, n := range names {
		out = append(out, wireLabel{Name: n})
	}
	return out
}

func (s *Server) wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		fail := s.rateFails > 0
		if fail {
			s.rateFails--
		}
		s.mu.Unlock()

		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		if fail {
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10))
			writeError(w, http.StatusForbidden, "API rate limit exceeded")
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{
		"message":           msg,
		"documentation_url": "https://docs.github.com/rest",
	})
}

func repoOf(r *http.Request) string {
	return r.PathValue("owner") + "/" + r.PathValue("repo")
}

func (s *Server) newIssueLocked(repo, title, body string, assignees, labelNames []string) *wireIssue {
	n := len(s.issues[repo]) + 1
	now := time.Now().UTC()
	x := &wireIssue{
		Number:    n,
		Title:     title,
		Body:      body,
		State:     "open",
		User:      wireUser{Login: "ghtest"},
		Assignees: users(assignees),
		Labels:    labels(labelNames),
		URL:       fmt.Sprintf("%s/repos/%s/issues/%d", s.URL, repo, n),
		HTMLURL:   fmt.Sprintf("https://github.com/%s/issues/%d", repo, n),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.issues[repo] = append(s.issues[repo], x)
	return x
}

func (s *Server) lookupLocked(repo string, n int) *wireIssue {
	list := s.issues[repo]
	if n < 1 || n > len(list) {
		return nil
	}
	return list[n-1]
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}
	if req.Title == nil || *req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "Validation Failed")
		return
	}
	var body string
	var assignees, labelNames []string
	if req.Body != nil {
		body = *req.Body
	}
	if req.Assignees != nil {
		assignees = *req.Assignees
	}
	if req.Labels != nil {
		labelNames = *req.Labels
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.newIssueLocked(repoOf(r), *req.Title, body, assignees, labelNames)
	writeJSON(w, http.StatusCreated, x)
}

func (s *Server) issueFor(w http.ResponseWriter, r *http.Request) *wireIssue {
	n, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return nil
	}
	x := s.lookupLocked(repoOf(r), n)
	if x == nil {
		writeError(w, http.StatusNotFound, "Not Found")
	}
	return x
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x := s.issueFor(w, r); x != nil {
		writeJSON(w, http.StatusOK, x)
	}
}

func (s *Server) editIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.issueFor(w, r)
	if x == nil {
		return
	}
	if req.Title != nil {
		x.Title = *req.Title
	}
	if req.Body != nil {
		x.Body = *req.Body
	}
	if req.Assignees != nil {
		x.Assignees = users(*req.Assignees)
	}
	if req.Labels != nil {
		x.Labels = labels(*req.Labels)
	}
	if req.State != nil {
		reason := req.StateReason
		if reason == nil && *req.State == "open" && x.State == "closed" {
			reopened := "reopened"
			reason = &reopened
		}
		x.setState(*req.State, reason)
	}
	x.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, x)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.issueFor(w, r)
	if x == nil {
		return
	}
	key := fmt.Sprintf("%s#%d", repoOf(r), x.Number)
	s.comments[key] = append(s.comments[key], req.Body)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":   len(s.comments[key]),
		"body": req.Body,
	})
}

func (s *Server) searchIssues(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r.URL.Query().Get("q"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 30
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	// Items are encoded under the lock; edits mutate them in place.
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*wireIssue
	var repos []string
	for repo := range s.issues {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	for _, repo := range repos {
		for _, x := range s.issues[repo] {
			if q.match(repo, x, s.IgnoreType) {
				matched = append(matched, x)
			}
		}
	}

	items := []*wireIssue{}
	start := (page - 1) * perPage
	if start < len(matched) {
		end := start + perPage
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[start:end]
	}
	if start+perPage < len(matched) {
		next := *r.URL
		v := next.Query()
		v.Set("page", strconv.Itoa(page+1))
		v.Set("per_page", strconv.Itoa(perPage))
		next.RawQuery = v.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<%s%s>; rel="next"`, s.URL, next.String()))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_count":        len(matched),
		"incomplete_results": false,
		"items":              items,
	})
}

type query struct {
	terms      []string
	qualifiers url.Values
}

// parseQuery splits a search query into normalized free-text terms
// (quoted phrases kept whole) and key:value qualifiers.
func parseQuery(q string) query {
	out := query{qualifiers: url.Values{}}
	for q = strings.TrimSpace(q); q != ""; q = strings.TrimSpace(q) {
		var tok string
		if q[0] == '"' {
			end := strings.IndexByte(q[1:], '"')
			if end < 0 {
				tok, q = q[1:], ""
			} else {
				tok, q = q[1:1+end], q[2+end:]
			}
			out.terms = append(out.terms, normalize(tok))
			continue
		}
		if i := strings.IndexFunc(q, unicode.IsSpace); i >= 0 {
			tok, q = q[:i], q[i:]
		} else {
			tok, q = q, ""
		}
		if k, v, ok := strings.Cut(tok, ":"); ok && k != "" {
			out.qualifiers.Add(k, v)
			continue
		}
		out.terms = append(out.terms, normalize(tok))
	}
	return out
}

// normalize lower-cases s and reduces it to single-space separated words,
// dropping punctuation the way GitHub's search tokenizer does.
func normalize(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

func (q query) match(repo string, x *wireIssue, ignoreType bool) bool {
	if v := q.qualifiers.Get("repo"); v != "" && v != repo {
		return false
	}
	kind := q.qualifiers.Get("type")
	if ignoreType {
		kind = ""
	}
	switch kind {
	case "issue":
		if x.PullRequest != nil {
			return false
		}
	case "pr":
		if x.PullRequest == nil {
			return false
		}
	}
	if v := q.qualifiers.Get("state"); v != "" && v != x.State {
		return false
	}
	text := x.Title + "\n" + x.Body
	if q.qualifiers.Get("in") == "title" {
		text = x.Title
	}
	text = " " + normalize(text) + " "
	for _, t := range q.terms {
		if t != "" && !strings.Contains(text, " "+t+" ") {
			return false
		}
	}
	return true
}
