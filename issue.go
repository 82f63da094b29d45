// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghissue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
)

// ErrNotFound is returned when a requested issue does not exist.
var ErrNotFound = errors.New("issue not found")

// An Issue is a GitHub issue.
type Issue struct {
	Number      int
	Title       string
	Body        string
	State       string // "open" or "closed"
	StateReason string // "completed", "not_planned", "reopened" or ""
	Assignees   []string
	Labels      []string
	Author      string
	URL         string // API URL
	HTMLURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    time.Time
}

// CreateIssue creates a new issue in repo from issue's Title, Body,
// Assignees and Labels, and returns the issue as stored by GitHub.
// The body is truncated to fit the client's [BodyLimit].
func (c *Client) CreateIssue(ctx context.Context, repo Repo, issue *Issue) (*Issue, error) {
	if issue.Title == "" {
		return nil, fmt.Errorf("create issue in %s: title is required", repo)
	}
	body := c.limit.Truncate(issue.Body)
	req := &github.IssueRequest{
		Title: &issue.Title,
		Body:  &body,
	}
	if issue.Assignees != nil {
		assignees := append([]string{}, issue.Assignees...)
		req.Assignees = &assignees
	}
	if issue.Labels != nil {
		labels := append([]string{}, issue.Labels...)
		req.Labels = &labels
	}

	var out *github.Issue
	err := c.do(ctx, func() (err error) {
		out, _, err = c.gh.Issues.Create(ctx, repo.Owner, repo.Name, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create issue in %s: %w", repo, err)
	}
	c.logger.Debug("created issue", slog.String("repo", repo.String()), slog.Int("number", getInt(out.Number)))
	return toIssue(out), nil
}

// UpdateIssue edits issue number issue.Number in repo.
// Only the fields set in issue are changed: empty strings leave
// Title, Body, State and StateReason alone, and nil slices leave
// Assignees and Labels alone. A non-nil empty slice clears them.
// The body is truncated to fit the client's [BodyLimit].
func (c *Client) UpdateIssue(ctx context.Context, repo Repo, issue *Issue) (*Issue, error) {
	if issue.Number <= 0 {
		return nil, fmt.Errorf("update issue in %s: missing issue number", repo)
	}
	var req github.IssueRequest
	if issue.Title != "" {
		req.Title = &issue.Title
	}
	if issue.Body != "" {
		body := c.limit.Truncate(issue.Body)
		req.Body = &body
	}
	if issue.State != "" {
		req.State = &issue.State
	}
	if issue.StateReason != "" {
		req.StateReason = &issue.StateReason
	}
	if issue.Assignees != nil {
		assignees := append([]string{}, issue.Assignees...)
		req.Assignees = &assignees
	}
	if issue.Labels != nil {
		labels := append([]string{}, issue.Labels...)
		req.Labels = &labels
	}
	return c.edit(ctx, repo, issue.Number, &req)
}

// CloseIssue closes issue number n in repo and removes its assignees.
// The reason, if not empty, is "completed" or "not_planned".
func (c *Client) CloseIssue(ctx context.Context, repo Repo, n int, reason string) (*Issue, error) {
	state := "closed"
	req := &github.IssueRequest{
		State:     &state,
		Assignees: &[]string{},
	}
	if reason != "" {
		req.StateReason = &reason
	}
	return c.edit(ctx, repo, n, req)
}

// ReopenIssue reopens issue number n in repo.
func (c *Client) ReopenIssue(ctx context.Context, repo Repo, n int) (*Issue, error) {
	state := "open"
	return c.edit(ctx, repo, n, &github.IssueRequest{State: &state})
}

func (c *Client) edit(ctx context.Context, repo Repo, n int, req *github.IssueRequest) (*Issue, error) {
	var out *github.Issue
	err := c.do(ctx, func() (err error) {
		out, _, err = c.gh.Issues.Edit(ctx, repo.Owner, repo.Name, n, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("edit issue %s#%d: %w", repo, n, notFound(err))
	}
	c.logger.Debug("edited issue", slog.String("repo", repo.String()), slog.Int("number", n))
	return toIssue(out), nil
}

// GetIssue returns issue number n in repo.
func (c *Client) GetIssue(ctx context.Context, repo Repo, n int) (*Issue, error) {
	var out *github.Issue
	err := c.do(ctx, func() (err error) {
		out, _, err = c.gh.Issues.Get(ctx, repo.Owner, repo.Name, n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get issue %s#%d: %w", repo, n, notFound(err))
	}
	return toIssue(out), nil
}

// CommentOnIssue adds a comment to issue number n in repo.
// The body is truncated to fit the client's [BodyLimit].
func (c *Client) CommentOnIssue(ctx context.Context, repo Repo, n int, body string) error {
	body = c.limit.Truncate(body)
	err := c.do(ctx, func() error {
		_, _, err := c.gh.Issues.CreateComment(ctx, repo.Owner, repo.Name, n, &github.IssueComment{Body: &body})
		return err
	})
	if err != nil {
		return fmt.Errorf("comment on issue %s#%d: %w", repo, n, notFound(err))
	}
	c.logger.Debug("commented on issue", slog.String("repo", repo.String()), slog.Int("number", n))
	return nil
}

// FindIssues returns the issues in repo matching the GitHub search query.
// Pull requests are never included.
// On error FindIssues returns the issues found before the error.
func (c *Client) FindIssues(ctx context.Context, repo Repo, query string) ([]*Issue, error) {
	q := strings.TrimSpace(query + " repo:" + repo.String() + " type:issue")
	opt := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*Issue
	for {
		var res *github.IssuesSearchResult
		var resp *github.Response
		err := c.do(ctx, func() (err error) {
			res, resp, err = c.gh.Search.Issues(ctx, q, opt)
			return err
		})
		if err != nil {
			return all, fmt.Errorf("search issues in %s: %w", repo, err)
		}
		for _, x := range res.Issues {
			if x.PullRequestLinks != nil {
				continue
			}
			all = append(all, toIssue(x))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	c.logger.Debug("searched issues", slog.String("repo", repo.String()), slog.String("query", q), slog.Int("found", len(all)))
	return all, nil
}

// FindIssue returns the issue in repo whose title is exactly title.
// An open issue is preferred over a closed one.
// If there is no such issue, FindIssue returns an error wrapping [ErrNotFound].
func (c *Client) FindIssue(ctx context.Context, repo Repo, title string) (*Issue, error) {
	phrase := strings.Join(strings.Fields(strings.ReplaceAll(title, `"`, " ")), " ")
	all, err := c.FindIssues(ctx, repo, `"`+phrase+`" in:title`)
	if err != nil {
		return nil, err
	}
	var closed *Issue
	for _, issue := range all {
		if issue.Title != title {
			continue
		}
		if issue.State == "open" {
			return issue, nil
		}
		if closed == nil {
			closed = issue
		}
	}
	if closed != nil {
		return closed, nil
	}
	return nil, fmt.Errorf("find issue %q in %s: %w", title, repo, ErrNotFound)
}

// notFound maps a GitHub 404 response to ErrNotFound.
func notFound(err error) error {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func toIssue(x *github.Issue) *Issue {
	issue := &Issue{
		Number:      getInt(x.Number),
		Title:       getString(x.Title),
		Body:        getString(x.Body),
		State:       getString(x.State),
		StateReason: getString(x.StateReason),
		Labels:      getLabelNames(x.Labels),
		Author:      getUserLogin(x.User),
		URL:         getString(x.URL),
		HTMLURL:     getString(x.HTMLURL),
		CreatedAt:   getTime(x.CreatedAt),
		UpdatedAt:   getTime(x.UpdatedAt),
		ClosedAt:    getTime(x.ClosedAt),
	}
	for _, u := range x.Assignees {
		issue.Assignees = append(issue.Assignees, getUserLogin(u))
	}
	return issue
}

func getInt(x *int) int {
	if x == nil {
		return 0
	}
	return *x
}

func getString(x *string) string {
	if x == nil {
		return ""
	}
	return *x
}

func getUserLogin(x *github.User) string {
	if x == nil || x.Login == nil {
		return ""
	}
	return *x.Login
}

func getTime(x *github.Timestamp) time.Time {
	if x == nil {
		return time.Time{}
	}
	return x.Time
}

func getLabelNames(x []*github.Label) []string {
	var out []string
	for _, lab := range x {
		out = append(out, getString(lab.Name))
	}
	return out
}
