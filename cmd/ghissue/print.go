// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"rsc.io/ghissue"
)

const timeFormat = "2006-01-02 15:04:05"

// jsonIssue is the -json form of an issue.
type jsonIssue struct {
	Number      int
	Ref         string
	Title       string
	State       string
	StateReason string `json:",omitempty"`
	Assignees   []string
	Labels      []string
	URL         string
	Reporter    string
	Created     time.Time
	Updated     time.Time
	Closed      time.Time
	Text        string
}

func toJSON(repo ghissue.Repo, issue *ghissue.Issue) *jsonIssue {
	j := &jsonIssue{
		Number:      issue.Number,
		Ref:         fmt.Sprintf("%s#%d", repo, issue.Number),
		Title:       issue.Title,
		State:       issue.State,
		StateReason: issue.StateReason,
		Assignees:   issue.Assignees,
		Labels:      issue.Labels,
		URL:         issue.HTMLURL,
		Reporter:    issue.Author,
		Created:     issue.CreatedAt,
		Updated:     issue.UpdatedAt,
		Closed:      issue.ClosedAt,
		Text:        issue.Body,
	}
	// non-nil for json
	if j.Assignees == nil {
		j.Assignees = []string{}
	}
	if j.Labels == nil {
		j.Labels = []string{}
	}
	return j
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// printIssue prints the full issue.
func (a *app) printIssue(w io.Writer, repo ghissue.Repo, issue *ghissue.Issue) error {
	if a.jsonFlag {
		return writeJSON(w, toJSON(repo, issue))
	}
	fmt.Fprintf(w, "Title: %s\n", issue.Title)
	state := issue.State
	if issue.StateReason != "" {
		state += " (" + issue.StateReason + ")"
	}
	fmt.Fprintf(w, "State: %s\n", state)
	fmt.Fprintf(w, "Assignees: %s\n", strings.Join(issue.Assignees, " "))
	if !issue.ClosedAt.IsZero() {
		fmt.Fprintf(w, "Closed: %s\n", issue.ClosedAt.Format(timeFormat))
	}
	fmt.Fprintf(w, "Labels: %s\n", strings.Join(issue.Labels, " "))
	fmt.Fprintf(w, "URL: %s\n", issue.HTMLURL)
	fmt.Fprintf(w, "\nReported by %s (%s)\n", issue.Author, issue.CreatedAt.Format(timeFormat))
	if text := strings.TrimSpace(issue.Body); text != "" {
		fmt.Fprintf(w, "\n\t%s\n", wrap(text, "\t"))
	}
	return nil
}

// printRef prints a one-line reference to issue, as after a create or edit.
func (a *app) printRef(w io.Writer, repo ghissue.Repo, issue *ghissue.Issue) error {
	if a.jsonFlag {
		return writeJSON(w, toJSON(repo, issue))
	}
	_, err := fmt.Fprintf(w, "%s#%d\t%s\t%s\n", repo, issue.Number, issue.State, issue.HTMLURL)
	return err
}

// printList prints one line per issue.
func (a *app) printList(w io.Writer, repo ghissue.Repo, all []*ghissue.Issue) error {
	if a.jsonFlag {
		j := []*jsonIssue{} // non-nil for json
		for _, issue := range all {
			j = append(j, toJSON(repo, issue))
		}
		return writeJSON(w, j)
	}
	for _, issue := range all {
		if _, err := fmt.Fprintf(w, "%v\t%v\n", issue.Number, issue.Title); err != nil {
			return err
		}
	}
	return nil
}

// wrap wraps t at 70 bytes, starting each continuation line with prefix.
// Lines are never cut inside a UTF-8 sequence.
func wrap(t string, prefix string) string {
	const max = 70
	var out strings.Builder
	t = strings.ReplaceAll(t, "\r\n", "\n")
	for i, line := range strings.Split(t, "\n") {
		if i > 0 {
			out.WriteString("\n" + prefix)
		}
		s := line
		for len(s) > max {
			i := strings.LastIndex(s[:max], " ") + 1
			if i == 0 {
				// No space: cut at the last rune boundary that fits.
				i = max
				for i > 0 && !utf8.RuneStart(s[i]) {
					i--
				}
				if i == 0 {
					_, i = utf8.DecodeRuneInString(s)
				}
			}
			out.WriteString(s[:i] + "\n" + prefix)
			s = s[i:]
		}
		out.WriteString(s)
	}
	return out.String()
}
