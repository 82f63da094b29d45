// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ghissue creates, edits, finds and closes GitHub issues.
//
// Usage:
//
//	ghissue [-p owner/repo] <command> [arguments]
//
// The commands are:
//
//	create   create an issue
//	update   edit an issue's title, body, state, assignees or labels
//	show     print an issue
//	find     print the issue with an exact title
//	search   list issues matching a GitHub search query
//	close    close an issue
//	reopen   reopen a closed issue
//	comment  add a comment to an issue
//	truncate shorten text the way issue bodies are shortened
//
// Bodies longer than GitHub accepts are cut at a line boundary and
// marked as truncated.
//
// Ghissue reads its configuration from the environment, after loading
// a .env file if one exists. GITHUB_TOKEN holds the access token;
// failing that, the token is read from $HOME/.github-issue-token
// or from the api.github.com entry in $HOME/.netrc.
// GITHUB_REPOSITORY names the default repository and
// GITHUB_API_URL the API root, for GitHub Enterprise.
// ISSUE_BODY_MAX_LENGTH, ISSUE_BODY_RESERVE and ISSUE_BODY_MARKER
// control truncation. LOG_LEVEL and LOG_FORMAT (text or json) control logging.
//
// The -json flag prints issues as JSON. The -loghttp flag logs every HTTP request.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ghissue: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}
