// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ghissue manages the lifecycle of GitHub issues on behalf of
// automation: creating, updating, finding and closing them.
//
// Every body sent to GitHub is first passed through a [BodyLimit], so that
// generated reports too long for GitHub are cut down instead of rejected.
// [TruncateBody] exposes the same cut for callers that build bodies themselves.
//
// The issue operations map directly onto the GitHub REST API using
// [github.com/google/go-github]; see [Client].
package ghissue
