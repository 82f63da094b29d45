// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rsc.io/ghissue"
)

// bodyFlags are the flags that supply an issue or comment body.
type bodyFlags struct {
	body string
	file string
}

func (b *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.body, "body", "b", "", "body `text`")
	cmd.Flags().StringVarP(&b.file, "body-file", "F", "", "read body from `file` (- for standard input)")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// read returns the body text, and whether one was given.
func (b *bodyFlags) read(cmd *cobra.Command) (string, bool, error) {
	switch {
	case b.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), true, err
	case b.file != "":
		data, err := os.ReadFile(b.file)
		return string(data), true, err
	}
	return b.body, cmd.Flags().Changed("body"), nil
}

func parseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q", arg)
	}
	return n, nil
}

func newCreateCommand(a *app) *cobra.Command {
	var (
		body      bodyFlags
		assignees []string
		labels    []string
	)
	cmd := &cobra.Command{
		Use:   "create [flags] <title>",
		Short: "Create an issue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			text, _, err := body.read(cmd)
			if err != nil {
				return err
			}
			issue, err := c.CreateIssue(cmd.Context(), repo, &ghissue.Issue{
				Title:     strings.Join(args, " "),
				Body:      text,
				Assignees: assignees,
				Labels:    labels,
			})
			if err != nil {
				return err
			}
			return a.printRef(cmd.OutOrStdout(), repo, issue)
		},
	}
	body.register(cmd)
	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "assign to `login` (repeatable)")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "add `label` (repeatable)")
	return cmd
}

func newUpdateCommand(a *app) *cobra.Command {
	var (
		body      bodyFlags
		title     string
		state     string
		reason    string
		assignees []string
		labels    []string
	)
	cmd := &cobra.Command{
		Use:   "update [flags] <number>",
		Short: "Edit an issue's title, body, state, assignees or labels",
		Long: `Edit an issue. Only the fields named by flags change.
An empty --assignee or --label list clears the assignees or labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			text, ok, err := body.read(cmd)
			if err != nil {
				return err
			}
			if ok && text == "" {
				return fmt.Errorf("cannot set an empty body")
			}
			edit := &ghissue.Issue{
				Number:      n,
				Title:       title,
				Body:        text,
				State:       state,
				StateReason: reason,
			}
			if cmd.Flags().Changed("assignee") {
				edit.Assignees = append([]string{}, assignees...)
			}
			if cmd.Flags().Changed("label") {
				edit.Labels = append([]string{}, labels...)
			}
			issue, err := c.UpdateIssue(cmd.Context(), repo, edit)
			if err != nil {
				return err
			}
			return a.printRef(cmd.OutOrStdout(), repo, issue)
		},
	}
	body.register(cmd)
	cmd.Flags().StringVarP(&title, "title", "t", "", "new `title`")
	cmd.Flags().StringVar(&state, "state", "", "new `state` (open or closed)")
	cmd.Flags().StringVar(&reason, "reason", "", "state `reason` (completed, not_planned or reopened)")
	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "set assignees to `logins`")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "set labels to `labels`")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Print an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			issue, err := c.GetIssue(cmd.Context(), repo, n)
			if err != nil {
				return err
			}
			return a.printIssue(cmd.OutOrStdout(), repo, issue)
		},
	}
}

func newFindCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <title>",
		Short: "Print the issue with an exact title",
		Long: `Print the issue whose title is exactly the given text.
An open issue is preferred over a closed one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			issue, err := c.FindIssue(cmd.Context(), repo, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printIssue(cmd.OutOrStdout(), repo, issue)
		},
	}
}

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List issues matching a GitHub search query",
		Long: `List the issues matching a GitHub search query, sorted by title.
Pull requests are never listed. Add state:open to skip closed issues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			all, err := c.FindIssues(cmd.Context(), repo, strings.Join(args, " "))
			if err != nil {
				return err
			}
			sort.Slice(all, func(i, j int) bool {
				if all[i].Title != all[j].Title {
					return all[i].Title < all[j].Title
				}
				return all[i].Number < all[j].Number
			})
			return a.printList(cmd.OutOrStdout(), repo, all)
		},
	}
}

// bulkEdit applies edit to each numbered issue, a few at a time,
// and prints the results in argument order.
func (a *app) bulkEdit(cmd *cobra.Command, args []string, edit func(context.Context, *ghissue.Client, ghissue.Repo, int) (*ghissue.Issue, error)) error {
	var nums []int
	for _, arg := range args {
		n, err := parseNumber(arg)
		if err != nil {
			return err
		}
		nums = append(nums, n)
	}
	c, repo, err := a.client()
	if err != nil {
		return err
	}

	issues := make([]*ghissue.Issue, len(nums))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxConcurrentEdits)
	for i, n := range nums {
		g.Go(func() error {
			issue, err := edit(ctx, c, repo, n)
			if err != nil {
				return err
			}
			issues[i] = issue
			return nil
		})
	}
	err = g.Wait()
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if perr := a.printRef(cmd.OutOrStdout(), repo, issue); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// maxConcurrentEdits bounds the edits in flight at once.
const maxConcurrentEdits = 4

func newCloseCommand(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "close [flags] <number>...",
		Short: "Close issues",
		Long:  "Close the numbered issues and remove their assignees.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch reason {
			case "", "completed", "not_planned":
			default:
				return fmt.Errorf("invalid --reason %q: want completed or not_planned", reason)
			}
			return a.bulkEdit(cmd, args, func(ctx context.Context, c *ghissue.Client, repo ghissue.Repo, n int) (*ghissue.Issue, error) {
				return c.CloseIssue(ctx, repo, n, reason)
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "close `reason` (completed or not_planned)")
	return cmd
}

func newReopenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <number>...",
		Short: "Reopen closed issues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.bulkEdit(cmd, args, func(ctx context.Context, c *ghissue.Client, repo ghissue.Repo, n int) (*ghissue.Issue, error) {
				return c.ReopenIssue(ctx, repo, n)
			})
		},
	}
}

func newCommentCommand(a *app) *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "comment [flags] <number>",
		Short: "Add a comment to an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			text, _, err := body.read(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("comment body is empty: use --body or --body-file")
			}
			c, repo, err := a.client()
			if err != nil {
				return err
			}
			return c.CommentOnIssue(cmd.Context(), repo, n, text)
		},
	}
	body.register(cmd)
	return cmd
}

func newTruncateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "truncate [file]",
		Short: "Shorten text the way issue bodies are shortened",
		Long: `Truncate reads the named file, or standard input, and writes it
back shortened to fit the configured issue body limit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), a.cfg.BodyLimit().Truncate(string(data)))
			return err
		},
	}
}
