// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gitio reads commits, diffs and tags by shelling out to git.
// All commands run with a timeout and a bounded output buffer; callers
// treat errors from here as "source unavailable" rather than fatal.
package gitio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
)

// ErrSourceUnavailable wraps any git failure so callers can degrade
// instead of aborting.
var ErrSourceUnavailable = errors.New("commit source unavailable")

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxOutput = 10 << 20 // 10 MiB, large merges exceed 1 MiB easily
)

// Repository wraps one local git working tree.
//
// Thread Safety: safe for concurrent use; each call spawns its own
// git process.
type Repository struct {
	path      string
	timeout   time.Duration
	maxOutput int
}

// NewRepository opens the repository at path. The path must be
// absolute so later relative-directory changes cannot redirect git.
func NewRepository(path string) (*Repository, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("repository path must be absolute: %s", path)
	}
	return &Repository{
		path:      path,
		timeout:   defaultTimeout,
		maxOutput: defaultMaxOutput,
	}, nil
}

// run executes a git command and returns stdout. Output is capped at
// maxOutput; anything past the cap is discarded, not an error.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: r.maxOutput}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: git %s: timeout after %v", ErrSourceUnavailable, args[0], r.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: git %s: %s", ErrSourceUnavailable, args[0], msg)
	}
	return stdout.String(), nil
}

// IsRepository reports whether path is inside a git work tree.
func (r *Repository) IsRepository(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// ResolveRevision resolves any revision expression to a full SHA.
func (r *Repository) ResolveRevision(ctx context.Context, revision string) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", revision+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// NUL-separated so subjects and bodies can contain anything but NUL.
const commitFormat = "%H%x00%h%x00%an%x00%ae%x00%aI%x00%s%x00%b%x00%P"

// Commit returns full metadata for one revision.
func (r *Repository) Commit(ctx context.Context, revision string) (core.CommitInfo, error) {
	out, err := r.run(ctx, "log", "-1", "--format="+commitFormat, revision)
	if err != nil {
		return core.CommitInfo{}, err
	}
	return parseCommitLine(out)
}

func parseCommitLine(out string) (core.CommitInfo, error) {
	parts := strings.SplitN(strings.TrimRight(out, "\n"), "\x00", 8)
	if len(parts) < 8 {
		return core.CommitInfo{}, fmt.Errorf("%w: unexpected git log output", ErrSourceUnavailable)
	}
	date, err := time.Parse(time.RFC3339, parts[4])
	if err != nil {
		return core.CommitInfo{}, fmt.Errorf("%w: parse commit date %q: %v", ErrSourceUnavailable, parts[4], err)
	}
	return core.CommitInfo{
		SHA:         parts[0],
		ShortSHA:    parts[1],
		AuthorName:  parts[2],
		AuthorEmail: parts[3],
		Date:        date,
		Summary:     strings.TrimSpace(parts[5]),
		Body:        strings.TrimSpace(parts[6]),
		ParentSHAs:  strings.Fields(parts[7]),
	}, nil
}

// ListCommits returns commits for a range spec, newest first. A spec
// without ".." names a single revision and yields one commit.
func (r *Repository) ListCommits(ctx context.Context, rangeSpec string) ([]core.CommitInfo, error) {
	var shas []string
	if strings.Contains(rangeSpec, "..") {
		out, err := r.run(ctx, "rev-list", rangeSpec)
		if err != nil {
			return nil, err
		}
		for _, sha := range strings.Fields(out) {
			shas = append(shas, sha)
		}
	} else {
		sha, err := r.ResolveRevision(ctx, rangeSpec)
		if err != nil {
			return nil, err
		}
		shas = []string{sha}
	}

	commits := make([]core.CommitInfo, 0, len(shas))
	for _, sha := range shas {
		commit, err := r.Commit(ctx, sha)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// CommitDiff returns the parsed diff and raw patch text for one
// commit against its first parent. Root commits, which have no
// parent, report ErrSourceUnavailable.
func (r *Repository) CommitDiff(ctx context.Context, sha string) (*core.CommitDiff, string, error) {
	patch, err := r.run(ctx, "diff", "--no-color", sha+"^.."+sha)
	if err != nil {
		return nil, "", err
	}
	diff, err := ParseUnifiedDiff(sha, patch)
	if err != nil {
		// The raw patch is still usable prompt material even when the
		// structured parse fails.
		return nil, patch, nil
	}
	return diff, patch, nil
}

// RangePatch returns the unified diff across a whole range.
func (r *Repository) RangePatch(ctx context.Context, rangeSpec string) (string, error) {
	return r.run(ctx, "diff", "--no-color", rangeSpec)
}

// LatestTag returns the most recent tag reachable from HEAD, or ""
// when the repository has no tags.
func (r *Repository) LatestTag(ctx context.Context) string {
	out, err := r.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Tags lists all tags with their target commits, newest version first.
func (r *Repository) Tags(ctx context.Context) ([]core.TagInfo, error) {
	out, err := r.run(ctx, "tag", "--sort=-v:refname", "--format=%(refname:short)%00%(objectname)")
	if err != nil {
		return nil, err
	}
	var tags []core.TagInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		name, sha, found := strings.Cut(line, "\x00")
		if !found {
			continue
		}
		tags = append(tags, core.TagInfo{Name: name, SHA: sha})
	}
	return tags, nil
}

type limitedWriter struct {
	w       *bytes.Buffer
	limit   int
	written int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.written
	if remaining <= 0 {
		// Discard silently so the process is not killed by a broken pipe.
		return len(p), nil
	}
	if len(p) > remaining {
		if _, err := lw.w.Write(p[:remaining]); err != nil {
			return 0, err
		}
		lw.written = lw.limit
		return len(p), nil
	}
	n, err := lw.w.Write(p)
	lw.written += n
	return n, err
}
