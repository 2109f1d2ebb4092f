// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package core

import "time"

// CommitInfo is the primary representation of a single commit as read
// from version control, before any semantic analysis.
type CommitInfo struct {
	SHA         string
	ShortSHA    string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
	Summary     string
	Body        string
	ParentSHAs  []string
}

// FullMessage returns the complete commit message (summary + body).
func (c CommitInfo) FullMessage() string {
	if c.Body == "" {
		return c.Summary
	}
	return c.Summary + "\n\n" + c.Body
}

// IsMerge reports whether this is a merge commit.
func (c CommitInfo) IsMerge() bool {
	return len(c.ParentSHAs) > 1
}

// TagInfo describes a git tag, ordered by creation/annotation date.
type TagInfo struct {
	Name        string
	SHA         string
	Date        time.Time
	IsAnnotated bool
}

// DiffStat holds aggregate statistics for a commit's diff.
type DiffStat struct {
	Insertions int
	Deletions  int
}

// TotalChanges returns insertions + deletions.
func (s DiffStat) TotalChanges() int {
	return s.Insertions + s.Deletions
}

// FileDiff is the diff information for a single file within a commit.
type FileDiff struct {
	Path       string
	OldPath    string // set for renames
	Status     string // A=added, D=deleted, M=modified, R=renamed
	Insertions int
	Deletions  int
	Patch      string
}

// CommitDiff aggregates file-level diffs with overall statistics.
type CommitDiff struct {
	SHA   string
	Files []FileDiff
	Stat  DiffStat
}

// FilePaths returns the paths of every affected file, in diff order.
func (d CommitDiff) FilePaths() []string {
	paths := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
