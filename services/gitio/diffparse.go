// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gitio

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/driftlog/services/core"
)

// ParseUnifiedDiff converts a raw git patch into the structured form.
// An empty patch yields an empty CommitDiff, not an error.
func ParseUnifiedDiff(sha, patch string) (*core.CommitDiff, error) {
	result := &core.CommitDiff{SHA: sha}
	if strings.TrimSpace(patch) == "" {
		return result, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parse diff for %s: %w", sha, err)
	}

	for _, fd := range fileDiffs {
		file := convertFileDiff(fd)
		result.Files = append(result.Files, file)
		result.Stat.Insertions += file.Insertions
		result.Stat.Deletions += file.Deletions
	}
	return result, nil
}

func convertFileDiff(fd *diff.FileDiff) core.FileDiff {
	orig := stripDiffPrefix(fd.OrigName)
	updated := stripDiffPrefix(fd.NewName)

	file := core.FileDiff{Path: updated, Status: "M"}
	switch {
	case orig == "" && updated != "":
		file.Status = "A"
	case updated == "" && orig != "":
		file.Status = "D"
		file.Path = orig
	case orig != updated:
		file.Status = "R"
		file.OldPath = orig
	}

	stat := fd.Stat()
	// go-diff counts a changed line once; git numstat counts it on
	// both sides.
	file.Insertions = int(stat.Added + stat.Changed)
	file.Deletions = int(stat.Deleted + stat.Changed)

	if body, err := diff.PrintFileDiff(fd); err == nil {
		file.Patch = string(body)
	}
	return file
}

// stripDiffPrefix removes git's a/ and b/ name prefixes and maps
// /dev/null to the empty string.
func stripDiffPrefix(name string) string {
	if name == "/dev/null" || name == "" {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}
