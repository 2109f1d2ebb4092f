// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gitio

import (
	"strings"
	"testing"
)

const samplePatch = `diff --git a/internal/cache.go b/internal/cache.go
index 1111111..2222222 100644
--- a/internal/cache.go
+++ b/internal/cache.go
@@ -10,5 +10,8 @@ func lookup(key string) string {
 	v, ok := entries[key]
 	if !ok {
-		return ""
+		return defaultValue
+	}
+	if v == "" {
+		return defaultValue
 	}
 	return v
diff --git a/docs/usage.md b/docs/usage.md
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/docs/usage.md
@@ -0,0 +1,2 @@
+# Usage
+See examples below.
diff --git a/old_name.go b/old_name.go
deleted file mode 100644
index 4444444..0000000
--- a/old_name.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package old
`

func TestParseUnifiedDiff(t *testing.T) {
	cd, err := ParseUnifiedDiff("abc123", samplePatch)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff: %v", err)
	}
	if cd.SHA != "abc123" {
		t.Errorf("SHA = %q", cd.SHA)
	}
	if len(cd.Files) != 3 {
		t.Fatalf("Files = %d, want 3", len(cd.Files))
	}

	modified := cd.Files[0]
	if modified.Path != "internal/cache.go" || modified.Status != "M" {
		t.Errorf("file[0] = %+v", modified)
	}
	if modified.Insertions == 0 || modified.Deletions == 0 {
		t.Errorf("file[0] stats = +%d -%d", modified.Insertions, modified.Deletions)
	}
	if !strings.Contains(modified.Patch, "defaultValue") {
		t.Error("per-file patch must carry the hunk text")
	}

	added := cd.Files[1]
	if added.Path != "docs/usage.md" || added.Status != "A" {
		t.Errorf("file[1] = %+v", added)
	}

	deleted := cd.Files[2]
	if deleted.Path != "old_name.go" || deleted.Status != "D" {
		t.Errorf("file[2] = %+v", deleted)
	}

	if cd.Stat.TotalChanges() == 0 {
		t.Error("aggregate stat must be non-zero")
	}
	paths := cd.FilePaths()
	if len(paths) != 3 || paths[1] != "docs/usage.md" {
		t.Errorf("FilePaths = %v", paths)
	}
}

func TestParseUnifiedDiffEmpty(t *testing.T) {
	cd, err := ParseUnifiedDiff("abc", "  \n")
	if err != nil {
		t.Fatalf("ParseUnifiedDiff: %v", err)
	}
	if len(cd.Files) != 0 || cd.Stat.TotalChanges() != 0 {
		t.Errorf("empty patch parsed as %+v", cd)
	}
}

func TestStripDiffPrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a/pkg/file.go", "pkg/file.go"},
		{"b/pkg/file.go", "pkg/file.go"},
		{"/dev/null", ""},
		{"plain.go", "plain.go"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripDiffPrefix(tt.in); got != tt.want {
			t.Errorf("stripDiffPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCommitLine(t *testing.T) {
	line := "1111111111111111111111111111111111111111\x001111111\x00Ada Lovelace\x00ada@example.com\x002026-03-01T12:00:00+00:00\x00fix: subject line\x00body first line\nbody second line\x00aaaa bbbb"
	commit, err := parseCommitLine(line)
	if err != nil {
		t.Fatalf("parseCommitLine: %v", err)
	}
	if commit.ShortSHA != "1111111" || commit.AuthorName != "Ada Lovelace" {
		t.Errorf("commit = %+v", commit)
	}
	if commit.Summary != "fix: subject line" {
		t.Errorf("Summary = %q", commit.Summary)
	}
	if !strings.Contains(commit.Body, "second line") {
		t.Errorf("Body = %q", commit.Body)
	}
	if len(commit.ParentSHAs) != 2 {
		t.Errorf("ParentSHAs = %v", commit.ParentSHAs)
	}
	if !commit.IsMerge() {
		t.Error("two parents must read as a merge")
	}
}

func TestParseCommitLineMalformed(t *testing.T) {
	if _, err := parseCommitLine("not enough fields"); err == nil {
		t.Error("malformed output must error")
	}
}
