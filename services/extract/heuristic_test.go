// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/AleutianAI/driftlog/services/core"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		body    string
		want    core.ChangeCategory
	}{
		{"conventional fix", "fix: handle nil pointer in parser", "", core.CategoryFix},
		{"conventional feat", "feat(auth): add OAuth2 flow", "", core.CategoryFeature},
		{"conventional perf", "perf: cache compiled regexes", "", core.CategoryPerformance},
		{"conventional refactor", "refactor: split handler package", "", core.CategoryRefactor},
		{"conventional chore", "chore: bump linters", "", core.CategoryChore},
		{"conventional build", "build: pin base image", "", core.CategoryChore},
		{"conventional ci", "ci: run tests on arm64", "", core.CategoryChore},
		{"conventional docs", "docs: document retry policy", "", core.CategoryChore},
		{"security keyword", "patch CVE-2024-1234 in token handling", "", core.CategorySecurity},
		{"security beats fix keyword", "fixed the vulnerability in session store", "", core.CategoryFix},
		{"performance keyword", "make hot path faster", "", core.CategoryPerformance},
		{"fix keyword", "resolved crash on startup", "", core.CategoryFix},
		{"refactor keyword", "cleanup dead code in scheduler", "", core.CategoryRefactor},
		{"feature keyword", "implement retry budget", "", core.CategoryFeature},
		{"keyword in body", "misc changes", "this adds a new export endpoint", core.CategoryFeature},
		{"fallback chore", "update things", "", core.CategoryChore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferCategory(tt.summary, tt.body); got != tt.want {
				t.Errorf("inferCategory(%q, %q) = %q, want %q", tt.summary, tt.body, got, tt.want)
			}
		})
	}
}

func TestInferCategoryPrefixBeatsKeywords(t *testing.T) {
	// "fix: improve performance" carries a performance keyword but the
	// conventional prefix decides first.
	if got := inferCategory("fix: improve performance of queue", ""); got != core.CategoryFix {
		t.Errorf("got %q, want fix via prefix", got)
	}
}

func TestInferImpactScope(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		summary  string
		diffText string
		want     core.ImpactScope
	}{
		{"all docs", []string{"README.md", "docs/usage.rst"}, "update docs", "", core.ScopeDocs},
		{"all tests", []string{"pkg/foo_test.go", "tests/test_bar.py"}, "more tests", "", core.ScopeTest},
		{"dependency manifest wins over mixed", []string{"go.mod", "go.sum", "main.go"}, "bump dep", "", core.ScopeDependency},
		{"all config", []string{"deploy/config.yaml", ".env.example"}, "tune config", "", core.ScopeConfig},
		{"public surface keyword", []string{"server/handler.go"}, "expose new endpoint", "", core.ScopePublicAPI},
		{"public keyword in diff", []string{"server/handler.go"}, "tweak", "+// public api entry", core.ScopePublicAPI},
		{"internal default", []string{"internal/cache.go"}, "tighten locking", "", core.ScopeInternal},
		{"mixed docs and code is internal", []string{"README.md", "internal/cache.go"}, "tweak", "", core.ScopeInternal},
		{"no paths no keywords", nil, "something", "", core.ScopeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit := core.CommitInfo{Summary: tt.summary}
			if got := inferImpactScope(commit, tt.paths, tt.diffText); got != tt.want {
				t.Errorf("inferImpactScope = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectBreakingChange(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		body    string
		want    bool
	}{
		{"breaking word", "this is a breaking change", "", true},
		{"breaking in body", "rework auth", "BREAKING CHANGE: tokens invalidated", true},
		{"leading BREAKING", "BREAKING: drop v1 routes", "", true},
		{"bang before colon", "feat!: new wire format", "", true},
		{"scoped bang", "fix(api)!: rename field", "", true},
		{"bang after colon ignored", "fix: handle ! in paths", "", false},
		{"removal plus api keyword", "removed the legacy endpoint", "", true},
		{"deprecated plus interface", "deprecated the old interface", "", true},
		{"removal without surface keyword", "removed stale comments", "", false},
		{"plain fix", "fix: null check", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit := core.CommitInfo{Summary: tt.summary, Body: tt.body}
			if got := detectBreakingChange(commit); got != tt.want {
				t.Errorf("detectBreakingChange(%q, %q) = %v, want %v", tt.summary, tt.body, got, tt.want)
			}
		})
	}
}

func TestExtractTechnicalHighlights(t *testing.T) {
	diff := strings.Join([]string{
		"+func NewServer(addr string) *Server {",
		"+def authenticate(user, password):",
		"+type RetryPolicy struct {",
		"+func (s *Server) Close() error {",
		"-func legacyHandler(w http.ResponseWriter) {",
		"+\tif err != nil {",
		"+func TestNewServer(t *testing.T) {",
		"+\tslog.Info(\"started\")",
	}, "\n")

	got := extractTechnicalHighlights(diff)
	if len(got) != maxHighlights {
		t.Fatalf("got %d highlights, want cap of %d: %v", len(got), maxHighlights, got)
	}
	// First three are added symbols in discovery order.
	if !strings.Contains(got[0], "`NewServer`") {
		t.Errorf("highlight[0] = %q, want NewServer", got[0])
	}
	if !strings.Contains(got[1], "function `authenticate`") {
		t.Errorf("highlight[1] = %q, want function authenticate", got[1])
	}
	if !strings.Contains(got[2], "type `RetryPolicy`") {
		t.Errorf("highlight[2] = %q, want type RetryPolicy", got[2])
	}
	if !strings.Contains(got[3], "Removed") || !strings.Contains(got[3], "`legacyHandler`") {
		t.Errorf("highlight[3] = %q, want removed legacyHandler", got[3])
	}
}

func TestExtractTechnicalHighlightsMethodReceiver(t *testing.T) {
	got := extractTechnicalHighlights("+func (c *Client) Fetch(ctx context.Context) error {")
	if len(got) == 0 || !strings.Contains(got[0], "`Fetch`") {
		t.Errorf("got %v, want method name Fetch, not the receiver", got)
	}
}

func TestExtractTechnicalHighlightsEmptyDiff(t *testing.T) {
	if got := extractTechnicalHighlights(""); got != nil {
		t.Errorf("got %v, want nil for empty diff", got)
	}
}

func TestHeuristicExtractAlwaysTotal(t *testing.T) {
	h := NewHeuristicExtractor()
	commit := core.CommitInfo{
		SHA:      "abc123def",
		ShortSHA: "abc123d",
		Summary:  "feat: add config reload",
	}
	diff := &core.CommitDiff{Files: []core.FileDiff{{Path: "internal/config.go"}}}

	pe := h.Extract(context.Background(), commit, diff, "+func reload() {")

	if pe.IntentSummary == nil || pe.Category == nil || pe.ImpactScope == nil || pe.IsBreaking == nil {
		t.Fatal("heuristic extraction must set every scalar field")
	}
	if *pe.IntentSummary != commit.Summary {
		t.Errorf("IntentSummary = %q, want commit subject", *pe.IntentSummary)
	}
	if *pe.Category != core.CategoryFeature {
		t.Errorf("Category = %q, want feature", *pe.Category)
	}
	if pe.BehaviorBefore != nil || pe.BehaviorAfter != nil {
		t.Error("heuristics must not invent behavior descriptions")
	}
	if pe.Provenance.Provider != "heuristic" {
		t.Errorf("Provenance.Provider = %q, want heuristic", pe.Provenance.Provider)
	}
}

func TestHeuristicExtractNilDiff(t *testing.T) {
	h := NewHeuristicExtractor()
	pe := h.Extract(context.Background(), core.CommitInfo{Summary: "fix: thing"}, nil, "")
	if *pe.ImpactScope != core.ScopeInternal {
		t.Errorf("ImpactScope = %q, want internal with no paths", *pe.ImpactScope)
	}
}
