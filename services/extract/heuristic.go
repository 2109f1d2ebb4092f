// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/driftlog/services/core"
)

// HeuristicExtractor is the rule-based strategy: conventional-commit
// parsing, keyword sets, and path patterns. It requires no external
// services, never blocks, and is fully deterministic.
//
// Thread Safety: stateless; safe for concurrent use.
type HeuristicExtractor struct{}

var _ Extractor = (*HeuristicExtractor)(nil)

// NewHeuristicExtractor creates a heuristic extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Extract populates every inferable field from commit and diff text.
// BehaviorBefore/After stay absent: heuristics cannot observe behavior
// change, only lexical cues.
func (h *HeuristicExtractor) Extract(ctx context.Context, commit core.CommitInfo, diff *core.CommitDiff, diffText string) PartialExtraction {
	var paths []string
	if diff != nil {
		paths = diff.FilePaths()
	}

	return PartialExtraction{
		IntentSummary:       ptr(commit.Summary),
		Category:            ptr(inferCategory(commit.Summary, commit.Body)),
		ImpactScope:         ptr(inferImpactScope(commit, paths, diffText)),
		IsBreaking:          ptr(detectBreakingChange(commit)),
		TechnicalHighlights: extractTechnicalHighlights(diffText),
		Provenance:          core.Provenance{Provider: "heuristic"},
	}
}

var (
	securityKeywords    = []string{"security", "vulnerability", "cve", "exploit"}
	performanceKeywords = []string{"performance", "optimize", "speed", "faster"}
	fixKeywords         = []string{"fix", "bug", "issue", "error", "crash"}
	refactorKeywords    = []string{"refactor", "cleanup", "restructure"}
	featureKeywords     = []string{"add", "feature", "implement", "new"}

	publicSurfaceKeywords = []string{"public api", "breaking", "endpoint", "interface", "export"}
	removalKeywords       = []string{"removed", "deprecated", "breaking"}
	apiSurfaceKeywords    = []string{"api", "export", "interface", "endpoint"}

	dependencyManifests = []string{
		"requirements.txt", "pyproject.toml", "package.json",
		"go.mod", "go.sum", "cargo.toml", "gemfile", "pom.xml",
	}
	docExtensions  = []string{".md", ".rst", ".txt", ".adoc"}
	configPatterns = []string{
		".env", "config", ".yaml", ".yml", ".json", ".toml",
		"dockerfile", "docker-compose",
	}
)

// inferCategory picks the change category: conventional-commit prefix
// first, then keyword sets in fixed priority order, then chore.
func inferCategory(summary, body string) core.ChangeCategory {
	subject := strings.ToLower(summary)

	switch {
	case strings.HasPrefix(subject, "fix"):
		return core.CategoryFix
	case strings.HasPrefix(subject, "feat"):
		return core.CategoryFeature
	case strings.HasPrefix(subject, "perf"):
		return core.CategoryPerformance
	case strings.HasPrefix(subject, "refactor"):
		return core.CategoryRefactor
	case strings.HasPrefix(subject, "chore"),
		strings.HasPrefix(subject, "build"),
		strings.HasPrefix(subject, "ci"),
		strings.HasPrefix(subject, "docs"):
		return core.CategoryChore
	}

	text := strings.ToLower(summary + " " + body)
	switch {
	case containsAny(text, securityKeywords):
		return core.CategorySecurity
	case containsAny(text, performanceKeywords):
		return core.CategoryPerformance
	case containsAny(text, fixKeywords):
		return core.CategoryFix
	case containsAny(text, refactorKeywords):
		return core.CategoryRefactor
	case containsAny(text, featureKeywords):
		return core.CategoryFeature
	}
	return core.CategoryChore
}

// inferImpactScope classifies the changeset by its file paths, then by
// public-surface keywords in the text.
//
// The all-paths checks are deliberately coarse: a changeset counts as
// docs/test/config only if EVERY path matches, so mixed changesets
// fall through to internal or public_api rather than being
// misclassified.
func inferImpactScope(commit core.CommitInfo, paths []string, diffText string) core.ImpactScope {
	lower := make([]string, len(paths))
	for i, p := range paths {
		lower[i] = strings.ToLower(p)
	}

	if len(lower) > 0 && allMatch(lower, isDocPath) {
		return core.ScopeDocs
	}
	if len(lower) > 0 && allMatch(lower, isTestPath) {
		return core.ScopeTest
	}
	for _, p := range lower {
		for _, manifest := range dependencyManifests {
			if strings.HasSuffix(p, manifest) {
				return core.ScopeDependency
			}
		}
	}
	if len(lower) > 0 && allMatch(lower, isConfigPath) {
		return core.ScopeConfig
	}

	text := strings.ToLower(commit.Summary + " " + commit.Body + " " + diffText)
	if containsAny(text, publicSurfaceKeywords) {
		return core.ScopePublicAPI
	}
	return core.ScopeInternal
}

func isDocPath(p string) bool {
	for _, ext := range docExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return strings.Contains(p, "doc") || strings.Contains(p, "readme")
}

func isTestPath(p string) bool {
	return strings.Contains(p, "test") || strings.HasSuffix(p, "_test.go")
}

func isConfigPath(p string) bool {
	for _, pat := range configPatterns {
		if strings.Contains(p, pat) {
			return true
		}
	}
	return false
}

// detectBreakingChange looks for explicit markers and for the pairing
// of a removal keyword with a public-surface keyword.
func detectBreakingChange(commit core.CommitInfo) bool {
	text := strings.ToLower(commit.Summary + " " + commit.Body)

	if strings.Contains(text, "breaking") || strings.Contains(text, "breaking-change") {
		return true
	}
	if strings.HasPrefix(strings.ToUpper(commit.Summary), "BREAKING") {
		return true
	}

	// Conventional commit bang: "feat!:" or "fix(scope)!:".
	if prefix, _, found := strings.Cut(commit.Summary, ":"); found {
		if strings.Contains(prefix, "!") {
			return true
		}
	}

	if containsAny(text, removalKeywords) && containsAny(text, apiSurfaceKeywords) {
		return true
	}
	return false
}

const maxHighlights = 5

var (
	addedSymbolPattern   = regexp.MustCompile(`(?m)^\+\s*(func|type|def|class|function|async function)\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`)
	removedSymbolPattern = regexp.MustCompile(`(?m)^-\s*(func|type|def|class|function)\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`)
	errorHandlingPattern = regexp.MustCompile(`(?m)^\+.*\b(if err != nil|try|catch|except|raise|throw)\b`)
	testPattern          = regexp.MustCompile(`(?m)^\+.*\b(func Test|test_|describe\(|it\(|pytest)`)
	loggingPattern       = regexp.MustCompile(`(?m)^\+.*\b(slog\.|logger\.|logging\.|log\.|console\.log)`)
)

// extractTechnicalHighlights pattern-scans the diff for added/removed
// top-level definitions, error handling, tests and logging. Discovery
// order is preserved; output is capped at maxHighlights.
func extractTechnicalHighlights(diffText string) []string {
	if diffText == "" {
		return nil
	}
	var highlights []string

	for _, m := range firstN(addedSymbolPattern.FindAllStringSubmatch(diffText, -1), 3) {
		highlights = append(highlights, fmt.Sprintf("Added %s `%s`", symbolKind(m[1]), m[2]))
	}
	for _, m := range firstN(removedSymbolPattern.FindAllStringSubmatch(diffText, -1), 2) {
		highlights = append(highlights, fmt.Sprintf("Removed %s `%s`", symbolKind(m[1]), m[2]))
	}
	if errorHandlingPattern.MatchString(diffText) {
		highlights = append(highlights, "Added error handling")
	}
	if testPattern.MatchString(diffText) {
		highlights = append(highlights, "Added tests")
	}
	if loggingPattern.MatchString(diffText) {
		highlights = append(highlights, "Added logging")
	}

	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}

func symbolKind(keyword string) string {
	switch keyword {
	case "func", "def", "function", "async function":
		return "function"
	case "type", "class":
		return "type"
	default:
		return keyword
	}
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func allMatch(paths []string, match func(string) bool) bool {
	for _, p := range paths {
		if !match(p) {
			return false
		}
	}
	return true
}
