// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render formats reports and release notes as Markdown.
// Output is deterministic: sections follow the fixed category order,
// never map iteration order.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/report"
)

const maxImpactHighlights = 10

// Changelog renders a changelog report as Markdown.
func Changelog(revisionRange string, r *report.ChangelogReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Changelog %s\n\n", revisionRange)

	if features := r.ByCategory[core.CategoryFeature]; len(features) > 0 {
		b.WriteString("## Features\n")
		for _, item := range features {
			marker := ""
			if item.Artifact.IsBreaking {
				marker = " **[BREAKING]**"
			}
			fmt.Fprintf(&b, "- **%s** (%s)%s\n", item.Artifact.IntentSummary, item.Commit.ShortSHA, marker)
			if item.Artifact.BehaviorAfter != "" {
				fmt.Fprintf(&b, "  %s\n", item.Artifact.BehaviorAfter)
			}
		}
		b.WriteString("\n")
	}

	if fixes := r.ByCategory[core.CategoryFix]; len(fixes) > 0 {
		b.WriteString("## Fixes\n")
		for _, item := range fixes {
			fmt.Fprintf(&b, "- **%s** (%s)\n", item.Artifact.IntentSummary, item.Commit.ShortSHA)
		}
		b.WriteString("\n")
	}

	if security := r.ByCategory[core.CategorySecurity]; len(security) > 0 {
		b.WriteString("## Security\n")
		for _, item := range security {
			fmt.Fprintf(&b, "- **%s** (%s)\n", item.Artifact.IntentSummary, item.Commit.ShortSHA)
		}
		b.WriteString("\n")
	}

	if breaking := breakingChanges(r); len(breaking) > 0 {
		b.WriteString("## Breaking Changes\n")
		for _, item := range breaking {
			fmt.Fprintf(&b, "- **%s** (%s)\n", item.Artifact.IntentSummary, item.Commit.ShortSHA)
			if item.Artifact.BehaviorBefore != "" && item.Artifact.BehaviorAfter != "" {
				fmt.Fprintf(&b, "  - Before: %s\n", item.Artifact.BehaviorBefore)
				fmt.Fprintf(&b, "  - After: %s\n", item.Artifact.BehaviorAfter)
			}
		}
		b.WriteString("\n")
	}

	var other []report.AnalyzedCommit
	for _, cat := range []core.ChangeCategory{core.CategoryRefactor, core.CategoryPerformance, core.CategoryChore} {
		other = append(other, r.ByCategory[cat]...)
	}
	if len(other) > 0 {
		b.WriteString("## Other\n")
		for _, item := range other {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Artifact.IntentSummary, item.Commit.ShortSHA)
		}
		b.WriteString("\n")
	}

	if len(r.Unanalyzed) > 0 {
		b.WriteString("## Unanalyzed\n")
		for _, commit := range r.Unanalyzed {
			fmt.Fprintf(&b, "- %s (%s)\n", commit.Summary, commit.ShortSHA)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// breakingChanges collects breaking commits across every category in
// the fixed category order.
func breakingChanges(r *report.ChangelogReport) []report.AnalyzedCommit {
	var breaking []report.AnalyzedCommit
	for _, cat := range core.Categories {
		for _, item := range r.ByCategory[cat] {
			if item.Artifact.IsBreaking {
				breaking = append(breaking, item)
			}
		}
	}
	return breaking
}

// Impact renders an impact report as Markdown.
func Impact(revisionRange string, r *report.ImpactReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Impact Analysis: %s\n\n", revisionRange)
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total commits:** %d\n", r.TotalCommits)
	fmt.Fprintf(&b, "- **Analyzed:** %d\n", r.AnalyzedCount)
	fmt.Fprintf(&b, "- **Breaking changes:** %d\n\n", len(r.BreakingChanges))

	b.WriteString("## Impact Distribution\n")
	for _, entry := range sortedScopes(r.ScopeDistribution) {
		fmt.Fprintf(&b, "- %s: %d\n", entry.scope, entry.count)
	}

	if len(r.TechnicalHighlights) > 0 {
		b.WriteString("\n## Technical Highlights\n")
		for i, hl := range r.TechnicalHighlights {
			if i == maxImpactHighlights {
				break
			}
			fmt.Fprintf(&b, "- %s\n", hl)
		}
	}
	return b.String()
}

type scopeCount struct {
	scope core.ImpactScope
	count int
}

// sortedScopes orders by descending count, then scope name for a
// stable tie-break.
func sortedScopes(distribution map[core.ImpactScope]int) []scopeCount {
	entries := make([]scopeCount, 0, len(distribution))
	for scope, count := range distribution {
		entries = append(entries, scopeCount{scope, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].scope < entries[j].scope
	})
	return entries
}

// ReleaseNote renders a release note as Markdown.
func ReleaseNote(note *core.ReleaseNote) string {
	var b strings.Builder

	h := note.Header
	fmt.Fprintf(&b, "# %s %s — %s\n\n", h.ProductName, h.Version, h.ReleaseDate)
	fmt.Fprintf(&b, "*%s*\n\n", h.Theme)

	if len(note.Highlights) > 0 {
		b.WriteString("## 🚀 Highlights\n\n")
		for _, hl := range note.Highlights {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", hl.Emoji, titleCase(string(hl.Type)), hl.Summary)
		}
		b.WriteString("\n")
	}

	if len(note.Features) > 0 {
		b.WriteString("## 🆕 New Features\n\n")
		for _, feat := range note.Features {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n*%s*\n\n", feat.Title, feat.Description, feat.UserBenefit)
		}
	}

	if len(note.Improvements) > 0 {
		b.WriteString("## ✨ Improvements\n\n")
		for _, imp := range note.Improvements {
			fmt.Fprintf(&b, "- %s\n", imp.Summary)
		}
		b.WriteString("\n")
	}

	if len(note.Fixes) > 0 {
		b.WriteString("## 🛠️ Bug Fixes\n\n")
		for _, fix := range note.Fixes {
			fmt.Fprintf(&b, "- %s\n", fix.Summary)
		}
		b.WriteString("\n")
	}

	if len(note.Deprecations) > 0 {
		b.WriteString("## ⚠️ Deprecations & Breaking Changes\n\n")
		for _, dep := range note.Deprecations {
			fmt.Fprintf(&b, "### %s\n\n**Reason**: %s\n\n**Migration**: %s\n", dep.What, dep.Reason, dep.Migration)
			if dep.Deadline != "" {
				fmt.Fprintf(&b, "**Deadline**: %s\n", dep.Deadline)
			}
			b.WriteString("\n")
		}
	}

	m := note.Metadata
	b.WriteString("---\n")
	fmt.Fprintf(&b, "*%d commits, %d analyzed", m.CommitCount, m.AnalyzedCount)
	if m.Provider != "" {
		fmt.Fprintf(&b, " • Generated with %s/%s", m.Provider, m.Model)
	}
	b.WriteString("*\n")

	return b.String()
}

// titleCase uppercases the first letter; highlight types are plain
// ASCII words.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
