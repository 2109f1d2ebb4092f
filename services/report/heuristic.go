// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/driftlog/services/core"
)

const maxNoteHighlights = 5

// heuristicContent builds release-note content deterministically. It
// is the fallback for every model failure and the whole path when no
// provider is configured; both entries go through this one function so
// the output is identical either way.
//
// Highlights are assembled in fixed priority order: first feature,
// first performance item, first fix, first security item, first
// breaking item; each only if its bucket is non-empty, capped at
// maxNoteHighlights.
func heuristicContent(records []synthRecord) synthContent {
	byCategory := groupByCategory(records)

	var breaking []synthRecord
	for _, r := range records {
		if r.IsBreaking {
			breaking = append(breaking, r)
		}
	}

	var content synthContent

	if items := byCategory[core.CategoryFeature]; len(items) > 0 {
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji: "🚀", Type: core.HighlightNew, Summary: truncate(items[0].IntentSummary, 60),
		})
	}
	if items := byCategory[core.CategoryPerformance]; len(items) > 0 {
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji: "✨", Type: core.HighlightImproved, Summary: truncate(items[0].IntentSummary, 60),
		})
	}
	if items := byCategory[core.CategoryFix]; len(items) > 0 {
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji: "🛠️", Type: core.HighlightFixed, Summary: truncate(items[0].IntentSummary, 60),
		})
	}
	if items := byCategory[core.CategorySecurity]; len(items) > 0 {
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji: "🔒", Type: core.HighlightSecurity, Summary: truncate(items[0].IntentSummary, 60),
		})
	}
	if len(breaking) > 0 {
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji: "⚠️", Type: core.HighlightBreaking, Summary: truncate(breaking[0].IntentSummary, 60),
		})
	}
	if len(content.Highlights) > maxNoteHighlights {
		content.Highlights = content.Highlights[:maxNoteHighlights]
	}

	for _, f := range byCategory[core.CategoryFeature] {
		benefit := f.BehaviorAfter
		if benefit == "" {
			benefit = "Enhances functionality."
		}
		content.Features = append(content.Features, core.Feature{
			Title:       truncate(f.IntentSummary, 50),
			Description: f.IntentSummary,
			UserBenefit: benefit,
			Commits:     []string{f.ShortSHA},
		})
	}

	for _, i := range byCategory[core.CategoryPerformance] {
		content.Improvements = append(content.Improvements, core.Improvement{Summary: i.IntentSummary, Commits: []string{i.ShortSHA}})
	}
	for _, r := range byCategory[core.CategoryRefactor] {
		if r.ImpactScope == core.ScopeInternal {
			continue
		}
		content.Improvements = append(content.Improvements, core.Improvement{Summary: r.IntentSummary, Commits: []string{r.ShortSHA}})
	}

	for _, f := range byCategory[core.CategoryFix] {
		content.Fixes = append(content.Fixes, core.BugFix{Summary: f.IntentSummary, Commits: []string{f.ShortSHA}})
	}
	for _, s := range byCategory[core.CategorySecurity] {
		content.Fixes = append(content.Fixes, core.BugFix{Summary: s.IntentSummary, Commits: []string{s.ShortSHA}})
	}

	for _, b := range breaking {
		migration := b.BehaviorAfter
		if migration == "" {
			migration = "See documentation for details."
		}
		content.Deprecations = append(content.Deprecations, core.Deprecation{
			What:      b.IntentSummary,
			Reason:    "API or behavior change required.",
			Migration: migration,
			Commits:   []string{b.ShortSHA},
		})
	}

	content.Theme = composeTheme(
		len(byCategory[core.CategoryFeature]),
		len(byCategory[core.CategoryFix]),
		len(byCategory[core.CategoryPerformance]),
	)
	return content
}

func composeTheme(features, fixes, perf int) string {
	var parts []string
	if features > 0 {
		parts = append(parts, fmt.Sprintf("%d new %s", features, plural(features, "feature", "features")))
	}
	if fixes > 0 {
		parts = append(parts, fmt.Sprintf("%d bug %s", fixes, plural(fixes, "fix", "fixes")))
	}
	if perf > 0 {
		parts = append(parts, "performance improvements")
	}
	if len(parts) == 0 {
		return "Various improvements and fixes."
	}
	return fmt.Sprintf("This release includes %s.", strings.Join(parts, ", "))
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// truncate cuts at a rune boundary so multi-byte text stays valid.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
