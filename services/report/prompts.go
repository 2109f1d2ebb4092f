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

// ReleasePromptVersion is recorded in release-note metadata.
const ReleasePromptVersion = "release/v1"

const releaseNoteSystemPrompt = `You are an expert technical writer creating release notes for software users.

Your task is to synthesize commit-level analysis into user-facing release notes that are:
- **Clear**: Tell users what changed without requiring them to decode technical jargon.
- **Concise**: Short enough to skim, but detailed enough to be useful.
- **User-focused**: Explain *why* changes matter, not just *what* changed.
- **Organized**: Group related changes and prioritize the most important.

Guidelines:
- Write for END USERS, not developers. Avoid implementation details.
- Group related commits into single features/improvements when they work together.
- For the "theme", capture the ESSENCE of the release in one catchy sentence.
- For highlights, pick the 3-5 MOST IMPORTANT changes users should know about.
- For features, explain WHAT it does and WHY users will benefit.
- For improvements, be SPECIFIC about the benefit (e.g., "45% faster" not "improved").
- For bug fixes, describe the USER-VISIBLE problem that was fixed.
- For deprecations/breaking changes, be CLEAR about what's changing and how to adapt.
- Use active voice and present tense.
- Keep summaries concise but informative.

Output format: Respond with valid JSON matching the provided schema.`

const releaseNoteSchemaDescription = `{
  "theme": "one catchy sentence capturing the essence of the release",
  "highlights": [{"emoji": "🚀", "type": "new|improved|fixed|security|deprecated|breaking", "summary": "..."}],
  "features": [{"title": "...", "description": "...", "user_benefit": "...", "commit_refs": ["abc1234"]}],
  "improvements": [{"summary": "...", "commit_refs": ["abc1234"]}],
  "fixes": [{"summary": "...", "commit_refs": ["abc1234"]}],
  "deprecations": [{"what": "...", "reason": "...", "migration": "...", "commit_refs": ["abc1234"]}]
}`

// buildSynthesisPrompt assembles the aggregate prompt for one release.
func buildSynthesisPrompt(productName, version string, records []synthRecord) string {
	var b strings.Builder
	b.WriteString("Synthesize the following commit analyses into user-facing release notes.\n\n")
	fmt.Fprintf(&b, "## Product: %s\n", productName)
	fmt.Fprintf(&b, "## Version: %s\n\n", version)
	b.WriteString("## Commit Analyses\n\n")
	b.WriteString(formatRecordsForSynthesis(records))
	b.WriteString("\n## Instructions\n\n")
	b.WriteString("Based on the commit analyses above:\n")
	b.WriteString("1. Create a compelling theme that captures the essence of this release.\n")
	b.WriteString("2. Select 3-5 highlights for the TL;DR section.\n")
	b.WriteString("3. Group related commits into cohesive features, improvements, and fixes.\n")
	b.WriteString("4. Rewrite technical descriptions into user-friendly language.\n")
	b.WriteString("5. Include ALL breaking changes in the deprecations section.\n\n")
	b.WriteString("Remember: Write for end users, not developers!")
	return b.String()
}

// formatRecordsForSynthesis renders records grouped by category in the
// fixed priority order, so the model sees features first and chores
// last regardless of commit order.
func formatRecordsForSynthesis(records []synthRecord) string {
	byCategory := groupByCategory(records)

	var b strings.Builder
	for _, category := range core.Categories {
		items := byCategory[category]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d commits)\n\n", strings.ToUpper(string(category)), len(items))
		for _, item := range items {
			marker := ""
			if item.IsBreaking {
				marker = " ⚠️ BREAKING"
			}
			fmt.Fprintf(&b, "- **[%s]** %s%s\n", item.ShortSHA, item.IntentSummary, marker)
			if item.BehaviorBefore != "" && item.BehaviorAfter != "" {
				fmt.Fprintf(&b, "  - Before: %s\n", item.BehaviorBefore)
				fmt.Fprintf(&b, "  - After: %s\n", item.BehaviorAfter)
			}
			for i, hl := range item.TechnicalHighlights {
				if i == 2 {
					break
				}
				fmt.Fprintf(&b, "  - Technical: %s\n", hl)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func groupByCategory(records []synthRecord) map[core.ChangeCategory][]synthRecord {
	byCategory := make(map[core.ChangeCategory][]synthRecord)
	for _, r := range records {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	return byCategory
}
