// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
)

// CommitPromptVersion is recorded in artifact provenance so stored
// artifacts can be traced back to the prompt that produced them.
const CommitPromptVersion = "commit/v1"

// maxDiffLines caps the diff text included in a prompt. Beyond this the
// diff is truncated with a marker; the model sees the commit message
// and the head of the change.
const maxDiffLines = 500

const commitAnalysisSystemPrompt = `You are an expert software engineer analyzing git commits to extract semantic understanding.

Your task is to analyze the commit message and code diff to determine:
1. What the change ACTUALLY does (which may differ from the commit message)
2. The category of change (feature, fix, security, performance, refactor, chore)
3. The behavior before and after (for fixes and features)
4. The scope of impact (public API, internal, config, docs, tests)
5. Whether this is a breaking change
6. Key technical decisions made in the implementation

Guidelines:
- Be specific and actionable in your descriptions
- For behavior_before/after, focus on observable differences
- Only mark as breaking if external consumers are affected
- Look at actual code changes, not just the commit message
- For refactors, behavior_before and behavior_after should be null
- For new features without prior behavior, behavior_before should be null
- Technical highlights should focus on HOW, not WHAT`

// commitSchemaDescription specifies the JSON object the model must
// emit. Vocabulary matches the core enums exactly; anything outside it
// is dropped during parsing.
const commitSchemaDescription = `{
  "intent_summary": "one-sentence summary of what this commit actually does",
  "category": "feature|fix|security|performance|refactor|chore",
  "behavior_before": "observable behavior before the change, or null",
  "behavior_after": "observable behavior after the change, or null",
  "impact_scope": "public_api|internal|dependency|config|docs|test|unknown",
  "is_breaking": true or false,
  "technical_highlights": ["key technical decision", "..."]
}`

// buildCommitPrompt assembles the user prompt for one commit.
func buildCommitPrompt(commit core.CommitInfo, diffText string) string {
	var b strings.Builder
	b.WriteString("Analyze the following git commit and extract semantic information.\n\n")
	b.WriteString("## Commit Information\n")
	fmt.Fprintf(&b, "- SHA: %s\n", commit.ShortSHA)
	fmt.Fprintf(&b, "- Author: %s <%s>\n", commit.AuthorName, commit.AuthorEmail)
	fmt.Fprintf(&b, "- Date: %s\n\n", commit.Date.Format(time.RFC3339))
	b.WriteString("## Commit Message\n```\n")
	b.WriteString(commit.FullMessage())
	b.WriteString("\n```\n\n")

	b.WriteString("## Code Diff\n")
	if diffText == "" {
		b.WriteString("(No diff available - this may be a merge commit or initial commit)\n\n")
	} else {
		b.WriteString("```diff\n")
		b.WriteString(truncateDiff(diffText, maxDiffLines))
		b.WriteString("\n```\n\n")
	}

	b.WriteString("## Instructions\n")
	b.WriteString("Based on the commit message and diff above, extract the semantic information.\n")
	b.WriteString("Focus on understanding the REAL intent and impact of this change.")
	return b.String()
}

func truncateDiff(diffText string, maxLines int) string {
	lines := strings.Split(diffText, "\n")
	if len(lines) <= maxLines {
		return diffText
	}
	kept := strings.Join(lines[:maxLines], "\n")
	return fmt.Sprintf("%s\n\n... (diff truncated, %d more lines)", kept, len(lines)-maxLines)
}
