// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report aggregates commit artifacts into changelogs, impact
// summaries and user-facing release notes. Builders here are pure
// functions over (ordered commits, artifacts-by-hash); they never
// mutate their inputs.
package report

import (
	"github.com/AleutianAI/driftlog/services/core"
)

// AnalyzedCommit pairs a commit with its artifact.
type AnalyzedCommit struct {
	Commit   core.CommitInfo
	Artifact *core.CommitArtifact
}

// ChangelogReport groups analyzed commits by change category.
type ChangelogReport struct {
	ByCategory map[core.ChangeCategory][]AnalyzedCommit
	// Unanalyzed is populated only when requested at build time.
	Unanalyzed []core.CommitInfo
}

// BuildChangelog groups commits by their artifact's category, keeping
// the input commit order inside each bucket. Commits without an
// artifact are collected only when includeUnanalyzed is set.
func BuildChangelog(commits []core.CommitInfo, artifacts map[string]*core.CommitArtifact, includeUnanalyzed bool) *ChangelogReport {
	report := &ChangelogReport{
		ByCategory: make(map[core.ChangeCategory][]AnalyzedCommit),
	}
	for _, commit := range commits {
		artifact := artifacts[commit.SHA]
		if artifact == nil {
			if includeUnanalyzed {
				report.Unanalyzed = append(report.Unanalyzed, commit)
			}
			continue
		}
		report.ByCategory[artifact.Category] = append(report.ByCategory[artifact.Category], AnalyzedCommit{Commit: commit, Artifact: artifact})
	}
	return report
}

// ImpactReport summarizes where a range of commits lands.
type ImpactReport struct {
	TotalCommits        int
	AnalyzedCount       int
	ScopeDistribution   map[core.ImpactScope]int
	BreakingChanges     []AnalyzedCommit
	TechnicalHighlights []string
}

// BuildImpact tallies impact-scope frequency, collects breaking
// changes and flattens every technical highlight in commit order.
func BuildImpact(commits []core.CommitInfo, artifacts map[string]*core.CommitArtifact) *ImpactReport {
	report := &ImpactReport{
		TotalCommits:      len(commits),
		ScopeDistribution: make(map[core.ImpactScope]int),
	}
	for _, commit := range commits {
		artifact := artifacts[commit.SHA]
		if artifact == nil {
			continue
		}
		report.AnalyzedCount++
		report.ScopeDistribution[artifact.ImpactScope]++
		if artifact.IsBreaking {
			report.BreakingChanges = append(report.BreakingChanges, AnalyzedCommit{Commit: commit, Artifact: artifact})
		}
		report.TechnicalHighlights = append(report.TechnicalHighlights, artifact.TechnicalHighlights...)
	}
	return report
}

// ReleaseNotesReport splits analyzed commits into user-facing and
// internal buckets.
type ReleaseNotesReport struct {
	UserFacing    []AnalyzedCommit
	Internal      []AnalyzedCommit
	TotalCommits  int
	AnalyzedCount int
}

// Classify buckets each analyzed commit. User-facing means the change
// touches public API or config scope, or is a feature, fix or security
// change outside test scope. Everything else is internal. Commits
// without an artifact are counted but not bucketed.
func Classify(commits []core.CommitInfo, artifacts map[string]*core.CommitArtifact) *ReleaseNotesReport {
	report := &ReleaseNotesReport{TotalCommits: len(commits)}
	for _, commit := range commits {
		artifact := artifacts[commit.SHA]
		if artifact == nil {
			continue
		}
		report.AnalyzedCount++
		pair := AnalyzedCommit{Commit: commit, Artifact: artifact}
		if userFacing(artifact) {
			report.UserFacing = append(report.UserFacing, pair)
		} else {
			report.Internal = append(report.Internal, pair)
		}
	}
	return report
}

func userFacing(artifact *core.CommitArtifact) bool {
	switch artifact.ImpactScope {
	case core.ScopePublicAPI, core.ScopeConfig:
		return true
	}
	switch artifact.Category {
	case core.CategoryFeature, core.CategoryFix, core.CategorySecurity:
		return artifact.ImpactScope != core.ScopeTest
	}
	return false
}
