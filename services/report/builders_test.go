// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"testing"

	"github.com/AleutianAI/driftlog/services/core"
)

func commit(sha string) core.CommitInfo {
	return core.CommitInfo{SHA: sha, ShortSHA: sha[:min(7, len(sha))], Summary: "summary for " + sha}
}

func artifact(sha string, category core.ChangeCategory, scope core.ImpactScope) *core.CommitArtifact {
	return &core.CommitArtifact{
		SchemaVersion: core.ArtifactSchemaVersion,
		CommitHash:    sha,
		IntentSummary: "summary for " + sha,
		Category:      category,
		ImpactScope:   scope,
	}
}

func TestBuildChangelog(t *testing.T) {
	commits := []core.CommitInfo{commit("aaaa111"), commit("bbbb222"), commit("cccc333"), commit("dddd444")}
	artifacts := map[string]*core.CommitArtifact{
		"aaaa111": artifact("aaaa111", core.CategoryFeature, core.ScopeInternal),
		"bbbb222": artifact("bbbb222", core.CategoryFix, core.ScopeInternal),
		"dddd444": artifact("dddd444", core.CategoryFeature, core.ScopePublicAPI),
	}

	report := BuildChangelog(commits, artifacts, false)

	if got := len(report.ByCategory[core.CategoryFeature]); got != 2 {
		t.Errorf("feature bucket = %d, want 2", got)
	}
	if got := len(report.ByCategory[core.CategoryFix]); got != 1 {
		t.Errorf("fix bucket = %d, want 1", got)
	}
	if len(report.Unanalyzed) != 0 {
		t.Error("unanalyzed must stay empty unless requested")
	}
	// Input order preserved within a bucket.
	features := report.ByCategory[core.CategoryFeature]
	if features[0].Commit.SHA != "aaaa111" || features[1].Commit.SHA != "dddd444" {
		t.Errorf("feature order = %s, %s", features[0].Commit.SHA, features[1].Commit.SHA)
	}

	withGaps := BuildChangelog(commits, artifacts, true)
	if len(withGaps.Unanalyzed) != 1 || withGaps.Unanalyzed[0].SHA != "cccc333" {
		t.Errorf("Unanalyzed = %v", withGaps.Unanalyzed)
	}
}

func TestBuildImpact(t *testing.T) {
	commits := []core.CommitInfo{commit("aaaa111"), commit("bbbb222"), commit("cccc333")}
	a1 := artifact("aaaa111", core.CategoryFeature, core.ScopePublicAPI)
	a1.IsBreaking = true
	a1.TechnicalHighlights = []string{"h1", "h2"}
	a2 := artifact("bbbb222", core.CategoryFix, core.ScopeInternal)
	a2.TechnicalHighlights = []string{"h3"}
	artifacts := map[string]*core.CommitArtifact{"aaaa111": a1, "bbbb222": a2}

	report := BuildImpact(commits, artifacts)

	if report.TotalCommits != 3 || report.AnalyzedCount != 2 {
		t.Errorf("totals = %d/%d", report.TotalCommits, report.AnalyzedCount)
	}
	if report.ScopeDistribution[core.ScopePublicAPI] != 1 || report.ScopeDistribution[core.ScopeInternal] != 1 {
		t.Errorf("scope distribution = %v", report.ScopeDistribution)
	}
	if len(report.BreakingChanges) != 1 || report.BreakingChanges[0].Commit.SHA != "aaaa111" {
		t.Errorf("breaking changes = %v", report.BreakingChanges)
	}
	if len(report.TechnicalHighlights) != 3 || report.TechnicalHighlights[0] != "h1" {
		t.Errorf("highlights = %v", report.TechnicalHighlights)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		category   core.ChangeCategory
		scope      core.ImpactScope
		userFacing bool
	}{
		{"public api always user facing", core.CategoryChore, core.ScopePublicAPI, true},
		{"config scope user facing", core.CategoryRefactor, core.ScopeConfig, true},
		{"feature internal user facing", core.CategoryFeature, core.ScopeInternal, true},
		{"fix user facing", core.CategoryFix, core.ScopeInternal, true},
		{"security user facing", core.CategorySecurity, core.ScopeInternal, true},
		{"fix in test scope internal", core.CategoryFix, core.ScopeTest, false},
		{"chore internal", core.CategoryChore, core.ScopeInternal, false},
		{"refactor internal", core.CategoryRefactor, core.ScopeInternal, false},
		{"chore dependency internal", core.CategoryChore, core.ScopeDependency, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commits := []core.CommitInfo{commit("aaaa111")}
			artifacts := map[string]*core.CommitArtifact{
				"aaaa111": artifact("aaaa111", tt.category, tt.scope),
			}
			report := Classify(commits, artifacts)
			if got := len(report.UserFacing) == 1; got != tt.userFacing {
				t.Errorf("userFacing = %v, want %v", got, tt.userFacing)
			}
		})
	}
}

func TestClassifySkipsUnanalyzed(t *testing.T) {
	commits := []core.CommitInfo{commit("aaaa111"), commit("bbbb222")}
	artifacts := map[string]*core.CommitArtifact{
		"aaaa111": artifact("aaaa111", core.CategoryFeature, core.ScopeInternal),
	}
	report := Classify(commits, artifacts)
	if report.TotalCommits != 2 || report.AnalyzedCount != 1 {
		t.Errorf("totals = %d/%d", report.TotalCommits, report.AnalyzedCount)
	}
	if len(report.UserFacing)+len(report.Internal) != 1 {
		t.Error("unanalyzed commits must not be bucketed")
	}
}
