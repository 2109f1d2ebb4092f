// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package core holds the domain model for commit semantic analysis:
// the classification vocabulary, raw commit/diff data, the per-commit
// CommitArtifact record, and the ReleaseNote document.
//
// # Description
//
// Everything in this package is a value type with no infrastructure
// dependencies. Artifacts and release notes are immutable after
// construction; re-analysis produces a replacement, never a mutation.
//
// # Thread Safety
//
// All types are safe for concurrent read after construction.
package core

import "fmt"

// ChangeCategory is the primary category of a change.
//
// Based on conventional commit types, but semantic rather than
// syntactic: a commit titled "update stuff" that fixes a crash is a fix.
type ChangeCategory string

const (
	CategoryFeature     ChangeCategory = "feature"
	CategoryFix         ChangeCategory = "fix"
	CategorySecurity    ChangeCategory = "security"
	CategoryPerformance ChangeCategory = "performance"
	CategoryRefactor    ChangeCategory = "refactor"
	CategoryChore       ChangeCategory = "chore"
)

// Categories lists all change categories in synthesis priority order.
// Report sections and release-note prompts iterate this order, never
// map order.
var Categories = []ChangeCategory{
	CategoryFeature,
	CategoryFix,
	CategorySecurity,
	CategoryPerformance,
	CategoryRefactor,
	CategoryChore,
}

// ParseChangeCategory converts a string to a ChangeCategory.
//
// Returns an error for unknown values so LLM output that drifts from
// the schema vocabulary is rejected rather than silently stored.
func ParseChangeCategory(s string) (ChangeCategory, error) {
	switch ChangeCategory(s) {
	case CategoryFeature, CategoryFix, CategorySecurity,
		CategoryPerformance, CategoryRefactor, CategoryChore:
		return ChangeCategory(s), nil
	}
	return "", fmt.Errorf("unknown change category %q", s)
}

// Valid reports whether c is one of the known categories.
func (c ChangeCategory) Valid() bool {
	_, err := ParseChangeCategory(string(c))
	return err == nil
}

// ImpactScope classifies how broadly a change affects the codebase and
// its consumers.
type ImpactScope string

const (
	// ScopePublicAPI covers external interfaces, endpoints, exported symbols.
	ScopePublicAPI ImpactScope = "public_api"
	// ScopeInternal covers refactoring, internal logic, private helpers.
	ScopeInternal ImpactScope = "internal"
	// ScopeDependency covers version bumps and library changes.
	ScopeDependency ImpactScope = "dependency"
	// ScopeConfig covers defaults, environment variables, and flags.
	ScopeConfig ImpactScope = "config"
	// ScopeDocs covers documentation-only changes.
	ScopeDocs ImpactScope = "docs"
	// ScopeTest covers test-only changes.
	ScopeTest ImpactScope = "test"
	// ScopeUnknown means the scope could not be determined.
	ScopeUnknown ImpactScope = "unknown"
)

// ParseImpactScope converts a string to an ImpactScope.
func ParseImpactScope(s string) (ImpactScope, error) {
	switch ImpactScope(s) {
	case ScopePublicAPI, ScopeInternal, ScopeDependency,
		ScopeConfig, ScopeDocs, ScopeTest, ScopeUnknown:
		return ImpactScope(s), nil
	}
	return "", fmt.Errorf("unknown impact scope %q", s)
}

// Valid reports whether s is one of the known scopes.
func (s ImpactScope) Valid() bool {
	_, err := ParseImpactScope(string(s))
	return err == nil
}
