// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extract turns one commit's message and diff text into a
// partial semantic record through independently-failing strategies.
//
// # Description
//
// Two extractors exist: a deterministic, pattern-based heuristic that
// always produces a fully-populated result, and an LLM-backed one that
// may produce a fully, partially, or entirely unpopulated result.
// Results are combined field-by-field by PartialExtraction.Merge, with
// the LLM as primary and the heuristic as fallback.
package extract

import (
	"context"

	"github.com/AleutianAI/driftlog/services/core"
)

// PartialExtraction holds the semantic fields one strategy was able to
// determine. Every field is optional; nil means "no opinion", which is
// distinct from an explicit zero value. In particular IsBreaking is
// tri-state: absent, false, and true are three different answers.
//
// A PartialExtraction is created fresh per extractor call, never
// mutated, and consumed exactly once by Merge.
type PartialExtraction struct {
	IntentSummary       *string
	Category            *core.ChangeCategory
	BehaviorBefore      *string
	BehaviorAfter       *string
	ImpactScope         *core.ImpactScope
	IsBreaking          *bool
	TechnicalHighlights []string

	Provenance core.Provenance
}

// Empty reports whether the extraction carries no opinion at all.
func (p PartialExtraction) Empty() bool {
	return p.IntentSummary == nil &&
		p.Category == nil &&
		p.BehaviorBefore == nil &&
		p.BehaviorAfter == nil &&
		p.ImpactScope == nil &&
		p.IsBreaking == nil &&
		len(p.TechnicalHighlights) == 0
}

// Merge combines p (primary) with a fallback extraction.
//
// For every scalar field the primary value wins when present,
// otherwise the fallback value is used. Presence, not truthiness,
// short-circuits: an explicit false IsBreaking from the primary
// survives a true from the fallback. List fields use the primary only
// if it is non-empty. Provenance follows the same rule keyed on
// Provider, except that the primary's FallbackReason is carried over.
func (p PartialExtraction) Merge(fallback PartialExtraction) PartialExtraction {
	merged := PartialExtraction{
		IntentSummary:       orPtr(p.IntentSummary, fallback.IntentSummary),
		Category:            orPtr(p.Category, fallback.Category),
		BehaviorBefore:      orPtr(p.BehaviorBefore, fallback.BehaviorBefore),
		BehaviorAfter:       orPtr(p.BehaviorAfter, fallback.BehaviorAfter),
		ImpactScope:         orPtr(p.ImpactScope, fallback.ImpactScope),
		IsBreaking:          orPtr(p.IsBreaking, fallback.IsBreaking),
		TechnicalHighlights: p.TechnicalHighlights,
		Provenance:          p.Provenance,
	}
	if len(merged.TechnicalHighlights) == 0 {
		merged.TechnicalHighlights = fallback.TechnicalHighlights
	}
	if merged.Provenance.Provider == "" {
		reason := merged.Provenance.FallbackReason
		merged.Provenance = fallback.Provenance
		// The primary's fallback reason explains why the fields came
		// from the fallback; it must outlive the provenance swap.
		if reason != "" {
			merged.Provenance.FallbackReason = reason
		}
	}
	return merged
}

func orPtr[T any](primary, fallback *T) *T {
	if primary != nil {
		return primary
	}
	return fallback
}

// ptr is a convenience for building extractions.
func ptr[T any](v T) *T { return &v }

// Extractor is a strategy that attempts to populate semantic fields
// from commit and diff text. Extract is total: it never fails and
// returns an empty extraction instead of an error.
type Extractor interface {
	Extract(ctx context.Context, commit core.CommitInfo, diff *core.CommitDiff, diffText string) PartialExtraction
}
