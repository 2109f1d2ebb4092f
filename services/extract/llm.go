// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/llm"
)

// LLMExtractor extracts commit semantics by asking a language model
// provider for a structured response. It never returns an error: any
// provider failure, refusal, or unparseable response degrades to an
// empty PartialExtraction carrying the fallback reason in its
// provenance, so callers can always merge against the heuristic pass.
type LLMExtractor struct {
	provider llm.Provider
	logger   *slog.Logger

	// Availability is probed once per extractor lifetime so a batch of
	// commits does not hammer an endpoint that is down.
	availOnce sync.Once
	available bool
}

// NewLLMExtractor wraps a provider. A nil provider is legal and yields
// an extractor whose Extract always returns an empty result.
func NewLLMExtractor(provider llm.Provider, logger *slog.Logger) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExtractor{provider: provider, logger: logger}
}

var _ Extractor = (*LLMExtractor)(nil)

// Extract asks the provider to analyze one commit.
func (e *LLMExtractor) Extract(ctx context.Context, commit core.CommitInfo, diff *core.CommitDiff, diffText string) PartialExtraction {
	if e.provider == nil {
		return fallbackExtraction("no provider configured")
	}
	e.availOnce.Do(func() {
		e.available = e.provider.IsAvailable(ctx)
	})
	if !e.available {
		e.logger.Debug("llm provider unavailable, skipping extraction",
			"provider", e.provider.Name(), "sha", commit.ShortSHA)
		return fallbackExtraction("provider not available: " + e.provider.Name())
	}

	start := time.Now()
	result, err := e.provider.ExtractStructured(ctx, llm.Request{
		Prompt:       buildCommitPrompt(commit, diffText),
		SystemPrompt: commitAnalysisSystemPrompt,
		Schema: llm.SchemaDescriptor{
			Name:        "commit_analysis",
			Description: commitSchemaDescription,
		},
	})
	if err != nil {
		e.logger.Warn("llm extraction failed",
			"provider", e.provider.Name(), "sha", commit.ShortSHA, "error", err)
		return fallbackExtraction(err.Error())
	}
	if result.Refusal != "" {
		e.logger.Warn("llm refused extraction",
			"provider", e.provider.Name(), "sha", commit.ShortSHA, "refusal", result.Refusal)
		return fallbackExtraction("provider refused: " + result.Refusal)
	}
	if len(result.Parsed) == 0 {
		return fallbackExtraction("no structured content in response")
	}

	pe := parseExtraction(result.Parsed)
	pe.Provenance = core.Provenance{
		Provider:      result.Provider,
		Model:         result.Model,
		PromptVersion: CommitPromptVersion,
		TokenUsage:    result.Usage,
		Duration:      time.Since(start),
	}
	return pe
}

func fallbackExtraction(reason string) PartialExtraction {
	return PartialExtraction{Provenance: core.Provenance{FallbackReason: reason}}
}

// parseExtraction converts the model's JSON object into typed fields.
// Unknown enum values and malformed entries are dropped rather than
// failing the whole extraction.
func parseExtraction(fields map[string]any) PartialExtraction {
	var pe PartialExtraction
	if s, ok := stringField(fields, "intent_summary"); ok {
		pe.IntentSummary = &s
	}
	if s, ok := stringField(fields, "category"); ok {
		if cat, err := core.ParseChangeCategory(s); err == nil {
			pe.Category = &cat
		}
	}
	if s, ok := stringField(fields, "behavior_before"); ok {
		pe.BehaviorBefore = &s
	}
	if s, ok := stringField(fields, "behavior_after"); ok {
		pe.BehaviorAfter = &s
	}
	if s, ok := stringField(fields, "impact_scope"); ok {
		if scope, err := core.ParseImpactScope(s); err == nil {
			pe.ImpactScope = &scope
		}
	}
	if v, ok := fields["is_breaking"].(bool); ok {
		pe.IsBreaking = &v
	}
	if raw, ok := fields["technical_highlights"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					pe.TechnicalHighlights = append(pe.TechnicalHighlights, s)
				}
			}
		}
		if len(pe.TechnicalHighlights) > maxHighlights {
			pe.TechnicalHighlights = pe.TechnicalHighlights[:maxHighlights]
		}
	}
	return pe
}

// stringField returns a non-empty trimmed string value. JSON null and
// the literal string "null" both count as absent.
func stringField(fields map[string]any, key string) (string, bool) {
	s, ok := fields[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return "", false
	}
	return s, true
}
