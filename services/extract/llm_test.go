// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/llm"
)

// fakeProvider is a canned llm.Provider for extractor tests.
type fakeProvider struct {
	available bool
	result    *llm.StructuredResult
	err       error
	lastReq   llm.Request
}

func (f *fakeProvider) Name() string                           { return "fake" }
func (f *fakeProvider) Model() string                          { return "fake-1" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool   { return f.available }
func (f *fakeProvider) ExtractStructured(ctx context.Context, req llm.Request) (*llm.StructuredResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestLLMExtractorNilProvider(t *testing.T) {
	e := NewLLMExtractor(nil, nil)
	pe := e.Extract(context.Background(), core.CommitInfo{Summary: "x"}, nil, "")
	if !pe.Empty() {
		t.Error("nil provider must yield an empty extraction")
	}
	if pe.Provenance.FallbackReason == "" {
		t.Error("fallback reason must be recorded")
	}
}

func TestLLMExtractorUnavailableProvider(t *testing.T) {
	e := NewLLMExtractor(&fakeProvider{available: false}, nil)
	pe := e.Extract(context.Background(), core.CommitInfo{Summary: "x"}, nil, "")
	if !pe.Empty() {
		t.Error("unavailable provider must yield an empty extraction")
	}
	if !strings.Contains(pe.Provenance.FallbackReason, "not available") {
		t.Errorf("FallbackReason = %q", pe.Provenance.FallbackReason)
	}
}

func TestLLMExtractorProviderError(t *testing.T) {
	e := NewLLMExtractor(&fakeProvider{available: true, err: errors.New("boom")}, nil)
	pe := e.Extract(context.Background(), core.CommitInfo{Summary: "x"}, nil, "")
	if !pe.Empty() {
		t.Error("provider error must degrade to empty, never propagate")
	}
	if pe.Provenance.FallbackReason != "boom" {
		t.Errorf("FallbackReason = %q, want boom", pe.Provenance.FallbackReason)
	}
}

func TestLLMExtractorRefusal(t *testing.T) {
	p := &fakeProvider{available: true, result: &llm.StructuredResult{Refusal: "cannot comply"}}
	pe := NewLLMExtractor(p, nil).Extract(context.Background(), core.CommitInfo{Summary: "x"}, nil, "")
	if !pe.Empty() {
		t.Error("refusal must degrade to empty")
	}
}

func TestLLMExtractorParsesFields(t *testing.T) {
	p := &fakeProvider{
		available: true,
		result: &llm.StructuredResult{
			Parsed: map[string]any{
				"intent_summary":       "adds connection pooling to the client",
				"category":             "performance",
				"behavior_before":      "one TCP connection per request",
				"behavior_after":       "connections reused from a pool",
				"impact_scope":         "internal",
				"is_breaking":          false,
				"technical_highlights": []any{"pool sized by GOMAXPROCS", ""},
			},
			Provider: "fake",
			Model:    "fake-1",
			Usage:    core.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		},
	}
	commit := core.CommitInfo{ShortSHA: "abc1234", Summary: "perf: pool connections"}
	pe := NewLLMExtractor(p, nil).Extract(context.Background(), commit, nil, "+some diff")

	if pe.IntentSummary == nil || *pe.IntentSummary != "adds connection pooling to the client" {
		t.Error("intent_summary not parsed")
	}
	if pe.Category == nil || *pe.Category != core.CategoryPerformance {
		t.Error("category not parsed")
	}
	if pe.IsBreaking == nil || *pe.IsBreaking != false {
		t.Error("is_breaking not parsed as explicit false")
	}
	if len(pe.TechnicalHighlights) != 1 {
		t.Errorf("highlights = %v, want empty entries dropped", pe.TechnicalHighlights)
	}
	if pe.Provenance.Provider != "fake" || pe.Provenance.Model != "fake-1" {
		t.Error("provenance must record provider and model")
	}
	if pe.Provenance.PromptVersion != CommitPromptVersion {
		t.Errorf("PromptVersion = %q", pe.Provenance.PromptVersion)
	}
	if pe.Provenance.TokenUsage.TotalTokens != 150 {
		t.Error("token usage not carried through")
	}
	if !strings.Contains(p.lastReq.Prompt, "abc1234") {
		t.Error("prompt should include the short SHA")
	}
	if p.lastReq.SystemPrompt == "" {
		t.Error("system prompt must be set")
	}
}

func TestLLMExtractorDropsInvalidEnums(t *testing.T) {
	p := &fakeProvider{
		available: true,
		result: &llm.StructuredResult{
			Parsed: map[string]any{
				"intent_summary": "something",
				"category":       "bugfix",
				"impact_scope":   "everywhere",
			},
		},
	}
	pe := NewLLMExtractor(p, nil).Extract(context.Background(), core.CommitInfo{}, nil, "")
	if pe.Category != nil {
		t.Error("unknown category must be dropped, not guessed")
	}
	if pe.ImpactScope != nil {
		t.Error("unknown impact scope must be dropped")
	}
	if pe.IntentSummary == nil {
		t.Error("valid fields must survive alongside dropped ones")
	}
}

func TestLLMExtractorNullStrings(t *testing.T) {
	p := &fakeProvider{
		available: true,
		result: &llm.StructuredResult{
			Parsed: map[string]any{
				"intent_summary":  "refactors the scheduler",
				"behavior_before": "null",
				"behavior_after":  "  ",
			},
		},
	}
	pe := NewLLMExtractor(p, nil).Extract(context.Background(), core.CommitInfo{}, nil, "")
	if pe.BehaviorBefore != nil || pe.BehaviorAfter != nil {
		t.Error("literal null and blank strings count as absent")
	}
}

func TestTruncateDiff(t *testing.T) {
	long := strings.Repeat("line\n", 600)
	got := truncateDiff(long, maxDiffLines)
	if !strings.Contains(got, "diff truncated") {
		t.Error("long diff must carry a truncation marker")
	}
	short := "just one line"
	if truncateDiff(short, maxDiffLines) != short {
		t.Error("short diff must pass through untouched")
	}
}
