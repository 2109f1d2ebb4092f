// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm wraps pluggable language-model backends behind a narrow
// structured-extraction contract.
//
// # Description
//
// Providers take a prompt, a system prompt, and a schema description
// and return a structured result (parsed JSON object, raw text, or a
// refusal) or a categorized error. Retry policy lives here, in the
// provider adapters, not in callers: rate limits are retried with
// exponential backoff, authentication failures are never retried, and
// everything else is retried once.
//
// Providers are constructed explicitly and passed to their consumers.
// There is no process-wide registry and no lazily-initialized global
// client.
//
// # Thread Safety
//
// All providers are safe for concurrent use. A Throttle shared between
// providers enforces one rate limit across concurrent calls.
package llm

import (
	"context"

	"github.com/AleutianAI/driftlog/services/core"
)

// SchemaDescriptor describes the JSON shape a structured extraction
// should produce. The description is embedded in the system prompt;
// providers with native JSON modes also enable them.
type SchemaDescriptor struct {
	// Name identifies the schema (e.g. "commit_extraction").
	Name string

	// Description is a textual specification of the expected fields.
	Description string
}

// Request is one structured-extraction request.
type Request struct {
	Prompt       string
	SystemPrompt string
	Schema       SchemaDescriptor

	// MaxTokens caps the completion size. Zero means provider default.
	MaxTokens int
}

// StructuredResult is the standardized response from any provider.
type StructuredResult struct {
	// Parsed is the structured payload, nil if parsing failed.
	Parsed map[string]any

	// RawText is the unparsed response text, kept even when Parsed is
	// set so callers can log exactly what the model said.
	RawText string

	// Refusal is non-empty when the model declined to answer.
	Refusal string

	Provider string
	Model    string
	Usage    core.TokenUsage
}

// Usable reports whether the result carries a parsed payload.
func (r *StructuredResult) Usable() bool {
	return r != nil && r.Refusal == "" && len(r.Parsed) > 0
}

// Provider is the contract every language-model backend implements.
type Provider interface {
	// Name returns the backend identifier (e.g. "openai", "ollama").
	Name() string

	// Model returns the model this provider sends requests to.
	Model() string

	// IsAvailable reports whether the provider can currently be used
	// (credentials present, endpoint configured and reachable).
	IsAvailable(ctx context.Context) bool

	// ExtractStructured sends one extraction request. It returns a
	// categorized error (AuthenticationError, RateLimitError,
	// ProviderError) after the adapter's retry policy is exhausted.
	ExtractStructured(ctx context.Context, req Request) (*StructuredResult, error)
}
