// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/AleutianAI/driftlog/services/core"
	openai "github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIProvider talks to the OpenAI chat completions API with JSON
// response mode enabled.
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
	model  string
}

// NewOpenAIProvider creates a provider from config, falling back to
// OPENAI_API_KEY / OPENAI_MODEL environment variables.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	cfg = cfg.withDefaults()
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", ErrNotAvailable)
	}
	model := cfg.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = openAIDefaultModel
		slog.Warn("OPENAI_MODEL not set, defaulting", "model", model)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	slog.Info("Initializing OpenAI provider", "model", model)
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string  { return "openai" }
func (p *OpenAIProvider) Model() string { return p.model }

// IsAvailable reports whether the provider holds credentials.
func (p *OpenAIProvider) IsAvailable(context.Context) bool { return p.client != nil }

// ExtractStructured implements the Provider interface.
func (p *OpenAIProvider) ExtractStructured(ctx context.Context, req Request) (*StructuredResult, error) {
	return withRetry(ctx, p.cfg, p.Name(), func(ctx context.Context) (*StructuredResult, error) {
		return p.extractOnce(ctx, req)
	})
}

func (p *OpenAIProvider) extractOnce(ctx context.Context, req Request) (*StructuredResult, error) {
	release, err := p.cfg.Throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature:         extractionTemperature,
		MaxCompletionTokens: maxTokens(req, p.cfg),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.categorize(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: errors.New("no choices returned")}
	}

	choice := resp.Choices[0]
	result := &StructuredResult{
		RawText:  choice.Message.Content,
		Refusal:  choice.Message.Refusal,
		Provider: p.Name(),
		Model:    resp.Model,
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if result.Refusal != "" {
		slog.Warn("OpenAI refused structured extraction", "refusal", result.Refusal)
		return result, nil
	}
	if parsed, err := ExtractJSONObject(choice.Message.Content); err == nil {
		result.Parsed = parsed
	}
	return result, nil
}

// categorize maps go-openai errors onto the provider error taxonomy.
func (p *OpenAIProvider) categorize(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthenticationError{Provider: p.Name(), Err: err}
		case http.StatusTooManyRequests:
			return &RateLimitError{Provider: p.Name(), Err: err}
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{Provider: p.Name(), Err: err}
}

// buildSystemPrompt appends the schema description to the caller's
// system prompt so JSON mode knows what shape to emit.
func buildSystemPrompt(req Request) string {
	var b strings.Builder
	if req.SystemPrompt != "" {
		b.WriteString(req.SystemPrompt)
		b.WriteString("\n\n")
	}
	if req.Schema.Description != "" {
		b.WriteString("Respond with a single JSON object with this shape:\n")
		b.WriteString(req.Schema.Description)
	}
	return b.String()
}

func maxTokens(req Request, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return cfg.MaxTokens
}
