// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
)

const (
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultURL   = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicProvider talks to the Anthropic messages API directly over
// HTTP. No SDK; the request surface we need is small.
type AnthropicProvider struct {
	httpClient *http.Client
	cfg        Config
	apiKey     string
	baseURL    string
	model      string
}

// NewAnthropicProvider creates a provider from config, falling back to
// ANTHROPIC_API_KEY / CLAUDE_MODEL environment variables.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	cfg = cfg.withDefaults()
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set: %w", ErrNotAvailable)
	}
	model := cfg.Model
	if model == "" {
		model = os.Getenv("CLAUDE_MODEL")
	}
	if model == "" {
		model = anthropicDefaultModel
		slog.Info("CLAUDE_MODEL not set, defaulting", "model", model)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultURL
	}

	return &AnthropicProvider{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}, nil
}

func (p *AnthropicProvider) Name() string  { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) IsAvailable(context.Context) bool { return p.apiKey != "" }

// ExtractStructured implements the Provider interface.
func (p *AnthropicProvider) ExtractStructured(ctx context.Context, req Request) (*StructuredResult, error) {
	return withRetry(ctx, p.cfg, p.Name(), func(ctx context.Context) (*StructuredResult, error) {
		return p.extractOnce(ctx, req)
	})
}

func (p *AnthropicProvider) extractOnce(ctx context.Context, req Request) (*StructuredResult, error) {
	release, err := p.cfg.Throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	temp := extractionTemperature
	payload := anthropicRequest{
		Model:       p.model,
		System:      buildSystemPrompt(req),
		MaxTokens:   maxTokens(req, p.cfg),
		Temperature: &temp,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("read response: %w", err)}
	}

	switch httpResp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthenticationError{Provider: p.Name(), Err: fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody)}
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Provider:   p.Name(),
			RetryAfter: parseRetryAfter(httpResp.Header.Get("retry-after")),
			Err:        fmt.Errorf("status 429: %s", respBody),
		}
	default:
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody)}
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message)}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	result := &StructuredResult{
		RawText:  text.String(),
		Provider: p.Name(),
		Model:    resp.Model,
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	if resp.StopReason == "refusal" {
		result.Refusal = "model declined the request"
		return result, nil
	}
	if parsed, err := ExtractJSONObject(result.RawText); err == nil {
		result.Parsed = parsed
	}
	return result, nil
}

// parseRetryAfter reads a Retry-After header expressed in seconds.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
