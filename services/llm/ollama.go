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
	"strings"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
)

const ollamaDefaultModel = "llama3.1"

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// OllamaProvider talks to a local Ollama instance. It is the zero-cost
// offline path.
type OllamaProvider struct {
	httpClient *http.Client
	cfg        Config
	baseURL    string
	model      string
}

// NewOllamaProvider creates a provider from config, falling back to
// OLLAMA_BASE_URL / OLLAMA_MODEL environment variables.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	cfg = cfg.withDefaults()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("OLLAMA_BASE_URL not set: %w", ErrNotAvailable)
	}
	model := cfg.Model
	if model == "" {
		model = os.Getenv("OLLAMA_MODEL")
	}
	if model == "" {
		model = ollamaDefaultModel
		slog.Warn("OLLAMA_MODEL not set, defaulting", "model", model)
	}

	// Local generation is slow; give requests more room than the
	// remote-API default unless the caller chose a timeout.
	timeout := cfg.Timeout
	if timeout == DefaultConfig().Timeout {
		timeout = 5 * time.Minute
	}

	slog.Info("Initializing Ollama provider", "base_url", baseURL, "model", model)
	return &OllamaProvider{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}, nil
}

func (p *OllamaProvider) Name() string  { return "ollama" }
func (p *OllamaProvider) Model() string { return p.model }

// IsAvailable probes the local instance. A configured URL is not enough
// for a local daemon; it has to answer.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	if p.baseURL == "" {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ExtractStructured implements the Provider interface.
func (p *OllamaProvider) ExtractStructured(ctx context.Context, req Request) (*StructuredResult, error) {
	return withRetry(ctx, p.cfg, p.Name(), func(ctx context.Context) (*StructuredResult, error) {
		return p.extractOnce(ctx, req)
	})
}

func (p *OllamaProvider) extractOnce(ctx context.Context, req Request) (*StructuredResult, error) {
	release, err := p.cfg.Throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	payload := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		System: buildSystemPrompt(req),
		Format: "json",
		Stream: false,
		Options: map[string]any{
			"temperature": extractionTemperature,
			"num_predict": maxTokens(req, p.cfg),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("read response: %w", err)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody)}
	}

	var resp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &StructuredResult{
		RawText:  resp.Response,
		Provider: p.Name(),
		Model:    resp.Model,
		Usage: core.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
	if parsed, err := ExtractJSONObject(resp.Response); err == nil {
		result.Parsed = parsed
	}
	return result, nil
}
