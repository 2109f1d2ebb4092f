// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "time"

// Temperature is fixed low for all extraction requests. Reproducibility
// matters more than creativity here, though low temperature does not
// guarantee determinism across provider versions.
const extractionTemperature float32 = 0.1

// Config holds settings shared by all provider adapters.
type Config struct {
	// APIKey authenticates with the backend. Unused by local backends.
	APIKey string

	// BaseURL overrides the backend endpoint (Ollama, proxies).
	BaseURL string

	// Model selects the model. Empty means the adapter's default.
	Model string

	// MaxTokens caps completions. Zero means adapter default.
	MaxTokens int

	// Timeout bounds a single request attempt.
	Timeout time.Duration

	// MaxRetries bounds rate-limit retries. Generic errors are always
	// retried exactly once regardless of this value.
	MaxRetries int

	// RetryBackoff is the base delay for exponential backoff.
	RetryBackoff time.Duration

	// Throttle, when set, is shared across providers and concurrent
	// calls so the backend-side rate limit is enforced globally.
	Throttle *Throttle
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    2048,
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// withDefaults fills zero values so adapters can rely on the fields.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxTokens == 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = def.RetryBackoff
	}
	return c
}
