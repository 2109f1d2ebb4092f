// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotAvailable indicates a provider cannot be constructed or used:
// missing credentials or missing endpoint configuration. It is never
// retried; callers degrade to heuristic-only extraction.
var ErrNotAvailable = errors.New("llm provider not available")

// AuthenticationError indicates the backend rejected our credentials.
// Never retried.
type AuthenticationError struct {
	Provider string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RateLimitError indicates the backend's rate limit was exceeded.
// Retried with exponential backoff up to the configured attempt count.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration // zero if the backend gave no hint
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ProviderError is the generic categorized error for connectivity and
// protocol failures. Retried once.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
