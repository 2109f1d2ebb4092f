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
	"time"
)

// withRetry runs one provider request under the adapter retry policy:
//
//   - AuthenticationError: never retried.
//   - RateLimitError: exponential backoff, up to cfg.MaxRetries extra
//     attempts, honoring a backend-supplied Retry-After when present.
//   - any other error: retried exactly once.
//
// Context cancellation always wins over a pending backoff.
func withRetry(ctx context.Context, cfg Config, provider string, fn func(context.Context) (*StructuredResult, error)) (*StructuredResult, error) {
	rateAttempts := 0
	genericRetried := false

	for {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if rateAttempts >= cfg.MaxRetries {
				return nil, fmt.Errorf("rate limit persisted after %d retries: %w", rateAttempts, err)
			}
			backoff := cfg.RetryBackoff * time.Duration(1<<rateAttempts)
			if rlErr.RetryAfter > backoff {
				backoff = rlErr.RetryAfter
			}
			rateAttempts++
			slog.Debug("rate limited, backing off",
				slog.String("provider", provider),
				slog.Int("attempt", rateAttempts),
				slog.Duration("backoff", backoff),
			)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			continue
		}

		if genericRetried {
			return nil, err
		}
		genericRetried = true
		slog.Debug("provider call failed, retrying once",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		if err := sleepCtx(ctx, cfg.RetryBackoff); err != nil {
			return nil, err
		}
	}
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
