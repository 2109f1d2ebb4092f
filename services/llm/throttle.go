// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle enforces a shared rate limit and concurrency cap across all
// provider calls. One Throttle instance is shared between every
// provider talking to the same backend; per-call limiters would let a
// worker pool multiply the effective request rate.
//
// Thread Safety: safe for concurrent use.
type Throttle struct {
	limiter *rate.Limiter
	sem     chan struct{}
}

// NewThrottle creates a throttle allowing rps requests per second with
// the given burst, and at most maxConcurrent in-flight requests.
// rps <= 0 disables rate limiting; maxConcurrent <= 0 disables the
// concurrency cap.
func NewThrottle(rps float64, burst, maxConcurrent int) *Throttle {
	t := &Throttle{}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if maxConcurrent > 0 {
		t.sem = make(chan struct{}, maxConcurrent)
	}
	return t
}

// Acquire blocks until a request slot is available, then returns a
// release function. The release function must be called exactly once.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	if t == nil {
		return func() {}, nil
	}
	if t.sem != nil {
		select {
		case t.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if t.sem != nil {
				<-t.sem
			}
			return nil, err
		}
	}
	release := func() {
		if t.sem != nil {
			<-t.sem
		}
	}
	return release, nil
}
