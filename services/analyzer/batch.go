// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/driftlog/services/core"
)

// ArtifactSink receives analyzed artifacts. Has lets the batch runner
// skip commits that were analyzed on a previous run.
type ArtifactSink interface {
	Has(ctx context.Context, sha string) (bool, error)
	Put(ctx context.Context, artifact *core.CommitArtifact, force bool) error
}

// BatchConfig tunes a batch run.
type BatchConfig struct {
	// Workers bounds concurrent analyses. Values below 1 mean serial.
	Workers int
	// Force re-analyzes and overwrites commits that already have a
	// stored artifact.
	Force bool
}

// BatchFailure records one commit whose artifact could not be stored.
type BatchFailure struct {
	SHA string
	Err error
}

func (f BatchFailure) String() string {
	return fmt.Sprintf("%s: %v", f.SHA, f.Err)
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Analyzed  int
	Skipped   int
	Artifacts []*core.CommitArtifact
	Failures  []BatchFailure
}

// AnalyzeBatch analyzes commits concurrently and persists each
// artifact as it completes. Analysis itself cannot fail; storage
// errors are collected per commit, not fatal to the run. The only
// error returned is context cancellation.
//
// Artifacts in the result keep the input commit order regardless of
// completion order.
func (s *Service) AnalyzeBatch(ctx context.Context, commits []core.CommitInfo, sink ArtifactSink, cfg BatchConfig) (*BatchResult, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	result := &BatchResult{Artifacts: make([]*core.CommitArtifact, len(commits))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, commit := range commits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if sink != nil && !cfg.Force {
				exists, err := sink.Has(gctx, commit.SHA)
				if err == nil && exists {
					mu.Lock()
					result.Skipped++
					mu.Unlock()
					return nil
				}
			}

			artifact := s.Analyze(gctx, commit)

			mu.Lock()
			result.Artifacts[i] = artifact
			result.Analyzed++
			mu.Unlock()

			if sink == nil {
				return nil
			}
			if err := sink.Put(gctx, artifact, cfg.Force); err != nil {
				s.logger.Warn("failed to store artifact", "sha", commit.SHA, "error", err)
				mu.Lock()
				result.Failures = append(result.Failures, BatchFailure{SHA: commit.SHA, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	// Compact skipped slots so callers see only produced artifacts.
	kept := result.Artifacts[:0]
	for _, a := range result.Artifacts {
		if a != nil {
			kept = append(kept, a)
		}
	}
	result.Artifacts = kept
	return result, nil
}
