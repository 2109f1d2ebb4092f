// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/driftlog/services/analyzer"
	"github.com/AleutianAI/driftlog/services/extract"
	"github.com/AleutianAI/driftlog/services/gitio"
	"github.com/AleutianAI/driftlog/services/storage"
)

// pipeline bundles everything a command needs: repository, config and
// open artifact store. Close must be called when done.
type pipeline struct {
	repo   *gitio.Repository
	cfg    Config
	store  *storage.Store
	logger *slog.Logger
}

func openPipeline() (*pipeline, error) {
	repoPath, err := filepath.Abs(repoFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}
	repo, err := gitio.NewRepository(repoPath)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(repoPath)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.storagePath(repoPath), slog.Default())
	if err != nil {
		return nil, err
	}
	return &pipeline{repo: repo, cfg: cfg, store: store, logger: slog.Default()}, nil
}

func (p *pipeline) Close() {
	if err := p.store.Close(); err != nil {
		p.logger.Warn("closing artifact store", "error", err)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()
	ctx := cmd.Context()

	commits, err := p.repo.ListCommits(ctx, args[0])
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		return fmt.Errorf("no commits found in range %s", args[0])
	}

	workers := workersFlag
	if workers == 0 {
		workers = p.cfg.Analysis.Workers
	}

	provider, err := p.cfg.buildProvider(workers)
	if err != nil {
		return err
	}
	opts := []analyzer.Option{analyzer.WithLogger(p.logger)}
	if provider != nil {
		p.logger.Info("analyzing with provider", "provider", provider.Name(), "model", provider.Model())
		opts = append(opts, analyzer.WithPrimaryExtractor(extract.NewLLMExtractor(provider, p.logger)))
	} else {
		p.logger.Info("no provider configured, using heuristics only")
	}

	service := analyzer.NewService(p.repo, opts...)
	result, err := service.AnalyzeBatch(ctx, commits, p.store, analyzer.BatchConfig{
		Workers: workers,
		Force:   forceFlag,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d commits (%d skipped, %d storage failures)\n",
		result.Analyzed, result.Skipped, len(result.Failures))
	for _, failure := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %s\n", failure)
	}
	return nil
}
