// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/render"
	"github.com/AleutianAI/driftlog/services/report"
)

// loadRange lists commits in the range and loads whatever artifacts
// exist for them. Reports tolerate gaps; analyze fills them.
func (p *pipeline) loadRange(ctx context.Context, rangeSpec string) ([]core.CommitInfo, map[string]*core.CommitArtifact, error) {
	commits, err := p.repo.ListCommits(ctx, rangeSpec)
	if err != nil {
		return nil, nil, err
	}
	if len(commits) == 0 {
		return nil, nil, fmt.Errorf("no commits found in range %s", rangeSpec)
	}
	shas := make([]string, len(commits))
	for i, c := range commits {
		shas[i] = c.SHA
	}
	artifacts, err := p.store.GetMany(ctx, shas)
	if err != nil {
		return nil, nil, err
	}
	return commits, artifacts, nil
}

func runChangelog(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	commits, artifacts, err := p.loadRange(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	changelog := report.BuildChangelog(commits, artifacts, includeUnanalyzedFlag)
	fmt.Fprint(cmd.OutOrStdout(), render.Changelog(args[0], changelog))
	return nil
}

func runImpact(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	commits, artifacts, err := p.loadRange(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	impact := report.BuildImpact(commits, artifacts)
	fmt.Fprint(cmd.OutOrStdout(), render.Impact(args[0], impact))
	return nil
}
