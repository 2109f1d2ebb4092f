// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/driftlog/services/render"
	"github.com/AleutianAI/driftlog/services/report"
)

func runReleaseNote(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()
	ctx := cmd.Context()

	commits, artifacts, err := p.loadRange(ctx, args[0])
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts for range %s: run `driftlog analyze %s` first", args[0], args[0])
	}

	product := productFlag
	if product == "" {
		product = p.cfg.Product.Name
	}
	if product == "" {
		// Fall back to the repository directory name.
		abs, _ := filepath.Abs(repoFlag)
		product = filepath.Base(abs)
	}
	version := versionFlag
	if version == "" {
		version = p.repo.LatestTag(ctx)
	}
	if version == "" {
		version = "unreleased"
	}

	provider, err := p.cfg.buildProvider(1)
	if err != nil {
		return err
	}

	synthesizer := report.NewSynthesizer(provider, p.logger)
	note := synthesizer.Synthesize(ctx, commits, artifacts, report.SynthesisOptions{
		ProductName:   product,
		Version:       version,
		RevisionRange: args[0],
	})

	if err := p.store.PutReleaseNote(ctx, note); err != nil {
		p.logger.Warn("failed to store release note", "error", err)
	}

	switch formatFlag {
	case "yaml":
		data, err := note.ToYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "markdown", "":
		fmt.Fprint(cmd.OutOrStdout(), render.ReleaseNote(note))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want markdown or yaml)", formatFlag)
	}
}
