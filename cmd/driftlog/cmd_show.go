// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runShow(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()
	ctx := cmd.Context()

	// Accept short SHAs and revision expressions, then look up by the
	// full hash the store is keyed on.
	sha, err := p.repo.ResolveRevision(ctx, args[0])
	if err != nil {
		sha = args[0]
	}

	artifact, err := p.store.Get(ctx, sha)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
