// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/driftlog/pkg/logging"
)

var (
	repoFlag     string
	providerFlag string
	verboseFlag  bool
	logDirFlag   string

	appLogger *logging.Logger

	// analyze
	forceFlag   bool
	workersFlag int

	// reports
	includeUnanalyzedFlag bool

	// release-note
	productFlag string
	versionFlag string
	formatFlag  string

	rootCmd = &cobra.Command{
		Use:   "driftlog",
		Short: "Semantic commit analysis and release note generation",
		Long: `driftlog extracts semantic meaning from git commits (what changed,
why, and who is affected) and aggregates the results into changelogs,
impact reports, and user-facing release notes.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verboseFlag || os.Getenv("DRIFTLOG_DEBUG") != "" {
				level = slog.LevelDebug
			}
			appLogger = logging.New(logging.Config{
				Level:   level,
				LogDir:  logDirFlag,
				Service: "driftlog",
			})
			slog.SetDefault(appLogger.Logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				_ = appLogger.Close()
			}
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze <range>",
		Short: "Analyze commits in a range and store one artifact per commit",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze, // Defined in cmd_analyze.go
	}

	changelogCmd = &cobra.Command{
		Use:   "changelog <range>",
		Short: "Render a categorized changelog from stored artifacts",
		Args:  cobra.ExactArgs(1),
		RunE:  runChangelog, // Defined in cmd_report.go
	}

	impactCmd = &cobra.Command{
		Use:   "impact <range>",
		Short: "Render an impact analysis from stored artifacts",
		Args:  cobra.ExactArgs(1),
		RunE:  runImpact, // Defined in cmd_report.go
	}

	releaseNoteCmd = &cobra.Command{
		Use:   "release-note <range>",
		Short: "Synthesize user-facing release notes for a range",
		Args:  cobra.ExactArgs(1),
		RunE:  runReleaseNote, // Defined in cmd_release_note.go
	}

	showCmd = &cobra.Command{
		Use:   "show <sha>",
		Short: "Print the stored artifact for a commit",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow, // Defined in cmd_show.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoFlag, "repo", "C", ".", "path to the git repository")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider override (openai, anthropic, ollama, none)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "", "also write JSON logs to this directory")

	analyzeCmd.Flags().BoolVar(&forceFlag, "force", false, "re-analyze commits that already have artifacts")
	analyzeCmd.Flags().IntVar(&workersFlag, "workers", 0, "concurrent analyses (defaults to config)")

	changelogCmd.Flags().BoolVar(&includeUnanalyzedFlag, "include-unanalyzed", false, "list commits without artifacts")

	releaseNoteCmd.Flags().StringVar(&productFlag, "product", "", "product name for the header")
	releaseNoteCmd.Flags().StringVar(&versionFlag, "version", "", "release version (defaults to the latest tag)")
	releaseNoteCmd.Flags().StringVar(&formatFlag, "format", "markdown", "output format: markdown or yaml")

	rootCmd.AddCommand(analyzeCmd, changelogCmd, impactCmd, releaseNoteCmd, showCmd)
}
