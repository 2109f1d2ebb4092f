// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/driftlog/services/llm"
)

// Config is the CLI configuration, loaded from .driftlog.yaml in the
// repository root when present. Every field has a workable default so
// the tool runs with no config file at all.
type Config struct {
	Provider struct {
		// Name selects the provider: openai, anthropic, ollama, or
		// empty for heuristics only.
		Name    string `yaml:"name"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
		// APIKeyEnv names the environment variable holding the key.
		// Keys never live in the config file itself.
		APIKeyEnv string        `yaml:"api_key_env"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"provider"`

	Analysis struct {
		Workers           int     `yaml:"workers"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"analysis"`

	Storage struct {
		// Path for the artifact database, relative to the repository
		// root unless absolute.
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Product struct {
		Name string `yaml:"name"`
	} `yaml:"product"`
}

const configFileName = ".driftlog.yaml"

func defaultConfig() Config {
	var cfg Config
	cfg.Analysis.Workers = 4
	cfg.Analysis.RequestsPerSecond = 2
	cfg.Storage.Path = ".driftlog/db"
	return cfg
}

// loadConfig reads the config file from repoPath if it exists.
func loadConfig(repoPath string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filepath.Join(repoPath, configFileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", configFileName, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", configFileName, err)
	}
	if cfg.Analysis.Workers < 1 {
		cfg.Analysis.Workers = 1
	}
	return cfg, nil
}

// storagePath resolves the database path against the repository root.
func (c Config) storagePath(repoPath string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(repoPath, c.Storage.Path)
}

// buildProvider constructs the configured provider, or nil when no
// provider is configured. A nil provider is not an error: the pipeline
// degrades to heuristics.
func (c Config) buildProvider(workers int) (llm.Provider, error) {
	name := c.Provider.Name
	if override := providerFlag; override != "" {
		name = override
	}
	if name == "" || name == "none" {
		return nil, nil
	}

	providerCfg := llm.DefaultConfig()
	providerCfg.Model = c.Provider.Model
	providerCfg.BaseURL = c.Provider.BaseURL
	if c.Provider.Timeout > 0 {
		providerCfg.Timeout = c.Provider.Timeout
	}
	if c.Provider.APIKeyEnv != "" {
		providerCfg.APIKey = os.Getenv(c.Provider.APIKeyEnv)
	}
	rps := c.Analysis.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	providerCfg.Throttle = llm.NewThrottle(rps, 1, workers)

	return llm.NewProvider(name, providerCfg)
}
