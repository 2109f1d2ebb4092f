// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "fmt"

var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Provider = (*AnthropicProvider)(nil)
	_ Provider = (*OllamaProvider)(nil)
)

// NewProvider constructs a named provider. This is the only provider
// construction point; there is no registry and no global state. Errors
// wrapping ErrNotAvailable mean "not configured", not "misconfigured".
func NewProvider(name string, cfg Config) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "anthropic", "claude":
		return NewAnthropicProvider(cfg)
	case "ollama", "local":
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (known: openai, anthropic, ollama)", name)
	}
}
