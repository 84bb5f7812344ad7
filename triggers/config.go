// Package triggers detects disallowed phrases and playful keywords in chat text.
package triggers

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// Config is the phrase configuration for both matchers.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	Evasion []string  `yaml:"evasion"`
	Fun     FunConfig `yaml:"fun"`
}

// FunConfig lists playful keywords and the grammatical endings they may carry
type FunConfig struct {
	Suffixes []string     `yaml:"suffixes"`
	Keywords []FunKeyword `yaml:"keywords"`
}

// FunKeyword pairs a keyword stem with its canned responses
type FunKeyword struct {
	Keyword   string   `yaml:"keyword"`
	Responses []string `yaml:"responses"`
}

// LoadConfig reads the phrase configuration from path, or the built-in defaults when path is empty
func LoadConfig(path string) (*Config, error) {
	raw := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read triggers file %s: %w", path, err)
		}
		raw = data
	}
	return ParseConfig(raw)
}

// ParseConfig decodes and validates a YAML phrase configuration
func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode triggers config: %w", err)
	}

	if len(cfg.Evasion) == 0 {
		return nil, fmt.Errorf("triggers config has no evasion phrases")
	}
	for i, phrase := range cfg.Evasion {
		if strings.TrimSpace(phrase) == "" {
			return nil, fmt.Errorf("evasion phrase #%d is empty", i)
		}
	}
	for _, kw := range cfg.Fun.Keywords {
		if strings.TrimSpace(kw.Keyword) == "" {
			return nil, fmt.Errorf("fun keyword must not be empty")
		}
		if len(kw.Responses) == 0 {
			return nil, fmt.Errorf("fun keyword %q has no responses", kw.Keyword)
		}
	}

	return &cfg, nil
}
