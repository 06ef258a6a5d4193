package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of the backend's own config.yaml the board
// reads directly. bd owns that file; the board only consults it for
// display hints (the workspace issue prefix) and form prefills (the
// default author), so it parses the file itself rather than routing
// another subprocess call through the backend.
type LocalConfig struct {
	IssuePrefix string `yaml:"issue-prefix"`
	Author      string `yaml:"author"`
	NoDb        bool   `yaml:"no-db"`
}

// LoadLocalConfig reads and parses config.yaml from the given .beads
// directory. Returns an empty LocalConfig (not nil) if the file doesn't
// exist or can't be parsed; a board can render without it.
func LoadLocalConfig(beadsDir string) *LocalConfig {
	configPath := filepath.Join(beadsDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from beadsDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment
// overrides. BD_ACTOR takes precedence over the file's author, matching
// how bd itself attributes mutations.
func LoadLocalConfigWithEnv(beadsDir string) *LocalConfig {
	cfg := LoadLocalConfig(beadsDir)

	if actor := os.Getenv("BD_ACTOR"); actor != "" {
		cfg.Author = actor
	}

	return cfg
}

// DisplayPrefix returns the workspace issue prefix for board headers
// and placeholder IDs, defaulting to bd's standard prefix.
func (c *LocalConfig) DisplayPrefix() string {
	if c == nil || c.IssuePrefix == "" {
		return "bd"
	}
	return c.IssuePrefix
}
