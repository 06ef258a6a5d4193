package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocalConfig(t *testing.T) {
	tests := []struct {
		name       string
		configYAML string
		wantNoDb   bool
		wantAuthor string
		wantPrefix string
	}{
		{
			name:       "empty config",
			configYAML: "",
			wantNoDb:   false,
			wantAuthor: "",
			wantPrefix: "",
		},
		{
			name:       "no-db true",
			configYAML: "no-db: true\n",
			wantNoDb:   true,
			wantAuthor: "",
			wantPrefix: "",
		},
		{
			name:       "no-db in comment should not match",
			configYAML: "# no-db: true\nissue-prefix: test\n",
			wantNoDb:   false,
			wantAuthor: "",
			wantPrefix: "test",
		},
		{
			name:       "author with double quotes",
			configYAML: `author: "Ada Lovelace"` + "\n",
			wantNoDb:   false,
			wantAuthor: "Ada Lovelace",
			wantPrefix: "",
		},
		{
			name:       "mixed config",
			configYAML: "issue-prefix: myapp\nno-db: true\nauthor: steve\nsync-branch: beads-sync\n",
			wantNoDb:   true,
			wantAuthor: "steve",
			wantPrefix: "myapp",
		},
		{
			name:       "prefix indented under section (not top-level)",
			configYAML: "settings:\n  issue-prefix: nested\n",
			wantNoDb:   false,
			wantAuthor: "",
			wantPrefix: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			if tt.configYAML != "" {
				configPath := filepath.Join(tmpDir, "config.yaml")
				if err := os.WriteFile(configPath, []byte(tt.configYAML), 0600); err != nil {
					t.Fatalf("Failed to write config.yaml: %v", err)
				}
			}

			cfg := LoadLocalConfig(tmpDir)

			if cfg.NoDb != tt.wantNoDb {
				t.Errorf("NoDb = %v, want %v", cfg.NoDb, tt.wantNoDb)
			}
			if cfg.Author != tt.wantAuthor {
				t.Errorf("Author = %q, want %q", cfg.Author, tt.wantAuthor)
			}
			if cfg.IssuePrefix != tt.wantPrefix {
				t.Errorf("IssuePrefix = %q, want %q", cfg.IssuePrefix, tt.wantPrefix)
			}
		})
	}
}

func TestLoadLocalConfigMissingDir(t *testing.T) {
	cfg := LoadLocalConfig(filepath.Join(t.TempDir(), "nope"))
	if cfg == nil {
		t.Fatal("LoadLocalConfig must not return nil")
	}
	if cfg.IssuePrefix != "" || cfg.Author != "" || cfg.NoDb {
		t.Errorf("missing config should be empty, got %+v", cfg)
	}
}

func TestLoadLocalConfigWithEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := "author: config-author\n"
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0600); err != nil {
		t.Fatalf("Failed to write config.yaml: %v", err)
	}

	t.Run("env var overrides config file", func(t *testing.T) {
		t.Setenv("BD_ACTOR", "env-author")

		cfg := LoadLocalConfigWithEnv(tmpDir)
		if cfg.Author != "env-author" {
			t.Errorf("Author = %q, want %q (env var should override)", cfg.Author, "env-author")
		}
	})

	t.Run("no env var uses config file", func(t *testing.T) {
		t.Setenv("BD_ACTOR", "")

		cfg := LoadLocalConfigWithEnv(tmpDir)
		if cfg.Author != "config-author" {
			t.Errorf("Author = %q, want %q", cfg.Author, "config-author")
		}
	})
}

func TestDisplayPrefix(t *testing.T) {
	cfg := &LocalConfig{IssuePrefix: "myapp"}
	if got := cfg.DisplayPrefix(); got != "myapp" {
		t.Errorf("DisplayPrefix() = %q, want \"myapp\"", got)
	}

	cfg = &LocalConfig{}
	if got := cfg.DisplayPrefix(); got != "bd" {
		t.Errorf("DisplayPrefix() with no prefix = %q, want \"bd\"", got)
	}

	cfg = nil
	if got := cfg.DisplayPrefix(); got != "bd" {
		t.Errorf("DisplayPrefix() on nil = %q, want \"bd\"", got)
	}
}
