package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	// Test that initialization doesn't error
	err := Initialize()
	if err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if v == nil {
		t.Fatal("viper instance is nil after Initialize()")
	}
}

func TestDefaults(t *testing.T) {
	// Reset viper for test isolation
	err := Initialize()
	if err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"json", false, func(k string) interface{} { return GetBool(k) }},
		{"read-only", false, func(k string) interface{} { return GetBool(k) }},
		{"preload-closed", false, func(k string) interface{} { return GetBool(k) }},
		{"lazy-load-dependencies", true, func(k string) interface{} { return GetBool(k) }},
		{"backend-binary", "bd", func(k string) interface{} { return GetString(k) }},
		{"profile", "", func(k string) interface{} { return GetString(k) }},
		{"initial-load-limit", 100, func(k string) interface{} { return GetInt(k) }},
		{"page-size", 50, func(k string) interface{} { return GetInt(k) }},
		{"max-in-flight", 4, func(k string) interface{} { return GetInt(k) }},
		{"cache-ttl", 5 * time.Second, func(k string) interface{} { return GetDuration(k) }},
		{"read-timeout", 10 * time.Second, func(k string) interface{} { return GetDuration(k) }},
		{"write-timeout", 30 * time.Second, func(k string) interface{} { return GetDuration(k) }},
		{"watch-debounce", 500 * time.Millisecond, func(k string) interface{} { return GetDuration(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestEnvironmentBinding(t *testing.T) {
	tests := []struct {
		envVar   string
		key      string
		value    string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"BDK_JSON", "json", "true", true, func(k string) interface{} { return GetBool(k) }},
		{"BDK_READ_ONLY", "read-only", "true", true, func(k string) interface{} { return GetBool(k) }},
		{"BDK_PAGE_SIZE", "page-size", "25", 25, func(k string) interface{} { return GetInt(k) }},
		{"BDK_CACHE_TTL", "cache-ttl", "10s", 10 * time.Second, func(k string) interface{} { return GetDuration(k) }},
		{"BDK_BACKEND_BINARY", "backend-binary", "/opt/bd/bd", "/opt/bd/bd", func(k string) interface{} { return GetString(k) }},
		{"BEADS_BIN", "backend-binary", "/usr/local/bin/bd", "/usr/local/bin/bd", func(k string) interface{} { return GetString(k) }},
		{"ANTHROPIC_MODEL", "summary-model", "claude-sonnet-4-5", "claude-sonnet-4-5", func(k string) interface{} { return GetString(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			// Re-initialize viper to pick up env var
			if err := Initialize(); err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}

			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) with %s=%s = %v, want %v", tt.key, tt.envVar, tt.value, got, tt.expected)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("BEADS_DIR", "")

	configContent := `
json: true
read-only: true
page-size: 20
cache-ttl: 15s
profile: triage
`
	beadsDir := filepath.Join(tmpDir, ".beads")
	if err := os.MkdirAll(beadsDir, 0750); err != nil {
		t.Fatalf("failed to create .beads directory: %v", err)
	}
	kanbanPath := filepath.Join(beadsDir, "kanban.yaml")
	if err := os.WriteFile(kanbanPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Change to tmp directory so the workspace is discovered
	t.Chdir(tmpDir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetBool("json"); got != true {
		t.Errorf("GetBool(json) = %v, want true", got)
	}
	if got := GetBool("read-only"); got != true {
		t.Errorf("GetBool(read-only) = %v, want true", got)
	}
	if got := GetInt("page-size"); got != 20 {
		t.Errorf("GetInt(page-size) = %d, want 20", got)
	}
	if got := GetDuration("cache-ttl"); got != 15*time.Second {
		t.Errorf("GetDuration(cache-ttl) = %v, want 15s", got)
	}
	if got := GetString("profile"); got != "triage" {
		t.Errorf("GetString(profile) = %q, want \"triage\"", got)
	}
}

func TestConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("BEADS_DIR", "")

	// Config file says json: false
	configContent := `json: false`
	beadsDir := filepath.Join(tmpDir, ".beads")
	if err := os.MkdirAll(beadsDir, 0750); err != nil {
		t.Fatalf("failed to create .beads directory: %v", err)
	}
	kanbanPath := filepath.Join(beadsDir, "kanban.yaml")
	if err := os.WriteFile(kanbanPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Chdir(tmpDir)

	// Test 1: config file value
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	if got := GetBool("json"); got != false {
		t.Errorf("GetBool(json) from config file = %v, want false", got)
	}

	// Test 2: environment variable overrides config file
	t.Setenv("BDK_JSON", "true")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	if got := GetBool("json"); got != true {
		t.Errorf("GetBool(json) with env var = %v, want true (env should override config)", got)
	}
}

func TestSetAndGet(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("test-key", "test-value")
	if got := GetString("test-key"); got != "test-value" {
		t.Errorf("GetString(test-key) = %q, want \"test-value\"", got)
	}

	Set("test-bool", true)
	if got := GetBool("test-bool"); got != true {
		t.Errorf("GetBool(test-bool) = %v, want true", got)
	}

	Set("test-int", 42)
	if got := GetInt("test-int"); got != 42 {
		t.Errorf("GetInt(test-int) = %d, want 42", got)
	}
}

func TestAllSettings(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("custom-key", "custom-value")

	settings := AllSettings()
	if settings == nil {
		t.Fatal("AllSettings() returned nil")
	}

	if val, ok := settings["custom-key"]; !ok || val != "custom-value" {
		t.Errorf("AllSettings() missing or incorrect custom-key: got %v", val)
	}
}

func TestGetStringSlice(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("test-slice", []string{"a", "b", "c"})
	got := GetStringSlice("test-slice")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("GetStringSlice(test-slice) = %v, want [a b c]", got)
	}

	got = GetStringSlice("nonexistent-key")
	if len(got) != 0 {
		t.Errorf("GetStringSlice(nonexistent-key) = %v, want empty slice", got)
	}
}

func TestBoardOptions(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	opts := BoardOptions()
	if opts.BackendBinary != "bd" {
		t.Errorf("BackendBinary = %q, want \"bd\"", opts.BackendBinary)
	}
	if opts.InitialLoadLimit != 100 || opts.PageSize != 50 || opts.MaxInFlight != 4 {
		t.Errorf("load options = %d/%d/%d, want 100/50/4",
			opts.InitialLoadLimit, opts.PageSize, opts.MaxInFlight)
	}
	if opts.CacheTTL != 5*time.Second {
		t.Errorf("CacheTTL = %v, want 5s", opts.CacheTTL)
	}
	if !opts.LazyLoadDependencies || opts.PreloadClosed || opts.ReadOnly {
		t.Errorf("mode options = %+v", opts)
	}

	// Overrides flow through
	Set("page-size", 25)
	Set("read-only", true)
	opts = BoardOptions()
	if opts.PageSize != 25 || !opts.ReadOnly {
		t.Errorf("overridden options = %d/%v, want 25/true", opts.PageSize, opts.ReadOnly)
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()

	if o.BackendBinary != "bd" {
		t.Errorf("BackendBinary = %q, want \"bd\"", o.BackendBinary)
	}
	if o.InitialLoadLimit != 100 || o.PageSize != 50 {
		t.Errorf("limits = %d/%d, want 100/50", o.InitialLoadLimit, o.PageSize)
	}
	if o.ReadTimeout != 10*time.Second || o.WriteTimeout != 30*time.Second {
		t.Errorf("timeouts = %v/%v", o.ReadTimeout, o.WriteTimeout)
	}
	if o.MaxInFlight != 1 {
		t.Errorf("MaxInFlight = %d, want clamp to 1", o.MaxInFlight)
	}

	// A disabled cache stays disabled
	o = Options{CacheTTL: -1}
	o.SetDefaults()
	if o.CacheTTL != 0 {
		t.Errorf("CacheTTL = %v, want 0 (disabled)", o.CacheTTL)
	}
}

func TestNilViperBehavior(t *testing.T) {
	// Save the current viper instance
	savedV := v

	// Set viper to nil to test nil-safety
	v = nil
	defer func() { v = savedV }()

	if got := GetString("any-key"); got != "" {
		t.Errorf("GetString with nil viper = %q, want \"\"", got)
	}
	if got := GetBool("any-key"); got != false {
		t.Errorf("GetBool with nil viper = %v, want false", got)
	}
	if got := GetInt("any-key"); got != 0 {
		t.Errorf("GetInt with nil viper = %d, want 0", got)
	}
	if got := GetDuration("any-key"); got != 0 {
		t.Errorf("GetDuration with nil viper = %v, want 0", got)
	}
	if got := GetStringSlice("any-key"); got == nil || len(got) != 0 {
		t.Errorf("GetStringSlice with nil viper = %v, want empty slice", got)
	}
	if got := AllSettings(); got == nil || len(got) != 0 {
		t.Errorf("AllSettings with nil viper = %v, want empty map", got)
	}

	// Set should not panic
	Set("any-key", "any-value") // Should be a no-op
}
