// Package config carries runtime configuration for the board: settings
// resolved from defaults, BDK_* environment variables, and the
// per-workspace kanban.yaml, in ascending precedence. Flags bind on top
// of this at the command layer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/davidcforbes/beads-kanban/internal/workspace"
)

// v is the package-level viper instance, set by Initialize.
var v *viper.Viper

// Initialize builds the viper instance. Safe to call more than once;
// each call rebuilds from scratch so tests and long sessions can pick
// up environment changes.
func Initialize() error {
	nv := viper.New()

	// Output and mode
	nv.SetDefault("json", false)
	nv.SetDefault("verbose", false)
	nv.SetDefault("quiet", false)
	nv.SetDefault("no-color", false)
	nv.SetDefault("read-only", false)

	// Backend invocation. An empty id-prefix means "use the workspace's
	// issue-prefix from .beads/config.yaml".
	nv.SetDefault("backend-binary", "bd")
	nv.SetDefault("id-prefix", "")
	nv.SetDefault("read-timeout", 10*time.Second)
	nv.SetDefault("write-timeout", 30*time.Second)

	// Loading and caching
	nv.SetDefault("initial-load-limit", 100)
	nv.SetDefault("page-size", 50)
	nv.SetDefault("preload-closed", false)
	nv.SetDefault("lazy-load-dependencies", true)
	nv.SetDefault("cache-ttl", 5*time.Second)
	nv.SetDefault("dedup-timeout", 5*time.Second)
	nv.SetDefault("max-in-flight", 4)

	// Watch and serve
	nv.SetDefault("watch-debounce", 500*time.Millisecond)
	nv.SetDefault("serve-addr", "127.0.0.1:7333")

	// Board layout and summaries
	nv.SetDefault("profile", "")
	nv.SetDefault("summary-model", "claude-3-5-haiku-latest")

	// BDK_PAGE_SIZE overrides page-size, and so on.
	nv.SetEnvPrefix("BDK")
	nv.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	nv.AutomaticEnv()

	// Settings shared with the backend honor its environment too.
	_ = nv.BindEnv("backend-binary", "BDK_BACKEND_BINARY", "BEADS_BIN")
	_ = nv.BindEnv("summary-model", "BDK_SUMMARY_MODEL", "ANTHROPIC_MODEL")

	// Per-workspace config lives beside the backend's data.
	if beadsDir := workspace.FindBeadsDir(); beadsDir != "" {
		nv.SetConfigName("kanban")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(beadsDir)
		if err := nv.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading kanban.yaml: %w", err)
			}
		}
	}

	v = nv
	return nil
}

// GetString returns a string setting, or "" before Initialize.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns a boolean setting, or false before Initialize.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt returns an integer setting, or 0 before Initialize.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration returns a duration setting, or 0 before Initialize.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns a slice setting, or an empty slice before
// Initialize.
func GetStringSlice(key string) []string {
	if v == nil {
		return []string{}
	}
	s := v.GetStringSlice(key)
	if s == nil {
		return []string{}
	}
	return s
}

// Set overrides a setting. Used by command flag binding and tests.
func Set(key string, value interface{}) {
	if v == nil {
		return
	}
	v.Set(key, value)
}

// AllSettings returns every resolved setting.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// Options is the resolved board configuration handed to the loader,
// cache, and mutation pipeline.
type Options struct {
	BackendBinary        string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	InitialLoadLimit     int
	PageSize             int
	PreloadClosed        bool
	LazyLoadDependencies bool
	CacheTTL             time.Duration
	DedupTimeout         time.Duration
	MaxInFlight          int
	WatchDebounce        time.Duration
	ReadOnly             bool
	Profile              string
	SummaryModel         string
	ServeAddr            string
}

// SetDefaults clamps values that would break the loader.
func (o *Options) SetDefaults() {
	if o.BackendBinary == "" {
		o.BackendBinary = "bd"
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 30 * time.Second
	}
	if o.InitialLoadLimit < 1 {
		o.InitialLoadLimit = 100
	}
	if o.PageSize < 1 {
		o.PageSize = 50
	}
	if o.CacheTTL < 0 {
		o.CacheTTL = 0
	}
	if o.DedupTimeout <= 0 {
		o.DedupTimeout = 5 * time.Second
	}
	if o.MaxInFlight < 1 {
		o.MaxInFlight = 1
	}
	if o.WatchDebounce <= 0 {
		o.WatchDebounce = 500 * time.Millisecond
	}
}

// BoardOptions assembles Options from the current settings.
func BoardOptions() Options {
	o := Options{
		BackendBinary:        GetString("backend-binary"),
		ReadTimeout:          GetDuration("read-timeout"),
		WriteTimeout:         GetDuration("write-timeout"),
		InitialLoadLimit:     GetInt("initial-load-limit"),
		PageSize:             GetInt("page-size"),
		PreloadClosed:        GetBool("preload-closed"),
		LazyLoadDependencies: GetBool("lazy-load-dependencies"),
		CacheTTL:             GetDuration("cache-ttl"),
		DedupTimeout:         GetDuration("dedup-timeout"),
		MaxInFlight:          GetInt("max-in-flight"),
		WatchDebounce:        GetDuration("watch-debounce"),
		ReadOnly:             GetBool("read-only"),
		Profile:              GetString("profile"),
		SummaryModel:         GetString("summary-model"),
		ServeAddr:            GetString("serve-addr"),
	}
	o.SetDefaults()
	return o
}
