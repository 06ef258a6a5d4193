package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

// BoardFile is the parsed kanban.toml: named column-layout profiles for
// a workspace. A triage profile might show only the ready and blocked
// columns with a smaller page size; the standard profile shows all
// four.
type BoardFile struct {
	DefaultProfile string             `toml:"default-profile"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// Profile is one named board layout.
type Profile struct {
	Columns       []string `toml:"columns"`
	PageSize      int      `toml:"page-size"`      // 0 inherits the configured page size
	PreloadClosed *bool    `toml:"preload-closed"` // nil inherits
}

// ColumnKeys returns the profile's columns as typed keys, in order.
func (p Profile) ColumnKeys() []types.ColumnKey {
	keys := make([]types.ColumnKey, 0, len(p.Columns))
	for _, c := range p.Columns {
		keys = append(keys, types.ColumnKey(c))
	}
	return keys
}

// DefaultBoardFile is the layout used when a workspace has no
// kanban.toml: one profile showing the four standard columns.
func DefaultBoardFile() *BoardFile {
	columns := make([]string, 0, 4)
	for _, k := range types.StandardColumns() {
		columns = append(columns, string(k))
	}
	return &BoardFile{
		DefaultProfile: "standard",
		Profiles: map[string]Profile{
			"standard": {Columns: columns},
		},
	}
}

// LoadBoardFile reads kanban.toml from the given .beads directory.
// A missing file yields the default layout; a malformed file is an
// error so a typo doesn't silently collapse the board to defaults.
func LoadBoardFile(beadsDir string) (*BoardFile, error) {
	if beadsDir == "" {
		return DefaultBoardFile(), nil
	}

	path := filepath.Join(beadsDir, "kanban.toml")
	data, err := os.ReadFile(path) // #nosec G304 - config file path from beadsDir
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBoardFile(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var bf BoardFile
	if err := toml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := bf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &bf, nil
}

func (b *BoardFile) validate() error {
	if len(b.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}
	for name, p := range b.Profiles {
		if len(p.Columns) == 0 {
			return fmt.Errorf("profile %q has no columns", name)
		}
		seen := make(map[string]bool, len(p.Columns))
		for _, c := range p.Columns {
			key := types.ColumnKey(c)
			if err := validation.ColumnKey(key); err != nil {
				return fmt.Errorf("profile %q: %w", name, err)
			}
			// A custom column names a backend status; anything else has
			// no list query behind it.
			if !key.IsStandard() {
				if err := validation.Status(types.Status(key)); err != nil {
					return fmt.Errorf("profile %q: column %q is not a backend status", name, c)
				}
			}
			if seen[c] {
				return fmt.Errorf("profile %q: column %q listed twice", name, c)
			}
			seen[c] = true
		}
		if p.PageSize < 0 {
			return fmt.Errorf("profile %q: page-size must not be negative", name)
		}
	}
	if b.DefaultProfile != "" {
		if _, ok := b.Profiles[b.DefaultProfile]; !ok {
			return fmt.Errorf("default-profile %q is not defined", b.DefaultProfile)
		}
	}
	return nil
}

// Resolve returns the named profile, or the file's default when name is
// empty. An unknown name is an error listing what is available.
func (b *BoardFile) Resolve(name string) (Profile, error) {
	if name == "" {
		name = b.DefaultProfile
	}
	if name == "" {
		name = "standard"
	}
	p, ok := b.Profiles[name]
	if !ok {
		names := make([]string, 0, len(b.Profiles))
		for n := range b.Profiles {
			names = append(names, n)
		}
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, names)
	}
	return p, nil
}
