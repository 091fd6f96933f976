// Package jjkconfig owns the two read-only configuration concerns: brand
// hallmark resolution from the install-time brand file, and an optional
// TOML file of CLI defaults.
package jjkconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/scaleinvariant/jjk/internal/jjkerr"
)

// BrandFile is the decoded shape of .vvk/vvbf_brand.json.
type BrandFile struct {
	Hallmark string `json:"vvbh_hallmark"`
}

// ReadBrandFile reads and decodes .vvk/vvbf_brand.json under root. A missing
// file is not an error: it returns (BrandFile{}, false, nil).
func ReadBrandFile(root string) (BrandFile, bool, error) {
	path := filepath.Join(root, ".vvk", "vvbf_brand.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BrandFile{}, false, nil
		}
		return BrandFile{}, false, jjkerr.Wrapf(jjkerr.IoFailure, err, "reading %s", path)
	}
	var bf BrandFile
	if err := json.Unmarshal(raw, &bf); err != nil {
		return BrandFile{}, false, jjkerr.Wrapf(jjkerr.InvariantViolation, err, "parsing %s", path)
	}
	if bf.Hallmark == "" {
		return BrandFile{}, false, nil
	}
	return bf, true, nil
}

// Defaults holds the optional CLI-default overrides read from
// .jjk/config.toml. Zero values mean "use the built-in default".
type Defaults struct {
	GallopsPath      string `toml:"gallops_path"`
	Brand            string `toml:"brand"`
	MachineSizeLimit uint64 `toml:"machine_size_limit"`
	MachineSizeWarn  uint64 `toml:"machine_size_warn"`
	InteractiveSizeLimit uint64 `toml:"interactive_size_limit"`
	InteractiveSizeWarn  uint64 `toml:"interactive_size_warn"`
}

// BuiltinDefaults returns the hard-coded fallback values used when no
// config file is present or a field is unset in it.
func BuiltinDefaults() Defaults {
	return Defaults{
		GallopsPath:          ".claude/jjm/gallops.json",
		Brand:                "jjb",
		MachineSizeLimit:     50_000,
		MachineSizeWarn:      30_000,
		InteractiveSizeLimit: 500_000,
		InteractiveSizeWarn:  250_000,
	}
}

// LoadDefaults reads .jjk/config.toml under root, if present, and overlays
// it onto BuiltinDefaults. A missing file is not an error.
func LoadDefaults(root string) (Defaults, error) {
	defaults := BuiltinDefaults()
	path := filepath.Join(root, ".jjk", "config.toml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, jjkerr.Wrapf(jjkerr.IoFailure, err, "reading %s", path)
	}

	var fileDefaults Defaults
	if _, err := toml.Decode(string(raw), &fileDefaults); err != nil {
		return defaults, jjkerr.Wrapf(jjkerr.InvariantViolation, err, "parsing %s", path)
	}

	if fileDefaults.GallopsPath != "" {
		defaults.GallopsPath = fileDefaults.GallopsPath
	}
	if fileDefaults.Brand != "" {
		defaults.Brand = fileDefaults.Brand
	}
	if fileDefaults.MachineSizeLimit != 0 {
		defaults.MachineSizeLimit = fileDefaults.MachineSizeLimit
	}
	if fileDefaults.MachineSizeWarn != 0 {
		defaults.MachineSizeWarn = fileDefaults.MachineSizeWarn
	}
	if fileDefaults.InteractiveSizeLimit != 0 {
		defaults.InteractiveSizeLimit = fileDefaults.InteractiveSizeLimit
	}
	if fileDefaults.InteractiveSizeWarn != 0 {
		defaults.InteractiveSizeWarn = fileDefaults.InteractiveSizeWarn
	}
	return defaults, nil
}
