package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileDefaults is the optional per-directory CLI default set, read from
// "d.yaml" in the directory the CLI is invoked from. Command-line flags
// always override whatever this file sets.
type FileDefaults struct {
	Locators bool   `yaml:"locators"`
	Color    string `yaml:"color"` // "auto" (default), "always", "never"
}

// LoadDefaults reads dir/d.yaml if present. The bool return is false when
// no such file exists; a malformed file is reported as an error rather
// than silently ignored, since a typo'd setting should be visible.
func LoadDefaults(dir string) (FileDefaults, bool, error) {
	path := filepath.Join(dir, "d.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileDefaults{Color: "auto"}, false, nil
		}
		return FileDefaults{}, false, err
	}
	var fd FileDefaults
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return FileDefaults{}, false, err
	}
	if fd.Color == "" {
		fd.Color = "auto"
	}
	return fd, true, nil
}
