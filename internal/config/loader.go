package config

import (
	"os"
	"path/filepath"
)

// Loader locates and reads the configuration file.
type Loader struct {
	Version      string // build version; "dev" also checks the working directory
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load parses the first configuration file found, or returns defaults when
// none exists.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// GetConfigPath returns the first existing candidate location, or "" when no
// configuration file exists. Order: override path, .screenuxrc in the working
// directory (dev builds only), then the XDG locations.
func (l *Loader) GetConfigPath() string {
	var candidates []string
	if l.OverridePath != "" {
		candidates = append(candidates, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, ".screenuxrc"))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "screenux", "config.rc"),
			filepath.Join(home, ".config", "screenux", "screenux.rc"),
		)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
