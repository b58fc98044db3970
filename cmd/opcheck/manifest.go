package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"opcheck/internal/driver"
)

// checkSettings are the [check] keys of opcheck.toml. Pointer fields
// stay nil when the key is absent so that only present keys override the
// probe documents and CLI defaults.
type checkSettings struct {
	Checked        *bool
	Unsafe         *bool
	MaxDiagnostics *int
	Jobs           *int
	Format         string
	Cache          *bool
}

type projectManifest struct {
	Path  string
	Root  string
	Check checkSettings
}

type manifestFile struct {
	Check checkSection `toml:"check"`
}

type checkSection struct {
	Checked        bool   `toml:"checked"`
	Unsafe         bool   `toml:"unsafe"`
	MaxDiagnostics int    `toml:"max-diagnostics"`
	Jobs           int    `toml:"jobs"`
	Format         string `toml:"format"`
	Cache          bool   `toml:"cache"`
}

// findManifest walks up from startDir looking for opcheck.toml.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, driver.ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds and decodes the manifest governing startDir.
// A missing manifest is not an error.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	settings, err := loadCheckSettings(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:  path,
		Root:  filepath.Dir(path),
		Check: settings,
	}, true, nil
}

func loadCheckSettings(path string) (checkSettings, error) {
	var file manifestFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return checkSettings{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return checkSettings{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	var s checkSettings
	sec := file.Check
	if meta.IsDefined("check", "checked") {
		s.Checked = &sec.Checked
	}
	if meta.IsDefined("check", "unsafe") {
		s.Unsafe = &sec.Unsafe
	}
	if meta.IsDefined("check", "max-diagnostics") {
		if sec.MaxDiagnostics <= 0 {
			return checkSettings{}, fmt.Errorf("%s: [check].max-diagnostics must be positive", path)
		}
		s.MaxDiagnostics = &sec.MaxDiagnostics
	}
	if meta.IsDefined("check", "jobs") {
		if sec.Jobs < 0 {
			return checkSettings{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
		}
		s.Jobs = &sec.Jobs
	}
	if meta.IsDefined("check", "format") {
		format := strings.ToLower(strings.TrimSpace(sec.Format))
		if !validFormat(format) {
			return checkSettings{}, fmt.Errorf("%s: [check].format must be pretty, short or json", path)
		}
		s.Format = format
	}
	if meta.IsDefined("check", "cache") {
		s.Cache = &sec.Cache
	}
	return s, nil
}

func validFormat(format string) bool {
	switch format {
	case "pretty", "short", "json":
		return true
	}
	return false
}
