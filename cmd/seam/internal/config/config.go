// Package config reads and validates seam.yaml plus the host project's
// go.mod.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "seam.yaml"

// Config represents the optional seam.yaml configuration.
type Config struct {
	App AppConfig `yaml:"app"`
	Dev DevConfig `yaml:"dev"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
	ID   string `yaml:"id,omitempty"`
}

// DevConfig contains dev-loop settings.
type DevConfig struct {
	// DebounceMs batches rapid file events before the check step runs.
	DebounceMs int `yaml:"debounce_ms,omitempty"`
}

// Debounce returns the configured debounce window with a 300ms default.
func (d DevConfig) Debounce() time.Duration {
	if d.DebounceMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(d.DebounceMs) * time.Millisecond
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string
	AppID      string
	Dev        DevConfig
}

// LoadOptional reads seam.yaml if present, returning defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Save writes cfg to dir as seam.yaml.
func Save(dir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", FileName, err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}

// Resolve loads seam.yaml (if present) and resolves defaults against the
// project's go.mod.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := ModulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	appID := strings.TrimSpace(cfg.App.ID)
	if appID == "" {
		appID = defaultAppID(modulePath, appName)
	}
	if err := ValidateAppID(appID); err != nil {
		return nil, err
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		AppName:    appName,
		AppID:      appID,
		Dev:        cfg.Dev,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

// ModulePath reads the module path out of dir's go.mod.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

// CheckModulePath validates a module path for a scaffolded project.
func CheckModulePath(path string) error {
	if err := module.CheckPath(path); err != nil {
		return fmt.Errorf("invalid module path %q: %w", path, err)
	}
	return nil
}

// ValidateAppID enforces reverse-DNS app IDs: lowercase alphanumeric
// segments joined by dots, at least two segments.
func ValidateAppID(id string) error {
	segments := strings.Split(id, ".")
	if len(segments) < 2 {
		return fmt.Errorf("app id %q must have at least two dot-separated segments", id)
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("app id %q has an empty segment", id)
		}
		for i, r := range seg {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= '0' && r <= '9':
				if i == 0 {
					return fmt.Errorf("app id segment %q starts with a digit", seg)
				}
			default:
				return fmt.Errorf("app id segment %q contains invalid character %q", seg, r)
			}
		}
	}
	return nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	modName, _, ok := module.SplitPathVersion(modulePath)
	if ok {
		parts := strings.Split(modName, "/")
		if len(parts) > 0 && parts[len(parts)-1] != "" {
			base = parts[len(parts)-1]
		}
	}
	if base == "" {
		return "seam_app"
	}
	return base
}

func defaultAppID(modulePath, appName string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return "com.example." + sanitizeSegment(appName)
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	segments := host
	for _, p := range parts[1:] {
		if p != "" {
			segments = append(segments, p)
		}
	}
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment)
	}
	return strings.Join(segments, ".")
}

func sanitizeSegment(segment string) string {
	var out []rune
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= '0' && r <= '9':
			if len(out) > 0 {
				out = append(out, r)
			}
		}
	}
	if len(out) == 0 {
		return "app"
	}
	return string(out)
}
