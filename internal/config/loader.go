package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relman-dev/relman/internal/defs"
)

// Loader reads configuration from YAML section files.
// It is thread-safe via sync.RWMutex.
type Loader struct {
	mu             sync.RWMutex
	loadedSections map[string]bool
}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all configuration section files from the given home directory
// and returns a merged Config with defaults applied for missing fields.
// Missing files use default values. A file with invalid YAML is an error:
// releasing with a half-read configuration would tag with the wrong prefix.
func (l *Loader) Load(home string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loadedSections = make(map[string]bool)
	cfg := NewDefaultConfig()

	sectionsDir := filepath.Join(filepath.Clean(home), defs.SectionsSubdir)

	if _, err := os.Stat(sectionsDir); os.IsNotExist(err) {
		slog.Debug("config sections directory not found, using defaults", "path", sectionsDir)
		return cfg, nil
	}

	release := &releaseFileWrapper{Release: cfg.Release}
	if err := l.loadSection(sectionsDir, defs.ReleaseYAML, "release", release); err != nil {
		return nil, err
	}
	cfg.Release = release.Release

	changelog := &changelogFileWrapper{Changelog: cfg.Changelog}
	if err := l.loadSection(sectionsDir, defs.ChangelogYAML, "changelog", changelog); err != nil {
		return nil, err
	}
	cfg.Changelog = changelog.Changelog

	integrations := &integrationsFileWrapper{Integrations: cfg.Integrations}
	if err := l.loadSection(sectionsDir, defs.IntegrationsYAML, "integrations", integrations); err != nil {
		return nil, err
	}
	cfg.Integrations = integrations.Integrations

	system := &systemFileWrapper{System: cfg.System}
	if err := l.loadSection(sectionsDir, defs.SystemYAML, "system", system); err != nil {
		return nil, err
	}
	cfg.System = system.System

	return cfg, nil
}

// LoadedSections returns a copy of the map indicating which sections
// were successfully loaded from YAML files.
func (l *Loader) LoadedSections() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]bool, len(l.loadedSections))
	maps.Copy(result, l.loadedSections)
	return result
}

// loadSection decodes one section file into target and records it as loaded.
// Caller must hold the write lock.
func (l *Loader) loadSection(dir, filename, section string, target any) error {
	loaded, err := loadYAMLFile(dir, filename, target)
	if err != nil {
		return err
	}
	if loaded {
		l.loadedSections[section] = true
	}
	return nil
}

// loadYAMLFile reads a YAML file from the given directory and unmarshals it
// into the target struct. Returns (true, nil) if the file was found and parsed,
// (false, nil) if the file does not exist, or (false, error) on failure.
func loadYAMLFile(dir, filename string, target any) (bool, error) {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w: %v", filename, ErrInvalidYAML, err)
	}

	return true, nil
}
