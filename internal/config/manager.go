package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relman-dev/relman/internal/defs"
	"github.com/relman-dev/relman/pkg/models"
)

// managerState represents the lifecycle state of the Manager.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
)

// Manager provides thread-safe configuration management.
// It must be initialized via Load() before use.
type Manager struct {
	mu             sync.RWMutex
	config         *Config
	home           string
	state          managerState
	loader         *Loader
	loadedSections map[string]bool
}

// NewManager creates a new Manager instance in uninitialized state.
func NewManager() *Manager {
	return &Manager{
		loader: NewLoader(),
		state:  stateUninitialized,
	}
}

// Home returns the relman home directory: $RELMAN_HOME when set,
// otherwise <UserConfigDir>/relman.
func Home() (string, error) {
	if env := os.Getenv(defs.HomeEnv); env != "" {
		return filepath.Clean(env), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoHome, err)
	}
	return filepath.Join(dir, defs.AppDir), nil
}

// Load reads configuration from the given home directory. File values are
// merged over compiled defaults, then environment variable overrides are
// applied. The configuration is validated before being stored.
func (m *Manager) Load(home string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.loader.Load(home)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	m.loadedSections = m.loader.LoadedSections()
	applyEnvOverrides(cfg)
	resolvePaths(cfg, home)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	m.config = cfg
	m.home = home
	m.state = stateInitialized

	return cfg, nil
}

// Get returns the current in-memory configuration.
// Returns nil if the manager has not been initialized via Load().
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// HomeDir returns the directory the configuration was loaded from.
func (m *Manager) HomeDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.home
}

// LoadedSections reports which sections came from files.
func (m *Manager) LoadedSections() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.loadedSections))
	maps.Copy(out, m.loadedSections)
	return out
}

// GetSection returns a named configuration section.
func (m *Manager) GetSection(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return nil, ErrNotInitialized
	}

	switch name {
	case "release":
		return m.config.Release, nil
	case "changelog":
		return m.config.Changelog, nil
	case "integrations":
		return m.config.Integrations, nil
	case "system":
		return m.config.System, nil
	default:
		return nil, ErrSectionNotFound
	}
}

// SetSection updates a named configuration section in memory.
// Returns ErrSectionTypeMismatch if the value type does not match.
func (m *Manager) SetSection(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	switch name {
	case "release":
		v, ok := value.(ReleaseConfig)
		if !ok {
			return fmt.Errorf("%w: expected ReleaseConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.Release = v
	case "changelog":
		v, ok := value.(ChangelogConfig)
		if !ok {
			return fmt.Errorf("%w: expected ChangelogConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.Changelog = v
	case "integrations":
		v, ok := value.(IntegrationsConfig)
		if !ok {
			return fmt.Errorf("%w: expected IntegrationsConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.Integrations = v
	case "system":
		v, ok := value.(SystemConfig)
		if !ok {
			return fmt.Errorf("%w: expected SystemConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.System = v
	default:
		return ErrSectionNotFound
	}
	return nil
}

// Save persists the current configuration to disk atomically.
// Each section is saved to its own YAML file using temp file + os.Rename.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}
	return writeSections(m.home, m.config)
}

// WriteDefaults writes a default configuration under home, leaving any
// existing section files untouched unless overwrite is set.
func WriteDefaults(home string, overwrite bool) ([]string, error) {
	cfg := NewDefaultConfig()
	dir := filepath.Join(filepath.Clean(home), defs.SectionsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{defs.ReleaseYAML, releaseFileWrapper{Release: cfg.Release}},
		{defs.ChangelogYAML, changelogFileWrapper{Changelog: cfg.Changelog}},
		{defs.IntegrationsYAML, integrationsFileWrapper{Integrations: cfg.Integrations}},
		{defs.SystemYAML, systemFileWrapper{System: cfg.System}},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		if err := saveSection(dir, f.name, f.data); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeSections(home string, cfg *Config) error {
	dir := filepath.Join(filepath.Clean(home), defs.SectionsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := saveSection(dir, defs.ReleaseYAML, releaseFileWrapper{Release: cfg.Release}); err != nil {
		return fmt.Errorf("save release config: %w", err)
	}
	if err := saveSection(dir, defs.ChangelogYAML, changelogFileWrapper{Changelog: cfg.Changelog}); err != nil {
		return fmt.Errorf("save changelog config: %w", err)
	}
	if err := saveSection(dir, defs.IntegrationsYAML, integrationsFileWrapper{Integrations: cfg.Integrations}); err != nil {
		return fmt.Errorf("save integrations config: %w", err)
	}
	if err := saveSection(dir, defs.SystemYAML, systemFileWrapper{System: cfg.System}); err != nil {
		return fmt.Errorf("save system config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("RELMAN_LOG_LEVEL"); level != "" {
		cfg.System.LogLevel = level
	}
	if format := os.Getenv("RELMAN_LOG_FORMAT"); format != "" {
		cfg.System.LogFormat = format
	}
	if noColor := os.Getenv("RELMAN_NO_COLOR"); noColor == "true" || noColor == "1" {
		cfg.System.NoColor = true
	}
	if db := os.Getenv("RELMAN_DATABASE"); db != "" {
		cfg.System.Database = db
	}
	if prefix, ok := os.LookupEnv("RELMAN_TAG_PREFIX"); ok {
		cfg.Release.TagPrefix = prefix
	}
	if mode := os.Getenv("RELMAN_RANGE_MODE"); mode != "" {
		cfg.Release.RangeMode = models.RangeMode(strings.ToLower(mode))
	}
}

// resolvePaths anchors relative paths at the home directory.
func resolvePaths(cfg *Config, home string) {
	if cfg.System.Database == "" {
		cfg.System.Database = filepath.Join(home, defs.DatabaseFile)
	} else if !filepath.IsAbs(cfg.System.Database) {
		cfg.System.Database = filepath.Join(home, cfg.System.Database)
	}
	if cfg.Changelog.TemplateDir != "" && !filepath.IsAbs(cfg.Changelog.TemplateDir) {
		cfg.Changelog.TemplateDir = filepath.Join(home, cfg.Changelog.TemplateDir)
	}
}

// saveSection marshals data to YAML and writes it atomically.
func saveSection(dir, filename string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	return atomicWrite(path, yamlData)
}

// atomicWrite writes data to a file atomically using temp file + os.Rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".relman-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
