package defs

// Directory layout under the relman home directory.
const (
	// HomeEnv overrides the relman home directory.
	HomeEnv = "RELMAN_HOME"

	// AppDir is the directory name created under os.UserConfigDir().
	AppDir = "relman"

	// ConfigSubdir holds configuration files.
	ConfigSubdir = "config"

	// SectionsSubdir holds one YAML file per configuration section.
	SectionsSubdir = "config/sections"

	// TemplatesSubdir holds user overrides for changelog templates.
	TemplatesSubdir = "templates"

	// DatabaseFile is the default SQLite database file name.
	DatabaseFile = "relman.db"
)

// Section YAML file names under config/sections/.
const (
	ReleaseYAML      = "release.yaml"
	ChangelogYAML    = "changelog.yaml"
	IntegrationsYAML = "integrations.yaml"
	SystemYAML       = "system.yaml"
)

// Repository-level files.
const (
	// ChangelogMD is the default changelog file written into repositories.
	ChangelogMD = "CHANGELOG.md"
)
