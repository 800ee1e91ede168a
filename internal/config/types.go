package config

import "github.com/relman-dev/relman/pkg/models"

// Config is the root configuration aggregate containing all sections.
type Config struct {
	Release      ReleaseConfig      `yaml:"release"`
	Changelog    ChangelogConfig    `yaml:"changelog"`
	Integrations IntegrationsConfig `yaml:"integrations"`
	System       SystemConfig       `yaml:"system"`
}

// ReleaseConfig controls tag naming and the release flow.
type ReleaseConfig struct {
	TagPrefix    string           `yaml:"tag_prefix"`
	Remote       string           `yaml:"remote"`
	Push         bool             `yaml:"push"`
	RequireClean bool             `yaml:"require_clean"`
	RangeMode    models.RangeMode `yaml:"range_mode"`
	PreChannel   string           `yaml:"pre_channel"`
	TargetRef    string           `yaml:"target_ref"`
}

// ChangelogConfig controls changelog rendering and output.
type ChangelogConfig struct {
	// TemplateDir overrides built-in templates with files of the same name.
	TemplateDir   string          `yaml:"template_dir"`
	File          string          `yaml:"file"`
	WriteFile     bool            `yaml:"write_file"`
	IncludeHidden bool            `yaml:"include_hidden"`
	Sections      []SectionConfig `yaml:"sections"`
	// IssueURL is a prefix joined with an issue key, e.g. https://acme.atlassian.net/browse/
	IssueURL      string          `yaml:"issue_url"`
}

// SectionConfig maps commit types onto a changelog heading.
type SectionConfig struct {
	Title string   `yaml:"title"`
	Types []string `yaml:"types"`
}

// IntegrationsConfig holds external service settings. Secrets are read
// from the environment variables named here, never stored in YAML.
type IntegrationsConfig struct {
	Codebase CodebaseConfig `yaml:"codebase"`
	Teams    TeamsConfig    `yaml:"teams"`
	Jira     JiraConfig     `yaml:"jira"`
}

// CodebaseConfig configures the CodebaseHQ API client.
type CodebaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	Account     string `yaml:"account"`
	Username    string `yaml:"username"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Environment string `yaml:"environment"`
	Servers     string `yaml:"servers"`
}

// TeamsConfig configures Microsoft Teams webhook notifications.
type TeamsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	WebhookEnv string `yaml:"webhook_env"`
}

// JiraConfig configures the JIRA REST client.
type JiraConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	Email          string `yaml:"email"`
	TokenEnv       string `yaml:"token_env"`
	ProjectKey     string `yaml:"project_key"`
	ReleaseVersion bool   `yaml:"release_version"`
}

// SystemConfig represents the system configuration section.
type SystemConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	NoColor        bool   `yaml:"no_color"`
	NonInteractive bool   `yaml:"non_interactive"`
	Database       string `yaml:"database"`
}

// Section file wrappers keep one top-level key per YAML file.
type releaseFileWrapper struct {
	Release ReleaseConfig `yaml:"release"`
}

type changelogFileWrapper struct {
	Changelog ChangelogConfig `yaml:"changelog"`
}

type integrationsFileWrapper struct {
	Integrations IntegrationsConfig `yaml:"integrations"`
}

type systemFileWrapper struct {
	System SystemConfig `yaml:"system"`
}
