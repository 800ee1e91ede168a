package config

import "github.com/relman-dev/relman/pkg/models"

// Default value constants to avoid magic numbers and strings.
const (
	DefaultTagPrefix  = "v"
	DefaultRemote     = "origin"
	DefaultTargetRef  = "HEAD"
	DefaultPreChannel = "rc"
	DefaultRangeMode  = models.RangeSinceLast

	DefaultChangelogFile = "CHANGELOG.md"

	DefaultCodebaseBaseURL   = "https://api3.codebasehq.com"
	DefaultCodebaseAPIKeyEnv = "RELMAN_CODEBASE_API_KEY"
	DefaultCodebaseEnv       = "production"
	DefaultTeamsWebhookEnv   = "RELMAN_TEAMS_WEBHOOK"
	DefaultJiraTokenEnv      = "RELMAN_JIRA_TOKEN"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// NewDefaultConfig returns a Config with all fields set to compiled defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Release:      NewDefaultReleaseConfig(),
		Changelog:    NewDefaultChangelogConfig(),
		Integrations: NewDefaultIntegrationsConfig(),
		System:       NewDefaultSystemConfig(),
	}
}

// NewDefaultReleaseConfig returns a ReleaseConfig with default values.
func NewDefaultReleaseConfig() ReleaseConfig {
	return ReleaseConfig{
		TagPrefix:    DefaultTagPrefix,
		Remote:       DefaultRemote,
		Push:         false,
		RequireClean: true,
		RangeMode:    DefaultRangeMode,
		PreChannel:   DefaultPreChannel,
		TargetRef:    DefaultTargetRef,
	}
}

// NewDefaultChangelogConfig returns a ChangelogConfig with default values.
func NewDefaultChangelogConfig() ChangelogConfig {
	return ChangelogConfig{
		File:     DefaultChangelogFile,
		Sections: DefaultSections(),
	}
}

// DefaultSections returns the built-in changelog headings in display order.
// Breaking changes are always listed first and need no entry here.
func DefaultSections() []SectionConfig {
	return []SectionConfig{
		{Title: "Features", Types: []string{"feat", "feature"}},
		{Title: "Bug Fixes", Types: []string{"fix", "bugfix"}},
		{Title: "Performance", Types: []string{"perf"}},
		{Title: "Reverts", Types: []string{"revert"}},
		{Title: "Documentation", Types: []string{"docs"}},
		{Title: "Refactoring", Types: []string{"refactor"}},
	}
}

// NewDefaultIntegrationsConfig returns an IntegrationsConfig with default values.
// All integrations start disabled.
func NewDefaultIntegrationsConfig() IntegrationsConfig {
	return IntegrationsConfig{
		Codebase: CodebaseConfig{
			BaseURL:     DefaultCodebaseBaseURL,
			APIKeyEnv:   DefaultCodebaseAPIKeyEnv,
			Environment: DefaultCodebaseEnv,
		},
		Teams: TeamsConfig{
			WebhookEnv: DefaultTeamsWebhookEnv,
		},
		Jira: JiraConfig{
			TokenEnv:       DefaultJiraTokenEnv,
			ReleaseVersion: true,
		},
	}
}

// NewDefaultSystemConfig returns a SystemConfig with default values.
// Database is resolved against the home directory when empty.
func NewDefaultSystemConfig() SystemConfig {
	return SystemConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}
