package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/relman-dev/relman/pkg/models"
)

// tagPrefixPattern limits prefixes to characters git accepts in ref names
// without quoting. The prefix may be empty.
var tagPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]*$`)

// preChannelPattern is a single semver pre-release identifier.
var preChannelPattern = regexp.MustCompile(`^[0-9A-Za-z-]+$`)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	var errs []ValidationError

	errs = append(errs, validateRelease(&cfg.Release)...)
	errs = append(errs, validateChangelog(&cfg.Changelog)...)
	errs = append(errs, validateIntegrations(&cfg.Integrations)...)
	errs = append(errs, validateSystem(&cfg.System)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func validateRelease(r *ReleaseConfig) []ValidationError {
	var errs []ValidationError

	if !tagPrefixPattern.MatchString(r.TagPrefix) || strings.HasSuffix(r.TagPrefix, "/") || strings.Contains(r.TagPrefix, "..") {
		errs = append(errs, ValidationError{
			Field:   "release.tag_prefix",
			Message: "must contain only letters, digits, '.', '_', '-' or '/' and must not end with '/'",
			Value:   r.TagPrefix,
			Wrapped: ErrInvalidConfig,
		})
	}

	if r.RangeMode != "" && !r.RangeMode.IsValid() {
		errs = append(errs, ValidationError{
			Field:   "release.range_mode",
			Message: fmt.Sprintf("must be one of: %s, %s", models.RangeSinceLast, models.RangeSeries),
			Value:   string(r.RangeMode),
			Wrapped: ErrInvalidConfig,
		})
	}

	if r.PreChannel != "" && !preChannelPattern.MatchString(r.PreChannel) {
		errs = append(errs, ValidationError{
			Field:   "release.pre_channel",
			Message: "must be a single pre-release identifier such as rc or beta",
			Value:   r.PreChannel,
			Wrapped: ErrInvalidConfig,
		})
	}

	if r.Push && r.Remote == "" {
		errs = append(errs, ValidationError{
			Field:   "release.remote",
			Message: "required when push is enabled",
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

func validateChangelog(c *ChangelogConfig) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]string)
	for i, s := range c.Sections {
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("changelog.sections[%d].title", i),
				Message: "required field is empty",
				Wrapped: ErrInvalidConfig,
			})
		}
		for _, t := range s.Types {
			if prev, dup := seen[t]; dup {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("changelog.sections[%d].types", i),
					Message: fmt.Sprintf("type already mapped to section %q", prev),
					Value:   t,
					Wrapped: ErrInvalidConfig,
				})
				continue
			}
			seen[t] = s.Title
		}
	}

	if c.WriteFile && c.File == "" {
		errs = append(errs, ValidationError{
			Field:   "changelog.file",
			Message: "required when write_file is enabled",
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

func validateIntegrations(in *IntegrationsConfig) []ValidationError {
	var errs []ValidationError

	if in.Codebase.Enabled {
		if in.Codebase.Account == "" || in.Codebase.Username == "" {
			errs = append(errs, ValidationError{
				Field:   "integrations.codebase",
				Message: "account and username are required when enabled",
				Wrapped: ErrInvalidConfig,
			})
		}
		if !isHTTPURL(in.Codebase.BaseURL) {
			errs = append(errs, ValidationError{
				Field:   "integrations.codebase.base_url",
				Message: "must be an http(s) URL",
				Value:   in.Codebase.BaseURL,
				Wrapped: ErrInvalidConfig,
			})
		}
	}

	if in.Teams.Enabled && in.Teams.WebhookURL == "" && in.Teams.WebhookEnv == "" {
		errs = append(errs, ValidationError{
			Field:   "integrations.teams",
			Message: "webhook_url or webhook_env is required when enabled",
			Wrapped: ErrInvalidConfig,
		})
	}

	if in.Jira.Enabled {
		if !isHTTPURL(in.Jira.BaseURL) {
			errs = append(errs, ValidationError{
				Field:   "integrations.jira.base_url",
				Message: "must be an http(s) URL",
				Value:   in.Jira.BaseURL,
				Wrapped: ErrInvalidConfig,
			})
		}
		if in.Jira.Email == "" {
			errs = append(errs, ValidationError{
				Field:   "integrations.jira.email",
				Message: "required when enabled",
				Wrapped: ErrInvalidConfig,
			})
		}
	}

	return errs
}

func validateSystem(s *SystemConfig) []ValidationError {
	var errs []ValidationError

	if s.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(s.LogLevel)) {
		errs = append(errs, ValidationError{
			Field:   "system.log_level",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogLevels, ", ")),
			Value:   s.LogLevel,
			Wrapped: ErrInvalidConfig,
		})
	}
	if s.LogFormat != "" && !slices.Contains(validLogFormats, strings.ToLower(s.LogFormat)) {
		errs = append(errs, ValidationError{
			Field:   "system.log_format",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogFormats, ", ")),
			Value:   s.LogFormat,
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
