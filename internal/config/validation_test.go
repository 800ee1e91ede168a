package config

import (
	"errors"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(NewDefaultConfig()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"prefix with space", func(c *Config) { c.Release.TagPrefix = "v 1" }, "release.tag_prefix"},
		{"prefix trailing slash", func(c *Config) { c.Release.TagPrefix = "api/" }, "release.tag_prefix"},
		{"pre channel dotted", func(c *Config) { c.Release.PreChannel = "rc.1" }, "release.pre_channel"},
		{"push without remote", func(c *Config) { c.Release.Push = true; c.Release.Remote = "" }, "release.remote"},
		{"empty section title", func(c *Config) { c.Changelog.Sections[0].Title = " " }, "changelog.sections[0].title"},
		{"duplicate type", func(c *Config) {
			c.Changelog.Sections = append(c.Changelog.Sections, SectionConfig{Title: "Again", Types: []string{"feat"}})
		}, "changelog.sections[6].types"},
		{"write without file", func(c *Config) { c.Changelog.WriteFile = true; c.Changelog.File = "" }, "changelog.file"},
		{"codebase missing account", func(c *Config) { c.Integrations.Codebase.Enabled = true }, "integrations.codebase"},
		{"jira bad url", func(c *Config) {
			c.Integrations.Jira.Enabled = true
			c.Integrations.Jira.Email = "a@b.c"
			c.Integrations.Jira.BaseURL = "acme.atlassian.net"
		}, "integrations.jira.base_url"},
		{"teams no webhook", func(c *Config) {
			c.Integrations.Teams.Enabled = true
			c.Integrations.Teams.WebhookEnv = ""
		}, "integrations.teams"},
		{"log level", func(c *Config) { c.System.LogLevel = "loud" }, "system.log_level"},
		{"log format", func(c *Config) { c.System.LogFormat = "xml" }, "system.log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var verrs *ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error type = %T, want *ValidationErrors", err)
			}
			found := false
			for _, ve := range verrs.Errors {
				if ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, err)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Field: "release.tag_prefix", Message: "bad", Value: "x y", Wrapped: ErrInvalidConfig}
	want := `validation error: field "release.tag_prefix": bad (got: x y)`
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}
	if !errors.Is(ve, ErrInvalidConfig) {
		t.Error("errors.Is(ve, ErrInvalidConfig) = false")
	}
}
