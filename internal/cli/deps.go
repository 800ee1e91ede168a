// Package cli provides the Cobra command tree and dependency injection
// wiring for the relman CLI. This file defines the Dependencies struct
// (Composition Root) that wires all domain modules together.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/relman-dev/relman/internal/changelog"
	"github.com/relman-dev/relman/internal/codebase"
	"github.com/relman-dev/relman/internal/config"
	"github.com/relman-dev/relman/internal/defs"
	"github.com/relman-dev/relman/internal/git/convention"
	"github.com/relman-dev/relman/internal/jira"
	"github.com/relman-dev/relman/internal/release"
	"github.com/relman-dev/relman/internal/store"
	"github.com/relman-dev/relman/internal/teams"
	"github.com/relman-dev/relman/internal/ui"
	"github.com/relman-dev/relman/pkg/models"
)

// Dependencies holds all domain-level services used by CLI commands.
// This is the Composition Root: the only place where concrete types
// are instantiated and wired together.
type Dependencies struct {
	Config   *config.Manager
	Home     string
	Theme    *ui.Theme
	Headless *ui.HeadlessManager
	Prompter *ui.Prompter
	Logger   *slog.Logger

	// HTTPClient is shared by the integration clients; nil uses their defaults.
	HTTPClient *http.Client
	// Getenv reads integration secrets.
	Getenv func(string) string

	// Store is opened lazily by EnsureStore.
	Store *store.Store
}

// deps is the global dependencies instance, initialized by InitDependencies.
// CLI commands access this through the package-level variable.
var deps *Dependencies

// InitDependencies creates the dependencies that do not need
// configuration. Everything else is wired once the command's
// configuration has been loaded.
func InitDependencies() {
	headless := ui.NewHeadlessManager()
	theme := ui.NewTheme(ui.ThemeConfig{})
	deps = &Dependencies{
		Config:   config.NewManager(),
		Theme:    theme,
		Headless: headless,
		Prompter: ui.NewPrompter(theme, headless),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Getenv:   os.Getenv,
	}
}

// GetDeps returns the current Dependencies instance.
// Returns nil if InitDependencies has not been called.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// SetLogger installs l as the process-wide logger.
func (d *Dependencies) SetLogger(l *slog.Logger) {
	d.Logger = l
	slog.SetDefault(l)
}

// ConfigureUI rebuilds the theme and prompter for the session.
func (d *Dependencies) ConfigureUI(noColor, nonInteractive bool) {
	if nonInteractive {
		d.Headless.ForceHeadless(true)
	}
	d.Theme = ui.NewTheme(ui.ThemeConfig{NoColor: noColor})
	d.Prompter = ui.NewPrompter(d.Theme, d.Headless)
}

// Cfg returns the loaded configuration, or the defaults when none was
// loaded.
func (d *Dependencies) Cfg() *config.Config {
	if cfg := d.Config.Get(); cfg != nil {
		return cfg
	}
	return config.NewDefaultConfig()
}

// EnsureStore lazily opens the release database.
func (d *Dependencies) EnsureStore() error {
	if d.Store != nil {
		return nil
	}
	path := d.Cfg().System.Database
	if path == "" {
		if d.Home == "" {
			return errors.New("no database path configured")
		}
		path = filepath.Join(d.Home, defs.DatabaseFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	d.Store = st
	return nil
}

// Close releases the store.
func (d *Dependencies) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// Renderer returns a changelog renderer honoring the template override
// directory.
func (d *Dependencies) Renderer() *changelog.Renderer {
	return changelog.NewRenderer(d.Cfg().Changelog.TemplateDir)
}

// Planner returns a release planner. Project planning requires the store.
func (d *Dependencies) Planner() *release.Planner {
	if d.Store == nil {
		return release.NewPlanner()
	}
	return release.NewPlanner(release.WithRepositories(d.Store))
}

// ClassifyOptions converts the configured changelog sections.
func (d *Dependencies) ClassifyOptions() convention.ClassifyOptions {
	cl := d.Cfg().Changelog
	opts := convention.ClassifyOptions{IncludeHidden: cl.IncludeHidden}
	for _, s := range cl.Sections {
		opts.Groups = append(opts.Groups, convention.Group{Title: s.Title, Types: s.Types})
	}
	return opts
}

// Orchestrator wires the release executor. The store records history
// when it can be opened; integrations are attached only when notify is
// set. Enabled integrations with incomplete settings are reported as
// release warnings.
func (d *Dependencies) Orchestrator(project *models.Project, notify bool) *release.Orchestrator {
	var opts []release.OrchestratorOption

	if err := d.EnsureStore(); err != nil {
		d.Logger.Warn("release history disabled", "error", err)
	} else {
		opts = append(opts, release.WithRecorder(d.Store))
	}

	if notify {
		opts = append(opts, d.integrations(project)...)
	}
	return release.NewOrchestrator(d.Renderer(), opts...)
}

func (d *Dependencies) integrations(project *models.Project) []release.OrchestratorOption {
	ic := d.Cfg().Integrations
	var opts []release.OrchestratorOption

	if ic.Teams.Enabled {
		webhook := ic.Teams.WebhookURL
		if project != nil && project.TeamsWebhook != "" {
			webhook = project.TeamsWebhook
		}
		if webhook == "" {
			webhook = d.secret(ic.Teams.WebhookEnv)
		}
		client, err := teams.New(webhook, d.HTTPClient)
		if err != nil {
			opts = append(opts, release.WithDisabledIntegration("teams", err))
		} else {
			opts = append(opts, release.WithNotifier(client))
		}
	}

	if ic.Jira.Enabled {
		client, err := jira.New(jira.Options{
			BaseURL:    ic.Jira.BaseURL,
			Email:      ic.Jira.Email,
			Token:      d.secret(ic.Jira.TokenEnv),
			HTTPClient: d.HTTPClient,
		})
		if err != nil {
			opts = append(opts, release.WithDisabledIntegration("jira", err))
		} else {
			opts = append(opts, release.WithIssueTracker(client, ic.Jira.ProjectKey, ic.Jira.ReleaseVersion))
		}
	}

	if ic.Codebase.Enabled {
		client, err := d.CodebaseClient()
		if err != nil {
			opts = append(opts, release.WithDisabledIntegration("codebase", err))
		} else {
			opts = append(opts, release.WithDeployments(client, ic.Codebase.Environment, ic.Codebase.Servers))
		}
	}
	return opts
}

// CodebaseClient builds a CodebaseHQ client from the configuration and
// the API key environment variable.
func (d *Dependencies) CodebaseClient() (*codebase.Client, error) {
	cc := d.Cfg().Integrations.Codebase
	return codebase.New(codebase.Options{
		BaseURL:    cc.BaseURL,
		Account:    cc.Account,
		Username:   cc.Username,
		APIKey:     d.secret(cc.APIKeyEnv),
		HTTPClient: d.HTTPClient,
	})
}

func (d *Dependencies) secret(env string) string {
	if env == "" || d.Getenv == nil {
		return ""
	}
	return d.Getenv(env)
}
