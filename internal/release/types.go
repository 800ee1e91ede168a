// Package release plans and executes releases: it resolves the commit
// range and next version of each repository, creates and pushes tags,
// writes changelogs, records history and notifies external services.
package release

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/relman-dev/relman/internal/changelog"
	"github.com/relman-dev/relman/internal/codebase"
	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/git/convention"
	"github.com/relman-dev/relman/internal/jira"
	"github.com/relman-dev/relman/internal/teams"
	"github.com/relman-dev/relman/internal/versioning"
	"github.com/relman-dev/relman/pkg/models"
)

// Request describes the release to plan.
type Request struct {
	// Type is major, minor, patch or auto.
	Type models.ReleaseType
	// Prefix is used for repositories that do not carry their own.
	Prefix string
	// TargetRef is the commit to release; empty means HEAD.
	TargetRef string
	RangeMode models.RangeMode

	// Pre creates a pre-release on PreChannel, e.g. 1.3.0-rc.1.
	Pre        bool
	PreChannel string

	AllowEmpty   bool
	RequireClean bool

	Classify convention.ClassifyOptions
	// IssueProjects restricts extracted issue keys to these JIRA projects.
	IssueProjects []string
}

// Plan is the computed, not yet executed, release of one repository.
type Plan struct {
	Repository models.Repository
	Repo       git.Repository

	Requested models.ReleaseType
	Type      models.ReleaseType
	Prefix    string

	// Current is the latest stable release, nil when there is none.
	Current *versioning.Tag
	// Base opens the commit range, nil when the range is the full history.
	Base *versioning.Tag

	Next      *semver.Version
	Tag       string
	TargetRef string
	TargetSHA string

	Commits   []convention.Commit
	Sections  []convention.Section
	IssueKeys []string
}

// PreviousTag returns the name of the base tag, or "".
func (p *Plan) PreviousTag() string {
	if p.Base == nil {
		return ""
	}
	return p.Base.Name
}

// CurrentVersion returns the current version string, or "".
func (p *Plan) CurrentVersion() string {
	if p.Current == nil {
		return ""
	}
	return p.Current.Version.String()
}

// Entry converts the plan into changelog data.
func (p *Plan) Entry(date time.Time, issueURL string) changelog.Entry {
	return changelog.Entry{
		Repository:  p.Repository.Name,
		Tag:         p.Tag,
		PreviousTag: p.PreviousTag(),
		Version:     p.Next.String(),
		Date:        date,
		CommitCount: len(p.Commits),
		Sections:    p.Sections,
		IssueKeys:   p.IssueKeys,
		IssueURL:    issueURL,
	}
}

// Skipped is a repository left out of a project release.
type Skipped struct {
	Repository models.Repository
	Reason     error
}

// ProjectPlan groups the plans of a project's repositories.
type ProjectPlan struct {
	Project *models.Project
	Plans   []*Plan
	Skipped []Skipped
}

// Options controls Execute.
type Options struct {
	DryRun bool
	Push   bool
	Remote string

	WriteChangelog bool
	// ChangelogFile is relative to each repository root.
	ChangelogFile string
	IssueURL      string

	// Notify enables the configured integrations.
	Notify bool
	// Project, when set, aggregates the release notes and provides
	// per-project integration settings.
	Project *models.Project

	// Date stamps the release; zero means now.
	Date time.Time
}

// Result reports what Execute did.
type Result struct {
	Releases []models.Release
	// Notes are the aggregate release notes in markdown.
	Notes    string
	Warnings []string
	DryRun   bool
}

// Recorder persists executed releases.
type Recorder interface {
	RecordRelease(ctx context.Context, rel *models.Release) error
}

// Notifier delivers a chat notification.
type Notifier interface {
	Notify(ctx context.Context, n teams.Notice) error
}

// IssueTracker manages fix versions.
type IssueTracker interface {
	EnsureVersion(ctx context.Context, projectKey, name string) (*jira.Version, error)
	ReleaseVersion(ctx context.Context, id string, date time.Time) error
	SetFixVersion(ctx context.Context, issueKey, versionName string) error
}

// DeploymentRecorder records deployments in the code host.
type DeploymentRecorder interface {
	CreateDeployment(ctx context.Context, project, repo string, d codebase.Deployment) error
}

// RepositoryLister lists the repositories of a stored project.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, projectID int64) ([]models.Repository, error)
}
