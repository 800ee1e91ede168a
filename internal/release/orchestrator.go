package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relman-dev/relman/internal/changelog"
	"github.com/relman-dev/relman/internal/codebase"
	"github.com/relman-dev/relman/internal/jira"
	"github.com/relman-dev/relman/internal/teams"
	"github.com/relman-dev/relman/pkg/models"
)

// Orchestrator executes release plans.
type Orchestrator struct {
	renderer *changelog.Renderer
	recorder Recorder

	notifier Notifier

	tracker        IssueTracker
	jiraProject    string
	releaseVersion bool

	deployments DeploymentRecorder
	environment string
	servers     string

	disabled []disabledIntegration

	logger *slog.Logger
	now    func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRecorder stores every executed release.
func WithRecorder(r Recorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithNotifier posts a chat notification after tagging.
func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithIssueTracker assigns fix versions to the released issues.
// projectKey is used when the project carries no key of its own;
// markReleased also marks the version released.
func WithIssueTracker(t IssueTracker, projectKey string, markReleased bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tracker = t
		o.jiraProject = projectKey
		o.releaseVersion = markReleased
	}
}

// WithDeployments records a deployment per released repository.
func WithDeployments(d DeploymentRecorder, environment, servers string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.deployments = d
		o.environment = environment
		o.servers = servers
	}
}

type disabledIntegration struct {
	name   string
	reason error
}

// WithDisabledIntegration reports an integration that is enabled in the
// configuration but could not be set up. It is listed in Result.Warnings
// whenever integrations run.
func WithDisabledIntegration(name string, reason error) OrchestratorOption {
	return func(o *Orchestrator) {
		o.disabled = append(o.disabled, disabledIntegration{name: name, reason: reason})
	}
}

// NewOrchestrator creates an Orchestrator rendering with r.
func NewOrchestrator(r *changelog.Renderer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		renderer: r,
		logger:   slog.Default().With("module", "release"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute renders release notes and, unless DryRun is set, tags each
// plan's target, pushes the tags, writes changelogs, records the
// releases and runs the integrations. A failed push deletes the tag it
// just created and aborts; releases completed before it are kept and
// returned. Changelog, store and integration failures never undo a tag;
// they are reported in Result.Warnings.
func (o *Orchestrator) Execute(ctx context.Context, plans []*Plan, opts Options) (*Result, error) {
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}
	date := opts.Date
	if date.IsZero() {
		date = o.now()
	}

	res := &Result{DryRun: opts.DryRun}
	entries := make([]changelog.Entry, len(plans))
	notes := make([]string, len(plans))
	for i, p := range plans {
		entries[i] = p.Entry(date, opts.IssueURL)
		md, err := o.renderer.RenderEntry(entries[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Repository.Name, err)
		}
		notes[i] = md
	}
	if opts.Project != nil || len(plans) > 1 {
		md, err := o.renderer.RenderProject(projectEntry(opts.Project, entries, date, opts.IssueURL))
		if err != nil {
			return nil, err
		}
		res.Notes = md
	} else {
		res.Notes = notes[0]
	}

	for i, p := range plans {
		rel := models.Release{
			RepositoryID: p.Repository.ID,
			RepoName:     p.Repository.Name,
			Tag:          p.Tag,
			Version:      p.Next.String(),
			PreviousTag:  p.PreviousTag(),
			Type:         p.Type,
			CommitSHA:    p.TargetSHA,
			CommitCount:  len(p.Commits),
			Changelog:    notes[i],
			CreatedAt:    date,
		}
		if opts.Project != nil {
			rel.ProjectID = opts.Project.ID
		}
		if opts.DryRun {
			res.Releases = append(res.Releases, rel)
			continue
		}

		if err := o.tag(ctx, p, entries[i], opts); err != nil {
			return res, err
		}
		rel.Pushed = opts.Push

		if opts.WriteChangelog && opts.ChangelogFile != "" {
			path := opts.ChangelogFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(p.Repo.Root(), path)
			}
			if err := changelog.Prepend(path, notes[i]); err != nil {
				res.warn(o.logger, "%s: changelog not written: %v", p.Repository.Name, err)
			}
		}

		if o.recorder != nil {
			if err := o.recorder.RecordRelease(ctx, &rel); err != nil {
				res.warn(o.logger, "%s: release not recorded: %v", p.Repository.Name, err)
			}
		}
		res.Releases = append(res.Releases, rel)
	}

	if opts.DryRun {
		return res, nil
	}
	if opts.Notify {
		o.integrate(ctx, plans, entries, date, opts, res)
	}
	return res, nil
}

func (o *Orchestrator) tag(ctx context.Context, p *Plan, entry changelog.Entry, opts Options) error {
	msg, err := o.renderer.RenderTagMessage(entry)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Repository.Name, err)
	}
	if err := p.Repo.CreateTag(ctx, p.Tag, p.TargetSHA, msg); err != nil {
		return fmt.Errorf("%s: %w", p.Repository.Name, err)
	}
	o.logger.Info("tag created", "repo", p.Repository.Name, "tag", p.Tag, "sha", p.TargetSHA)

	if !opts.Push {
		return nil
	}
	if err := p.Repo.PushTag(ctx, opts.Remote, p.Tag); err != nil {
		o.logger.Error("push failed, deleting local tag", "repo", p.Repository.Name, "tag", p.Tag, "error", err)
		if derr := p.Repo.DeleteTag(context.WithoutCancel(ctx), p.Tag); derr != nil {
			return fmt.Errorf("%s: %w: %w (rollback failed: %v)", p.Repository.Name, ErrPushFailed, err, derr)
		}
		return fmt.Errorf("%s: %w: %w", p.Repository.Name, ErrPushFailed, err)
	}
	o.logger.Info("tag pushed", "repo", p.Repository.Name, "tag", p.Tag, "remote", opts.Remote)
	return nil
}

// integrate runs the configured integrations concurrently. Failures
// become warnings.
func (o *Orchestrator) integrate(ctx context.Context, plans []*Plan, entries []changelog.Entry, date time.Time, opts Options, res *Result) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	warn := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		res.warn(o.logger, format, args...)
	}

	for _, d := range o.disabled {
		warn("%s: not run: %v", d.name, d.reason)
	}

	if o.notifier != nil {
		g.Go(func() error {
			if err := o.notify(ctx, plans, entries, date, opts); err != nil {
				warn("teams: %v", err)
			}
			return nil
		})
	}
	if o.tracker != nil {
		g.Go(func() error {
			o.assignFixVersions(ctx, plans, date, opts, warn)
			return nil
		})
	}
	if o.deployments != nil {
		g.Go(func() error {
			o.recordDeployments(ctx, plans, opts, warn)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(res.Warnings)
}

func (o *Orchestrator) notify(ctx context.Context, plans []*Plan, entries []changelog.Entry, date time.Time, opts Options) error {
	body, err := o.renderer.Render(changelog.TemplateTeams, projectEntry(opts.Project, entries, date, opts.IssueURL))
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s released", plans[0].Repository.Name, plans[0].Tag)
	if opts.Project != nil {
		title = opts.Project.Name + " released"
	}
	facts := make([]teams.Fact, 0, len(plans))
	for _, p := range plans {
		facts = append(facts, teams.Fact{Name: p.Repository.Name, Value: p.Tag})
	}
	return o.notifier.Notify(ctx, teams.Notice{Title: title, Text: body, Facts: facts})
}

func (o *Orchestrator) assignFixVersions(ctx context.Context, plans []*Plan, date time.Time, opts Options, warn func(string, ...any)) {
	key := o.jiraProject
	if opts.Project != nil && opts.Project.JiraKey != "" {
		key = opts.Project.JiraKey
	}
	if key == "" {
		warn("jira: no project key configured")
		return
	}

	for _, p := range plans {
		if len(p.IssueKeys) == 0 {
			continue
		}
		name := FixVersionName(p)
		v, err := o.tracker.EnsureVersion(ctx, key, name)
		if err != nil {
			warn("jira: %s: %v", name, err)
			continue
		}
		for _, issue := range p.IssueKeys {
			err := o.tracker.SetFixVersion(ctx, issue, name)
			if errors.Is(err, jira.ErrIssueNotFound) {
				warn("jira: %s: issue %s not found", name, issue)
				continue
			}
			if err != nil {
				warn("jira: %s: %v", name, err)
			}
		}
		if o.releaseVersion && v.ID != "" && !v.Released {
			if err := o.tracker.ReleaseVersion(ctx, v.ID, date); err != nil {
				warn("jira: %s: %v", name, err)
			}
		}
	}
}

// FixVersionName is the JIRA version a plan's issues are assigned to.
func FixVersionName(p *Plan) string {
	return p.Repository.Name + " " + p.Next.String()
}

func (o *Orchestrator) recordDeployments(ctx context.Context, plans []*Plan, opts Options, warn func(string, ...any)) {
	if opts.Project == nil || opts.Project.CodebaseProject == "" {
		o.logger.Debug("codebase: no project configured, deployments skipped")
		return
	}
	for _, p := range plans {
		if p.Repository.CodebaseRepo == "" {
			continue
		}
		branch := p.TargetRef
		if branch == "HEAD" {
			if b, err := p.Repo.CurrentBranch(); err == nil {
				branch = b
			}
		}
		err := o.deployments.CreateDeployment(ctx, opts.Project.CodebaseProject, p.Repository.CodebaseRepo, codebase.Deployment{
			Branch:      branch,
			Revision:    p.TargetSHA,
			Environment: o.environment,
			Servers:     o.servers,
		})
		if err != nil {
			warn("codebase: %s: %v", p.Repository.Name, err)
		}
	}
}

func projectEntry(project *models.Project, entries []changelog.Entry, date time.Time, issueURL string) changelog.ProjectEntry {
	name := ""
	if project != nil {
		name = project.Name
	} else if len(entries) > 0 {
		name = entries[0].Repository
	}
	return changelog.ProjectEntry{Project: name, Date: date, Entries: entries, IssueURL: issueURL}
}

func (r *Result) warn(logger *slog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}
