package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/git/convention"
	"github.com/relman-dev/relman/internal/versioning"
	"github.com/relman-dev/relman/pkg/models"
)

// DefaultConcurrency bounds how many repositories are planned at once.
const DefaultConcurrency = 4

// OpenFunc opens the Git repository at path.
type OpenFunc func(path string) (git.Repository, error)

// Planner computes release plans.
type Planner struct {
	open        OpenFunc
	repos       RepositoryLister
	concurrency int
	logger      *slog.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithRepositories sets the source of project repositories for PlanProject.
func WithRepositories(l RepositoryLister) PlannerOption {
	return func(p *Planner) { p.repos = l }
}

// WithOpener replaces how repositories are opened.
func WithOpener(open OpenFunc) PlannerOption {
	return func(p *Planner) { p.open = open }
}

// WithConcurrency bounds parallel planning in PlanProject.
func WithConcurrency(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPlanner creates a Planner that opens repositories with the system git.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		open: func(path string) (git.Repository, error) {
			return git.NewRepository(path)
		},
		concurrency: DefaultConcurrency,
		logger:      slog.Default().With("module", "release"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the release of a single repository. info names the
// repository and may carry its own tag prefix.
func (pl *Planner) Plan(ctx context.Context, repo git.Repository, info models.Repository, req Request) (*Plan, error) {
	if req.Type == "" {
		req.Type = models.ReleaseAuto
	}
	if req.Type != models.ReleaseAuto && !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", versioning.ErrInvalidReleaseType, req.Type)
	}
	if info.Name == "" {
		info.Name = filepath.Base(repo.Root())
	}
	if info.Path == "" {
		info.Path = repo.Root()
	}
	prefix := info.TagPrefix
	if prefix == "" {
		prefix = req.Prefix
	}
	target := req.TargetRef
	if target == "" {
		target = "HEAD"
	}
	log := pl.logger.With("repo", info.Name)

	if req.RequireClean {
		clean, err := repo.IsClean()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Name, err)
		}
		if !clean {
			return nil, fmt.Errorf("%s: %w", info.Name, ErrDirtyWorkingTree)
		}
	}

	sha, err := repo.ResolveRef(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}

	names, err := repo.Tags(ctx, sha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	tags := versioning.FilterTags(names, prefix)

	plan := &Plan{
		Repository: info,
		Repo:       repo,
		Requested:  req.Type,
		Type:       req.Type,
		Prefix:     prefix,
		TargetRef:  target,
		TargetSHA:  sha,
	}
	var currentVersion *semver.Version
	if cur, ok := versioning.Latest(tags, false); ok {
		plan.Current = &cur
		currentVersion = cur.Version
	}

	// Auto releases look at everything since the latest release to
	// decide the bump, then resolve the range like an explicit type.
	if req.Type == models.ReleaseAuto {
		commits, err := pl.commits(ctx, repo, plan.Current, sha)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Name, err)
		}
		initial := currentVersion == nil || currentVersion.Major() == 0
		plan.Type = convention.SuggestBump(commits, initial)
		log.Debug("release type suggested", "type", plan.Type, "commits", len(commits))
	}

	if base, ok := versioning.ResolveBase(tags, plan.Type, req.RangeMode); ok {
		plan.Base = &base
	}

	if req.Pre {
		plan.Next, err = versioning.NextPre(currentVersion, plan.Type, req.PreChannel, tags)
	} else {
		plan.Next, err = versioning.Next(currentVersion, plan.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	plan.Tag = versioning.FormatTag(prefix, plan.Next)

	exists, err := repo.TagExists(ctx, plan.Tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w: %s", info.Name, ErrTagExists, plan.Tag)
	}

	plan.Commits, err = pl.commits(ctx, repo, plan.Base, sha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	if len(plan.Commits) == 0 && !req.AllowEmpty {
		return nil, fmt.Errorf("%s: %w", info.Name, ErrNoCommits)
	}

	plan.Sections = convention.Classify(plan.Commits, req.Classify)
	plan.IssueKeys = issueKeys(plan.Commits, req.IssueProjects)

	log.Info("release planned",
		"type", plan.Type,
		"current", plan.CurrentVersion(),
		"base", plan.PreviousTag(),
		"tag", plan.Tag,
		"commits", len(plan.Commits),
	)
	return plan, nil
}

// PlanProject plans every repository of a stored project concurrently.
// Plans are returned in repository order. Repositories without new
// commits are reported as skipped; if all are skipped ErrNoCommits is
// returned.
func (pl *Planner) PlanProject(ctx context.Context, project *models.Project, req Request) (*ProjectPlan, error) {
	if pl.repos == nil {
		return nil, errors.New("release: planner has no repository source")
	}
	repos, err := pl.repos.ListRepositories(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project.Name, err)
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("project %s has no repositories: %w", project.Name, ErrNoPlans)
	}

	plans := make([]*Plan, len(repos))
	skipped := make([]error, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.concurrency)
	for i, info := range repos {
		g.Go(func() error {
			repo, err := pl.open(info.Path)
			if err != nil {
				return fmt.Errorf("%s: %w", info.Name, err)
			}
			plan, err := pl.Plan(gctx, repo, info, req)
			if errors.Is(err, ErrNoCommits) {
				skipped[i] = err
				return nil
			}
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("project %s: %w", project.Name, err)
	}

	result := &ProjectPlan{Project: project}
	for i := range repos {
		if skipped[i] != nil {
			pl.logger.Info("repository skipped", "project", project.Name, "repo", repos[i].Name, "reason", skipped[i])
			result.Skipped = append(result.Skipped, Skipped{Repository: repos[i], Reason: skipped[i]})
			continue
		}
		result.Plans = append(result.Plans, plans[i])
	}
	if len(result.Plans) == 0 {
		return nil, fmt.Errorf("project %s: %w", project.Name, ErrNoCommits)
	}
	return result, nil
}

func (pl *Planner) commits(ctx context.Context, repo git.Repository, base *versioning.Tag, sha string) ([]convention.Commit, error) {
	from := ""
	if base != nil {
		from = base.Name
	}
	raw, err := repo.Log(ctx, from, sha)
	if err != nil {
		return nil, err
	}
	commits := make([]convention.Commit, 0, len(raw))
	for _, c := range raw {
		parsed := convention.Parse(c.Message)
		parsed.Hash = c.Hash
		commits = append(commits, parsed)
	}
	return commits, nil
}

func issueKeys(commits []convention.Commit, projects []string) []string {
	var keys []string
	for _, c := range commits {
		for _, k := range convention.IssueKeys(c.Header()+"\n"+c.Body+"\n"+footerText(c.Footers), projects...) {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func footerText(footers []convention.Footer) string {
	var b strings.Builder
	for _, f := range footers {
		b.WriteString(f.Token + ": " + f.Value + "\n")
	}
	return b.String()
}
