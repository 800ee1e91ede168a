package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/relman-dev/relman/internal/changelog"
	"github.com/relman-dev/relman/pkg/models"
)

var releaseDate = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func planFor(t *testing.T, dir string, info models.Repository) *Plan {
	t.Helper()
	plan, err := NewPlanner().Plan(context.Background(), openRepo(t, dir), info, Request{Type: models.ReleaseAuto, Prefix: "v"})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	return plan
}

func repoWithFeature(t *testing.T) string {
	t.Helper()
	dir := initRepo(t)
	tag(t, dir, "v1.0.0")
	commit(t, dir, "feat: export reports ABC-1")
	return dir
}

func TestExecute_DryRun(t *testing.T) {
	t.Parallel()

	dir := repoWithFeature(t)
	rec := &fakeRecorder{}
	o := NewOrchestrator(changelog.NewRenderer(""), WithRecorder(rec))

	res, err := o.Execute(context.Background(), []*Plan{planFor(t, dir, models.Repository{Name: "api"})}, Options{
		DryRun: true, Push: true, Remote: "origin", WriteChangelog: true, ChangelogFile: "CHANGELOG.md", Date: releaseDate,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.DryRun || len(res.Releases) != 1 || res.Releases[0].Tag != "v1.1.0" {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.Notes, "## v1.1.0 (2026-03-01)") {
		t.Errorf("notes = %q", res.Notes)
	}
	if out := runGit(t, dir, "tag", "--list", "v1.1.0"); out != "" {
		t.Errorf("dry run created tag %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "CHANGELOG.md")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote changelog: %v", err)
	}
	if len(rec.releases) != 0 {
		t.Errorf("dry run recorded %d releases", len(rec.releases))
	}
}

func TestExecute_TagPushAndRecord(t *testing.T) {
	t.Parallel()

	dir := repoWithFeature(t)
	remote := t.TempDir()
	runGit(t, remote, "init", "--bare")
	runGit(t, dir, "remote", "add", "origin", remote)

	rec := &fakeRecorder{}
	o := NewOrchestrator(changelog.NewRenderer(""), WithRecorder(rec))
	plan := planFor(t, dir, models.Repository{ID: 4, Name: "api"})

	res, err := o.Execute(context.Background(), []*Plan{plan}, Options{
		Push: true, Remote: "origin", WriteChangelog: true, ChangelogFile: "CHANGELOG.md", Date: releaseDate,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}

	if got := runGit(t, dir, "rev-list", "-n", "1", "v1.1.0"); got != plan.TargetSHA {
		t.Errorf("tag points at %s, want %s", got, plan.TargetSHA)
	}
	if msg := runGit(t, dir, "tag", "--list", "--format=%(contents)", "v1.1.0"); !strings.HasPrefix(msg, "Release v1.1.0") {
		t.Errorf("tag message = %q", msg)
	}
	if out := runGit(t, remote, "tag", "--list"); out != "v1.0.0\nv1.1.0" && out != "v1.1.0" {
		t.Errorf("remote tags = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("changelog not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Changelog\n\n## v1.1.0") {
		t.Errorf("changelog = %q", data)
	}

	if len(rec.releases) != 1 {
		t.Fatalf("recorded %d releases, want 1", len(rec.releases))
	}
	got := rec.releases[0]
	want := models.Release{
		ID: "rel-v1.1.0", RepositoryID: 4, RepoName: "api", Tag: "v1.1.0", Version: "1.1.0",
		PreviousTag: "v1.0.0", Type: models.ReleaseMinor, CommitSHA: plan.TargetSHA, CommitCount: 1,
		Changelog: got.Changelog, Pushed: true, CreatedAt: releaseDate,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recorded release mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_PushFailureRollsBack(t *testing.T) {
	t.Parallel()

	dir := repoWithFeature(t)
	o := NewOrchestrator(changelog.NewRenderer(""))

	_, err := o.Execute(context.Background(), []*Plan{planFor(t, dir, models.Repository{Name: "api"})}, Options{
		Push: true, Remote: "nowhere", Date: releaseDate,
	})
	if !errors.Is(err, ErrPushFailed) {
		t.Fatalf("Execute() error = %v, want ErrPushFailed", err)
	}
	if out := runGit(t, dir, "tag", "--list", "v1.1.0"); out != "" {
		t.Errorf("tag %q left behind after failed push", out)
	}
}

func TestExecute_Integrations(t *testing.T) {
	t.Parallel()

	api := repoWithFeature(t)
	web := initRepo(t)
	commit(t, web, "fix: layout ABC-2 ABC-404")

	notifier := &fakeNotifier{}
	tracker := newFakeTracker()
	tracker.missing["ABC-404"] = true
	deployments := &fakeDeployments{}

	o := NewOrchestrator(changelog.NewRenderer(""),
		WithNotifier(notifier),
		WithIssueTracker(tracker, "", true),
		WithDeployments(deployments, "production", ""),
	)
	project := &models.Project{ID: 9, Name: "shop", JiraKey: "ABC", CodebaseProject: "shop"}
	plans := []*Plan{
		planFor(t, api, models.Repository{Name: "api", CodebaseRepo: "api-repo"}),
		planFor(t, web, models.Repository{Name: "web"}),
	}

	res, err := o.Execute(context.Background(), plans, Options{Notify: true, Project: project, Date: releaseDate})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if diff := cmp.Diff([]string{"jira: web 0.0.1: issue ABC-404 not found"}, res.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(res.Notes, "# shop release (2026-03-01)") {
		t.Errorf("notes = %q", res.Notes)
	}
	for _, r := range res.Releases {
		if r.ProjectID != 9 {
			t.Errorf("release %s project = %d, want 9", r.Tag, r.ProjectID)
		}
	}

	if len(notifier.notices) != 1 || notifier.notices[0].Title != "shop released" || len(notifier.notices[0].Facts) != 2 {
		t.Errorf("notices = %+v", notifier.notices)
	}

	wantFixes := map[string][]string{"ABC-1": {"api 1.1.0"}, "ABC-2": {"web 0.0.1"}}
	if diff := cmp.Diff(wantFixes, tracker.fixes); diff != "" {
		t.Errorf("fix versions mismatch (-want +got):\n%s", diff)
	}
	if len(tracker.released) != 2 {
		t.Errorf("released versions = %v", tracker.released)
	}

	if diff := cmp.Diff([]string{"shop/api-repo"}, deployments.keys); diff != "" {
		t.Errorf("deployments mismatch (-want +got):\n%s", diff)
	}
	if d := deployments.deps[0]; d.Branch != "main" || d.Revision != plans[0].TargetSHA || d.Environment != "production" {
		t.Errorf("deployment = %+v", d)
	}
}

func TestExecute_IntegrationFailuresAreWarnings(t *testing.T) {
	t.Parallel()

	dir := repoWithFeature(t)
	o := NewOrchestrator(changelog.NewRenderer(""),
		WithNotifier(&fakeNotifier{err: errors.New("webhook gone")}),
		WithRecorder(&fakeRecorder{err: errors.New("disk full")}),
		WithDisabledIntegration("jira", errors.New("token missing")),
	)

	res, err := o.Execute(context.Background(), []*Plan{planFor(t, dir, models.Repository{Name: "api"})}, Options{Notify: true, Date: releaseDate})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	want := []string{
		"api: release not recorded: disk full",
		"jira: not run: token missing",
		"teams: webhook gone",
	}
	if diff := cmp.Diff(want, res.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if out := runGit(t, dir, "tag", "--list", "v1.1.0"); out != "v1.1.0" {
		t.Errorf("tag missing after integration failure: %q", out)
	}
}

func TestExecute_NoPlans(t *testing.T) {
	t.Parallel()

	_, err := NewOrchestrator(changelog.NewRenderer("")).Execute(context.Background(), nil, Options{})
	if !errors.Is(err, ErrNoPlans) {
		t.Errorf("Execute(nil) error = %v, want ErrNoPlans", err)
	}
}
