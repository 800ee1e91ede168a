package release

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relman-dev/relman/internal/codebase"
	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/jira"
	"github.com/relman-dev/relman/internal/teams"
	"github.com/relman-dev/relman/pkg/models"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	runGit(t, dir, "init", "--initial-branch=main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")
	commit(t, dir, "chore: initial commit")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// commit creates an empty-tree-changing commit with message.
func commit(t *testing.T, dir, message string) string {
	t.Helper()
	f := filepath.Join(dir, "log.txt")
	data, _ := os.ReadFile(f)
	if err := os.WriteFile(f, append(data, []byte(message+"\n")...), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "log.txt")
	runGit(t, dir, "commit", "-m", message)
	return runGit(t, dir, "rev-parse", "HEAD")
}

func tag(t *testing.T, dir, name string) {
	t.Helper()
	runGit(t, dir, "tag", "-a", name, "-m", name)
}

func openRepo(t *testing.T, dir string) git.Repository {
	t.Helper()
	repo, err := git.NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository(%s): %v", dir, err)
	}
	return repo
}

type fakeRecorder struct {
	mu       sync.Mutex
	releases []models.Release
	err      error
}

func (f *fakeRecorder) RecordRelease(_ context.Context, rel *models.Release) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	rel.ID = "rel-" + rel.Tag
	f.releases = append(f.releases, *rel)
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []teams.Notice
	err     error
}

func (f *fakeNotifier) Notify(_ context.Context, n teams.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	return f.err
}

type fakeTracker struct {
	mu       sync.Mutex
	versions map[string]*jira.Version
	fixes    map[string][]string
	released []string
	missing  map[string]bool
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		versions: map[string]*jira.Version{},
		fixes:    map[string][]string{},
		missing:  map[string]bool{},
	}
}

func (f *fakeTracker) EnsureVersion(_ context.Context, projectKey, name string) (*jira.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.versions[name]; ok {
		return v, nil
	}
	v := &jira.Version{ID: "id-" + name, Name: name}
	f.versions[name] = v
	return v, nil
}

func (f *fakeTracker) ReleaseVersion(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	return nil
}

func (f *fakeTracker) SetFixVersion(_ context.Context, issueKey, versionName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[issueKey] {
		return jira.ErrIssueNotFound
	}
	f.fixes[issueKey] = append(f.fixes[issueKey], versionName)
	return nil
}

type fakeDeployments struct {
	mu   sync.Mutex
	deps []codebase.Deployment
	keys []string
}

func (f *fakeDeployments) CreateDeployment(_ context.Context, project, repo string, d codebase.Deployment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, project+"/"+repo)
	f.deps = append(f.deps, d)
	return nil
}

type fakeLister struct {
	repos []models.Repository
}

func (f fakeLister) ListRepositories(context.Context, int64) ([]models.Repository, error) {
	return f.repos, nil
}
