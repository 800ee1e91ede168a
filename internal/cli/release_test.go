package cli

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/relman-dev/relman/internal/release"
	"github.com/relman-dev/relman/pkg/models"
)

func TestPlanCmd_SingleRepository(t *testing.T) {
	dir := initRepo(t)
	tag(t, dir, "v1.0.0")
	commit(t, dir, "feat(api): add orders endpoint")
	commit(t, dir, "fix: handle empty cart ABC-12")

	out, err := executeCommand(t, t.TempDir(), "plan", "--path", dir)
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	for _, want := range []string{"v1.1.0", "minor", "1.0.0", "ABC-12"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
	if got := tagList(t, dir); !slices.Equal(got, []string{"v1.0.0"}) {
		t.Errorf("plan must not create tags, got %v", got)
	}
}

func TestPlanCmd_ExplicitTypeAndPrefix(t *testing.T) {
	dir := initRepo(t)
	tag(t, dir, "api-v2.3.1")
	tag(t, dir, "v9.0.0")
	commit(t, dir, "fix: retry uploads")

	out, err := executeCommand(t, t.TempDir(), "plan", "major", "--path", dir, "--prefix", "api-v")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "api-v3.0.0") {
		t.Errorf("plan output missing api-v3.0.0:\n%s", out)
	}
}

func TestPlanCmd_IssueKeysLimitedToConfiguredProject(t *testing.T) {
	dir := initRepo(t)
	tag(t, dir, "v1.0.0")
	commit(t, dir, "fix: handle UTF-8 and SHA-256 names for ABC-12")

	home := t.TempDir()
	writeSection(t, home, "integrations.yaml", "integrations:\n  jira:\n    project_key: abc\n")

	out, err := executeCommand(t, home, "plan", "--path", dir)
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ABC-12") {
		t.Errorf("plan output missing ABC-12:\n%s", out)
	}
	for _, unwanted := range []string{"UTF-8", "SHA-256"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("plan output should not list %s as an issue:\n%s", unwanted, out)
		}
	}
}

func TestPlanCmd_NoCommits(t *testing.T) {
	dir := initRepo(t)
	tag(t, dir, "v1.0.0")

	_, err := executeCommand(t, t.TempDir(), "plan", "--path", dir)
	if !errors.Is(err, release.ErrNoCommits) {
		t.Fatalf("err = %v, want ErrNoCommits", err)
	}
}

func TestPlanCmd_InvalidArguments(t *testing.T) {
	dir := initRepo(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "release type", args: []string{"plan", "huge", "--path", dir}},
		{name: "range mode", args: []string{"plan", "--path", dir, "--range-mode", "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(t, t.TempDir(), tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReleaseCmd_DryRun(t *testing.T) {
	dir := initRepo(t)
	tag(t, dir, "v0.1.0")
	commit(t, dir, "feat: first feature")

	out, err := executeCommand(t, t.TempDir(), "release", "--path", dir, "--dry-run")
	if err != nil {
		t.Fatalf("release: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "v0.2.0") {
		t.Errorf("unexpected dry-run output:\n%s", out)
	}
	if !strings.Contains(out, "### Features") {
		t.Errorf("dry run should print release notes:\n%s", out)
	}
	if got := tagList(t, dir); !slices.Equal(got, []string{"v0.1.0"}) {
		t.Errorf("dry run created tags: %v", got)
	}
}

func TestReleaseCmd_HeadlessRequiresYes(t *testing.T) {
	dir := initRepo(t)
	commit(t, dir, "fix: something")

	_, err := executeCommand(t, t.TempDir(), "release", "patch", "--path", dir)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("err = %v, want confirmation error", err)
	}
	if got := tagList(t, dir); len(got) != 0 {
		t.Errorf("tags created without confirmation: %v", got)
	}
}

func TestReleaseCmd_CreatesTagAndRecordsHistory(t *testing.T) {
	dir := initRepo(t)
	home := t.TempDir()
	tag(t, dir, "v1.0.0")
	commit(t, dir, "fix: correct rounding")

	out, err := executeCommand(t, home, "release", "patch", "--path", dir, "--yes", "--write-changelog")
	if err != nil {
		t.Fatalf("release: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Released") {
		t.Errorf("missing success card:\n%s", out)
	}
	if diff := cmp.Diff([]string{"v1.0.0", "v1.0.1"}, tagList(t, dir)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	msg := runGit(t, dir, "tag", "-l", "--format=%(contents)", "v1.0.1")
	if !strings.Contains(msg, "correct rounding") {
		t.Errorf("tag message should list commits, got:\n%s", msg)
	}
	data, err := os.ReadFile(filepath.Join(dir, "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("changelog not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Changelog") || !strings.Contains(string(data), "## v1.0.1") {
		t.Errorf("unexpected changelog:\n%s", data)
	}

	out, err = executeCommand(t, home, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "v1.0.1") || !strings.Contains(out, "patch") {
		t.Errorf("history should list the release:\n%s", out)
	}
}

func TestReleaseCmd_NotifiesTeams(t *testing.T) {
	var (
		mu    sync.Mutex
		cards []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var card map[string]any
		if err := json.Unmarshal(body, &card); err != nil {
			t.Errorf("webhook body is not JSON: %v", err)
		}
		mu.Lock()
		cards = append(cards, card)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := initRepo(t)
	home := t.TempDir()
	writeSection(t, home, "integrations.yaml", "integrations:\n  teams:\n    enabled: true\n    webhook_url: "+srv.URL+"\n")
	commit(t, dir, "feat: launch")

	out, err := executeCommand(t, home, "release", "--path", dir, "--yes", "--notify")
	if err != nil {
		t.Fatalf("release: %v\n%s", err, out)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(cards) != 1 {
		t.Fatalf("webhook calls = %d, want 1", len(cards))
	}
	title, _ := cards[0]["title"].(string)
	want := filepath.Base(dir) + " v0.1.0 released"
	if title != want {
		t.Errorf("card title = %q, want %q", title, want)
	}
}

func TestReleaseCmd_TeamsFailureIsWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad card", http.StatusBadRequest)
	}))
	defer srv.Close()

	dir := initRepo(t)
	home := t.TempDir()
	writeSection(t, home, "integrations.yaml", "integrations:\n  teams:\n    enabled: true\n    webhook_url: "+srv.URL+"\n")
	commit(t, dir, "fix: patch it")

	out, err := executeCommand(t, home, "release", "patch", "--path", dir, "--yes", "--notify")
	if err != nil {
		t.Fatalf("integration failure must not fail the release: %v", err)
	}
	if !strings.Contains(out, "warnings") || !strings.Contains(out, "teams") {
		t.Errorf("expected a teams warning:\n%s", out)
	}
	if got := tagList(t, dir); !slices.Equal(got, []string{"v0.0.1"}) {
		t.Errorf("tag should be kept, got %v", got)
	}
}

func TestReleaseCmd_UnconfiguredIntegrationIsWarning(t *testing.T) {
	dir := initRepo(t)
	home := t.TempDir()
	writeSection(t, home, "integrations.yaml", "integrations:\n  teams:\n    enabled: true\n    webhook_env: RELMAN_TEST_TEAMS_HOOK\n")
	t.Setenv("RELMAN_TEST_TEAMS_HOOK", "")
	commit(t, dir, "fix: quiet")

	out, err := executeCommand(t, home, "release", "patch", "--path", dir, "--yes", "--notify")
	if err != nil {
		t.Fatalf("release: %v\n%s", err, out)
	}
	if !strings.Contains(out, "warnings") || !strings.Contains(out, "teams: not run") {
		t.Errorf("expected the skipped integration in the warnings:\n%s", out)
	}
}

func TestNeedsReplan(t *testing.T) {
	set := &planSet{Plans: []*release.Plan{{Type: models.ReleaseMinor}, {Type: models.ReleasePatch}}}
	if got := set.suggested(); got != models.ReleaseMinor {
		t.Errorf("suggested() = %q, want minor", got)
	}
	if !needsReplan(set, models.ReleaseMinor) {
		t.Error("mixed plan types should be replanned")
	}
	set.Plans[1].Type = models.ReleaseMinor
	if needsReplan(set, models.ReleaseMinor) {
		t.Error("plans already of the chosen type need no replan")
	}
}

func TestConfirmTitle(t *testing.T) {
	single := &planSet{Plans: []*release.Plan{{Repository: models.Repository{Name: "api"}, Tag: "v1.2.0"}}}
	if got := confirmTitle(single); got != "Release api v1.2.0?" {
		t.Errorf("confirmTitle(single) = %q", got)
	}
	multi := &planSet{
		Project: &models.Project{Name: "shop"},
		Plans:   []*release.Plan{{}, {}},
	}
	if got := confirmTitle(multi); got != "Release 2 repositories of shop?" {
		t.Errorf("confirmTitle(multi) = %q", got)
	}
}
