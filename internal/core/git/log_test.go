package git

import (
	"context"
	"testing"
)

func TestLog_Range(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	runGit(t, dir, "tag", "v1.0.0")
	commitFile(t, dir, "a.txt", "a\n", "feat: add a\n\nLonger body.\n\nRefs: WEB-1")
	last := commitFile(t, dir, "b.txt", "b\n", "fix: fix b")

	commits, err := repo.Log(ctx, "v1.0.0", "HEAD")
	if err != nil {
		t.Fatalf("Log error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("Log returned %d commits, want 2", len(commits))
	}

	// Oldest first.
	if commits[0].Subject() != "feat: add a" {
		t.Errorf("commits[0].Subject() = %q", commits[0].Subject())
	}
	if commits[0].Message != "feat: add a\n\nLonger body.\n\nRefs: WEB-1" {
		t.Errorf("commits[0].Message = %q", commits[0].Message)
	}
	if commits[1].Hash != last {
		t.Errorf("commits[1].Hash = %q, want %q", commits[1].Hash, last)
	}
	if commits[1].Author != "Test" || commits[1].Email != "test@example.com" {
		t.Errorf("author = %q <%q>", commits[1].Author, commits[1].Email)
	}
	if commits[1].Date.IsZero() {
		t.Error("Date not parsed")
	}
}

func TestLog_FullHistory(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	commitFile(t, dir, "a.txt", "a\n", "feat: add a")

	commits, err := repo.Log(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("Log returned %d commits, want 2", len(commits))
	}
	if commits[0].Subject() != "chore: initial commit" {
		t.Errorf("first commit = %q", commits[0].Subject())
	}
}

func TestLog_EmptyRange(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "tag", "v1.0.0")

	commits, err := repo.Log(context.Background(), "v1.0.0", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 0 {
		t.Errorf("Log returned %d commits, want 0", len(commits))
	}
}

func TestParseLog_SkipsMalformed(t *testing.T) {
	out := "abc\x1fA\x1fa@x\x1f2024-01-02T03:04:05Z\x1ffeat: x\x1e\nbroken\x1e"
	commits := parseLog(out)
	if len(commits) != 1 {
		t.Fatalf("parseLog returned %d commits, want 1", len(commits))
	}
	if commits[0].Date.Year() != 2024 {
		t.Errorf("Date = %v", commits[0].Date)
	}
}
