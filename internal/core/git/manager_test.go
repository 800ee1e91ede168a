package git

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestNewRepository_Valid(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository(%q) error: %v", dir, err)
	}
	if got, want := repo.Root(), filepath.Clean(dir); got != want {
		t.Errorf("Root() = %q, want %q", got, want)
	}
}

func TestNewRepository_InvalidPath(t *testing.T) {
	initTestRepo(t) // skips without git
	dir := t.TempDir()

	repo, err := NewRepository(dir)
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("error = %v, want ErrNotRepository", err)
	}
	if repo != nil {
		t.Error("expected nil repo on error")
	}
}

func TestNewRepository_Subdirectory(t *testing.T) {
	dir := initTestRepo(t)
	subdir := filepath.Join(dir, "sub")
	writeTestFile(t, filepath.Join(subdir, "file.txt"), "content\n")

	repo, err := NewRepository(subdir)
	if err != nil {
		t.Fatal(err)
	}
	if repo.Root() != filepath.Clean(dir) {
		t.Errorf("Root() = %q, want %q", repo.Root(), dir)
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	branch, err := repo.CurrentBranch()
	if err != nil || branch != "main" {
		t.Errorf("CurrentBranch() = %q, %v; want main", branch, err)
	}

	runGit(t, dir, "checkout", "--detach", "HEAD")
	if _, err := repo.CurrentBranch(); !errors.Is(err, ErrDetachedHEAD) {
		t.Errorf("detached error = %v, want ErrDetachedHEAD", err)
	}
}

func TestStatusAndIsClean(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	clean, err := repo.IsClean()
	if err != nil || !clean {
		t.Fatalf("IsClean() = %v, %v; want true", clean, err)
	}

	writeTestFile(t, filepath.Join(dir, "README.md"), "changed\n")
	writeTestFile(t, filepath.Join(dir, "new.txt"), "new\n")

	status, err := repo.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(status.Modified, "README.md") {
		t.Errorf("Modified = %v, want README.md", status.Modified)
	}
	if !slices.Contains(status.Untracked, "new.txt") {
		t.Errorf("Untracked = %v, want new.txt", status.Untracked)
	}
	if clean, _ := repo.IsClean(); clean {
		t.Error("IsClean() = true on dirty tree")
	}
}

func TestResolveRef(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	head := runGit(t, dir, "rev-parse", "HEAD")
	got, err := repo.ResolveRef(ctx, "")
	if err != nil || got != head {
		t.Errorf("ResolveRef(\"\") = %q, %v; want %q", got, err, head)
	}
	if got, err := repo.Head(ctx); err != nil || got != head {
		t.Errorf("Head() = %q, %v; want %q", got, err, head)
	}
	if _, err := repo.ResolveRef(ctx, "no-such-ref"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("missing ref error = %v, want ErrRefNotFound", err)
	}
}

func TestRemoteURL(t *testing.T) {
	dir := initTestRepo(t)
	runGit(t, dir, "remote", "add", "origin", "git@example.com:acme/app.git")
	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.RemoteURL(context.Background(), "origin")
	if err != nil || got != "git@example.com:acme/app.git" {
		t.Errorf("RemoteURL = %q, %v", got, err)
	}
	if _, err := repo.RemoteURL(context.Background(), "upstream"); err == nil {
		t.Error("RemoteURL(upstream) should fail")
	}
}
