package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds local git commands.
	DefaultTimeout = 30 * time.Second

	// PushTimeout bounds commands that talk to a remote.
	PushTimeout = 2 * time.Minute
)

// Compile-time interface compliance check.
var _ Repository = (*gitManager)(nil)

// gitManager implements the Repository interface using the system git binary.
type gitManager struct {
	root   string
	logger *slog.Logger
}

// NewRepository opens a Git repository at the given path.
// Returns ErrNotRepository if the path is not inside a Git repository.
func NewRepository(path string) (*gitManager, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	if _, err := execGit(ctx, absPath, "rev-parse", "--git-dir"); err != nil {
		if _, lookErr := exec.LookPath("git"); lookErr != nil {
			return nil, ErrSystemGitNotFound
		}
		return nil, fmt.Errorf("open repository at %s: %w", absPath, ErrNotRepository)
	}

	root, err := execGit(ctx, absPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("get repository root: %w", err)
	}

	cleanRoot := filepath.Clean(root)
	logger := slog.Default().With("module", "git", "root", cleanRoot)
	logger.Debug("repository opened")

	return &gitManager{
		root:   cleanRoot,
		logger: logger,
	}, nil
}

// Root returns the absolute path to the repository root directory.
func (m *gitManager) Root() string {
	return m.root
}

// CurrentBranch returns the name of the currently checked-out branch.
func (m *gitManager) CurrentBranch() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	out, err := execGit(ctx, m.root, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", ErrDetachedHEAD)
	}
	return out, nil
}

// Status returns the working tree status.
func (m *gitManager) Status() (*GitStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	out, err := execGit(ctx, m.root, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	status := &GitStatus{}
	for line := range strings.SplitSeq(out, "\n") {
		if len(line) < 3 {
			continue
		}
		x, y, file := line[0], line[1], line[3:]

		// Renamed files: "old -> new"
		if idx := strings.Index(file, " -> "); idx >= 0 {
			file = file[idx+4:]
		}

		switch {
		case x == '?' && y == '?':
			status.Untracked = append(status.Untracked, file)
		default:
			if x != ' ' && x != '?' {
				status.Staged = append(status.Staged, file)
			}
			if y == 'M' || y == 'D' {
				status.Modified = append(status.Modified, file)
			}
		}
	}

	// No upstream is common for release branches; counts stay zero.
	aheadBehind, err := execGit(ctx, m.root, "rev-list", "--count", "--left-right", "@{upstream}...HEAD")
	if err == nil {
		if behind, ahead, ok := strings.Cut(aheadBehind, "\t"); ok {
			status.Behind, _ = strconv.Atoi(behind)
			status.Ahead, _ = strconv.Atoi(ahead)
		}
	}

	m.logger.Debug("status retrieved",
		"staged", len(status.Staged),
		"modified", len(status.Modified),
		"untracked", len(status.Untracked),
	)
	return status, nil
}

// IsClean returns true if the working tree has no uncommitted changes.
// Untracked files count as changes.
func (m *gitManager) IsClean() (bool, error) {
	status, err := m.Status()
	if err != nil {
		return false, fmt.Errorf("is clean: %w", err)
	}
	return len(status.Staged) == 0 && len(status.Modified) == 0 && len(status.Untracked) == 0, nil
}

// ResolveRef returns the full commit SHA a reference points at.
func (m *gitManager) ResolveRef(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	out, err := execGit(ctx, m.root, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil || out == "" {
		return "", fmt.Errorf("resolve %q: %w", ref, ErrRefNotFound)
	}
	return out, nil
}

// Head returns the full SHA of HEAD.
func (m *gitManager) Head(ctx context.Context) (string, error) {
	return m.ResolveRef(ctx, "HEAD")
}

// RemoteURL returns the fetch URL of a remote.
func (m *gitManager) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := execGit(ctx, m.root, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("remote %q: %w", remote, err)
	}
	return out, nil
}

// execGit executes a git command in the given directory and returns stdout.
// It sets GIT_TERMINAL_PROMPT=0 and LC_ALL=C for consistent behavior.
func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("system git lookup: %w", ErrSystemGitNotFound)
	}

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"LC_ALL=C",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if len(args) > 0 {
			return "", fmt.Errorf("git %s: %s: %w", args[0], stderrStr, err)
		}
		return "", fmt.Errorf("git: %s: %w", stderrStr, err)
	}

	return strings.TrimRight(stdout.String(), "\n\r"), nil
}
