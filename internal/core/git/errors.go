// Package git wraps the system git binary for the operations a release
// needs: tags, commit ranges and working tree state.
package git

import "errors"

// Sentinel errors for Git operations.
var (
	// ErrNotRepository indicates the path is not inside a Git repository.
	ErrNotRepository = errors.New("git: not a git repository")

	// ErrSystemGitNotFound indicates the git binary is not on PATH.
	ErrSystemGitNotFound = errors.New("git: system git not found")

	// ErrDetachedHEAD indicates HEAD does not point at a branch.
	ErrDetachedHEAD = errors.New("git: HEAD is detached")

	// ErrTagExists indicates the tag name is already taken.
	ErrTagExists = errors.New("git: tag already exists")

	// ErrTagNotFound indicates the tag does not exist.
	ErrTagNotFound = errors.New("git: tag not found")

	// ErrRefNotFound indicates a revision could not be resolved.
	ErrRefNotFound = errors.New("git: reference not found")

	// ErrInvalidTagName indicates a tag name git would refuse.
	ErrInvalidTagName = errors.New("git: invalid tag name")
)
