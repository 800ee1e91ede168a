package release

import "errors"

var (
	// ErrNoCommits is returned when the commit range of a release is empty.
	ErrNoCommits = errors.New("release: no commits since last release")

	// ErrTagExists is returned when the computed tag is already present.
	ErrTagExists = errors.New("release: tag already exists")

	// ErrDirtyWorkingTree is returned when a clean tree is required but
	// the repository has uncommitted changes.
	ErrDirtyWorkingTree = errors.New("release: working tree has uncommitted changes")

	// ErrNoPlans is returned by Execute when called without plans.
	ErrNoPlans = errors.New("release: nothing to release")

	// ErrPushFailed wraps push errors after the local tag was rolled back.
	ErrPushFailed = errors.New("release: push failed")
)
