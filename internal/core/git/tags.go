package git

import (
	"context"
	"fmt"
	"strings"
)

// Tags lists tag names. When mergedInto is non-empty only tags reachable
// from that revision are returned, so tags on other branches never open
// a release range.
func (m *gitManager) Tags(ctx context.Context, mergedInto string) ([]string, error) {
	args := []string{"tag", "--list"}
	if mergedInto != "" {
		args = append(args, "--merged", mergedInto)
	}
	out, err := execGit(ctx, m.root, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	tags := strings.Split(out, "\n")
	m.logger.Debug("tags listed", "count", len(tags), "merged_into", mergedInto)
	return tags, nil
}

// TagExists reports whether a tag with the given name exists locally.
func (m *gitManager) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := execGit(ctx, m.root, "rev-parse", "--verify", "--quiet", "refs/tags/"+name)
	if err != nil {
		// rev-parse --quiet exits 1 without output for a missing ref.
		return false, nil
	}
	return true, nil
}

// CreateTag creates an annotated tag at ref. An empty message defaults
// to the tag name.
func (m *gitManager) CreateTag(ctx context.Context, name, ref, message string) error {
	if err := checkTagName(ctx, m.root, name); err != nil {
		return err
	}
	exists, err := m.TagExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create tag %q: %w", name, ErrTagExists)
	}

	if ref == "" {
		ref = "HEAD"
	}
	if message == "" {
		message = name
	}

	m.logger.Debug("creating tag", "tag", name, "ref", ref)
	if _, err := execGit(ctx, m.root, "tag", "--annotate", name, "--message", message, ref); err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	m.logger.Info("tag created", "tag", name, "ref", ref)
	return nil
}

// DeleteTag removes a local tag.
func (m *gitManager) DeleteTag(ctx context.Context, name string) error {
	exists, err := m.TagExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("delete tag %q: %w", name, ErrTagNotFound)
	}
	if _, err := execGit(ctx, m.root, "tag", "--delete", name); err != nil {
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	m.logger.Info("tag deleted", "tag", name)
	return nil
}

// PushTag pushes a single tag to remote.
func (m *gitManager) PushTag(ctx context.Context, remote, name string) error {
	ctx, cancel := context.WithTimeout(ctx, PushTimeout)
	defer cancel()

	m.logger.Debug("pushing tag", "tag", name, "remote", remote)
	if _, err := execGit(ctx, m.root, "push", remote, "refs/tags/"+name); err != nil {
		return fmt.Errorf("push tag %q to %s: %w", name, remote, err)
	}
	m.logger.Info("tag pushed", "tag", name, "remote", remote)
	return nil
}

// checkTagName asks git whether name is a valid tag name.
func checkTagName(ctx context.Context, dir, name string) error {
	if name == "" || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, name)
	}
	if _, err := execGit(ctx, dir, "check-ref-format", "refs/tags/"+name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, name)
	}
	return nil
}
