package git

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Log returns the commits in from..to, oldest first, with full messages.
// An empty from selects the whole history of to; an empty to means HEAD.
func (m *gitManager) Log(ctx context.Context, from, to string) ([]Commit, error) {
	if to == "" {
		to = "HEAD"
	}
	rev := to
	if from != "" {
		rev = from + ".." + to
	}

	m.logger.Debug("reading commit range", "range", rev)

	out, err := execGit(ctx, m.root, "log", "--reverse",
		"--format=%H"+fieldSep+"%an"+fieldSep+"%ae"+fieldSep+"%aI"+fieldSep+"%B"+recordSep,
		rev, "--",
	)
	if err != nil {
		// A repository without commits has no HEAD to log.
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, fmt.Errorf("log %s: %w", rev, err)
	}

	commits := parseLog(out)
	m.logger.Debug("commit range read", "range", rev, "count", len(commits))
	return commits, nil
}

// parseLog decodes records produced by the Log format string.
func parseLog(out string) []Commit {
	var commits []Commit
	for record := range strings.SplitSeq(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		parts := strings.SplitN(record, fieldSep, 5)
		if len(parts) < 5 {
			continue
		}

		date, err := time.Parse(time.RFC3339, parts[3])
		if err != nil {
			date = time.Time{}
		}

		commits = append(commits, Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Email:   parts[2],
			Date:    date,
			Message: strings.TrimSpace(parts[4]),
		})
	}
	return commits
}
