// Package changelog renders release notes, annotated tag messages and
// notification bodies from text/template files, and maintains
// CHANGELOG.md files on disk.
package changelog

import (
	"time"

	"github.com/relman-dev/relman/internal/git/convention"
)

// Built-in template names.
const (
	TemplateChangelog = "changelog.md.tmpl"
	TemplateProject   = "project.md.tmpl"
	TemplateTag       = "tag.txt.tmpl"
	TemplateTeams     = "teams.md.tmpl"
)

// Entry is the data for one repository's release notes.
type Entry struct {
	Repository  string
	Tag         string
	PreviousTag string
	Version     string
	Date        time.Time
	CommitCount int
	Sections    []convention.Section
	IssueKeys   []string
	// IssueURL is prefixed to issue keys to build links; empty disables links.
	IssueURL string
}

// ProjectEntry aggregates the entries of every repository released together.
type ProjectEntry struct {
	Project  string
	Date     time.Time
	Entries  []Entry
	IssueURL string
}

// IssueKeys returns the union of the entries' issue keys in first-seen order.
func (p ProjectEntry) IssueKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, e := range p.Entries {
		for _, k := range e.IssueKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}
