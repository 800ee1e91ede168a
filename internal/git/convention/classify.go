package convention

import (
	"regexp"
	"slices"
	"strings"

	"github.com/relman-dev/relman/pkg/models"
)

// Section titles that are not driven by configuration.
const (
	BreakingTitle = "Breaking Changes"
	OtherTitle    = "Other"
)

// HiddenTypes are left out of changelogs unless explicitly included.
var HiddenTypes = []string{"chore", "ci", "test", "tests", "style", "build"}

// DefaultGroups returns the built-in type-to-section mapping in display order.
func DefaultGroups() []Group {
	return []Group{
		{Title: "Features", Types: []string{"feat", "feature"}},
		{Title: "Bug Fixes", Types: []string{"fix", "bugfix"}},
		{Title: "Performance", Types: []string{"perf"}},
		{Title: "Reverts", Types: []string{"revert"}},
		{Title: "Documentation", Types: []string{"docs"}},
		{Title: "Refactoring", Types: []string{"refactor"}},
	}
}

// ClassifyOptions tunes Classify.
type ClassifyOptions struct {
	Groups        []Group
	IncludeHidden bool
}

// Classify files commits under changelog sections. Breaking changes come
// first, then the configured groups in order, then Other. Merge commits
// are dropped, as are hidden types unless IncludeHidden is set. Empty
// sections are omitted. Commit order within a section is preserved.
func Classify(commits []Commit, opts ClassifyOptions) []Section {
	groups := opts.Groups
	if groups == nil {
		groups = DefaultGroups()
	}

	byType := make(map[string]int)
	for i, g := range groups {
		for _, t := range g.Types {
			byType[strings.ToLower(t)] = i
		}
	}

	breaking := Section{Title: BreakingTitle}
	grouped := make([]Section, len(groups))
	for i, g := range groups {
		grouped[i].Title = g.Title
	}
	other := Section{Title: OtherTitle}

	for _, c := range commits {
		if c.Merge {
			continue
		}
		if c.Breaking {
			breaking.Commits = append(breaking.Commits, c)
			continue
		}
		if idx, ok := byType[c.Type]; ok && c.Conventional {
			grouped[idx].Commits = append(grouped[idx].Commits, c)
			continue
		}
		if c.Conventional && slices.Contains(HiddenTypes, c.Type) && !opts.IncludeHidden {
			continue
		}
		other.Commits = append(other.Commits, c)
	}

	var out []Section
	for _, s := range append(append([]Section{breaking}, grouped...), other) {
		if len(s.Commits) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SuggestBump derives the release type from commits: any breaking change
// is a major release, any feature a minor one, anything else a patch.
// During initial development (major version 0) breaking changes only
// bump the minor version.
func SuggestBump(commits []Commit, initialDevelopment bool) models.ReleaseType {
	rt := models.ReleasePatch
	for _, c := range commits {
		switch {
		case c.Breaking:
			if initialDevelopment {
				rt = models.ReleaseMinor
				continue
			}
			return models.ReleaseMajor
		case c.Conventional && (c.Type == "feat" || c.Type == "feature"):
			rt = models.ReleaseMinor
		}
	}
	return rt
}

// issueKeyPattern matches JIRA issue keys such as ABC-123.
var issueKeyPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9_]+)-([1-9][0-9]*)\b`)

// IssueKeys extracts issue keys from a message in order of first
// appearance, without duplicates. When projects is non-empty only keys
// of those projects are returned.
func IssueKeys(message string, projects ...string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range issueKeyPattern.FindAllStringSubmatch(message, -1) {
		if len(projects) > 0 && !slices.Contains(projects, m[1]) {
			continue
		}
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		keys = append(keys, m[0])
	}
	return keys
}
