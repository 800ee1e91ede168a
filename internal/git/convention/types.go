// Package convention parses, classifies and validates commit messages
// written in the Conventional Commits style.
package convention

import "regexp"

// Commit is a parsed commit message.
type Commit struct {
	// Hash is copied from the Git commit and is empty for bare messages.
	Hash string

	Type    string
	Scope   string
	Subject string
	Body    string
	Footers []Footer

	// Breaking is set by a "!" after the type/scope or a BREAKING CHANGE footer.
	Breaking bool
	// Bang records the "!" marker in the header.
	Bang bool
	// BreakingNote is the text of the BREAKING CHANGE footer, if any.
	BreakingNote string

	// Conventional is false when the header does not follow the convention;
	// Subject then holds the whole header.
	Conventional bool
	Merge        bool
	// Revert marks a header written by git revert; Subject is the
	// reverted header.
	Revert bool
}

// Header returns the first line of the message as written.
func (c Commit) Header() string {
	if !c.Conventional {
		return c.Subject
	}
	if c.Revert {
		return `Revert "` + c.Subject + `"`
	}
	h := c.Type
	if c.Scope != "" {
		h += "(" + c.Scope + ")"
	}
	if c.Bang {
		h += "!"
	}
	return h + ": " + c.Subject
}

// Footer is a git-trailer style "Token: value" or "Token #value" line.
type Footer struct {
	Token string
	Value string
}

// Convention describes the rules a commit header is linted against.
type Convention struct {
	Name      string
	Pattern   *regexp.Regexp
	Types     []string
	Scopes    []string
	MaxLength int
}

// ViolationType categorizes a lint failure.
type ViolationType string

const (
	ViolationRequired     ViolationType = "required"
	ViolationMaxLength    ViolationType = "max_length"
	ViolationPattern      ViolationType = "pattern"
	ViolationInvalidType  ViolationType = "invalid_type"
	ViolationInvalidScope ViolationType = "invalid_scope"
)

// Violation is a single lint failure.
type Violation struct {
	Type       ViolationType
	Field      string
	Expected   string
	Actual     string
	Suggestion string
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid      bool
	Message    string
	Violations []Violation
}

// Section is one heading of a changelog with the commits filed under it.
type Section struct {
	Title   string
	Commits []Commit
}

// Group maps commit types onto a section title.
type Group struct {
	Title string
	Types []string
}
