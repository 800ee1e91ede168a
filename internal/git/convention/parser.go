package convention

import (
	"regexp"
	"strings"
)

// headerPattern matches "type(scope)!: subject".
var headerPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)(?:\(([^()\r\n]*)\))?(!)?: +(\S.*)$`)

// footerPattern matches "Token: value", "Token #value" and the
// space-containing BREAKING CHANGE token.
var footerPattern = regexp.MustCompile(`^(BREAKING CHANGE|BREAKING-CHANGE|[A-Za-z][A-Za-z0-9-]*)(?:: | #)(.*)$`)

// revertPattern matches the header written by git revert.
var revertPattern = regexp.MustCompile(`^Revert "(.+)"$`)

// mergePattern matches the headers git and hosting services write for
// merge commits, including octopus merges and "Merge commit '<sha>'".
var mergePattern = regexp.MustCompile(`^Merge (?:branch|branches|remote-tracking branch|remote-tracking branches|tag|tags|commit|pull request|request|'|")`)

// Parse splits a raw commit message into its conventional parts.
// It never fails: a header that does not follow the convention yields
// Conventional == false with the header kept as Subject.
func Parse(message string) Commit {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	header, rest, _ := strings.Cut(strings.TrimLeft(message, "\n"), "\n")
	header = strings.TrimSpace(header)

	c := Commit{Merge: isMerge(header)}

	if m := headerPattern.FindStringSubmatch(header); m != nil {
		c.Conventional = true
		c.Type = strings.ToLower(m[1])
		c.Scope = strings.TrimSpace(m[2])
		c.Bang = m[3] == "!"
		c.Breaking = c.Bang
		c.Subject = strings.TrimSpace(m[4])
	} else if m := revertPattern.FindStringSubmatch(header); m != nil {
		c.Conventional = true
		c.Revert = true
		c.Type = "revert"
		c.Subject = m[1]
	} else {
		c.Subject = header
	}

	c.Body, c.Footers = splitFooters(strings.Trim(rest, "\n"))
	for _, f := range c.Footers {
		if f.Token == "BREAKING CHANGE" || f.Token == "BREAKING-CHANGE" {
			c.Breaking = true
			c.BreakingNote = f.Value
		}
	}
	return c
}

// splitFooters separates the trailing footer paragraph from the body.
// The last paragraph is a footer block only if its first line is a footer.
func splitFooters(text string) (string, []Footer) {
	if text == "" {
		return "", nil
	}
	paragraphs := strings.Split(text, "\n\n")
	last := paragraphs[len(paragraphs)-1]
	lines := strings.Split(last, "\n")
	if !footerPattern.MatchString(lines[0]) {
		return strings.TrimSpace(text), nil
	}

	var footers []Footer
	for _, line := range lines {
		if m := footerPattern.FindStringSubmatch(line); m != nil {
			footers = append(footers, Footer{Token: m[1], Value: strings.TrimSpace(m[2])})
			continue
		}
		// Continuation line of a multi-line footer value.
		if n := len(footers); n > 0 {
			footers[n-1].Value = strings.TrimSpace(footers[n-1].Value + "\n" + line)
		}
	}

	body := strings.Join(paragraphs[:len(paragraphs)-1], "\n\n")
	return strings.TrimSpace(body), footers
}

func isMerge(header string) bool {
	return mergePattern.MatchString(header)
}

func isRevert(header string) bool {
	return revertPattern.MatchString(header)
}
