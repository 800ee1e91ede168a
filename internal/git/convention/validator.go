package convention

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ConventionalCommits returns the built-in Conventional Commits lint rules.
func ConventionalCommits() *Convention {
	return &Convention{
		Name:      "conventional-commits",
		Pattern:   regexp.MustCompile(`^[a-z]+(\([^()]+\))?!?: .+`),
		Types:     []string{"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert"},
		MaxLength: 100,
	}
}

// Validate checks a commit message against a convention.
// If conv is nil the message is considered valid.
func Validate(message string, conv *Convention) ValidationResult {
	if conv == nil {
		return ValidationResult{Valid: true, Message: message}
	}

	result := ValidationResult{Message: message}

	// Extract first line (header) for validation.
	header := strings.SplitN(message, "\n", 2)[0]
	header = strings.TrimSpace(header)

	if header == "" {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationRequired,
			Field:    "header",
			Expected: "non-empty commit message",
			Actual:   "",
		})
		result.Valid = false
		return result
	}

	// Merge and revert commits are generated by git and exempt.
	if isMerge(header) || isRevert(header) {
		result.Valid = true
		return result
	}

	if conv.MaxLength > 0 && len(header) > conv.MaxLength {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationMaxLength,
			Field:    "header",
			Expected: fmt.Sprintf("max %d characters", conv.MaxLength),
			Actual:   fmt.Sprintf("%d characters", len(header)),
		})
	}

	if !conv.Pattern.MatchString(header) {
		result.Violations = append(result.Violations, Violation{
			Type:       ViolationPattern,
			Field:      "header",
			Expected:   conv.Pattern.String(),
			Actual:     header,
			Suggestion: suggestFix(header),
		})
	} else {
		validateSemantics(Parse(header), conv, &result)
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// validateSemantics checks type and scope against allowed lists.
func validateSemantics(c Commit, conv *Convention, result *ValidationResult) {
	if len(conv.Types) > 0 && c.Type != "" && !slices.Contains(conv.Types, c.Type) {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationInvalidType,
			Field:    "type",
			Expected: strings.Join(conv.Types, ", "),
			Actual:   c.Type,
		})
	}

	// Scopes are only checked when the convention restricts them.
	if len(conv.Scopes) > 0 && c.Scope != "" && !slices.Contains(conv.Scopes, c.Scope) {
		result.Violations = append(result.Violations, Violation{
			Type:     ViolationInvalidScope,
			Field:    "scope",
			Expected: strings.Join(conv.Scopes, ", "),
			Actual:   c.Scope,
		})
	}
}

// suggestFix guesses a conforming header from free-form text.
func suggestFix(header string) string {
	lower := strings.ToLower(header)

	suggestedType := "chore"
	switch {
	case strings.Contains(lower, "fix") || strings.Contains(lower, "bug"):
		suggestedType = "fix"
	case strings.Contains(lower, "add") || strings.Contains(lower, "feat") || strings.Contains(lower, "new"):
		suggestedType = "feat"
	case strings.Contains(lower, "doc") || strings.Contains(lower, "readme"):
		suggestedType = "docs"
	case strings.Contains(lower, "test"):
		suggestedType = "test"
	case strings.Contains(lower, "refactor") || strings.Contains(lower, "clean"):
		suggestedType = "refactor"
	}

	desc := strings.TrimSpace(header)
	if len(desc) > 0 {
		desc = strings.ToLower(desc[:1]) + desc[1:]
	}

	return suggestedType + ": " + desc
}
