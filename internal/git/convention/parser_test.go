package convention

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Commit
	}{
		{
			name:    "simple feature",
			message: "feat: add login",
			want:    Commit{Type: "feat", Subject: "add login", Conventional: true},
		},
		{
			name:    "scope and bang",
			message: "fix(api)!: reject empty tokens",
			want:    Commit{Type: "fix", Scope: "api", Subject: "reject empty tokens", Breaking: true, Bang: true, Conventional: true},
		},
		{
			name:    "uppercase type is normalized",
			message: "Docs: update README",
			want:    Commit{Type: "docs", Subject: "update README", Conventional: true},
		},
		{
			name:    "free form",
			message: "Update dependencies",
			want:    Commit{Subject: "Update dependencies"},
		},
		{
			name:    "merge commit",
			message: "Merge pull request #12 from acme/feature",
			want:    Commit{Subject: "Merge pull request #12 from acme/feature", Merge: true},
		},
		{
			name:    "octopus merge",
			message: "Merge branches 'a' and 'b'",
			want:    Commit{Subject: "Merge branches 'a' and 'b'", Merge: true},
		},
		{
			name:    "git revert",
			message: "Revert \"feat(api): add export\"\n\nThis reverts commit 1a2b3c4.",
			want: Commit{
				Type: "revert", Subject: "feat(api): add export", Conventional: true, Revert: true,
				Body: "This reverts commit 1a2b3c4.",
			},
		},
		{
			name: "body and footers",
			message: "feat(ui): dark mode\n\nAdds a toggle to the settings page.\n\n" +
				"Refs: WEB-12\nBREAKING CHANGE: theme variables were renamed\nReviewed-by: Sam",
			want: Commit{
				Type: "feat", Scope: "ui", Subject: "dark mode", Conventional: true,
				Body: "Adds a toggle to the settings page.",
				Footers: []Footer{
					{Token: "Refs", Value: "WEB-12"},
					{Token: "BREAKING CHANGE", Value: "theme variables were renamed"},
					{Token: "Reviewed-by", Value: "Sam"},
				},
				Breaking:     true,
				BreakingNote: "theme variables were renamed",
			},
		},
		{
			name:    "hash footer",
			message: "fix: crash on start\n\nCloses #42",
			want: Commit{
				Type: "fix", Subject: "crash on start", Conventional: true,
				Footers: []Footer{{Token: "Closes", Value: "42"}},
			},
		},
		{
			name:    "body without footers",
			message: "fix: typo\n\nfirst paragraph\n\nsecond paragraph",
			want:    Commit{Type: "fix", Subject: "typo", Conventional: true, Body: "first paragraph\n\nsecond paragraph"},
		},
		{
			name:    "crlf",
			message: "perf: faster diff\r\n\r\nBREAKING-CHANGE: output order changed",
			want: Commit{
				Type: "perf", Subject: "faster diff", Conventional: true,
				Footers:  []Footer{{Token: "BREAKING-CHANGE", Value: "output order changed"}},
				Breaking: true, BreakingNote: "output order changed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.message)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.message, diff)
			}
		})
	}
}

func TestCommitHeader(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"feat(cli): add flag", "feat(cli): add flag"},
		{"fix!: drop v1 API", "fix!: drop v1 API"},
		{"feat!: drop v1\n\nBREAKING CHANGE: v1 routes are gone", "feat!: drop v1"},
		{"feat: drop v1\n\nBREAKING CHANGE: v1 routes are gone", "feat: drop v1"},
		{"Revert \"fix: cache keys\"", "Revert \"fix: cache keys\""},
		{"just words", "just words"},
	}
	for _, tt := range tests {
		if got := Parse(tt.message).Header(); got != tt.want {
			t.Errorf("Header() = %q, want %q", got, tt.want)
		}
	}
}
