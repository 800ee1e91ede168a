package models

import (
	"fmt"
	"strings"
)

// ReleaseType is the semantic version component a release increments.
type ReleaseType string

const (
	ReleaseMajor ReleaseType = "major"
	ReleaseMinor ReleaseType = "minor"
	ReleasePatch ReleaseType = "patch"

	// ReleaseAuto picks major, minor or patch from the commits in range.
	ReleaseAuto ReleaseType = "auto"
)

// ValidReleaseTypes returns all concrete release types, largest first.
func ValidReleaseTypes() []ReleaseType {
	return []ReleaseType{ReleaseMajor, ReleaseMinor, ReleasePatch}
}

// IsValid reports whether t is major, minor or patch.
func (t ReleaseType) IsValid() bool {
	switch t {
	case ReleaseMajor, ReleaseMinor, ReleasePatch:
		return true
	}
	return false
}

// Rank orders release types: major > minor > patch. Unknown types rank 0.
func (t ReleaseType) Rank() int {
	switch t {
	case ReleaseMajor:
		return 3
	case ReleaseMinor:
		return 2
	case ReleasePatch:
		return 1
	}
	return 0
}

// ParseReleaseType parses a release type name, case-insensitively.
// "auto" is accepted; the empty string maps to ReleaseAuto.
func ParseReleaseType(s string) (ReleaseType, error) {
	t := ReleaseType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return ReleaseAuto, nil
	}
	if t == ReleaseAuto || t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid release type %q: must be one of major, minor, patch, auto", s)
}

// RangeMode selects the tag that opens a release's commit range.
type RangeMode string

const (
	// RangeSinceLast starts the range at the latest stable tag.
	RangeSinceLast RangeMode = "since-last"

	// RangeSeries starts the range at the previous release of the same
	// level: X.0.0 for major, X.Y.0 for minor, the latest tag for patch.
	RangeSeries RangeMode = "series"
)

// IsValid reports whether m is a known range mode.
func (m RangeMode) IsValid() bool {
	return m == RangeSinceLast || m == RangeSeries
}
