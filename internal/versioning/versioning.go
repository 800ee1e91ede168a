// Package versioning implements tag-scheme parsing and semantic version
// arithmetic for releases. All functions are pure; they never touch Git.
package versioning

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/relman-dev/relman/pkg/models"
)

// Tag is a Git tag that belongs to a tag-prefix scheme.
type Tag struct {
	Name    string
	Version *semver.Version
}

// IsPrerelease reports whether the tag carries a pre-release suffix.
func (t Tag) IsPrerelease() bool {
	return t.Version != nil && t.Version.Prerelease() != ""
}

// ParseTag reports whether name is a release tag of the given prefix
// scheme. The remainder after the prefix must be a strict semantic version,
// so "v1.2" and "api-v1.2.3" (for prefix "v") are rejected.
func ParseTag(name, prefix string) (Tag, bool) {
	if !strings.HasPrefix(name, prefix) {
		return Tag{}, false
	}
	v, err := semver.StrictNewVersion(strings.TrimPrefix(name, prefix))
	if err != nil {
		return Tag{}, false
	}
	return Tag{Name: name, Version: v}, true
}

// FormatTag joins a prefix and a version into a tag name.
func FormatTag(prefix string, v *semver.Version) string {
	return prefix + v.String()
}

// FilterTags keeps the names that belong to the prefix scheme and returns
// them sorted from the highest to the lowest version.
func FilterTags(names []string, prefix string) []Tag {
	var tags []Tag
	for _, name := range names {
		if t, ok := ParseTag(strings.TrimSpace(name), prefix); ok {
			tags = append(tags, t)
		}
	}
	slices.SortStableFunc(tags, func(a, b Tag) int {
		return b.Version.Compare(a.Version)
	})
	return tags
}

// Latest returns the highest tag. Pre-releases are skipped unless
// includePre is set. tags must be sorted as returned by FilterTags.
func Latest(tags []Tag, includePre bool) (Tag, bool) {
	for _, t := range tags {
		if includePre || !t.IsPrerelease() {
			return t, true
		}
	}
	return Tag{}, false
}

// Next computes the version that follows current for a release type.
// A nil current is treated as 0.0.0. When current is itself a
// pre-release of the version the bump would produce, the pre-release is
// promoted instead of skipping a version: 1.3.0-rc.2 + minor = 1.3.0.
func Next(current *semver.Version, rt models.ReleaseType) (*semver.Version, error) {
	if current == nil {
		current = semver.New(0, 0, 0, "", "")
	}

	pre := current.Prerelease() != ""
	var next semver.Version
	switch rt {
	case models.ReleaseMajor:
		if pre && current.Minor() == 0 && current.Patch() == 0 {
			next = stripPre(current)
		} else {
			next = current.IncMajor()
		}
	case models.ReleaseMinor:
		if pre && current.Patch() == 0 {
			next = stripPre(current)
		} else {
			next = current.IncMinor()
		}
	case models.ReleasePatch:
		// IncPatch drops the pre-release without bumping.
		next = current.IncPatch()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidReleaseType, rt)
	}
	return &next, nil
}

// NextPre computes the next pre-release on channel for the version Next
// would produce: 1.3.0-rc.1, then 1.3.0-rc.2 if rc.1 is already tagged.
// existing may contain tags of any version; only matching ones count.
func NextPre(current *semver.Version, rt models.ReleaseType, channel string, existing []Tag) (*semver.Version, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	target, err := Next(current, rt)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, t := range existing {
		if !sameCore(t.Version, target) {
			continue
		}
		if seq, ok := preSequence(t.Version.Prerelease(), channel); ok && seq > n {
			n = seq
		}
	}

	v, err := target.SetPrerelease(channel + "." + strconv.Itoa(n+1))
	if err != nil {
		return nil, fmt.Errorf("set pre-release %q: %w", channel, err)
	}
	return &v, nil
}

// ResolveBase returns the tag that opens the commit range for a release
// of type rt. In RangeSinceLast mode this is the latest stable tag. In
// RangeSeries mode a major release starts at the latest X.0.0, a minor
// release at the latest X.Y.0 and a patch release at the latest tag; when
// no tag of the series exists it falls back to the latest stable tag.
// ReleaseAuto behaves like RangeSinceLast. ok is false when there is no
// stable tag at all, meaning the range covers the full history.
func ResolveBase(tags []Tag, rt models.ReleaseType, mode models.RangeMode) (Tag, bool) {
	latest, ok := Latest(tags, false)
	if !ok {
		return Tag{}, false
	}
	if mode != models.RangeSeries {
		return latest, true
	}

	var match func(*semver.Version) bool
	switch rt {
	case models.ReleaseMajor:
		match = func(v *semver.Version) bool { return v.Minor() == 0 && v.Patch() == 0 }
	case models.ReleaseMinor:
		match = func(v *semver.Version) bool { return v.Patch() == 0 }
	default:
		return latest, true
	}

	for _, t := range tags {
		if !t.IsPrerelease() && match(t.Version) {
			return t, true
		}
	}
	return latest, true
}

// Compare orders two tag names of the same prefix scheme by version.
// Names outside the scheme sort after those inside it, then by name.
func Compare(a, b, prefix string) int {
	ta, okA := ParseTag(a, prefix)
	tb, okB := ParseTag(b, prefix)
	switch {
	case okA && okB:
		return ta.Version.Compare(tb.Version)
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

func stripPre(v *semver.Version) semver.Version {
	return *semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

func sameCore(a, b *semver.Version) bool {
	return a.Major() == b.Major() && a.Minor() == b.Minor() && a.Patch() == b.Patch()
}

// preSequence extracts N from "<channel>.N".
func preSequence(pre, channel string) (int, bool) {
	rest, ok := strings.CutPrefix(pre, channel+".")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
