// Package version decides how an image tag is tracked and orders the
// semantic versions a registry publishes.
package version

import (
	"regexp"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/user/registry-watch/pkg/types"
)

// UnknownTag is the representative-tag marker used when a registry exposes
// no tags at all.
const UnknownTag = "unknown"

var (
	// Tags tracked by content identity rather than version ordering.
	latestStyleTags = map[string]struct{}{
		"latest": {},
		"stable": {},
		"main":   {},
	}

	// A pinned version tag: optional v prefix, exactly MAJOR.MINOR.PATCH,
	// optionally followed by a -suffix (e.g. v1.2.3-alpine).
	versionTagRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-.+)?$`)

	// Strict MAJOR.MINOR.PATCH after prefix/suffix stripping.
	strictSemverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	// Partial numeric versions that Compare pads with zeros.
	twoPartRegex = regexp.MustCompile(`^\d+\.\d+$`)
	onePartRegex = regexp.MustCompile(`^\d+$`)
)

// TrackingModeFor decides how a tag should be tracked. latest, stable and
// main follow content identity; tags shaped like a semantic version follow
// version ordering; anything else defaults to identity tracking.
func TrackingModeFor(tag string) types.TrackingMode {
	if _, ok := latestStyleTags[strings.ToLower(tag)]; ok {
		return types.TrackingLatest
	}
	if versionTagRegex.MatchString(tag) {
		return types.TrackingVersion
	}
	return types.TrackingLatest
}

// Parse extracts a strict MAJOR.MINOR.PATCH semantic version from a tag.
// A leading v and any -suffix are stripped first; anything that is not
// exactly three integer components after that is rejected.
func Parse(tag string) (*semver.Version, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	if !strictSemverRegex.MatchString(s) {
		return nil, false
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Compare orders two version strings component-wise, left to right, with
// missing trailing components read as zero. Returns -1, 0 or 1. Strings
// that do not normalize to a numeric version fall back to lexicographic
// comparison.
func Compare(a, b string) int {
	av, aok := parsePadded(a)
	bv, bok := parsePadded(b)
	if aok && bok {
		return av.Compare(bv)
	}
	return strings.Compare(a, b)
}

// parsePadded normalizes a tag and pads partial numeric versions, so that
// "1.2" compares as "1.2.0" and "19" as "19.0.0".
func parsePadded(tag string) (*semver.Version, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strictSemverRegex.MatchString(s):
	case twoPartRegex.MatchString(s):
		s += ".0"
	case onePartRegex.MatchString(s):
		s += ".0.0"
	default:
		return nil, false
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

// FindLatest parses every tag, drops the unparsable ones and returns the
// highest version in canonical MAJOR.MINOR.PATCH form. The second return is
// false when nothing parses.
func FindLatest(tags []string) (string, bool) {
	var best *semver.Version
	for _, tag := range tags {
		v, ok := Parse(tag)
		if !ok {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", false
	}
	return best.String(), true
}

// SelectRepresentativeTag picks the tag that best describes "the newest thing
// available" from an unordered tag set. Precedence: the tag textually equal
// to latestVersion, then latest, stable, main, then any tag whose parsed
// version equals latestVersion, then the first tag. An empty set yields the
// literal marker "unknown".
func SelectRepresentativeTag(tags []string, latestVersion string) string {
	if len(tags) == 0 {
		return UnknownTag
	}
	if latestVersion != "" {
		for _, tag := range tags {
			if tag == latestVersion {
				return tag
			}
		}
	}
	for _, preferred := range []string{"latest", "stable", "main"} {
		for _, tag := range tags {
			if tag == preferred {
				return tag
			}
		}
	}
	if latestVersion != "" {
		for _, tag := range tags {
			if v, ok := Parse(tag); ok && v.String() == latestVersion {
				return tag
			}
		}
	}
	return tags[0]
}
