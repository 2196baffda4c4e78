package types

import "time"

// TrackingMode is the policy for deciding "newer": identity change for
// latest-style tags, semantic version ordering for pinned versions.
type TrackingMode string

const (
	TrackingLatest  TrackingMode = "latest"
	TrackingVersion TrackingMode = "version"
)

// ContentIdentity is what a registry adapter resolved for one (repo, tag):
// an opaque digest-like identifier plus an optional publish timestamp.
// Degraded marks a synthetic stand-in produced when the registry could not
// be reached; it is stable within a day bucket but is not ground truth.
type ContentIdentity struct {
	ID          string
	PublishedAt time.Time
	Degraded    bool
}

// CheckResult is the ephemeral outcome of checking a single monitored image.
type CheckResult struct {
	Image                  string       `json:"image"`
	Tag                    string       `json:"tag"`
	LatestContentID        string       `json:"latest_content_id"`
	CheckedAt              time.Time    `json:"checked_at"`
	PublishedAt            time.Time    `json:"published_at,omitzero"`
	TrackingMode           TrackingMode `json:"tracking_mode"`
	LatestAvailableVersion string       `json:"latest_available_version,omitempty"`
	AvailableTags          []string     `json:"available_tags,omitempty"`
	RepresentativeTag      string       `json:"representative_tag,omitempty"`
	// Degraded marks a result built from a synthetic fallback identity.
	Degraded bool `json:"degraded,omitempty"`
	// Error is set when the check failed outright (no usable result).
	Error string `json:"error,omitempty"`
}

// Failed reports whether the check produced no usable result.
func (r CheckResult) Failed() bool {
	return r.Error != ""
}

// Key is the reconciliation identity for this result: (imagePath, tag).
func (r CheckResult) Key() string {
	return StateKey(r.Image, r.Tag)
}
