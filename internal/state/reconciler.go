// Package state folds fresh check results into the durable per-image state,
// implementing the update/acknowledge/dismiss state machine.
package state

import (
	"github.com/user/registry-watch/pkg/types"
	"github.com/user/registry-watch/pkg/version"
)

// Reconcile merges a check result against the previously persisted state for
// the same (image, tag) pair and returns the next state. prev is nil when the
// pair has never been seen.
//
// The rules, in order:
//   - An unseen pair becomes a baseline row (isNew=true) and is never
//     announced as already out of date, except under version tracking where
//     a pinned tag older than the newest published version is flagged
//     immediately.
//   - A row whose currentContentId is empty has never had a real check; the
//     first one only establishes the baseline, with the same version-mode
//     exception.
//   - Degraded results against an established baseline only bump checkedAt;
//     last-known state is preserved rather than folding a synthetic identity.
//   - Otherwise the update flag follows identity change (latest mode) or
//     version ordering (version mode), honoring dismissals until the
//     observed identity or version moves away from what was dismissed.
func Reconcile(prev *types.ImageState, r types.CheckResult) types.ImageState {
	if prev == nil {
		next := newBaseline(r)
		next.IsNew = true
		if r.TrackingMode == types.TrackingVersion {
			flagStaleVersionPin(&next, r)
		}
		return next
	}

	next := *prev
	// isNew survives exactly one cycle: it clears on the first
	// reconciliation that observes the pre-existing row.
	next.IsNew = false
	next.CheckedAt = r.CheckedAt

	if r.Failed() {
		return next
	}
	if r.Degraded && next.CurrentContentID != "" {
		return next
	}

	next.TrackingMode = r.TrackingMode
	next.RepresentativeTag = r.RepresentativeTag
	next.LatestAvailableVersion = r.LatestAvailableVersion
	if !r.PublishedAt.IsZero() {
		next.PublishedAt = r.PublishedAt
	}

	if next.CurrentContentID == "" {
		next.CurrentContentID = r.LatestContentID
		next.HasUpdate = false
		if r.TrackingMode == types.TrackingVersion {
			flagStaleVersionPin(&next, r)
		}
		return next
	}

	if r.TrackingMode == types.TrackingVersion && reconcileVersion(&next, r) {
		return next
	}
	reconcileIdentity(&next, r)
	return next
}

// Dismiss suppresses the currently known update. The dismissed identity (or
// version) is recorded so re-checks observing the same thing stay quiet; the
// dismissal lifts automatically once something different shows up.
func Dismiss(s types.ImageState) types.ImageState {
	s.Dismissed = true
	if s.TrackingMode == types.TrackingVersion && s.LatestAvailableVersion != "" {
		s.DismissedContentID = s.LatestAvailableVersion
	} else {
		s.DismissedContentID = s.CurrentContentID
	}
	s.HasUpdate = false
	return s
}

// Reset clears the update flag without recording a dismissal, so the next
// check re-derives it from scratch.
func Reset(s types.ImageState) types.ImageState {
	s.HasUpdate = false
	return s
}

// newBaseline builds a fresh state row from the first observation of a pair.
func newBaseline(r types.CheckResult) types.ImageState {
	return types.ImageState{
		Image:                  r.Image,
		Tag:                    r.Tag,
		CurrentContentID:       r.LatestContentID,
		CheckedAt:              r.CheckedAt,
		PublishedAt:            r.PublishedAt,
		TrackingMode:           r.TrackingMode,
		LatestAvailableVersion: r.LatestAvailableVersion,
		RepresentativeTag:      r.RepresentativeTag,
	}
}

// reconcileIdentity applies latest-mode rules: the tracked identity advances
// to whatever was observed, and the update flag is sticky once raised until
// dismissed.
func reconcileIdentity(next *types.ImageState, r types.CheckResult) {
	changed := next.CurrentContentID != r.LatestContentID
	switch {
	case next.Dismissed && r.LatestContentID != next.DismissedContentID:
		next.Dismissed = false
		next.DismissedContentID = ""
		next.HasUpdate = true
	case next.Dismissed:
		next.HasUpdate = false
	default:
		next.HasUpdate = next.HasUpdate || changed
	}
	next.CurrentContentID = r.LatestContentID
}

// reconcileVersion applies version-mode rules: the pinned tag's own version
// is compared against the newest published one. Returns false when either
// side does not parse, degrading to identity comparison.
func reconcileVersion(next *types.ImageState, r types.CheckResult) bool {
	pinned, ok := version.Parse(next.Tag)
	if !ok || r.LatestAvailableVersion == "" {
		return false
	}
	latest, ok := version.Parse(r.LatestAvailableVersion)
	if !ok {
		return false
	}

	newer := latest.GreaterThan(pinned)
	switch {
	case next.Dismissed && next.DismissedContentID != r.LatestAvailableVersion:
		next.Dismissed = false
		next.DismissedContentID = ""
		next.HasUpdate = newer
	case next.Dismissed:
		next.HasUpdate = false
	default:
		next.HasUpdate = newer
	}
	next.CurrentContentID = r.LatestContentID
	return true
}

// flagStaleVersionPin raises the update flag on a brand-new baseline when
// the pinned version is already behind the newest published one. Unlike
// latest mode, the comparison here is against the tag's own declared
// version, not an unknown prior baseline.
func flagStaleVersionPin(next *types.ImageState, r types.CheckResult) {
	pinned, ok := version.Parse(next.Tag)
	if !ok || r.LatestAvailableVersion == "" {
		return
	}
	if latest, ok := version.Parse(r.LatestAvailableVersion); ok && latest.GreaterThan(pinned) {
		next.HasUpdate = true
	}
}
