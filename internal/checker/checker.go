// Package checker runs single-image and batch registry checks.
package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/registry-watch/internal/reference"
	"github.com/user/registry-watch/pkg/types"
	"github.com/user/registry-watch/pkg/version"
)

// DefaultPacing is the delay between consecutive image checks within a
// batch. Sequential with pacing on purpose: parallel fan-out burns through
// anonymous registry rate limits.
const DefaultPacing = time.Second

// AdapterProvider hands out the registry adapter for a classified reference.
type AdapterProvider interface {
	ForReference(ref types.ImageReference) (types.RegistryAdapter, error)
}

// Service runs end-to-end checks: classify, fetch, analyze.
type Service struct {
	adapters AdapterProvider
	logger   *slog.Logger
	pacing   time.Duration
}

// NewService creates a checker. pacing <= 0 selects the default.
func NewService(adapters AdapterProvider, logger *slog.Logger, pacing time.Duration) *Service {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &Service{
		adapters: adapters,
		logger:   logger,
		pacing:   pacing,
	}
}

// CheckOne runs a single image check end-to-end. Adapter errors surface as
// a failed CheckResult plus the error; degraded fallback identities come
// back as results, not errors.
func (s *Service) CheckOne(ctx context.Context, img types.MonitoredImage) (types.CheckResult, error) {
	tag := img.EffectiveTag()
	result := types.CheckResult{
		Image:     img.ImagePath,
		Tag:       tag,
		CheckedAt: time.Now(),
	}

	ref := reference.ClassifyMonitored(img)
	adapter, err := s.adapters.ForReference(ref)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	identity, err := adapter.FetchContentID(ctx, ref, tag)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.LatestContentID = identity.ID
	result.PublishedAt = identity.PublishedAt
	result.Degraded = identity.Degraded

	tags, err := adapter.FetchAllTags(ctx, ref)
	if err != nil {
		// Tag discovery is best-effort; the identity check already
		// succeeded.
		s.logger.Warn("tag discovery failed", "image", img.ImagePath, "registry", adapter.Name(), "error", err)
		tags = nil
	}
	result.AvailableTags = tags

	result.TrackingMode = version.TrackingModeFor(tag)
	if result.TrackingMode == types.TrackingVersion {
		if latest, ok := version.FindLatest(tags); ok {
			result.LatestAvailableVersion = latest
		} else if pinned, ok := version.Parse(tag); ok {
			// Tag enumeration yielded nothing usable; the tracked
			// tag's own version is the best candidate we have.
			result.LatestAvailableVersion = pinned.String()
		}
	}
	result.RepresentativeTag = version.SelectRepresentativeTag(tags, result.LatestAvailableVersion)

	s.logger.Debug("image checked",
		"image", img.ImagePath,
		"tag", tag,
		"mode", result.TrackingMode,
		"content_id", result.LatestContentID,
		"degraded", result.Degraded)

	return result, nil
}

// CheckAll checks every monitored image sequentially with inter-request
// pacing. A single image's failure never aborts the batch: failed checks are
// returned as failed results alongside the successful ones. Cancelling the
// context stops the batch after the in-flight image.
func (s *Service) CheckAll(ctx context.Context, images []types.MonitoredImage) []types.CheckResult {
	results := make([]types.CheckResult, 0, len(images))

	for i, img := range images {
		if i > 0 {
			select {
			case <-ctx.Done():
				s.logger.Info("batch check cancelled", "checked", len(results), "total", len(images))
				return results
			case <-time.After(s.pacing):
			}
		}

		result, err := s.CheckOne(ctx, img)
		if err != nil {
			s.logger.Error("image check failed", "image", img.ImagePath, "tag", img.EffectiveTag(), "error", err)
		}
		results = append(results, result)

		if ctx.Err() != nil {
			s.logger.Info("batch check cancelled", "checked", len(results), "total", len(images))
			return results
		}
	}

	return results
}
