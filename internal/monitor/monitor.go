// Package monitor ties the checker, reconciler, store and notifier together
// into the operations the CLI and HTTP API expose.
package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/user/registry-watch/internal/checker"
	"github.com/user/registry-watch/internal/state"
	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// Notifier delivers messages about states that just gained an update.
type Notifier interface {
	NotifyUpdates(ctx context.Context, updated []types.ImageState) error
}

// Service runs checks and folds their results into the persisted state.
// A single mutex serializes batch and single-image runs: the store's
// read-modify-write pattern is not safe under concurrent writers.
type Service struct {
	checker  *checker.Service
	store    types.StateStore
	notifier Notifier
	logger   *slog.Logger

	mu sync.Mutex
}

// New creates the monitor service. notifier may be nil.
func New(chk *checker.Service, store types.StateStore, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		checker:  chk,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// RunAll checks every monitored image, reconciles and persists each result,
// and notifies about images that transitioned into "update available".
// Per-image failures are logged and skipped; they never abort the batch.
func (s *Service) RunAll(ctx context.Context, images []types.MonitoredImage) ([]types.ImageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.checker.CheckAll(ctx, images)

	var updated []types.ImageState
	states := make([]types.ImageState, 0, len(results))
	for _, result := range results {
		next, transition, err := s.applyResult(result)
		if err != nil {
			s.logger.Error("persisting state failed", "image", result.Image, "tag", result.Tag, "error", err)
			continue
		}
		states = append(states, next)
		if transition {
			updated = append(updated, next)
		}
	}

	s.notify(ctx, updated)

	s.logger.Info("batch check finished",
		"images", len(images),
		"persisted", len(states),
		"new_updates", len(updated))

	return states, nil
}

// RunSingle checks one monitored image by its position in the configured
// list. An out-of-range index is ErrImageNotFound.
func (s *Service) RunSingle(ctx context.Context, images []types.MonitoredImage, index int) (types.CheckResult, error) {
	if index < 0 || index >= len(images) {
		return types.CheckResult{}, errors.Wrapf("monitor.RunSingle", errors.ErrImageNotFound, "index %d", index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.checker.CheckOne(ctx, images[index])
	if err != nil {
		return result, err
	}

	next, transition, err := s.applyResult(result)
	if err != nil {
		return result, err
	}
	if transition {
		s.notify(ctx, []types.ImageState{next})
	}
	return result, nil
}

// Dismiss suppresses the current update for one (image, tag).
func (s *Service) Dismiss(image, tag string) (types.ImageState, error) {
	return s.mutateState("monitor.Dismiss", image, tag, state.Dismiss)
}

// Reset clears the update flag for one (image, tag) without recording a
// dismissal.
func (s *Service) Reset(image, tag string) (types.ImageState, error) {
	return s.mutateState("monitor.Reset", image, tag, state.Reset)
}

// States returns the full persisted collection.
func (s *Service) States() ([]types.ImageState, error) {
	return s.store.Load()
}

// applyResult reconciles one result against the stored row and persists the
// outcome. The second return reports a transition into "update available".
func (s *Service) applyResult(result types.CheckResult) (types.ImageState, bool, error) {
	prevState, found, err := s.store.Get(result.Image, result.Tag)
	if err != nil {
		return types.ImageState{}, false, err
	}

	var prev *types.ImageState
	if found {
		prev = &prevState
	}

	next := state.Reconcile(prev, result)
	if err := s.store.Upsert(next); err != nil {
		return types.ImageState{}, false, err
	}

	transition := next.HasUpdate && (!found || !prevState.HasUpdate)
	return next, transition, nil
}

func (s *Service) notify(ctx context.Context, updated []types.ImageState) {
	if s.notifier == nil || len(updated) == 0 {
		return
	}
	if err := s.notifier.NotifyUpdates(ctx, updated); err != nil {
		s.logger.Error("sending notifications failed", "error", err)
	}
}

func (s *Service) mutateState(op, image, tag string, mutate func(types.ImageState) types.ImageState) (types.ImageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found, err := s.store.Get(image, tag)
	if err != nil {
		return types.ImageState{}, err
	}
	if !found {
		return types.ImageState{}, errors.Wrapf(op, errors.ErrStateNotFound, "%s:%s", image, tag)
	}

	next := mutate(current)
	if err := s.store.Upsert(next); err != nil {
		return types.ImageState{}, err
	}
	return next, nil
}
