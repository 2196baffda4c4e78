package types

import "context"

// RegistryAdapter resolves content identity and published tags for one
// registry kind. Implementations must bound every call with a short timeout
// and fall back to a synthetic degraded identity when the registry is
// unreachable, rather than blocking the orchestrator.
type RegistryAdapter interface {
	// FetchContentID resolves the content identity of (repository, tag).
	FetchContentID(ctx context.Context, ref ImageReference, tag string) (ContentIdentity, error)

	// FetchAllTags lists the tags published for the repository. An empty
	// list means tag discovery is unsupported; callers must not treat it
	// as an error.
	FetchAllTags(ctx context.Context, ref ImageReference) ([]string, error)

	// Name returns the registry host this adapter speaks to.
	Name() string
}

// StateStore persists the image state collection keyed by (imagePath, tag).
// The store is the single writer; it serializes access internally.
type StateStore interface {
	Load() ([]ImageState, error)
	Save(states []ImageState) error
	Get(image, tag string) (ImageState, bool, error)
	Upsert(state ImageState) error
	Remove(image, tag string) error
}

// NotificationClient delivers a rendered message to one channel.
type NotificationClient interface {
	SendNotification(ctx context.Context, message string) error
	Name() string
}

// ReportFormatter renders the persisted state collection for output.
type ReportFormatter interface {
	Format(states []ImageState) (string, error)
	FormatName() string
}
