package types

import "time"

// ImageState is the persisted per-(image, tag) record. It is mutated only by
// the state reconciler; the store reads and writes it wholesale.
type ImageState struct {
	Image                  string       `json:"image"`
	Tag                    string       `json:"tag"`
	CurrentContentID       string       `json:"current_content_id"`
	CheckedAt              time.Time    `json:"checked_at"`
	PublishedAt            time.Time    `json:"published_at,omitzero"`
	HasUpdate              bool         `json:"has_update"`
	Dismissed              bool         `json:"dismissed"`
	DismissedContentID     string       `json:"dismissed_content_id,omitempty"`
	LatestAvailableVersion string       `json:"latest_available_version,omitempty"`
	TrackingMode           TrackingMode `json:"tracking_mode"`
	RepresentativeTag      string       `json:"representative_tag,omitempty"`
	// IsNew is true only for the check cycle that first created this row.
	IsNew bool `json:"is_new"`
}

// Key is the store key for this row: (imagePath, tag).
func (s ImageState) Key() string {
	return StateKey(s.Image, s.Tag)
}

// StateKey builds the store key for an (imagePath, tag) pair.
func StateKey(image, tag string) string {
	if tag == "" {
		tag = "latest"
	}
	return image + ":" + tag
}
