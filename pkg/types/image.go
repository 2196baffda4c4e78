package types

import "strings"

// RegistryKind identifies which registry adapter serves an image reference.
type RegistryKind string

const (
	RegistryHub    RegistryKind = "hub"
	RegistryGHCR   RegistryKind = "ghcr"
	RegistryQuay   RegistryKind = "quay"
	RegistryCustom RegistryKind = "custom"
)

// IsValid reports whether the kind is one of the known registry kinds.
func (k RegistryKind) IsValid() bool {
	switch k {
	case RegistryHub, RegistryGHCR, RegistryQuay, RegistryCustom:
		return true
	}
	return false
}

// ImageReference is the classified form of a raw image path. It is derived,
// never persisted.
type ImageReference struct {
	Kind         RegistryKind `json:"kind"`
	Namespace    string       `json:"namespace"`
	Image        string       `json:"image"`
	CustomDomain string       `json:"custom_domain,omitempty"`
	FullPath     string       `json:"full_path"`
}

// Repository returns the namespace/image pair as a registry repository path.
func (r ImageReference) Repository() string {
	if r.Namespace == "" {
		return r.Image
	}
	return r.Namespace + "/" + r.Image
}

// MonitoredImage is a single image the user asked us to watch. The list of
// monitored images is owned by the configuration; the engine only reads it.
type MonitoredImage struct {
	Name      string `yaml:"name" json:"name"`
	ImagePath string `yaml:"image" json:"image"`
	Tag       string `yaml:"tag,omitempty" json:"tag,omitempty"`
	// Registry optionally pins the registry kind, bypassing the domain
	// heuristic for namespaces that contain dots.
	Registry RegistryKind `yaml:"registry,omitempty" json:"registry,omitempty"`
}

// EffectiveTag returns the tracked tag, defaulting to "latest".
func (m MonitoredImage) EffectiveTag() string {
	if m.Tag == "" {
		return "latest"
	}
	return m.Tag
}

// Key is the reconciliation identity for this image: (imagePath, tag).
func (m MonitoredImage) Key() string {
	return StateKey(m.ImagePath, m.EffectiveTag())
}

// IsValid verifies the image has the required fields.
func (m MonitoredImage) IsValid() bool {
	return strings.TrimSpace(m.ImagePath) != ""
}
