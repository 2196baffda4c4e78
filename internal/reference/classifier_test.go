package reference

import (
	"testing"

	"github.com/user/registry-watch/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		imagePath  string
		wantKind   types.RegistryKind
		wantNS     string
		wantImage  string
		wantDomain string
	}{
		{
			name:      "official single-segment image",
			imagePath: "nginx",
			wantKind:  types.RegistryHub,
			wantNS:    "library",
			wantImage: "nginx",
		},
		{
			name:      "hub namespaced image",
			imagePath: "grafana/grafana",
			wantKind:  types.RegistryHub,
			wantNS:    "grafana",
			wantImage: "grafana",
		},
		{
			name:      "explicit docker.io prefix",
			imagePath: "docker.io/library/redis",
			wantKind:  types.RegistryHub,
			wantNS:    "library",
			wantImage: "redis",
		},
		{
			name:      "docker.io single segment gets library",
			imagePath: "docker.io/redis",
			wantKind:  types.RegistryHub,
			wantNS:    "library",
			wantImage: "redis",
		},
		{
			name:      "ghcr image",
			imagePath: "ghcr.io/home-assistant/home-assistant",
			wantKind:  types.RegistryGHCR,
			wantNS:    "home-assistant",
			wantImage: "home-assistant",
		},
		{
			name:      "ghcr deep path keeps full namespace",
			imagePath: "ghcr.io/immich-app/immich/server",
			wantKind:  types.RegistryGHCR,
			wantNS:    "immich-app/immich",
			wantImage: "server",
		},
		{
			name:      "quay image",
			imagePath: "quay.io/prometheus/node-exporter",
			wantKind:  types.RegistryQuay,
			wantNS:    "prometheus",
			wantImage: "node-exporter",
		},
		{
			name:       "custom domain with TLD",
			imagePath:  "lscr.io/linuxserver/sonarr",
			wantKind:   types.RegistryCustom,
			wantDomain: "lscr.io",
			wantNS:     "linuxserver",
			wantImage:  "sonarr",
		},
		{
			name:       "registry with port",
			imagePath:  "registry.local:5000/team/app",
			wantKind:   types.RegistryCustom,
			wantDomain: "registry.local:5000",
			wantNS:     "team",
			wantImage:  "app",
		},
		{
			name:       "localhost registry",
			imagePath:  "localhost/dev/app",
			wantKind:   types.RegistryCustom,
			wantDomain: "localhost",
			wantNS:     "dev",
			wantImage:  "app",
		},
		{
			name:       "three-label hostname",
			imagePath:  "registry.gitlab.example/group/project",
			wantKind:   types.RegistryCustom,
			wantDomain: "registry.gitlab.example",
			wantNS:     "group",
			wantImage:  "project",
		},
		{
			name:      "dotless first segment stays hub",
			imagePath: "someorg/someimage",
			wantKind:  types.RegistryHub,
			wantNS:    "someorg",
			wantImage: "someimage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Classify(tt.imagePath)
			if ref.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ref.Kind, tt.wantKind)
			}
			if ref.Namespace != tt.wantNS {
				t.Errorf("Namespace = %q, want %q", ref.Namespace, tt.wantNS)
			}
			if ref.Image != tt.wantImage {
				t.Errorf("Image = %q, want %q", ref.Image, tt.wantImage)
			}
			if ref.CustomDomain != tt.wantDomain {
				t.Errorf("CustomDomain = %q, want %q", ref.CustomDomain, tt.wantDomain)
			}
			if ref.FullPath != tt.imagePath {
				t.Errorf("FullPath = %q, want %q", ref.FullPath, tt.imagePath)
			}
		})
	}
}

func TestClassifyMonitoredOverride(t *testing.T) {
	// A namespace with a dot trips the domain heuristic; the explicit
	// registry kind pins it back to hub.
	img := types.MonitoredImage{
		ImagePath: "my.org/tool",
		Registry:  types.RegistryHub,
	}
	ref := ClassifyMonitored(img)
	if ref.Kind != types.RegistryHub {
		t.Errorf("Kind = %q, want %q", ref.Kind, types.RegistryHub)
	}

	// The reverse: force custom on a path the heuristic reads as hub.
	img = types.MonitoredImage{
		ImagePath: "internal/app",
		Registry:  types.RegistryCustom,
	}
	ref = ClassifyMonitored(img)
	if ref.Kind != types.RegistryCustom {
		t.Fatalf("Kind = %q, want %q", ref.Kind, types.RegistryCustom)
	}
	if ref.CustomDomain != "internal" {
		t.Errorf("CustomDomain = %q, want %q", ref.CustomDomain, "internal")
	}
	if ref.Image != "app" {
		t.Errorf("Image = %q, want %q", ref.Image, "app")
	}
}

func TestLooksLikeDomain(t *testing.T) {
	tests := []struct {
		segment string
		want    bool
	}{
		{"ghcr.io", true},
		{"registry.example.com", true},
		{"localhost", true},
		{"registry:5000", true},
		{"lscr.io", true},
		{"grafana", false},
		{"my-org", false},
		{"", false},
		{"a.b", false},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			if got := LooksLikeDomain(tt.segment); got != tt.want {
				t.Errorf("LooksLikeDomain(%q) = %v, want %v", tt.segment, got, tt.want)
			}
		})
	}
}
