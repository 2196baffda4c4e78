package docker

import "testing"

func TestParseImageString(t *testing.T) {
	tests := []struct {
		name     string
		image    string
		wantPath string
		wantTag  string
		wantOK   bool
	}{
		{name: "plain image", image: "nginx", wantPath: "nginx", wantOK: true},
		{name: "image with tag", image: "nginx:1.25.0", wantPath: "nginx", wantTag: "1.25.0", wantOK: true},
		{name: "namespaced", image: "grafana/grafana:10.4.2", wantPath: "grafana/grafana", wantTag: "10.4.2", wantOK: true},
		{name: "registry with port keeps port", image: "registry.local:5000/team/app:v2", wantPath: "registry.local:5000/team/app", wantTag: "v2", wantOK: true},
		{name: "registry with port no tag", image: "registry.local:5000/team/app", wantPath: "registry.local:5000/team/app", wantOK: true},
		{name: "ghcr deep path", image: "ghcr.io/immich-app/immich/server:v1.99.0", wantPath: "ghcr.io/immich-app/immich/server", wantTag: "v1.99.0", wantOK: true},
		{name: "digest pinned is skipped", image: "redis@sha256:abcdef", wantOK: false},
		{name: "tag plus digest is skipped", image: "redis:7@sha256:abcdef", wantOK: false},
		{name: "empty", image: "", wantOK: false},
		{name: "whitespace", image: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, ok := ParseImageString(tt.image)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if img.ImagePath != tt.wantPath {
				t.Errorf("ImagePath = %q, want %q", img.ImagePath, tt.wantPath)
			}
			if img.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", img.Tag, tt.wantTag)
			}
		})
	}
}
