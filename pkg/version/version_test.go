package version

import (
	"testing"

	"github.com/user/registry-watch/pkg/types"
)

func TestTrackingModeFor(t *testing.T) {
	tests := []struct {
		tag  string
		want types.TrackingMode
	}{
		{"latest", types.TrackingLatest},
		{"stable", types.TrackingLatest},
		{"main", types.TrackingLatest},
		{"Latest", types.TrackingLatest},
		{"1.2.3", types.TrackingVersion},
		{"v1.2.3", types.TrackingVersion},
		{"v1.2.3-alpine", types.TrackingVersion},
		{"1.2.3-rc.1", types.TrackingVersion},
		{"1.2", types.TrackingLatest},
		{"19", types.TrackingLatest},
		{"alpine", types.TrackingLatest},
		{"bookworm-slim", types.TrackingLatest},
		{"", types.TrackingLatest},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := TrackingModeFor(tt.tag); got != tt.want {
				t.Errorf("TrackingModeFor(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		tag  string
		want string
		ok   bool
	}{
		{"1.2.3", "1.2.3", true},
		{"v1.2.3", "1.2.3", true},
		{"2.0.0-rc", "2.0.0", true},
		{"v2.4.1-alpine", "2.4.1", true},
		{"1.2", "", false},
		{"19", "", false},
		{"latest", "", false},
		{"1.2.3.4", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			v, ok := Parse(tt.tag)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.tag, ok, tt.ok)
			}
			if ok && v.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.tag, v.String(), tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.10.0", "1.2.0", 1},
		{"1.2.0", "1.10.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.2", "1.2.0", 0},
		{"19", "19.0.0", 0},
		{"v1.2.3", "1.2.3", 0},
		{"1.2.3-alpine", "1.2.3", 0},
		{"alpine", "bookworm", -1},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindLatest(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
		ok   bool
	}{
		{
			name: "mixed tags",
			tags: []string{"latest", "1.2.3", "v1.10.0", "alpine", "1.9.9"},
			want: "1.10.0",
			ok:   true,
		},
		{
			name: "suffixed versions normalize",
			tags: []string{"2.0.0-alpine", "1.9.0"},
			want: "2.0.0",
			ok:   true,
		},
		{
			name: "nothing parses",
			tags: []string{"latest", "alpine", "edge"},
			ok:   false,
		},
		{
			name: "empty set",
			tags: nil,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindLatest(tt.tags)
			if ok != tt.ok {
				t.Fatalf("FindLatest ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("FindLatest = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectRepresentativeTag(t *testing.T) {
	tests := []struct {
		name          string
		tags          []string
		latestVersion string
		want          string
	}{
		{
			name:          "exact text match wins over latest",
			tags:          []string{"latest", "1.10.0", "alpine"},
			latestVersion: "1.10.0",
			want:          "1.10.0",
		},
		{
			name: "latest preferred when no exact match",
			tags: []string{"alpine", "latest", "edge"},
			want: "latest",
		},
		{
			name: "stable before main",
			tags: []string{"main", "stable"},
			want: "stable",
		},
		{
			name:          "parsed-equal tag when spelled differently",
			tags:          []string{"alpine", "v1.10.0"},
			latestVersion: "1.10.0",
			want:          "v1.10.0",
		},
		{
			name: "first tag as last resort",
			tags: []string{"edge", "nightly"},
			want: "edge",
		},
		{
			name: "empty set yields unknown",
			tags: nil,
			want: UnknownTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectRepresentativeTag(tt.tags, tt.latestVersion); got != tt.want {
				t.Errorf("SelectRepresentativeTag = %q, want %q", got, tt.want)
			}
		})
	}
}
