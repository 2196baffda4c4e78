package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

func sampleStates() []types.ImageState {
	checked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []types.ImageState{
		{Image: "nginx", Tag: "latest", CurrentContentID: "sha256:aaa", CheckedAt: checked},
		{Image: "grafana/grafana", Tag: "10.0.0", CurrentContentID: "sha256:bbb", CheckedAt: checked,
			HasUpdate: true, LatestAvailableVersion: "10.4.2", RepresentativeTag: "10.4.2"},
		{Image: "redis", Tag: "latest", CurrentContentID: "sha256:ccc", CheckedAt: checked,
			Dismissed: true, DismissedContentID: "sha256:ccc"},
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(sampleStates())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var s summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if s.TotalImages != 3 {
		t.Errorf("TotalImages = %d, want 3", s.TotalImages)
	}
	if s.UpdatesAvailable != 1 {
		t.Errorf("UpdatesAvailable = %d, want 1", s.UpdatesAvailable)
	}
	if s.Dismissed != 1 {
		t.Errorf("Dismissed = %d, want 1", s.Dismissed)
	}
	if len(s.States) != 3 {
		t.Errorf("States = %d, want 3", len(s.States))
	}
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(sampleStates())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{"<!DOCTYPE html>", "grafana/grafana", "update available", "dismissed", "10.4.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHTMLFormatterEscapesContent(t *testing.T) {
	states := []types.ImageState{{Image: "<script>alert(1)</script>", Tag: "latest"}}
	out, err := HTMLFormatter{}.Format(states)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("image names must be HTML-escaped")
	}
}

func TestFormatNames(t *testing.T) {
	if got := (JSONFormatter{}).FormatName(); got != "json" {
		t.Errorf("JSONFormatter.FormatName() = %q", got)
	}
	if got := (HTMLFormatter{}).FormatName(); got != "html" {
		t.Errorf("HTMLFormatter.FormatName() = %q", got)
	}
}
