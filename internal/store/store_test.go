package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state.json"))
}

func sampleState(image, tag, id string) types.ImageState {
	return types.ImageState{
		Image:            image,
		Tag:              tag,
		CurrentContentID: id,
		CheckedAt:        time.Now().UTC().Truncate(time.Second),
		TrackingMode:     types.TrackingLatest,
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := testStore(t)
	states, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 0 {
		t.Errorf("got %d states, want none", len(states))
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := testStore(t)

	if err := s.Upsert(sampleState("nginx", "latest", "sha256:aaa")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, found, err := s.Get("nginx", "latest")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("row not found after upsert")
	}
	if got.CurrentContentID != "sha256:aaa" {
		t.Errorf("CurrentContentID = %q", got.CurrentContentID)
	}

	// Upsert replaces in place, no duplicate rows.
	if err := s.Upsert(sampleState("nginx", "latest", "sha256:bbb")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	states, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].CurrentContentID != "sha256:bbb" {
		t.Errorf("CurrentContentID = %q, want replaced value", states[0].CurrentContentID)
	}
}

func TestGetEmptyTagDefaultsToLatest(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(sampleState("nginx", "latest", "sha256:aaa")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	_, found, err := s.Get("nginx", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Error("empty tag must resolve to latest")
	}
}

func TestSameImageDifferentTagsAreSeparateRows(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(sampleState("grafana/grafana", "latest", "sha256:aaa")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(sampleState("grafana/grafana", "10.4.2", "sha256:bbb")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	states, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 2 {
		t.Errorf("got %d states, want 2", len(states))
	}
}

func TestLoadIsSortedByKey(t *testing.T) {
	s := testStore(t)
	for _, img := range []string{"zulu/app", "alpha/app", "mike/app"} {
		if err := s.Upsert(sampleState(img, "latest", "sha256:x")); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	states, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 1; i < len(states); i++ {
		if states[i-1].Key() > states[i].Key() {
			t.Fatalf("states out of order: %q before %q", states[i-1].Key(), states[i].Key())
		}
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(sampleState("nginx", "latest", "sha256:aaa")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Remove("nginx", "latest"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, found, err := s.Get("nginx", "latest")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("row still present after remove")
	}

	// Removing an absent row is fine.
	if err := s.Remove("nope", "latest"); err != nil {
		t.Errorf("removing absent row: %v", err)
	}
}

func TestSaveReplacesCollection(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(sampleState("old/app", "latest", "sha256:aaa")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := s.Save([]types.ImageState{sampleState("new/app", "latest", "sha256:bbb")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	states, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 1 || states[0].Image != "new/app" {
		t.Errorf("Save must replace the collection wholesale, got %+v", states)
	}
}

func TestLoadCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, err := s.Load(); err == nil {
		t.Fatal("corrupt state file must be an error, not silent data loss")
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	first := NewFileStore(path)
	want := sampleState("nginx", "latest", "sha256:aaa")
	want.HasUpdate = true
	want.Dismissed = true
	want.DismissedContentID = "sha256:bbb"
	if err := first.Upsert(want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := NewFileStore(path)
	got, found, err := second.Get("nginx", "latest")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("row lost across reopen")
	}
	if !got.HasUpdate || !got.Dismissed || got.DismissedContentID != "sha256:bbb" {
		t.Errorf("state fields lost across reopen: %+v", got)
	}
}
