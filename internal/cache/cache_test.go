package cache

import (
	"context"
	"testing"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

type countingAdapter struct {
	identity  types.ContentIdentity
	tags      []string
	idCalls   int
	tagsCalls int
}

func (c *countingAdapter) Name() string { return "docker.io" }

func (c *countingAdapter) FetchContentID(ctx context.Context, ref types.ImageReference, tag string) (types.ContentIdentity, error) {
	c.idCalls++
	return c.identity, nil
}

func (c *countingAdapter) FetchAllTags(ctx context.Context, ref types.ImageReference) ([]string, error) {
	c.tagsCalls++
	return c.tags, nil
}

func testRef() types.ImageReference {
	return types.ImageReference{Namespace: "library", Image: "nginx", FullPath: "nginx"}
}

func TestCachedFetchContentID(t *testing.T) {
	inner := &countingAdapter{identity: types.ContentIdentity{ID: "sha256:aaa"}}
	cached := Wrap(inner, New(time.Minute))

	for i := 0; i < 3; i++ {
		identity, err := cached.FetchContentID(context.Background(), testRef(), "latest")
		if err != nil {
			t.Fatalf("FetchContentID: %v", err)
		}
		if identity.ID != "sha256:aaa" {
			t.Errorf("ID = %q", identity.ID)
		}
	}
	if inner.idCalls != 1 {
		t.Errorf("inner adapter called %d times, want 1", inner.idCalls)
	}
}

func TestCacheExpiry(t *testing.T) {
	inner := &countingAdapter{identity: types.ContentIdentity{ID: "sha256:aaa"}}
	cached := Wrap(inner, New(10*time.Millisecond))

	if _, err := cached.FetchContentID(context.Background(), testRef(), "latest"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := cached.FetchContentID(context.Background(), testRef(), "latest"); err != nil {
		t.Fatal(err)
	}

	if inner.idCalls != 2 {
		t.Errorf("inner adapter called %d times, want 2 after expiry", inner.idCalls)
	}
}

func TestDegradedIdentityNotCached(t *testing.T) {
	inner := &countingAdapter{identity: types.ContentIdentity{ID: "synthetic:abc", Degraded: true}}
	cached := Wrap(inner, New(time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := cached.FetchContentID(context.Background(), testRef(), "latest"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.idCalls != 2 {
		t.Errorf("inner adapter called %d times, want 2: degraded results must retry", inner.idCalls)
	}
}

func TestCachedFetchAllTags(t *testing.T) {
	inner := &countingAdapter{tags: []string{"latest", "1.0.0"}}
	cached := Wrap(inner, New(time.Minute))

	for i := 0; i < 3; i++ {
		tags, err := cached.FetchAllTags(context.Background(), testRef())
		if err != nil {
			t.Fatalf("FetchAllTags: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("got %d tags", len(tags))
		}
	}
	if inner.tagsCalls != 1 {
		t.Errorf("inner adapter called %d times, want 1", inner.tagsCalls)
	}
}

func TestEmptyTagListNotCached(t *testing.T) {
	inner := &countingAdapter{tags: nil}
	cached := Wrap(inner, New(time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := cached.FetchAllTags(context.Background(), testRef()); err != nil {
			t.Fatal(err)
		}
	}
	if inner.tagsCalls != 2 {
		t.Errorf("inner adapter called %d times, want 2: empty lists must retry", inner.tagsCalls)
	}
}

func TestCacheKeysSeparateTags(t *testing.T) {
	inner := &countingAdapter{identity: types.ContentIdentity{ID: "sha256:aaa"}}
	cached := Wrap(inner, New(time.Minute))

	if _, err := cached.FetchContentID(context.Background(), testRef(), "latest"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.FetchContentID(context.Background(), testRef(), "1.25.0"); err != nil {
		t.Fatal(err)
	}
	if inner.idCalls != 2 {
		t.Errorf("inner adapter called %d times, want 2: tags must not share entries", inner.idCalls)
	}
}

func TestStats(t *testing.T) {
	inner := &countingAdapter{identity: types.ContentIdentity{ID: "sha256:aaa"}}
	c := New(time.Minute)
	cached := Wrap(inner, c)

	_, _ = cached.FetchContentID(context.Background(), testRef(), "latest")
	_, _ = cached.FetchContentID(context.Background(), testRef(), "latest")

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1", stats.Size)
	}
}
