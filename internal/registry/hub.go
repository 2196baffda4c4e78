package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// maxAccumulatedTags caps the paginated tag crawl. Repositories with tens of
// thousands of tags exist; past this point more tags stop changing the
// outcome.
const maxAccumulatedTags = 2500

// tagPageSize is the page size requested from the hub tag-list endpoint.
const tagPageSize = 100

const userAgent = "registry-watch/1.0"

// HubAdapter implements RegistryAdapter against the Docker Hub HTTP API.
type HubAdapter struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// NewHubAdapter creates an adapter for Docker Hub.
func NewHubAdapter(timeout time.Duration) *HubAdapter {
	return &HubAdapter{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Anonymous hub pulls are limited to ~100 requests per 6 hours.
		// Stay well under that.
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
		baseURL:     "https://hub.docker.com/v2",
	}
}

// Name returns the registry host this adapter speaks to.
func (h *HubAdapter) Name() string {
	return "docker.io"
}

// FetchContentID looks up the digest and publish time for a tag via the hub
// tag endpoint. Any HTTP failure falls back to a synthetic day-bucketed
// identity flagged as degraded.
func (h *HubAdapter) FetchContentID(ctx context.Context, ref types.ImageReference, tag string) (types.ContentIdentity, error) {
	if err := h.rateLimiter.Wait(ctx); err != nil {
		return types.ContentIdentity{}, errors.Wrap("hub.FetchContentID", err)
	}

	url := fmt.Sprintf("%s/repositories/%s/tags/%s", h.baseURL, ref.Repository(), tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.ContentIdentity{}, errors.Wrapf("hub.FetchContentID", err, "creating request for %s", ref.Repository())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return types.ContentIdentity{}, errors.Wrap("hub.FetchContentID", ctx.Err())
		}
		return h.fallbackIdentity(ref, tag), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return h.fallbackIdentity(ref, tag), nil
	}

	var info hubTagInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return h.fallbackIdentity(ref, tag), nil
	}

	digest := info.Digest
	if digest == "" {
		for _, img := range info.Images {
			if img.Digest != "" {
				digest = img.Digest
				break
			}
		}
	}
	if digest == "" {
		return h.fallbackIdentity(ref, tag), nil
	}

	published := parseRegistryTime(info.TagLastPushed)
	if published.IsZero() {
		published = parseRegistryTime(info.LastUpdated)
	}

	return types.ContentIdentity{ID: digest, PublishedAt: published}, nil
}

// FetchAllTags walks the paginated hub tag-list endpoint, following next
// cursors until exhausted or until maxAccumulatedTags names have been seen.
func (h *HubAdapter) FetchAllTags(ctx context.Context, ref types.ImageReference) ([]string, error) {
	url := fmt.Sprintf("%s/repositories/%s/tags?page_size=%d", h.baseURL, ref.Repository(), tagPageSize)

	var tags []string
	for url != "" {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, errors.Wrap("hub.FetchAllTags", err)
		}

		page, next, err := h.fetchTagPage(ctx, url, ref)
		if err != nil {
			return nil, err
		}
		tags = append(tags, page...)

		if len(tags) >= maxAccumulatedTags {
			tags = tags[:maxAccumulatedTags]
			break
		}
		url = next
	}

	return tags, nil
}

// fetchTagPage retrieves one page of the tag list and the next cursor.
func (h *HubAdapter) fetchTagPage(ctx context.Context, url string, ref types.ImageReference) ([]string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrapf("hub.FetchAllTags", err, "creating request for %s", ref.Repository())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf("hub.FetchAllTags", err, "making request to %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", errors.Newf("hub.FetchAllTags", "repository %s not found", ref.Repository())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Newf("hub.FetchAllTags", "unexpected status %d for %s", resp.StatusCode, ref.Repository())
	}

	var page hubTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", errors.Wrapf("hub.FetchAllTags", err, "decoding response for %s", ref.Repository())
	}

	names := make([]string, 0, len(page.Results))
	for _, result := range page.Results {
		if result.Name != "" {
			names = append(names, result.Name)
		}
	}

	next := ""
	if page.Next != nil {
		next = *page.Next
	}
	return names, next, nil
}

func (h *HubAdapter) fallbackIdentity(ref types.ImageReference, tag string) types.ContentIdentity {
	return types.ContentIdentity{
		ID:       SyntheticContentID(h.Name(), ref.FullPath, tag, time.Now()),
		Degraded: true,
	}
}

// parseRegistryTime parses the ISO 8601 variants registries emit. Returns
// the zero time when nothing matches.
func parseRegistryTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05.000Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// hubTagsResponse is one page of the Docker Hub tag-list endpoint.
type hubTagsResponse struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []hubTagInfo `json:"results"`
}

// hubTagInfo is a single tag record from the Docker Hub API.
type hubTagInfo struct {
	Name          string `json:"name"`
	Digest        string `json:"digest"`
	LastUpdated   string `json:"last_updated"`
	TagLastPushed string `json:"tag_last_pushed"`
	Images        []struct {
		Architecture string `json:"architecture"`
		OS           string `json:"os"`
		Digest       string `json:"digest"`
	} `json:"images"`
}
