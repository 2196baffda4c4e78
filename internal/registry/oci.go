package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"golang.org/x/time/rate"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// contentDigestHeader carries the manifest digest in OCI distribution
// responses.
const contentDigestHeader = "Docker-Content-Digest"

// createdAnnotation is the OCI annotation holding the image build time.
const createdAnnotation = "org.opencontainers.image.created"

// Manifest media types accepted from OCI-compatible registries.
const manifestAcceptHeader = "application/vnd.docker.distribution.manifest.v2+json," +
	"application/vnd.docker.distribution.manifest.list.v2+json," +
	"application/vnd.oci.image.manifest.v1+json," +
	"application/vnd.oci.image.index.v1+json"

// OCIAdapter implements RegistryAdapter for registries speaking the OCI
// distribution protocol: ghcr.io, quay.io and arbitrary custom domains.
// Only the manifest and tag-list endpoints are used.
type OCIAdapter struct {
	domain      string
	scheme      string
	token       string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	insecure    bool
}

// NewOCIAdapter creates an adapter for one OCI-compatible registry domain.
// token optionally authenticates requests; anonymous bearer tokens are
// negotiated on demand when the registry challenges.
func NewOCIAdapter(domain, token string, timeout time.Duration) *OCIAdapter {
	return &OCIAdapter{
		domain: domain,
		scheme: "https",
		token:  token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 20),
	}
}

// Name returns the registry host this adapter speaks to.
func (o *OCIAdapter) Name() string {
	return o.domain
}

// FetchContentID resolves the manifest digest for (repository, tag) via a
// manifest GET. The digest is read from the Docker-Content-Digest header,
// falling back to embedded manifest fields; the publish time comes from the
// OCI created annotation when present. HTTP failures fall back to a
// synthetic day-bucketed identity scoped by registry domain.
func (o *OCIAdapter) FetchContentID(ctx context.Context, ref types.ImageReference, tag string) (types.ContentIdentity, error) {
	if err := o.rateLimiter.Wait(ctx); err != nil {
		return types.ContentIdentity{}, errors.Wrap("oci.FetchContentID", err)
	}

	manifestURL := fmt.Sprintf("%s://%s/v2/%s/manifests/%s", o.scheme, o.domain, ref.Repository(), tag)

	resp, err := o.getManifest(ctx, manifestURL, ref)
	if err != nil {
		if ctx.Err() != nil {
			return types.ContentIdentity{}, errors.Wrap("oci.FetchContentID", ctx.Err())
		}
		return o.fallbackIdentity(ref, tag), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return o.fallbackIdentity(ref, tag), nil
	}

	var manifest ociManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return o.fallbackIdentity(ref, tag), nil
	}

	digest := resp.Header.Get(contentDigestHeader)
	if digest == "" {
		digest = manifest.Config.Digest
	}
	if digest == "" && len(manifest.Manifests) > 0 {
		digest = manifest.Manifests[0].Digest
	}
	if digest == "" {
		return o.fallbackIdentity(ref, tag), nil
	}

	return types.ContentIdentity{
		ID:          digest,
		PublishedAt: parseRegistryTime(manifest.Annotations[createdAnnotation]),
	}, nil
}

// FetchAllTags lists the repository's tags via the distribution tag-list
// endpoint. Registries that refuse anonymous listing yield an empty list,
// which callers treat as "tag discovery unsupported", not as an error.
func (o *OCIAdapter) FetchAllTags(ctx context.Context, ref types.ImageReference) ([]string, error) {
	opts := []name.Option{}
	if o.insecure {
		opts = append(opts, name.Insecure)
	}
	repo, err := name.NewRepository(o.domain+"/"+ref.Repository(), opts...)
	if err != nil {
		return nil, errors.Wrapf("oci.FetchAllTags", err, "parsing repository %s", ref.Repository())
	}

	tags, err := remote.List(repo, remote.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap("oci.FetchAllTags", ctx.Err())
		}
		// Tag discovery unsupported or unauthorized for this registry.
		return nil, nil
	}
	if len(tags) > maxAccumulatedTags {
		tags = tags[:maxAccumulatedTags]
	}
	return tags, nil
}

// getManifest issues the manifest GET, negotiating an anonymous bearer token
// when the registry answers 401 with a WWW-Authenticate challenge.
func (o *OCIAdapter) getManifest(ctx context.Context, manifestURL string, ref types.ImageReference) (*http.Response, error) {
	resp, err := o.doManifestRequest(ctx, manifestURL, o.token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	challenge := resp.Header.Get("WWW-Authenticate")
	_ = resp.Body.Close()

	token, err := o.fetchToken(ctx, challenge, ref)
	if err != nil {
		return nil, err
	}
	return o.doManifestRequest(ctx, manifestURL, token)
}

func (o *OCIAdapter) doManifestRequest(ctx context.Context, manifestURL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, errors.Wrap("oci.getManifest", err)
	}
	req.Header.Set("Accept", manifestAcceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return o.httpClient.Do(req)
}

// fetchToken requests an anonymous pull token from the realm named in a
// Bearer WWW-Authenticate challenge.
func (o *OCIAdapter) fetchToken(ctx context.Context, challenge string, ref types.ImageReference) (string, error) {
	realm, service := parseAuthChallenge(challenge)
	if realm == "" {
		return "", errors.New("oci.fetchToken", "registry challenge carries no realm")
	}

	tokenURL, err := url.Parse(realm)
	if err != nil {
		return "", errors.Wrap("oci.fetchToken", err)
	}
	query := tokenURL.Query()
	if service != "" {
		query.Set("service", service)
	}
	query.Set("scope", fmt.Sprintf("repository:%s:pull", ref.Repository()))
	tokenURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL.String(), nil)
	if err != nil {
		return "", errors.Wrap("oci.fetchToken", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf("oci.fetchToken", err, "requesting token from %s", realm)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("oci.fetchToken", "token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap("oci.fetchToken", err)
	}
	if body.Token != "" {
		return body.Token, nil
	}
	return body.AccessToken, nil
}

// parseAuthChallenge extracts realm and service from a Bearer challenge,
// e.g. `Bearer realm="https://ghcr.io/token",service="ghcr.io"`.
func parseAuthChallenge(challenge string) (realm, service string) {
	challenge = strings.TrimPrefix(strings.TrimSpace(challenge), "Bearer ")
	for _, part := range strings.Split(challenge, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "realm":
			realm = value
		case "service":
			service = value
		}
	}
	return realm, service
}

func (o *OCIAdapter) fallbackIdentity(ref types.ImageReference, tag string) types.ContentIdentity {
	return types.ContentIdentity{
		ID:       SyntheticContentID(o.domain, ref.FullPath, tag, time.Now()),
		Degraded: true,
	}
}

// ociManifest carries the few manifest fields the adapter reads: an embedded
// digest when the header is absent, and the created annotation.
type ociManifest struct {
	SchemaVersion int    `json:"schemaVersion"`
	MediaType     string `json:"mediaType"`
	Config        struct {
		Digest string `json:"digest"`
	} `json:"config"`
	Manifests []struct {
		Digest string `json:"digest"`
	} `json:"manifests"`
	Annotations map[string]string `json:"annotations"`
}
