// Package reference classifies raw image paths into structured registry
// references.
package reference

import (
	"strings"

	"github.com/user/registry-watch/pkg/types"
)

// officialNamespace is the reserved namespace single-segment hub images
// live under.
const officialNamespace = "library"

// Domains recognized by literal prefix match, checked before the domain
// heuristic.
var knownPrefixes = []struct {
	prefix string
	kind   types.RegistryKind
}{
	{"ghcr.io/", types.RegistryGHCR},
	{"quay.io/", types.RegistryQuay},
	{"docker.io/", types.RegistryHub},
}

// TLD-like suffixes accepted by the domain heuristic. Deliberately short:
// registries overwhelmingly live under these.
var domainSuffixes = []string{
	".com", ".io", ".org", ".net", ".dev", ".app", ".sh", ".co", ".cloud", ".us", ".gg", ".me",
}

// Classify parses a raw image path into a structured reference. It is pure
// and never fails: unrecognized shapes fall back to the hub shorthand rules.
//
// Precedence: recognized registry prefixes, then the looks-like-a-domain
// heuristic on the first segment, then the two-segment hub shorthand, then
// the one-segment official image shorthand.
func Classify(imagePath string) types.ImageReference {
	imagePath = strings.TrimSpace(imagePath)
	ref := types.ImageReference{FullPath: imagePath}

	for _, known := range knownPrefixes {
		if !strings.HasPrefix(imagePath, known.prefix) {
			continue
		}
		ref.Kind = known.kind
		ref.Namespace, ref.Image = splitRepository(strings.TrimPrefix(imagePath, known.prefix))
		if ref.Kind == types.RegistryHub && ref.Namespace == "" {
			ref.Namespace = officialNamespace
		}
		return ref
	}

	segments := strings.Split(imagePath, "/")
	if len(segments) >= 2 && LooksLikeDomain(segments[0]) {
		ref.Kind = types.RegistryCustom
		ref.CustomDomain = segments[0]
		ref.Namespace, ref.Image = splitRepository(strings.Join(segments[1:], "/"))
		return ref
	}

	ref.Kind = types.RegistryHub
	ref.Namespace, ref.Image = splitRepository(imagePath)
	if ref.Namespace == "" {
		ref.Namespace = officialNamespace
	}
	return ref
}

// ClassifyMonitored classifies a monitored image, honoring its explicit
// registry-kind override when set.
func ClassifyMonitored(img types.MonitoredImage) types.ImageReference {
	ref := Classify(img.ImagePath)
	if img.Registry.IsValid() && img.Registry != ref.Kind {
		ref.Kind = img.Registry
		if ref.Kind == types.RegistryCustom && ref.CustomDomain == "" {
			// Honor the override even when the first segment did not
			// look like a domain.
			segments := strings.SplitN(img.ImagePath, "/", 2)
			if len(segments) == 2 {
				ref.CustomDomain = segments[0]
				ref.Namespace, ref.Image = splitRepository(segments[1])
			}
		}
	}
	return ref
}

// LooksLikeDomain reports whether a path segment is plausibly a registry
// host. This is a heuristic: it accepts common TLD-like suffixes, hostnames
// of three or more labels, host:port forms and localhost. Namespaces that
// contain dots can produce false positives; the per-image registry override
// exists for those.
func LooksLikeDomain(segment string) bool {
	if segment == "" {
		return false
	}
	if segment == "localhost" || strings.Contains(segment, ":") {
		return true
	}
	if !strings.Contains(segment, ".") {
		return false
	}
	if len(strings.Split(segment, ".")) >= 3 {
		return true
	}
	lower := strings.ToLower(segment)
	for _, suffix := range domainSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// splitRepository splits a repository path into namespace and image. A bare
// image yields an empty namespace; deeper paths keep everything before the
// final segment as the namespace.
func splitRepository(repo string) (namespace, image string) {
	repo = strings.Trim(repo, "/")
	idx := strings.LastIndex(repo, "/")
	if idx < 0 {
		return "", repo
	}
	return repo[:idx], repo[idx+1:]
}
