package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// syntheticPrefix marks identities fabricated when a registry was
// unreachable, so they can never be confused with a real digest.
const syntheticPrefix = "synthetic:"

// SyntheticContentID derives a deterministic stand-in identity for a tag
// when the registry cannot be reached. It hashes (scope, fullPath, tag) with
// the current UTC day bucket, so repeated failed checks within the same day
// resolve to the same identity instead of flapping. Results carrying one of
// these are degraded signals, not ground truth.
func SyntheticContentID(scope, fullPath, tag string, now time.Time) string {
	day := now.UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(scope + "|" + fullPath + "|" + tag + "|" + day))
	return syntheticPrefix + hex.EncodeToString(sum[:])
}

// IsSynthetic reports whether a content identity was fabricated by the
// fallback path.
func IsSynthetic(id string) bool {
	return len(id) > len(syntheticPrefix) && id[:len(syntheticPrefix)] == syntheticPrefix
}
