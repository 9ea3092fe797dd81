package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateWeakETag generates a weak ETag for an encoded document
func GenerateWeakETag(content []byte) string {
	hash := sha256.Sum256(content)
	// 16 bytes of the digest is plenty for change detection
	return `W/"` + hex.EncodeToString(hash[:16]) + `"`
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		opaque := strings.TrimPrefix(tag, "W/")
		if len(opaque) < 2 || opaque[0] != '"' || opaque[len(opaque)-1] != '"' {
			continue
		}
		etags = append(etags, tag)
	}
	return etags
}

// MatchesETag reports whether an If-None-Match header matches etag under
// the weak comparison function
func MatchesETag(header, etag string) bool {
	for _, candidate := range ParseIfNoneMatch(header) {
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
