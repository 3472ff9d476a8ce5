package container

import "strings"

// DefaultVersionKey is the environment variable images use to publish
// their version.
const DefaultVersionKey = "HASSIO_VERSION"

// ExtractValue returns the value of the first KEY=VALUE entry whose key
// equals key, or nil when no entry matches.
func ExtractValue(entries []string, key string) *string {
	for _, entry := range entries {
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k != key {
			continue
		}
		return &v
	}
	return nil
}
