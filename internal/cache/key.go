package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// keySeparator joins key segments.
const keySeparator = ":"

// maxReadableKeyLength is the longest key kept verbatim; longer keys are hashed.
const maxReadableKeyLength = 200

// Key encodes an operation and its parameters into a cache key.
// The operation is normalized (trimmed, lower-cased); parameters are
// trimmed but keep their case. Keys longer than maxReadableKeyLength keep
// their operation prefix and hash the rest.
func Key(operation string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, strings.ToLower(strings.TrimSpace(operation)))
	for _, p := range parts {
		segments = append(segments, strings.TrimSpace(p))
	}

	key := strings.Join(segments, keySeparator)
	if len(key) <= maxReadableKeyLength {
		return key
	}

	sum := sha256.Sum256([]byte(key))
	return segments[0] + keySeparator + hex.EncodeToString(sum[:])
}

// KeyWithParams is Key with named parameters appended in sorted order, so
// map iteration order does not change the key.
func KeyWithParams(operation string, params map[string]string, parts ...string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]string, 0, len(parts)+len(names))
	all = append(all, parts...)
	for _, name := range names {
		all = append(all, strings.TrimSpace(name)+"="+strings.TrimSpace(params[name]))
	}
	return Key(operation, all...)
}
