package fsops

import (
	"strings"

	"github.com/mdbfs/mdbfs/internal/pathutil"
)

// DecodeKVPath normalizes p and extracts the record key it addresses.
// The empty string denotes the root directory. A path with more than
// one non-empty component has no valid decoding.
func DecodeKVPath(p string) (key string, ok bool) {
	norm := pathutil.Normalize(p)
	if !pathutil.IsAbsolute(norm) {
		return "", false
	}
	if norm == "/" {
		return "", true
	}

	segments := strings.Split(strings.TrimPrefix(norm, "/"), "/")
	if len(segments) != 1 || segments[0] == "" {
		return "", false
	}
	return segments[0], true
}
