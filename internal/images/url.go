package images

import (
	"net/url"
	"strings"
)

// URLResolver maps stored keys to URLs a browser can load.
//
// Resolution order:
//  1. PublicBaseURL set: "<PublicBaseURL>/<key>"
//  2. LocalDev and a generated key: "/uploads/<key>"
//  3. otherwise the API proxy path "/api/image/<escaped key>"
type URLResolver struct {
	PublicBaseURL string
	LocalDev      bool
}

// DisplayURL resolves key without any I/O
func (r URLResolver) DisplayURL(key string) string {
	if key == "" {
		return ""
	}

	if r.PublicBaseURL != "" {
		return strings.TrimRight(r.PublicBaseURL, "/") + "/" + key
	}

	if r.LocalDev && IsGeneratedKey(key) {
		return "/uploads/" + key
	}

	return "/api/image/" + url.PathEscape(key)
}
