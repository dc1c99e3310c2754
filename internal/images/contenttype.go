package images

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// DefaultContentType is reported for objects stored without a content type
const DefaultContentType = "image/jpeg"

var ErrInvalidContentType = errors.New("invalid content type")

// AllowedContentTypes lists the image types accepted for upload
var AllowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// NormalizeContentType strips parameters and lower-cases a declared content type
func NormalizeContentType(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mediaType
}

// ValidateContentType returns the normalized content type or
// ErrInvalidContentType when it is not an allowed image type.
func ValidateContentType(declared string) (string, error) {
	normalized := NormalizeContentType(declared)
	for _, allowed := range AllowedContentTypes {
		if normalized == allowed {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidContentType, declared)
}
