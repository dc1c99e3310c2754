package images

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultExtension is used when an uploaded filename carries no extension
const DefaultExtension = "jpg"

var generatedKeyPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z0-9]+$`)

// ExtensionOf returns the text after the last "." of filename, or
// DefaultExtension when there is none.
func ExtensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return DefaultExtension
	}
	return filename[idx+1:]
}

// GenerateKey builds a fresh storage key for an upload named filename
func GenerateKey(filename string) string {
	return uuid.NewString() + "." + ExtensionOf(filename)
}

// IsGeneratedKey reports whether key has the shape produced by GenerateKey
func IsGeneratedKey(key string) bool {
	return generatedKeyPattern.MatchString(key)
}

// IsImageKey reports whether key names a file with a known image extension
func IsImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg":
		return true
	}
	return false
}
