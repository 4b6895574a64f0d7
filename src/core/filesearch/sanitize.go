package filesearch

import (
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9-]`)

// SanitizeName maps a filename onto the character set allowed for file
// resource IDs: lowercase alphanumerics and hyphens, with no hyphen at either
// end. Every other character becomes a hyphen.
func SanitizeName(name string) string {
	safe := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(safe, "-")
}
