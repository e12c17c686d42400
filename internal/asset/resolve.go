package asset

import (
	"net/url"
	"path/filepath"
	"strings"
)

// IsLocal reports whether ref can name a file below the base directory.
// Empty references, fragments, protocol-relative references and anything
// carrying a URL scheme (http:, data:, ...) are not local.
func IsLocal(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// Resolve maps a reference to a filesystem path.
//
// A root-relative reference ("/app.js") is joined to base after stripping the
// leading slash, so the base directory stands in for the site root. Any other
// reference is relative to the document, which is also resolved against base.
func Resolve(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "/") {
		ref = strings.TrimPrefix(ref, "/")
	}
	return filepath.Join(base, filepath.FromSlash(ref))
}
