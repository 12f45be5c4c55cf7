// Package media generates opaque storage references for uploaded images.
// The files themselves live in an external store; this service only keeps the
// reference path on the profile or post record.
package media

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Upload folders per resource kind.
const (
	ProfileImages = "profiles"
	PostImages    = "posts"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ImagePath builds an upload reference of the form
// uploads/<folder>/<slug>-<uuid><ext>, keeping the original extension.
func ImagePath(folder, name, filename string) string {
	ext := path.Ext(filename)
	return path.Join("uploads", folder, fmt.Sprintf("%s-%s%s", Slugify(name), uuid.New(), ext))
}

// Slugify lowercases the input and collapses anything that is not a letter or
// digit into single dashes.
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
