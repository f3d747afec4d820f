package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxDecodePasses bounds how many layers of entity encoding sanitizeText unwraps
const maxDecodePasses = 4

var (
	// article bodies come from a rich text editor
	contentPolicy = bluemonday.UGCPolicy()
	textPolicy    = bluemonday.StrictPolicy()
)

// sanitizeContent strips scripts, handlers and unsafe URLs from article HTML
func sanitizeContent(s string) string {
	return contentPolicy.Sanitize(s)
}

// sanitizeText removes all markup from plain text fields. Entity-encoded markup is
// decoded and stripped again until the text is stable, so the result holds no tags
// once decoded. Text that never settles is returned in its escaped form.
func sanitizeText(s string) string {
	out := s
	for i := 0; i < maxDecodePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(out))
}
