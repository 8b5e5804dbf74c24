// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// PlainText removes every tag from s and escapes what is left, so user
// supplied names can be embedded in notification messages that clients may
// render as HTML.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strict.Sanitize(s)
}
