// Package htmlsanitize strips markup from user-entered free text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML from s and trims surrounding whitespace.
// Entities produced by the policy are unescaped back to plain characters
// because the text is stored as plain text and escaped again on output.
func PlainText(s string) string {
	out := strict.Sanitize(s)
	out = entityReplacer.Replace(out)
	return strings.TrimSpace(out)
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
	"&quot;", `"`,
)
