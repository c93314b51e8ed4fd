// Package template resolves {{name}} placeholders against call bindings.
package template

import (
	"regexp"
	"strings"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Substitute replaces every {{identifier}} occurrence with the string form
// of the bound value. Unknown or nil identifiers resolve to the empty
// string. Substituted values are not re-scanned, so a value containing
// braces cannot trigger further expansion. Never fails.
func Substitute(text string, bindings domain.Bindings) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := bindings[name]
		if !ok {
			return ""
		}
		return domain.Stringify(v)
	})
}

// Name extracts the identifier of a single placeholder expression like
// "{{order_id}}", returning false when text is not exactly one placeholder.
func Name(text string) (string, bool) {
	m := placeholder.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || m[0] != strings.TrimSpace(text) {
		return "", false
	}
	return m[1], true
}
