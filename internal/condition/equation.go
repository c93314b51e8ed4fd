// Package condition resolves transition conditions: a deterministic
// equation grammar evaluated in-process, and natural-language prompt
// conditions delegated to the language model.
package condition

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/template"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// The grammar is a closed set of string patterns. Anything that does not
// match evaluates to false: malformed author input must never crash a live
// call, so there is no error path out of this file.
var (
	existsExpr  = regexp.MustCompile(`(?i)^\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s+(not\s+)?exists\s*$`)
	symbolExpr  = regexp.MustCompile(`(?i)^\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s*(==|!=|>=|<=|>|<)\s*(.+?)\s*$`)
	wordExpr    = regexp.MustCompile(`(?i)^\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s+(not\s+contains|contains)\s+(.+?)\s*$`)
)

// Evaluate resolves one equation condition against the bindings. Operators
// are case-insensitive; equality and containment compare string forms
// case-insensitively; ordering operators coerce both sides to numbers and
// yield false when either side is not numeric.
func Evaluate(cond string, bindings domain.Bindings) bool {
	if m := existsExpr.FindStringSubmatch(cond); m != nil {
		v, ok := bindings[m[1]]
		present := ok && v != nil && domain.Stringify(v) != ""
		if m[2] != "" {
			return !present
		}
		return present
	}

	m := symbolExpr.FindStringSubmatch(cond)
	if m == nil {
		m = wordExpr.FindStringSubmatch(cond)
	}
	if m == nil {
		return false
	}

	left := domain.Stringify(bindings[m[1]])
	op := strings.Join(strings.Fields(strings.ToLower(m[2])), " ")
	right := unquote(strings.TrimSpace(m[3]))
	// The literal may itself reference other variables.
	right = template.Substitute(right, bindings)

	switch op {
	case "==":
		return strings.EqualFold(left, right)
	case "!=":
		return !strings.EqualFold(left, right)
	case "contains":
		return strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case "not contains":
		return !strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case ">", ">=", "<", "<=":
		ln, lerr := strconv.ParseFloat(strings.TrimSpace(left), 64)
		rn, rerr := strconv.ParseFloat(strings.TrimSpace(right), 64)
		if lerr != nil || rerr != nil {
			return false
		}
		switch op {
		case ">":
			return ln > rn
		case ">=":
			return ln >= rn
		case "<":
			return ln < rn
		default:
			return ln <= rn
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
