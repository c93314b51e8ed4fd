package condition

import (
	"testing"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

func TestEvaluate(t *testing.T) {
	bindings := domain.Bindings{
		"n":          float64(3),
		"name":       "Ada Lovelace",
		"empty":      "",
		"missing_ok": nil,
		"other":      "ada",
		"user_input": "yes please",
	}

	cases := []struct {
		cond string
		want bool
	}{
		{"{{n}} >= 3", true},
		{"{{n}} > 3", false},
		{"{{n}} <= 3", true},
		{"{{n}} < 10", true},
		{"{{n}} == 3", true},
		{"{{n}} != 3", false},
		{"{{n}}>=3", true},
		{"{{name}} == \"ada lovelace\"", true}, // case-insensitive equality
		{"{{name}} CONTAINS 'love'", true},
		{"{{name}} contains 'LOVE'", true},
		{"{{name}} NOT CONTAINS 'bob'", true},
		{"{{user_input}} CONTAINS \"yes\"", true},
		{"{{name}} exists", true},
		{"{{empty}} exists", false},
		{"{{missing_ok}} exists", false},
		{"{{nowhere}} exists", false},
		{"{{nowhere}} not exists", true},
		{"{{empty}} NOT EXISTS", true},
		{"{{name}} == {{other}} Lovelace", true}, // RHS is itself substituted
		// Permissive-fail policy: malformed or non-numeric input is false,
		// never an error.
		{"{{name}} >= 3", false},
		{"garbage", false},
		{"{{n}} ~= 3", false},
		{"n >= 3", false},
		{"", false},
	}

	for _, c := range cases {
		if got := Evaluate(c.cond, bindings); got != c.want {
			t.Errorf("Evaluate(%q) = %v, want %v", c.cond, got, c.want)
		}
	}
}

func TestEvaluate_NaNComparison(t *testing.T) {
	bindings := domain.Bindings{"n": "abc"}
	if Evaluate("{{n}} >= 3", bindings) {
		t.Error("non-numeric comparison must be false, not an error")
	}
}
