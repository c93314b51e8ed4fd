package template

import (
	"testing"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

func TestSubstitute(t *testing.T) {
	bindings := domain.Bindings{
		"name":   "Ada",
		"count":  float64(3),
		"active": true,
		"empty":  nil,
	}

	cases := []struct {
		in   string
		want string
	}{
		{"Hello {{name}}!", "Hello Ada!"},
		{"{{a}}-{{b}}", "-"},
		{"{{name}} has {{count}} items", "Ada has 3 items"},
		{"flag={{active}}", "flag=true"},
		{"nil is '{{empty}}'", "nil is ''"},
		{"no placeholders", "no placeholders"},
		{"{{ name }} spaced", "Ada spaced"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Substitute(c.in, bindings); got != c.want {
			t.Errorf("Substitute(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSubstitute_MissingVarEmpty(t *testing.T) {
	got := Substitute("{{a}}-{{b}}", domain.Bindings{"a": "x"})
	if got != "x-" {
		t.Errorf("expected 'x-', got %q", got)
	}
}

func TestSubstitute_NotRecursive(t *testing.T) {
	bindings := domain.Bindings{"a": "{{b}}", "b": "boom"}
	if got := Substitute("{{a}}", bindings); got != "{{b}}" {
		t.Errorf("substituted value was re-scanned: %q", got)
	}
}

func TestSubstitute_IdempotentOnResolvedText(t *testing.T) {
	bindings := domain.Bindings{"a": "x"}
	once := Substitute("{{a}} done", bindings)
	if twice := Substitute(once, bindings); twice != once {
		t.Errorf("resolved text changed on second pass: %q -> %q", once, twice)
	}
}

func TestName(t *testing.T) {
	if n, ok := Name("{{order_id}}"); !ok || n != "order_id" {
		t.Errorf("Name failed: %q %v", n, ok)
	}
	if _, ok := Name("{{a}} extra"); ok {
		t.Error("expected false for non-lone placeholder")
	}
	if _, ok := Name("plain"); ok {
		t.Error("expected false for plain text")
	}
}
