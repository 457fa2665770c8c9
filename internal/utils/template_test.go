package utils

import "testing"

func TestSubstitute(t *testing.T) {
	vars := map[string]string{
		"author":  "Alice",
		"counter": "0042",
		"staff":   "<@1> <@&2>",
	}

	cases := []struct {
		name, in, want string
	}{
		{"plain", "no placeholders here", "no placeholders here"},
		{"simple", "$author's ticket", "Alice's ticket"},
		{"braced", "${author}s ticket", "Alices ticket"},
		{"multiple", "$author $staff", "Alice <@1> <@&2>"},
		{"unknown kept", "hello $nonexistent world", "hello $nonexistent world"},
		{"unknown braced kept", "a ${nope} b", "a ${nope} b"},
		{"escaped dollar", "cost: $$5 by $author", "cost: $5 by Alice"},
		{"trailing dollar", "done$", "done$"},
		{"dollar digit", "$5 off", "$5 off"},
		{"unterminated brace", "x ${author", "x ${author"},
		{"counter", "ticket-$counter", "ticket-0042"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Substitute(tc.in, vars); got != tc.want {
				t.Errorf("Substitute(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSubstituteEmptyValue(t *testing.T) {
	got := Substitute("$author$staff", map[string]string{"author": "", "staff": ""})
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("hello", 100); got != "hello" {
		t.Errorf("no-op truncate = %q", got)
	}
	if got := TruncateRunes("hello", 2); got != "he" {
		t.Errorf("truncate = %q", got)
	}
	if got := TruncateRunes("héllo", 2); got != "hé" {
		t.Errorf("multibyte truncate = %q", got)
	}
	if got := TruncateRunes("x", 0); got != "" {
		t.Errorf("zero truncate = %q", got)
	}
}
