package i18n

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestTranslateSourceLocale(t *testing.T) {
	c := New()

	got := c.Translate("en-US", KeyTicketButton, nil)
	if got != "Create Ticket" {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateSubstitutesData(t *testing.T) {
	c := New()

	got := c.Translate("en-US", KeyTicketFinished, map[string]string{
		"ticket": "https://example.test/t/42",
	})
	if !strings.Contains(got, "https://example.test/t/42") {
		t.Fatalf("data not substituted: %q", got)
	}
}

func TestTranslateUnknownLocaleFallsBack(t *testing.T) {
	c := New()

	want := c.Translate("en-US", KeySelectNoCommand, nil)
	if got := c.Translate("zz-ZZ", KeySelectNoCommand, nil); got != want {
		t.Fatalf("got %q, want source fallback %q", got, want)
	}
	if got := c.Translate("", KeySelectNoCommand, nil); got != want {
		t.Fatalf("empty locale: got %q, want %q", got, want)
	}
}

func TestTranslateRegisteredLocale(t *testing.T) {
	c := New()
	c.Add(language.French, map[string]string{
		KeyTicketButton: "Créer un ticket",
	})

	if got := c.Translate("fr", KeyTicketButton, nil); got != "Créer un ticket" {
		t.Fatalf("got %q", got)
	}

	// Keys missing from the French table fall back to the source text.
	want := c.Translate("en-US", KeyInboxStaffNoEdits, nil)
	if got := c.Translate("fr", KeyInboxStaffNoEdits, nil); got != want {
		t.Fatalf("partial table: got %q, want %q", got, want)
	}
}

func TestTranslateUnknownKeyReturnsKey(t *testing.T) {
	c := New()

	if got := c.Translate("en-US", "no-such-key", nil); got != "no-such-key" {
		t.Fatalf("got %q", got)
	}
}
