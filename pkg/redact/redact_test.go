package redact

import (
	"strings"
	"testing"
)

func TestRedactDisabled(t *testing.T) {
	SetEnabled(false)
	in := "reach me at caller@example.com or +1 555 123 4567"
	if got := Text(in); got != in {
		t.Fatalf("expected no redaction, got %q", got)
	}
}

func TestRedactEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	in := "reach me at caller@example.com or +1 555 123 4567"
	got := Text(in)
	if got == in {
		t.Fatalf("expected redaction")
	}
	if want := "[REDACTED_EMAIL]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output", want)
	}
	if want := "[REDACTED_PHONE]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output", want)
	}
}

func TestRedactUSPhoneFormats(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	for _, in := range []string{
		"call me back at (555) 123-4567 please",
		"call me back at 555.123.4567 please",
		"call me back at 555-123-4567 please",
	} {
		got := Text(in)
		if strings.ContainsAny(got, "0123456789") {
			t.Fatalf("expected digits redacted in %q, got %q", in, got)
		}
		if !strings.Contains(got, "[REDACTED_PHONE]") {
			t.Fatalf("expected phone marker in %q", got)
		}
	}
}
