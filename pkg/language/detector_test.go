package language

import "testing"

func TestDetectExplicitNames(t *testing.T) {
	if got := Detect(Auto, "Quiero continuar en ESPAÑOL por favor"); got != Spanish {
		t.Fatalf("expected es, got %s", got)
	}
	if got := Detect(Auto, "English please"); got != English {
		t.Fatalf("expected en, got %s", got)
	}
	// The Spanish word for English still selects English.
	if got := Detect(Auto, "prefiero ingles"); got != English {
		t.Fatalf("expected en for ingles, got %s", got)
	}
}

func TestDetectHeuristicMarkers(t *testing.T) {
	if got := Detect(Auto, "Necesito una cita"); got != Spanish {
		t.Fatalf("expected es, got %s", got)
	}
	if got := Detect(Auto, "I need an appointment"); got != English {
		t.Fatalf("expected en, got %s", got)
	}
}

func TestDetectSticky(t *testing.T) {
	if got := Detect(Spanish, "anything in english"); got != Spanish {
		t.Fatalf("expected pinned es, got %s", got)
	}
	if got := Detect(English, "necesito una cita en español"); got != English {
		t.Fatalf("expected pinned en, got %s", got)
	}
}

func TestDetectDefaultsToEnglish(t *testing.T) {
	if got := Detect(Auto, ""); got != English {
		t.Fatalf("expected en for empty utterance, got %s", got)
	}
	if got := Detect(Auto, "zzz unrecognizable zzz"); got != English {
		t.Fatalf("expected en fallback, got %s", got)
	}
}
