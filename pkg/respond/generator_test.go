package respond

import (
	"testing"

	"github.com/voxlane/voxlane/pkg/language"
)

func TestShortUtteranceNeedsFollowup(t *testing.T) {
	gen := NewTemplateGenerator()
	reply, hint := gen.Generate(language.English, "help", nil)
	if hint != HintNeedsFollowup {
		t.Fatalf("expected needs_followup, got %s", hint)
	}
	if reply == "" {
		t.Fatalf("reply must never be empty")
	}
}

func TestLongerUtteranceResolved(t *testing.T) {
	gen := NewTemplateGenerator()
	reply, hint := gen.Generate(language.English, "I need help with my appointment", nil)
	if hint != HintResolved {
		t.Fatalf("expected resolved, got %s", hint)
	}
	if reply == "" {
		t.Fatalf("reply must never be empty")
	}
}

func TestRepliesLocalized(t *testing.T) {
	gen := NewTemplateGenerator()
	es, _ := gen.Generate(language.Spanish, "hola", nil)
	en, _ := gen.Generate(language.English, "hi", nil)
	if es == en {
		t.Fatalf("expected localized replies to differ")
	}
	if es != followupReplies[language.Spanish] {
		t.Fatalf("unexpected spanish reply %q", es)
	}
}

func TestEmptyUtterance(t *testing.T) {
	gen := NewTemplateGenerator()
	reply, hint := gen.Generate(language.English, "", nil)
	if hint != HintNeedsFollowup || reply == "" {
		t.Fatalf("expected non-empty followup for empty utterance, got %q/%s", reply, hint)
	}
}

func TestAutoLanguageFallsBackToEnglish(t *testing.T) {
	gen := NewTemplateGenerator()
	reply, _ := gen.Generate(language.Auto, "hi", nil)
	if reply != followupReplies[language.English] {
		t.Fatalf("expected english fallback, got %q", reply)
	}
}
