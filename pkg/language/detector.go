package language

import "strings"

// Language identifies the working language of a call session.
type Language string

const (
	// Auto means no language has been pinned yet.
	Auto    Language = "auto"
	Spanish Language = "es"
	English Language = "en"
)

// Concrete returns true for a pinned, non-auto language.
func (l Language) Concrete() bool {
	return l == Spanish || l == English
}

// Spanish self-references checked before any heuristic.
var spanishNames = []string{"español", "espanol"}

// English self-references, including the Spanish word for English.
var englishNames = []string{"english", "inglés", "ingles"}

// Common Spanish function words and domain terms used as a fallback heuristic.
var spanishMarkers = []string{"qué", "como", "necesito", "tengo", "quiero", "cita", "precio"}

// Detect decides the working language for an utterance. A pinned language is
// returned unchanged; detection never re-evaluates a concrete value. The
// function is total: it always returns Spanish or English for unpinned input.
func Detect(pinned Language, utterance string) Language {
	if pinned.Concrete() {
		return pinned
	}
	t := strings.ToLower(utterance)
	for _, name := range spanishNames {
		if strings.Contains(t, name) {
			return Spanish
		}
	}
	for _, name := range englishNames {
		if strings.Contains(t, name) {
			return English
		}
	}
	for _, marker := range spanishMarkers {
		if strings.Contains(t, marker) {
			return Spanish
		}
	}
	return English
}
