package respond

import (
	"strings"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/language"
)

// Hint tells the orchestrator whether the caller's request was resolved.
type Hint string

const (
	HintResolved      Hint = "resolved"
	HintNeedsFollowup Hint = "needs_followup"
)

// Generator produces the assistant reply for one turn. Implementations must
// be pure: reply depends only on the inputs, is never empty, and the hint is
// one of exactly two values.
type Generator interface {
	Generate(lang language.Language, utterance string, ag *agent.Agent) (string, Hint)
}

// minTokens is the utterance length under which more information is needed.
const minTokens = 3

var followupReplies = map[language.Language]string{
	language.Spanish: "Puedo ayudarte, pero necesito un poco más de información. Por favor dime tu nombre y tu necesidad específica.",
	language.English: "I can help, but I need a bit more information. Please share your name and your specific need.",
}

var resolvedReplies = map[language.Language]string{
	language.Spanish: "Gracias por compartir. De acuerdo con la información disponible, hemos registrado tu solicitud. Un agente humano te llamará si es necesario. ¿Hay algo más que quieras añadir?",
	language.English: "Thank you for sharing. According to the available information, we have recorded your request. A human agent will call you if necessary. Is there anything else you want to add?",
}

// TemplateGenerator is the shipped deterministic generator. Real NLU is an
// external collaborator behind the Generator interface.
type TemplateGenerator struct{}

func NewTemplateGenerator() TemplateGenerator { return TemplateGenerator{} }

func (TemplateGenerator) Generate(lang language.Language, utterance string, _ *agent.Agent) (string, Hint) {
	if !lang.Concrete() {
		lang = language.English
	}
	if len(strings.Fields(utterance)) < minTokens {
		return followupReplies[lang], HintNeedsFollowup
	}
	return resolvedReplies[lang], HintResolved
}

var _ Generator = TemplateGenerator{}
