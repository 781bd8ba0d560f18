package twilio

import (
	"github.com/twilio/twilio-go/twiml"

	"github.com/voxlane/voxlane/pkg/language"
	"github.com/voxlane/voxlane/pkg/orchestrator"
)

// voiceLanguage maps a session language to Twilio's Say language tags.
func voiceLanguage(lang language.Language) string {
	if lang == language.Spanish {
		return "es-ES"
	}
	return "en-US"
}

// renderAction serializes a TurnAction into a TwiML voice document. The
// gather posts speech results to the speech webhook; the redirect re-invokes
// the start entry point when the caller stays silent.
func (t *Transport) renderAction(action orchestrator.TurnAction) (string, error) {
	var verbs []twiml.Element

	switch action.Kind {
	case orchestrator.ActionPlayAudio:
		verbs = append(verbs, &twiml.VoicePlay{Url: action.AudioRef})
	default:
		verbs = append(verbs, &twiml.VoiceSay{
			Message:  action.Text,
			Voice:    action.Voice,
			Language: voiceLanguage(action.Language),
		})
	}

	if action.FollowUpGather {
		verbs = append(verbs, &twiml.VoiceGather{
			Input:         "speech",
			Action:        t.cfg.SpeechPath,
			Method:        "POST",
			SpeechTimeout: "auto",
			Language:      voiceLanguage(action.Language),
		})
	}
	if action.RedirectOnNoInput != "" {
		verbs = append(verbs, &twiml.VoiceRedirect{
			Url:    action.RedirectOnNoInput,
			Method: "POST",
		})
	}
	return twiml.Voice(verbs)
}

// RenderAction exposes the renderer for callers outside the HTTP handlers.
func (t *Transport) RenderAction(action orchestrator.TurnAction) (string, error) {
	return t.renderAction(action)
}

// ContentType is the MIME type of rendered documents.
func (t *Transport) ContentType() string { return "text/xml" }
