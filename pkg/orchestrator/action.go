package orchestrator

import "github.com/voxlane/voxlane/pkg/language"

// ActionKind selects how the transport voices a turn.
type ActionKind string

const (
	ActionSpeak     ActionKind = "SPEAK"
	ActionPlayAudio ActionKind = "PLAY_AUDIO"
)

// TurnAction is the structured instruction handed to the call transport.
// The core never builds provider markup; the transport serializes this into
// its own wire format. An action with FollowUpGather false and no redirect
// ends the interaction after voicing.
type TurnAction struct {
	Kind     ActionKind
	Text     string
	AudioRef string
	// Language tags the spoken text for the provider's voice engine.
	Language language.Language
	// Voice optionally names a provider voice for the spoken text.
	Voice string
	// FollowUpGather asks the transport to collect another speech input.
	FollowUpGather bool
	// RedirectOnNoInput is the entry-point target re-invoked on silence.
	RedirectOnNoInput string
}

// StartEvent is the typed payload of the call-start webhook.
type StartEvent struct {
	From    string
	To      string
	CallSID string
}

// SpeechEvent is the typed payload of the speech-result webhook.
// Utterance may be empty when recognition produced nothing.
type SpeechEvent struct {
	CallSID   string
	Utterance string
	From      string
	To        string
}

// StatusEvent is the typed payload of the status callback webhook.
type StatusEvent struct {
	CallSID string
	Status  string
}
