// Package synth defines the text-to-speech capability boundary. The core
// treats synthesis failure as recoverable: callers fall back to direct
// speech markup and never surface the error to the transport response.
package synth

import (
	"context"

	"github.com/voxlane/voxlane/pkg/agent"
)

// Synthesizer converts reply text into a playable audio reference. The
// returned audioRef must be a URL the telephony provider can fetch. A failed
// or timed-out synthesis returns an error; implementations must respect ctx
// so a bounded timeout turns into a failure rather than a hang.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, ag *agent.Agent) (audioRef string, err error)
}
