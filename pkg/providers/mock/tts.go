package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/synth"
)

// Synthesizer is a deterministic stand-in for a TTS vendor. It is the
// shipped default: with no AudioRef configured it reports failure, which the
// orchestrator turns into a speech-markup fallback.
type Synthesizer struct {
	mu       sync.Mutex
	AudioRef string
	Fail     bool
	calls    []string
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Fail: true}
}

func (s *Synthesizer) Name() string { return "mock_tts" }

func (s *Synthesizer) Synthesize(_ context.Context, text string, _ *agent.Agent) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	fail, ref := s.Fail, s.AudioRef
	s.mu.Unlock()
	if fail || ref == "" {
		return "", errors.New("mock synthesis unavailable")
	}
	return ref, nil
}

// Calls returns the texts synthesized so far.
func (s *Synthesizer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

var _ synth.Synthesizer = (*Synthesizer)(nil)
