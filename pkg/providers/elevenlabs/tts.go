package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/logging"
	"github.com/voxlane/voxlane/pkg/mediastore"
	"github.com/voxlane/voxlane/pkg/resilience"
	"github.com/voxlane/voxlane/pkg/synth"
)

const defaultBaseURL = "https://api.elevenlabs.io"

type Config struct {
	APIKey  string `mapstructure:"api_key"`
	VoiceID string `mapstructure:"voice_id"`
	ModelID string `mapstructure:"model_id"`
	BaseURL string `mapstructure:"base_url"`
}

// Synthesizer fetches MP3 audio from the ElevenLabs REST API and hosts it
// through the media store. The per-agent voice id overrides the configured
// default when present.
type Synthesizer struct {
	cfg    Config
	client *http.Client
	media  *mediastore.Store
	retry  resilience.RetryPolicy
	log    *slog.Logger
}

func New(cfg Config, media *mediastore.Store) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing elevenlabs api key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if media == nil {
		return nil, errors.New("missing media store")
	}
	return &Synthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		media:  media,
		retry:  resilience.NewRetryPolicy(1, 200*time.Millisecond),
		log:    logging.NewComponentLogger(slog.Default(), "elevenlabs_tts"),
	}, nil
}

func (s *Synthesizer) Name() string { return "elevenlabs_tts" }

func (s *Synthesizer) Synthesize(ctx context.Context, text string, ag *agent.Agent) (string, error) {
	voice := s.cfg.VoiceID
	if ag != nil && ag.VoiceID != "" {
		voice = ag.VoiceID
	}
	if voice == "" {
		return "", errors.New("missing voice id")
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": s.cfg.ModelID,
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.cfg.BaseURL, voice)

	// Transient failures are retried; a rate limit ends the attempt so the
	// caller's circuit breaker sees it.
	var audio []byte
	var rateLimited error
	err = s.retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/mpeg")
		req.Header.Set("xi-api-key", s.cfg.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			s.log.Warn("elevenlabs_rate_limited", "status", resp.Status)
			rateLimited = resilience.RateLimitError{Provider: "elevenlabs", Message: resp.Status}
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("elevenlabs tts status %s", resp.Status)
		}
		audio, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return "", err
	}
	if rateLimited != nil {
		return "", rateLimited
	}
	return s.media.Put(uuid.NewString()+".mp3", audio)
}

var _ synth.Synthesizer = (*Synthesizer)(nil)
