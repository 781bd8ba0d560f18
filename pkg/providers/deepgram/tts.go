package deepgram

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

const defaultBaseURL = "https://api.deepgram.com"

type Config struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Synthesizer calls the Deepgram speak REST endpoint and hosts the returned
// audio through the media store.
type Synthesizer struct {
	cfg    Config
	client *http.Client
	media  *mediastore.Store
	retry  resilience.RetryPolicy
	log    *slog.Logger
}

func New(cfg Config, media *mediastore.Store) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing deepgram api key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "aura-asteria-en"
	}
	if media == nil {
		return nil, errors.New("missing media store")
	}
	return &Synthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		media:  media,
		retry:  resilience.NewRetryPolicy(1, 200*time.Millisecond),
		log:    logging.NewComponentLogger(slog.Default(), "deepgram_tts"),
	}, nil
}

func (s *Synthesizer) Name() string { return "deepgram_tts" }

func (s *Synthesizer) Synthesize(ctx context.Context, text string, _ *agent.Agent) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1/speak?model=%s", s.cfg.BaseURL, s.cfg.Model)

	var audio []byte
	var rateLimited error
	err = s.retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Token "+s.cfg.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			s.log.Warn("deepgram_rate_limited", "status", resp.Status)
			rateLimited = resilience.RateLimitError{Provider: "deepgram", Message: resp.Status}
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("deepgram speak status %s", resp.Status)
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
