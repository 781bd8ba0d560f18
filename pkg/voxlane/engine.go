// Package voxlane assembles the call engine: storage, synthesis, metrics,
// the orchestrator, and the webhook transport.
package voxlane

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/call"
	"github.com/voxlane/voxlane/pkg/configutil"
	"github.com/voxlane/voxlane/pkg/feed"
	"github.com/voxlane/voxlane/pkg/logging"
	"github.com/voxlane/voxlane/pkg/mediastore"
	"github.com/voxlane/voxlane/pkg/metrics"
	"github.com/voxlane/voxlane/pkg/orchestrator"
	"github.com/voxlane/voxlane/pkg/providers/deepgram"
	"github.com/voxlane/voxlane/pkg/providers/elevenlabs"
	"github.com/voxlane/voxlane/pkg/providers/mock"
	"github.com/voxlane/voxlane/pkg/redact"
	"github.com/voxlane/voxlane/pkg/runner"
	"github.com/voxlane/voxlane/pkg/synth"
	"github.com/voxlane/voxlane/pkg/transports"
	"github.com/voxlane/voxlane/pkg/transports/admin"
	twiliotransport "github.com/voxlane/voxlane/pkg/transports/twilio"
)

type Engine struct {
	cfg       Config
	db        *gorm.DB
	agents    *agent.Store
	sessions  *call.Store
	hub       *feed.Hub
	transport transports.CallTransport
	dialer    transports.OutboundDialer
	memObs    *metrics.MemoryObserver
	obs       metrics.Observer
	jsonlFile *os.File
	state     atomic.Int32
	log       *slog.Logger
}

func NewEngine(cfg Config) (*Engine, error) {
	if strings.EqualFold(cfg.Environment, "production") {
		slog.SetDefault(logging.InitLogger(logging.ParseLevel(cfg.LogLevel)))
	} else {
		logging.SetDefault(cfg.LogLevel)
	}
	redact.SetEnabled(cfg.Privacy.RedactPII)

	slog.Info("voxlane_init",
		"environment", cfg.Environment,
		"transport", cfg.Transport.Provider,
		"synthesizer", cfg.Synthesis.Provider,
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if strings.Contains(cfg.Database.DSN, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&agent.Agent{}, &call.Session{}, &call.Utterance{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	media, err := mediastore.New(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}

	synthesizer, err := buildSynthesizer(cfg.Synthesis, media)
	if err != nil {
		return nil, err
	}

	memObs := metrics.NewMemoryObserver()
	sinks := []metrics.Observer{memObs}
	var jsonlFile *os.File
	if path := strings.TrimSpace(cfg.Metrics.JSONLPath); path != "" {
		jsonlFile, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		sinks = append(sinks, metrics.NewJSONLObserver(jsonlFile))
	}

	agents := agent.NewStore(db)
	sessions := call.NewStore(db)
	hub := feed.NewHub()

	if cfg.Transport.Provider != "twilio" {
		return nil, fmt.Errorf("unsupported transport provider %q", cfg.Transport.Provider)
	}
	var twilioCfg twiliotransport.Config
	if err := configutil.DecodeSettings(cfg.Transport.Settings, &twilioCfg); err != nil {
		return nil, fmt.Errorf("transport settings: %w", err)
	}

	obs := metrics.NewMultiObserver(sinks...)
	orch := orchestrator.New(orchestrator.Options{
		Config: orchestrator.Config{
			StartPath:    twilioCfg.VoicePath,
			SynthTimeout: time.Duration(configutil.IntValue(cfg.Synthesis.TimeoutMS, 5000)) * time.Millisecond,
		},
		Agents:   agents,
		Sessions: sessions,
		Synth:    synthesizer,
		Hub:      hub,
		Observer: obs,
	})

	transport := twiliotransport.New(twiliotransport.Options{
		Config:       twilioCfg,
		Orchestrator: orch,
		WatchHandler: hub,
		MediaHandler: media.Handler(),
		AdminHandler: admin.NewHandler(agents, slog.Default()),
	})

	return &Engine{
		cfg:       cfg,
		db:        db,
		agents:    agents,
		sessions:  sessions,
		hub:       hub,
		transport: transport,
		dialer:    twiliotransport.NewDialer(twilioCfg),
		memObs:    memObs,
		obs:       obs,
		jsonlFile: jsonlFile,
		log:       logging.NewComponentLogger(slog.Default(), "engine"),
	}, nil
}

func buildSynthesizer(cfg SynthesisConfig, media *mediastore.Store) (synth.Synthesizer, error) {
	switch cfg.Provider {
	case "elevenlabs":
		var settings elevenlabs.Config
		if err := configutil.DecodeSettings(cfg.Settings, &settings); err != nil {
			return nil, fmt.Errorf("elevenlabs settings: %w", err)
		}
		return elevenlabs.New(settings, media)
	case "deepgram":
		var settings deepgram.Config
		if err := configutil.DecodeSettings(cfg.Settings, &settings); err != nil {
			return nil, fmt.Errorf("deepgram settings: %w", err)
		}
		return deepgram.New(settings, media)
	case "mock", "":
		return mock.NewSynthesizer(), nil
	default:
		return nil, fmt.Errorf("unsupported synthesis provider %q", cfg.Provider)
	}
}

// Run starts the transport and blocks until ctx is canceled.
func (e *Engine) Run(ctx context.Context) error {
	e.setState(runner.StateStarting)
	if err := e.transport.Start(ctx); err != nil {
		e.setState(runner.StateStopped)
		return fmt.Errorf("start transport: %w", err)
	}
	e.setState(runner.StateRunning)
	ready := []any{"transport", e.transport.Name(), "state", e.State().String()}
	if rr, ok := e.transport.(transports.ReadyReporter); ok {
		for k, v := range rr.ReadyFields() {
			ready = append(ready, k, v)
		}
	}
	e.log.Info("voxlane_ready", ready...)

	<-ctx.Done()
	return e.Stop()
}

func (e *Engine) Stop() error {
	e.setState(runner.StateDraining)
	err := e.transport.Stop()
	if f, ok := e.obs.(metrics.Flusher); ok {
		_ = f.Flush()
	}
	if e.jsonlFile != nil {
		_ = e.jsonlFile.Close()
	}
	e.setState(runner.StateStopped)
	e.log.Info("voxlane_stopped")
	return err
}

// State reports the engine lifecycle state.
func (e *Engine) State() runner.State {
	return runner.State(e.state.Load())
}

func (e *Engine) setState(s runner.State) {
	e.state.Store(int32(s))
}

// Dialer exposes the outbound call client.
func (e *Engine) Dialer() transports.OutboundDialer { return e.dialer }

// Agents exposes the agent store for embedding applications.
func (e *Engine) Agents() *agent.Store { return e.agents }

// Sessions exposes the call session store.
func (e *Engine) Sessions() *call.Store { return e.sessions }

// Metrics returns the in-memory observer for inspection.
func (e *Engine) Metrics() *metrics.MemoryObserver { return e.memObs }

// Observer returns the full metrics fan-out, letting embedding applications
// emit their own events into the configured sinks.
func (e *Engine) Observer() metrics.Observer { return e.obs }

var _ runner.Runner = (*Engine)(nil)
