package voxlane

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/voxlane/voxlane/pkg/metrics"
	"github.com/voxlane/voxlane/pkg/runner"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Environment: "test",
		LogLevel:    "info",
		Database:    DatabaseConfig{DSN: ":memory:"},
		Transport: TransportConfig{
			Provider: "twilio",
			Settings: map[string]any{"server_addr": "127.0.0.1:0"},
		},
		Synthesis: SynthesisConfig{Provider: "mock"},
		Media:     MediaConfig{Dir: t.TempDir(), BaseURL: "http://localhost/media"},
	}
}

func TestEngineLifecycleStates(t *testing.T) {
	engine, err := NewEngine(testConfig(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine.State() != runner.StateNew {
		t.Fatalf("expected new state, got %s", engine.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for engine.State() != runner.StateRunning && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if engine.State() != runner.StateRunning {
		t.Fatalf("expected running state, got %s", engine.State())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	if engine.State() != runner.StateStopped {
		t.Fatalf("expected stopped state, got %s", engine.State())
	}
}

func TestEngineFlushesMetricsOnStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.JSONLPath = filepath.Join(t.TempDir(), "metrics.jsonl")

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Observer().RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventCallStart,
		Time:  time.Now(),
		Value: 1,
	})
	if err := engine.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	data, err := os.ReadFile(cfg.Metrics.JSONLPath)
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	if !strings.Contains(string(data), metrics.EventCallStart) {
		t.Fatalf("expected flushed event in jsonl, got %q", data)
	}
	if engine.Metrics().CountByName(metrics.EventCallStart) != 1 {
		t.Fatalf("expected event mirrored in memory observer")
	}
}

func TestEngineRejectsUnknownProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transport.Provider = "carrier-pigeon"
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected error for unknown transport provider")
	}

	cfg = testConfig(t)
	cfg.Synthesis.Provider = "tin-can"
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected error for unknown synthesis provider")
	}
}
