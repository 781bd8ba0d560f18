// Package mock provides an in-memory call transport for local testing and
// integration. It drives the orchestrator directly instead of serving
// provider webhooks.
package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/voxlane/voxlane/pkg/orchestrator"
	"github.com/voxlane/voxlane/pkg/transports"
)

type Transport struct {
	orch    *orchestrator.Orchestrator
	closed  atomic.Bool
	mu      sync.Mutex
	actions []orchestrator.TurnAction
}

func New(orch *orchestrator.Orchestrator) *Transport {
	return &Transport{orch: orch}
}

func (t *Transport) Name() string { return "mock" }

func (t *Transport) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		<-ctx.Done()
		_ = t.Stop()
	}()
	return nil
}

func (t *Transport) Stop() error {
	t.closed.Store(true)
	return nil
}

// StartCall simulates the provider's initial voice webhook.
func (t *Transport) StartCall(ctx context.Context, from, to, callSID string) orchestrator.TurnAction {
	action := t.orch.OnCallStart(ctx, orchestrator.StartEvent{From: from, To: to, CallSID: callSID})
	t.record(action)
	return action
}

// Speak simulates one recognized caller utterance.
func (t *Transport) Speak(ctx context.Context, callSID, utterance string) orchestrator.TurnAction {
	action := t.orch.OnSpeechResult(ctx, orchestrator.SpeechEvent{CallSID: callSID, Utterance: utterance})
	t.record(action)
	return action
}

// EndCall simulates the provider's terminal status callback.
func (t *Transport) EndCall(ctx context.Context, callSID string) {
	t.orch.OnStatusChange(ctx, orchestrator.StatusEvent{CallSID: callSID, Status: "completed"})
}

// Actions exposes the produced turn actions for inspection.
func (t *Transport) Actions() []orchestrator.TurnAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]orchestrator.TurnAction, len(t.actions))
	copy(out, t.actions)
	return out
}

func (t *Transport) record(action orchestrator.TurnAction) {
	if t.closed.Load() {
		return
	}
	t.mu.Lock()
	t.actions = append(t.actions, action)
	t.mu.Unlock()
}

var _ transports.CallTransport = (*Transport)(nil)
