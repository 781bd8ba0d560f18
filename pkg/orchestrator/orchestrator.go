// Package orchestrator sequences one webhook event into a turn: agent and
// session lookup, language detection, reply generation, synthesis with
// fallback, transcript persistence, and the resulting TurnAction.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/call"
	"github.com/voxlane/voxlane/pkg/errorsx"
	"github.com/voxlane/voxlane/pkg/feed"
	"github.com/voxlane/voxlane/pkg/language"
	"github.com/voxlane/voxlane/pkg/logging"
	"github.com/voxlane/voxlane/pkg/metrics"
	"github.com/voxlane/voxlane/pkg/redact"
	"github.com/voxlane/voxlane/pkg/resilience"
	"github.com/voxlane/voxlane/pkg/respond"
	"github.com/voxlane/voxlane/pkg/synth"
)

// Fixed caller-facing messages. The greeting deliberately mixes both
// languages so the caller can pick one.
const (
	greetingMessage      = "Hola. Para continuar en español, diga español. For English, say English."
	notConfiguredMessage = "Sorry, this number is not configured."
	callNotFoundMessage  = "Call not found."
	unavailableMessage   = "We are unable to take your call right now. Please try again later."
)

// PostCallHook runs after a call completes, e.g. an SMS summary sender.
// No hook ships with the core.
type PostCallHook interface {
	OnCallComplete(ctx context.Context, sess *call.Session)
}

type Config struct {
	// StartPath is the call-start entry point used as the no-input
	// redirect target.
	StartPath string
	// SynthTimeout bounds one synthesis attempt; exceeding it counts as a
	// synthesis failure and triggers the speech fallback.
	SynthTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StartPath == "" {
		c.StartPath = "/twilio/voice"
	}
	if c.SynthTimeout <= 0 {
		c.SynthTimeout = 5 * time.Second
	}
	return c
}

type Orchestrator struct {
	cfg       Config
	agents    agent.Directory
	sessions  *call.Store
	generator respond.Generator
	synth     synth.Synthesizer
	breaker   *resilience.CircuitBreaker
	hub       *feed.Hub
	obs       metrics.Observer
	hook      PostCallHook
	log       *slog.Logger
}

type Options struct {
	Config    Config
	Agents    agent.Directory
	Sessions  *call.Store
	Generator respond.Generator
	Synth     synth.Synthesizer
	Hub       *feed.Hub
	Observer  metrics.Observer
	Hook      PostCallHook
	Logger    *slog.Logger
}

func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	gen := opts.Generator
	if gen == nil {
		gen = respond.NewTemplateGenerator()
	}
	return &Orchestrator{
		cfg:       opts.Config.withDefaults(),
		agents:    opts.Agents,
		sessions:  opts.Sessions,
		generator: gen,
		synth:     opts.Synth,
		breaker:   resilience.NewCircuitBreaker(3, 30*time.Second),
		hub:       opts.Hub,
		obs:       obs,
		hook:      opts.Hook,
		log:       logging.NewComponentLogger(logger, "orchestrator"),
	}
}

// OnCallStart handles the initial voice webhook: it resolves the agent
// answering the dialed number, creates the session idempotently, and greets
// the caller with a language prompt.
func (o *Orchestrator) OnCallStart(ctx context.Context, evt StartEvent) TurnAction {
	ag, err := o.agents.FindByPhoneNumber(ctx, evt.To)
	if err != nil {
		o.log.Error("agent_lookup_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
		return speakAndEnd(unavailableMessage)
	}
	if ag == nil {
		o.log.Warn("agent_not_configured", "to", evt.To, "call_sid", evt.CallSID,
			"reason_code", string(errorsx.ReasonAgentNotConfigured))
		metrics.Count(o.obs, metrics.EventAgentNotFound, map[string]string{"to": evt.To})
		return speakAndEnd(notConfiguredMessage)
	}

	if _, err := o.sessions.GetOrCreate(ctx, evt.CallSID, ag.TenantID, ag.ID, evt.From, evt.To); err != nil {
		o.log.Error("session_create_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
		return speakAndEnd(unavailableMessage)
	}

	o.log.Info("call_start", "call_sid", evt.CallSID, "agent_id", ag.ID, "tenant_id", ag.TenantID)
	metrics.Count(o.obs, metrics.EventCallStart, map[string]string{"agent_id": ag.ID})

	return TurnAction{
		Kind:              ActionSpeak,
		Text:              greetingMessage,
		Language:          language.Spanish,
		Voice:             "woman",
		FollowUpGather:    true,
		RedirectOnNoInput: o.cfg.StartPath,
	}
}

// OnSpeechResult handles one recognized utterance: detect language, generate
// the reply, attempt synthesis with fallback, record the turn, and answer
// with a gather so the conversation continues.
func (o *Orchestrator) OnSpeechResult(ctx context.Context, evt SpeechEvent) TurnAction {
	sess, err := o.sessions.Get(ctx, evt.CallSID)
	if errors.Is(err, call.ErrNotFound) || errors.Is(err, call.ErrEmptyCallID) {
		o.log.Warn("session_not_found", "call_sid", evt.CallSID,
			"reason_code", string(errorsx.ReasonSessionNotFound))
		metrics.Count(o.obs, metrics.EventSessionNotFound, nil)
		return speakAndEnd(callNotFoundMessage)
	}
	if err != nil {
		o.log.Error("session_lookup_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
		return speakAndEnd(unavailableMessage)
	}

	utterance := strings.TrimSpace(evt.Utterance)
	lang := language.Detect(sess.Language, utterance)

	ag, err := o.agents.FindByID(ctx, sess.AgentID)
	if err != nil {
		o.log.Error("agent_lookup_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
	}

	reply, hint := o.generator.Generate(lang, utterance, ag)
	audioRef := o.trySynthesize(ctx, evt.CallSID, reply, ag)

	sess, err = o.sessions.RecordTurn(ctx, evt.CallSID, utterance, lang, reply, hint == respond.HintNeedsFollowup)
	if errors.Is(err, call.ErrFrozen) {
		o.log.Info("turn_after_completion", "call_sid", evt.CallSID,
			"reason_code", string(errorsx.ReasonSessionFrozen))
		return speakAndEnd(reply)
	}
	if err != nil {
		o.log.Error("record_turn_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
		return speakAndEnd(unavailableMessage)
	}

	o.log.Info("turn_recorded",
		"call_sid", evt.CallSID,
		"language", string(lang),
		"hint", string(hint),
		"utterance", redact.Text(utterance),
	)
	metrics.Count(o.obs, metrics.EventTurnRecorded, map[string]string{
		"call_sid": evt.CallSID,
		"language": string(lang),
	})
	o.publishTurn(evt.CallSID, call.SpeakerCaller, utterance, lang)
	o.publishTurn(evt.CallSID, call.SpeakerAssistant, reply, lang)

	action := TurnAction{
		Kind:              ActionSpeak,
		Text:              reply,
		Language:          lang,
		FollowUpGather:    true,
		RedirectOnNoInput: o.cfg.StartPath,
	}
	if audioRef != "" {
		action.Kind = ActionPlayAudio
		action.AudioRef = audioRef
		action.Text = ""
	}
	return action
}

// OnStatusChange finalizes the session when the provider reports the call
// completed. Every other status is acknowledged without side effects, and
// unknown call ids are ignored: status callbacks are delivered at least once
// and out of order.
func (o *Orchestrator) OnStatusChange(ctx context.Context, evt StatusEvent) {
	if normalizeProviderStatus(evt.Status) != "completed" {
		return
	}
	sess, err := o.sessions.Complete(ctx, evt.CallSID)
	if err != nil {
		o.log.Error("complete_failed", "call_sid", evt.CallSID, "error", err.Error(),
			"reason_code", string(errorsx.Reason(err)))
		return
	}
	if sess == nil {
		return
	}
	o.log.Info("call_completed", "call_sid", evt.CallSID, "status", string(sess.Status),
		"turns", len(sess.Transcript)/2)
	metrics.Count(o.obs, metrics.EventCallCompleted, map[string]string{
		"call_sid": evt.CallSID,
		"status":   string(sess.Status),
	})
	if o.hook != nil {
		o.hook.OnCallComplete(ctx, sess)
	}
}

// trySynthesize runs the synthesizer under a bounded timeout and a circuit
// breaker. Any failure returns "" so the caller falls back to direct speech.
func (o *Orchestrator) trySynthesize(ctx context.Context, callSID, text string, ag *agent.Agent) string {
	if o.synth == nil {
		return ""
	}
	if !o.breaker.Allow() {
		o.log.Warn("synthesis_skipped_circuit_open", "call_sid", callSID)
		return ""
	}
	sctx, cancel := context.WithTimeout(ctx, o.cfg.SynthTimeout)
	defer cancel()
	audioRef, err := o.synth.Synthesize(sctx, text, ag)
	if err != nil {
		o.breaker.OnError(err)
		reason := errorsx.ReasonSynthesis
		if errors.Is(sctx.Err(), context.DeadlineExceeded) {
			reason = errorsx.ReasonSynthesisTimeout
		} else if resilience.IsRateLimit(err) {
			reason = errorsx.ReasonSynthesisRateLimit
		}
		o.log.Warn("synthesis_fallback",
			"call_sid", callSID,
			"provider", o.synth.Name(),
			"error", err.Error(),
			"reason_code", string(reason),
		)
		metrics.Count(o.obs, metrics.EventSynthesisFallback, map[string]string{"provider": o.synth.Name()})
		return ""
	}
	o.breaker.OnSuccess()
	return audioRef
}

func (o *Orchestrator) publishTurn(callSID string, speaker call.Speaker, text string, lang language.Language) {
	if o.hub == nil {
		return
	}
	o.hub.Publish(feed.TurnEvent{
		CallSID:   callSID,
		Speaker:   string(speaker),
		Text:      text,
		Language:  string(lang),
		Timestamp: time.Now().UTC(),
	})
}

func speakAndEnd(text string) TurnAction {
	return TurnAction{Kind: ActionSpeak, Text: text, Language: language.English}
}

// normalizeProviderStatus folds raw provider call statuses into lifecycle
// buckets. Anything non-terminal maps to "".
func normalizeProviderStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "ringing", "in-progress", "inprogress", "":
		return ""
	case "completed", "call_ended", "call-ended", "hangup":
		return "completed"
	case "busy":
		return "busy"
	case "no_answer", "noanswer", "no-answer":
		return "no_answer"
	case "failed", "error", "canceled", "cancelled":
		return "failed"
	default:
		return "unknown"
	}
}
