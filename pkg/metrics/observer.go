package metrics

import "time"

// Event names emitted by the call orchestrator.
const (
	EventCallStart         = "call_start"
	EventTurnRecorded      = "turn_recorded"
	EventSynthesisFallback = "synthesis_fallback"
	EventCallCompleted     = "call_completed"
	EventAgentNotFound     = "agent_not_configured"
	EventSessionNotFound   = "session_not_found"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// Count records a counter-style event with value 1.
func Count(obs Observer, name string, tags map[string]string) {
	if obs == nil {
		return
	}
	obs.RecordEvent(MetricsEvent{Name: name, Time: time.Now(), Value: 1, Tags: tags})
}

// MultiObserver fans an event out to several sinks.
type MultiObserver struct {
	sinks []Observer
}

func NewMultiObserver(sinks ...Observer) *MultiObserver {
	return &MultiObserver{sinks: sinks}
}

func (m *MultiObserver) RecordEvent(ev MetricsEvent) {
	for _, s := range m.sinks {
		s.RecordEvent(ev)
	}
}

// Flush flushes every sink that buffers, returning the first error.
func (m *MultiObserver) Flush() error {
	var first error
	for _, s := range m.sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
