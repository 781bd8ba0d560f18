package transports

import (
	"context"

	"github.com/voxlane/voxlane/pkg/orchestrator"
)

// CallTransport hosts the provider-facing webhook surface and owns its own
// network lifecycle.
type CallTransport interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// ActionRenderer serializes a TurnAction into the provider's wire format.
// The core only ever produces structured actions; rendering markup is the
// transport's job.
type ActionRenderer interface {
	RenderAction(action orchestrator.TurnAction) (string, error)
	ContentType() string
}

// OutboundDialer allows transports to initiate outbound calls.
type OutboundDialer interface {
	Dial(ctx context.Context, to, from, url string) (callSID string, err error)
}

// DialOptions carries optional outbound dial settings.
type DialOptions struct {
	SendDigits string
}

// ReadyReporter allows transports to expose readiness metadata (e.g., webhook URLs).
// Implementations are optional and used for informational logging only.
type ReadyReporter interface {
	ReadyFields() map[string]any
}
