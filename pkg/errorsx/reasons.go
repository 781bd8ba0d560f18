package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonAgentLookup        ReasonCode = "agent_lookup"
	ReasonAgentNotConfigured ReasonCode = "agent_not_configured"
	ReasonAgentNotFound      ReasonCode = "agent_not_found"

	ReasonSessionStore    ReasonCode = "session_store"
	ReasonSessionNotFound ReasonCode = "session_not_found"
	ReasonSessionFrozen   ReasonCode = "session_frozen"

	ReasonSynthesis          ReasonCode = "synthesis_failed"
	ReasonSynthesisTimeout   ReasonCode = "synthesis_timeout"
	ReasonSynthesisRateLimit ReasonCode = "synthesis_rate_limit"

	ReasonTransportInvalidSignature ReasonCode = "webhook_invalid_signature"
	ReasonValidation                ReasonCode = "webhook_validation"
	ReasonTransportSend             ReasonCode = "transport_send"
)
