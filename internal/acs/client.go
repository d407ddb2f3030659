package acs

import "context"

// Client is the provider-agnostic surface of the calling SDK that the
// console consumes.
//
// Rules:
// - No SDK calls outside this package's adapters.
// - Requests are fire-and-await: no retry, timeout, or cancellation logic
//   of our own beyond the caller's context.
// - Keep request/response types provider-agnostic.
type Client interface {
	// CreateAgent builds a call agent bound to a user identity and display
	// name, authenticated with an opaque bearer token.
	CreateAgent(ctx context.Context, token, userID, displayName string) (Agent, error)
}

// Agent is a live call agent. One agent serves one console session.
type Agent interface {
	// Subscribe registers the handler set once and returns the matching
	// unsubscribe function. Handlers must be registered once per agent
	// instance and explicitly unregistered on disposal, never re-registered
	// per render or per request.
	Subscribe(h Handlers) (unsubscribe func())

	// StartCall places an outbound call to the locator and returns the
	// call id.
	StartCall(ctx context.Context, loc Locator) (string, error)

	Accept(ctx context.Context, callID string) error
	Reject(ctx context.Context, callID string) error
	Hangup(ctx context.Context, callID string) error

	// Dispose tears the agent down and ends any remaining calls.
	Dispose(ctx context.Context) error
}

// Handlers is the bounded set of notifications an agent can deliver.
// Nil entries are skipped. Implementations invoke handlers sequentially;
// a handler must tolerate repeated identical events.
type Handlers struct {
	IncomingCall     func(IncomingCall)
	CallsUpdated     func(CallsUpdated)
	CallStateChanged func(CallStateChange)
	CallEnded        func(CallEnded)
}

// CallState mirrors the SDK's call state values.
type CallState string

const (
	CallStateNone          CallState = "none"
	CallStateConnecting    CallState = "connecting"
	CallStateRinging       CallState = "ringing"
	CallStateConnected     CallState = "connected"
	CallStateDisconnecting CallState = "disconnecting"
	CallStateDisconnected  CallState = "disconnected"
)

type IncomingCall struct {
	CallID            string `json:"callId"`
	CallerID          string `json:"callerId"`
	CallerDisplayName string `json:"callerDisplayName"`
}

// CallsUpdated reports call ids added to or removed from the agent.
type CallsUpdated struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

type CallStateChange struct {
	CallID string    `json:"callId"`
	State  CallState `json:"state"`
}

type CallEnded struct {
	CallID  string `json:"callId"`
	Code    int    `json:"code"`
	SubCode int    `json:"subCode"`
}
