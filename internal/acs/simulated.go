package acs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SimulatedClient is an in-process stand-in for the real calling SDK.
// It honors the Client/Agent contracts (event ordering, disposal semantics,
// error codes) without any media or signaling, so sessions and event
// reflection can be exercised end to end.
//
// IMPORTANT:
// - Keep this adapter free of console business logic.
// - It should only translate boundary calls into events; decisions belong
//   to internal/session and internal/dialing.
type SimulatedClient struct{}

func NewSimulatedClient() *SimulatedClient {
	return &SimulatedClient{}
}

func (c *SimulatedClient) CreateAgent(ctx context.Context, token, userID, displayName string) (Agent, error) {
	_ = ctx
	// The real SDK rejects malformed credentials at agent creation.
	if strings.TrimSpace(token) == "" || !strings.Contains(token, ".") {
		return nil, &CallError{Code: 401, Message: "invalid credential"}
	}
	if userID == "" {
		return nil, &CallError{Code: 400, Message: "user identity is required"}
	}
	return &SimulatedAgent{
		userID:      userID,
		displayName: displayName,
		subs:        make(map[int]Handlers),
		calls:       make(map[string]CallState),
	}, nil
}

// SimulatedAgent tracks active calls in memory and delivers events
// synchronously to subscribed handlers.
type SimulatedAgent struct {
	mu sync.Mutex

	userID      string
	displayName string

	subs    map[int]Handlers
	nextSub int

	calls    map[string]CallState
	disposed bool
}

var errAgentDisposed = errors.New("acs: agent is disposed")

func (a *SimulatedAgent) Subscribe(h Handlers) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = h
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *SimulatedAgent) StartCall(ctx context.Context, loc Locator) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkLocator(loc); err != nil {
		return "", err
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return "", errAgentDisposed
	}
	callID := uuid.NewString()
	a.calls[callID] = CallStateConnecting
	a.mu.Unlock()

	a.emit(func(h Handlers) {
		if h.CallsUpdated != nil {
			h.CallsUpdated(CallsUpdated{Added: []string{callID}})
		}
	})
	a.setState(callID, CallStateConnecting)
	a.setState(callID, CallStateConnected)
	return callID, nil
}

// DeliverIncomingCall injects an incoming call, as push delivery would.
// The call waits in ringing state until accepted or rejected.
func (a *SimulatedAgent) DeliverIncomingCall(callerID, callerDisplayName string) (string, error) {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return "", errAgentDisposed
	}
	callID := uuid.NewString()
	a.calls[callID] = CallStateRinging
	a.mu.Unlock()

	a.emit(func(h Handlers) {
		if h.IncomingCall != nil {
			h.IncomingCall(IncomingCall{CallID: callID, CallerID: callerID, CallerDisplayName: callerDisplayName})
		}
	})
	return callID, nil
}

func (a *SimulatedAgent) Accept(ctx context.Context, callID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	state, ok := a.calls[callID]
	if !ok || a.disposed {
		a.mu.Unlock()
		return &CallError{Code: 404, Message: "call not found"}
	}
	if state != CallStateRinging {
		a.mu.Unlock()
		return &CallError{Code: 480, Message: "call is not ringing"}
	}
	a.mu.Unlock()

	a.emit(func(h Handlers) {
		if h.CallsUpdated != nil {
			h.CallsUpdated(CallsUpdated{Added: []string{callID}})
		}
	})
	a.setState(callID, CallStateConnected)
	return nil
}

func (a *SimulatedAgent) Reject(ctx context.Context, callID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.end(callID, 603, 0)
}

func (a *SimulatedAgent) Hangup(ctx context.Context, callID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.end(callID, 0, 0)
}

func (a *SimulatedAgent) Dispose(ctx context.Context) error {
	_ = ctx
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return nil
	}
	a.disposed = true
	remaining := make([]string, 0, len(a.calls))
	for id := range a.calls {
		remaining = append(remaining, id)
	}
	a.mu.Unlock()

	for _, id := range remaining {
		a.setState(id, CallStateDisconnected)
		a.emit(func(h Handlers) {
			if h.CallEnded != nil {
				h.CallEnded(CallEnded{CallID: id})
			}
		})
	}

	a.mu.Lock()
	a.calls = map[string]CallState{}
	a.subs = map[int]Handlers{}
	a.mu.Unlock()
	return nil
}

func (a *SimulatedAgent) end(callID string, code, subCode int) error {
	a.mu.Lock()
	if _, ok := a.calls[callID]; !ok || a.disposed {
		a.mu.Unlock()
		return &CallError{Code: 404, Message: "call not found"}
	}
	delete(a.calls, callID)
	a.mu.Unlock()

	a.emit(func(h Handlers) {
		if h.CallStateChanged != nil {
			h.CallStateChanged(CallStateChange{CallID: callID, State: CallStateDisconnected})
		}
	})
	a.emit(func(h Handlers) {
		if h.CallsUpdated != nil {
			h.CallsUpdated(CallsUpdated{Removed: []string{callID}})
		}
		if h.CallEnded != nil {
			h.CallEnded(CallEnded{CallID: callID, Code: code, SubCode: subCode})
		}
	})
	return nil
}

func (a *SimulatedAgent) setState(callID string, state CallState) {
	a.mu.Lock()
	if _, ok := a.calls[callID]; ok {
		a.calls[callID] = state
	}
	a.mu.Unlock()

	a.emit(func(h Handlers) {
		if h.CallStateChanged != nil {
			h.CallStateChanged(CallStateChange{CallID: callID, State: state})
		}
	})
}

// emit invokes fn for each subscriber outside the agent lock so handlers
// may call back into the agent.
func (a *SimulatedAgent) emit(fn func(Handlers)) {
	a.mu.Lock()
	handlers := make([]Handlers, 0, len(a.subs))
	for _, h := range a.subs {
		handlers = append(handlers, h)
	}
	a.mu.Unlock()

	for _, h := range handlers {
		fn(h)
	}
}

func checkLocator(loc Locator) error {
	switch l := loc.(type) {
	case GroupLocator:
		if l.GroupID == "" {
			return &CallError{Code: 400, Message: "group id is required"}
		}
	case MeetingLocator:
		if l.MeetingLink == "" {
			return &CallError{Code: 400, Message: "meeting link is required"}
		}
	case RoomLocator:
		if l.RoomID == "" {
			return &CallError{Code: 400, Message: "room id is required"}
		}
	case UserLocator:
		if l.CommunicationUserID == "" {
			return &CallError{Code: 400, Message: "target user id is required"}
		}
	case PhoneLocator:
		if l.PhoneNumber == "" {
			return &CallError{Code: 400, Message: "phone number is required"}
		}
		if l.AlternateCallerID == "" {
			return &CallError{Code: 400, Message: "alternate caller id is required"}
		}
	case nil:
		return &CallError{Code: 400, Message: "locator is required"}
	default:
		return &CallError{Code: 400, Message: "unsupported locator"}
	}
	return nil
}
