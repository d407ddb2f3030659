package events

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"acs-call-console/internal/acs"
)

// transientClearAfter is how long transient status text stays on screen.
// Fixed, not configurable.
const transientClearAfter = 4 * time.Second

// Broadcaster receives every display-state change. *Hub satisfies it.
type Broadcaster interface {
	Broadcast(v any)
}

// DisplayState is the console's view of the SDK's world: a plain copy of
// notification payloads, never a source of truth. The SDK owns call and
// participant lifecycles; this is only what the browser renders.
type DisplayState struct {
	ActiveCalls []string      `json:"activeCalls,omitempty"`
	CallID      string        `json:"callId,omitempty"`
	CallState   acs.CallState `json:"callState,omitempty"`

	IncomingCallID     string `json:"incomingCallId,omitempty"`
	IncomingCallerID   string `json:"incomingCallerId,omitempty"`
	IncomingCallerName string `json:"incomingCallerName,omitempty"`

	// StatusMessage and LastError are transient; they auto-clear.
	StatusMessage string `json:"statusMessage,omitempty"`
	LastError     string `json:"lastError,omitempty"`
}

// Reflector copies SDK notifications into DisplayState and pushes each
// change to the broadcaster. Handlers are idempotent for repeated identical
// events and never propagate failures; a panicking handler is caught and
// logged. Close cancels pending auto-clear timers so teardown leaves none
// dangling.
type Reflector struct {
	mu sync.Mutex

	out Broadcaster
	log *slog.Logger

	state      DisplayState
	timers     map[string]*time.Timer
	clearAfter time.Duration
	closed     bool
}

func NewReflector(out Broadcaster, log *slog.Logger) *Reflector {
	if log == nil {
		log = slog.Default()
	}
	return &Reflector{
		out:        out,
		log:        log,
		timers:     make(map[string]*time.Timer),
		clearAfter: transientClearAfter,
	}
}

// Handlers returns the agent handler set. Register it once per agent and
// unregister via the agent's unsubscribe on disposal.
func (r *Reflector) Handlers() acs.Handlers {
	return acs.Handlers{
		IncomingCall:     safe(r.log, "incomingCall", r.handleIncomingCall),
		CallsUpdated:     safe(r.log, "callsUpdated", r.handleCallsUpdated),
		CallStateChanged: safe(r.log, "stateChanged", r.handleCallStateChanged),
		CallEnded:        safe(r.log, "callEnded", r.handleCallEnded),
	}
}

// ReportError surfaces an adapter failure as a transient message.
func (r *Reflector) ReportError(err error) {
	if err == nil {
		return
	}
	msg := acs.Explain(err)
	r.mutate(func(s *DisplayState) bool {
		if s.LastError == msg {
			return false
		}
		s.LastError = msg
		return true
	})
	r.scheduleClear("lastError", func(s *DisplayState) { s.LastError = "" })
}

// Snapshot returns a copy of the current display state.
func (r *Reflector) Snapshot() DisplayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.state
	out.ActiveCalls = slices.Clone(r.state.ActiveCalls)
	return out
}

// Reset returns the display to its idle state, keeping no per-call leftovers.
// Called when a session disconnects.
func (r *Reflector) Reset() {
	r.mutate(func(s *DisplayState) bool {
		*s = DisplayState{}
		return true
	})
}

// Close cancels pending auto-clear timers. The reflector must not be used
// after Close.
func (r *Reflector) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}

func (r *Reflector) handleIncomingCall(e acs.IncomingCall) {
	r.mutate(func(s *DisplayState) bool {
		if s.IncomingCallID == e.CallID {
			return false
		}
		s.IncomingCallID = e.CallID
		s.IncomingCallerID = e.CallerID
		s.IncomingCallerName = e.CallerDisplayName
		return true
	})
}

func (r *Reflector) handleCallsUpdated(e acs.CallsUpdated) {
	r.mutate(func(s *DisplayState) bool {
		changed := false
		for _, id := range e.Added {
			if !slices.Contains(s.ActiveCalls, id) {
				s.ActiveCalls = append(s.ActiveCalls, id)
				changed = true
			}
		}
		for _, id := range e.Removed {
			if i := slices.Index(s.ActiveCalls, id); i >= 0 {
				s.ActiveCalls = slices.Delete(s.ActiveCalls, i, i+1)
				changed = true
			}
		}
		return changed
	})
}

func (r *Reflector) handleCallStateChanged(e acs.CallStateChange) {
	r.mutate(func(s *DisplayState) bool {
		if s.CallID == e.CallID && s.CallState == e.State {
			return false
		}
		s.CallID = e.CallID
		s.CallState = e.State
		if s.IncomingCallID == e.CallID && e.State == acs.CallStateConnected {
			s.IncomingCallID = ""
			s.IncomingCallerID = ""
			s.IncomingCallerName = ""
		}
		return true
	})
}

func (r *Reflector) handleCallEnded(e acs.CallEnded) {
	msg := "Call ended"
	if e.Code != 0 {
		msg = acs.Explain(&acs.CallError{Code: e.Code, SubCode: e.SubCode, Message: "call ended"})
	}
	r.mutate(func(s *DisplayState) bool {
		changed := false
		if s.CallID == e.CallID {
			s.CallID = ""
			s.CallState = acs.CallStateNone
			changed = true
		}
		if s.IncomingCallID == e.CallID {
			s.IncomingCallID = ""
			s.IncomingCallerID = ""
			s.IncomingCallerName = ""
			changed = true
		}
		if s.StatusMessage != msg {
			s.StatusMessage = msg
			changed = true
		}
		return changed
	})
	r.scheduleClear("statusMessage", func(s *DisplayState) { s.StatusMessage = "" })
}

// mutate applies fn to the state under lock and broadcasts a snapshot when
// fn reports a change. No-op mutations stay silent, which is what makes
// repeated identical events idempotent.
func (r *Reflector) mutate(fn func(*DisplayState) bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	changed := fn(&r.state)
	snapshot := r.state
	snapshot.ActiveCalls = slices.Clone(r.state.ActiveCalls)
	r.mu.Unlock()

	if changed && r.out != nil {
		r.out.Broadcast(snapshot)
	}
}

func (r *Reflector) scheduleClear(key string, clear func(*DisplayState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	r.timers[key] = time.AfterFunc(r.clearAfter, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()
		r.mutate(func(s *DisplayState) bool {
			clear(s)
			return true
		})
	})
}

// safe wraps a handler so a panic is logged instead of propagated into the
// SDK's event dispatch.
func safe[E any](log *slog.Logger, name string, fn func(E)) func(E) {
	return func(e E) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("event handler panicked", "event", name, "panic", p)
			}
		}()
		fn(e)
	}
}
