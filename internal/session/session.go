package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"acs-call-console/internal/acs"
	"acs-call-console/internal/callconfig"
	"acs-call-console/internal/dialing"
	"acs-call-console/internal/events"
)

// ConnState is the agent lifecycle, one explicit value instead of a pile of
// booleans so illegal combinations are unrepresentable.
type ConnState string

const (
	ConnIdle          ConnState = "idle"
	ConnConnecting    ConnState = "connecting"
	ConnConnected     ConnState = "connected"
	ConnDisconnecting ConnState = "disconnecting"
)

// ListenState is the incoming-call subscription lifecycle. Listening
// requires a connected agent; the transitions enforce that.
type ListenState string

const (
	ListenStopped   ListenState = "stopped"
	ListenListening ListenState = "listening"
)

var (
	ErrNotConnected     = errors.New("session: not connected")
	ErrAlreadyConnected = errors.New("session: already connected")
	// ErrBusy is returned while a connect or disconnect is in flight. The
	// guard is cooperative: callers are expected to disable the triggering
	// control, this is the backstop.
	ErrBusy         = errors.New("session: operation in flight")
	ErrNotReady     = errors.New("session: configuration is not ready to submit")
	ErrNotListening = errors.New("session: not listening for calls")
)

// Session owns one console's agent lifecycle: connect, listen, place and
// answer calls, disconnect. All SDK calls are fire-and-await; failures
// surface immediately and nothing is retried.
type Session struct {
	mu sync.Mutex

	client    acs.Client
	reflector *events.Reflector
	log       *slog.Logger
	clock     func() time.Time

	conn   ConnState
	listen ListenState

	cfg         callconfig.CallConfiguration
	agent       acs.Agent
	unsubscribe func()
}

func New(client acs.Client, reflector *events.Reflector, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		client:    client,
		reflector: reflector,
		log:       log,
		clock:     time.Now,
		conn:      ConnIdle,
		listen:    ListenStopped,
	}
}

// Status is a snapshot of both state machines.
type Status struct {
	Conn   ConnState   `json:"connection"`
	Listen ListenState `json:"listening"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Conn: s.conn, Listen: s.listen}
}

// Connect validates the configuration snapshot, creates the call agent, and
// registers the reflector's handlers exactly once for the agent's lifetime.
func (s *Session) Connect(ctx context.Context, cfg callconfig.CallConfiguration) error {
	if !dialing.Ready(cfg, s.clock()) {
		return ErrNotReady
	}

	s.mu.Lock()
	switch s.conn {
	case ConnConnected:
		s.mu.Unlock()
		return ErrAlreadyConnected
	case ConnConnecting, ConnDisconnecting:
		s.mu.Unlock()
		return ErrBusy
	}
	s.conn = ConnConnecting
	s.mu.Unlock()

	agent, err := s.client.CreateAgent(ctx, cfg.Token, strings.TrimSpace(cfg.UserID), strings.TrimSpace(cfg.DisplayName))
	if err != nil {
		s.mu.Lock()
		s.conn = ConnIdle
		s.mu.Unlock()
		s.reportError(err)
		return fmt.Errorf("session: creating agent: %w", err)
	}

	var unsubscribe func()
	if s.reflector != nil {
		unsubscribe = agent.Subscribe(s.reflector.Handlers())
	}

	s.mu.Lock()
	s.cfg = cfg
	s.agent = agent
	s.unsubscribe = unsubscribe
	s.conn = ConnConnected
	s.mu.Unlock()

	s.log.Info("session connected", "user_id", cfg.UserID)
	return nil
}

// Disconnect disposes the agent. Local state is always reset, even when the
// SDK errors during disposal.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	switch s.conn {
	case ConnIdle:
		s.mu.Unlock()
		return nil
	case ConnConnecting, ConnDisconnecting:
		s.mu.Unlock()
		return ErrBusy
	}
	s.conn = ConnDisconnecting
	agent := s.agent
	unsubscribe := s.unsubscribe
	s.mu.Unlock()

	defer func() {
		if unsubscribe != nil {
			unsubscribe()
		}
		s.mu.Lock()
		s.agent = nil
		s.unsubscribe = nil
		s.cfg = callconfig.CallConfiguration{}
		s.conn = ConnIdle
		s.listen = ListenStopped
		s.mu.Unlock()
		if s.reflector != nil {
			s.reflector.Reset()
		}
		s.log.Info("session disconnected")
	}()

	if err := agent.Dispose(ctx); err != nil {
		s.reportError(err)
		return fmt.Errorf("session: disposing agent: %w", err)
	}
	return nil
}

// Close tears the session down on view/process teardown.
func (s *Session) Close(ctx context.Context) {
	if err := s.Disconnect(ctx); err != nil && !errors.Is(err, ErrBusy) {
		s.log.Error("session teardown disconnect failed", "err", err)
	}
}

// StartListening enables incoming-call handling on the connected agent.
func (s *Session) StartListening(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != ConnConnected {
		if s.conn == ConnConnecting || s.conn == ConnDisconnecting {
			return ErrBusy
		}
		return ErrNotConnected
	}
	s.listen = ListenListening
	return nil
}

// StopListening disables incoming-call handling but keeps the agent.
func (s *Session) StopListening(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != ConnConnected {
		if s.conn == ConnConnecting || s.conn == ConnDisconnecting {
			return ErrBusy
		}
		return ErrNotConnected
	}
	s.listen = ListenStopped
	return nil
}

// StartCall places an outbound call to the configured target and returns
// the call id.
func (s *Session) StartCall(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.conn != ConnConnected {
		state := s.conn
		s.mu.Unlock()
		if state == ConnConnecting || state == ConnDisconnecting {
			return "", ErrBusy
		}
		return "", ErrNotConnected
	}
	agent := s.agent
	cfg := s.cfg
	s.mu.Unlock()

	loc, err := dialing.BuildLocator(cfg)
	if err != nil {
		return "", err
	}
	callID, err := agent.StartCall(ctx, loc)
	if err != nil {
		s.reportError(err)
		return "", fmt.Errorf("session: starting call: %w", err)
	}
	return callID, nil
}

// Accept answers an incoming call. Only valid while listening.
func (s *Session) Accept(ctx context.Context, callID string) error {
	agent, err := s.listeningAgent()
	if err != nil {
		return err
	}
	if err := agent.Accept(ctx, callID); err != nil {
		s.reportError(err)
		return fmt.Errorf("session: accepting call: %w", err)
	}
	return nil
}

// Reject declines an incoming call. Only valid while listening.
func (s *Session) Reject(ctx context.Context, callID string) error {
	agent, err := s.listeningAgent()
	if err != nil {
		return err
	}
	if err := agent.Reject(ctx, callID); err != nil {
		s.reportError(err)
		return fmt.Errorf("session: rejecting call: %w", err)
	}
	return nil
}

// Leave hangs up an active call; the agent stays connected.
func (s *Session) Leave(ctx context.Context, callID string) error {
	s.mu.Lock()
	if s.conn != ConnConnected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	agent := s.agent
	s.mu.Unlock()

	if err := agent.Hangup(ctx, callID); err != nil {
		s.reportError(err)
		return fmt.Errorf("session: leaving call: %w", err)
	}
	return nil
}

func (s *Session) listeningAgent() (acs.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != ConnConnected {
		return nil, ErrNotConnected
	}
	if s.listen != ListenListening {
		return nil, ErrNotListening
	}
	return s.agent, nil
}

func (s *Session) reportError(err error) {
	if s.reflector != nil {
		s.reflector.ReportError(err)
	}
}
