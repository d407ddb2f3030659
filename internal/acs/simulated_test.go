package acs

import (
	"context"
	"errors"
	"testing"
)

func TestSimulatedClient_ImplementsClient(t *testing.T) {
	var _ Client = (*SimulatedClient)(nil)
}

func TestCreateAgent_RejectsMalformedCredential(t *testing.T) {
	c := NewSimulatedClient()
	ctx := context.Background()

	if _, err := c.CreateAgent(ctx, "", "8:acs:a_b", "Alice"); err == nil {
		t.Fatalf("expected error for empty token")
	}
	_, err := c.CreateAgent(ctx, "not-a-token", "8:acs:a_b", "Alice")
	var ce *CallError
	if !errors.As(err, &ce) || ce.Code != 401 {
		t.Fatalf("expected 401 CallError, got %v", err)
	}
}

func newTestAgent(t *testing.T) *SimulatedAgent {
	t.Helper()
	c := NewSimulatedClient()
	agent, err := c.CreateAgent(context.Background(), "h.p.s", "8:acs:a_b", "Alice")
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent.(*SimulatedAgent)
}

func TestStartCall_EmitsLifecycleEvents(t *testing.T) {
	agent := newTestAgent(t)

	var states []CallState
	var added []string
	unsub := agent.Subscribe(Handlers{
		CallsUpdated:     func(e CallsUpdated) { added = append(added, e.Added...) },
		CallStateChanged: func(e CallStateChange) { states = append(states, e.State) },
	})
	defer unsub()

	callID, err := agent.StartCall(context.Background(), GroupLocator{GroupID: "123e4567-e89b-12d3-a456-426614174000"})
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	if callID == "" {
		t.Fatalf("expected call id")
	}
	if len(added) != 1 || added[0] != callID {
		t.Fatalf("expected callsUpdated with new call, got %v", added)
	}
	if len(states) != 2 || states[0] != CallStateConnecting || states[1] != CallStateConnected {
		t.Fatalf("unexpected state sequence: %v", states)
	}
}

func TestStartCall_RejectsEmptyLocator(t *testing.T) {
	agent := newTestAgent(t)
	_, err := agent.StartCall(context.Background(), GroupLocator{})
	var ce *CallError
	if !errors.As(err, &ce) || ce.Code != 400 {
		t.Fatalf("expected 400 CallError, got %v", err)
	}
	if _, err := agent.StartCall(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil locator")
	}
}

func TestIncomingCall_AcceptFlow(t *testing.T) {
	agent := newTestAgent(t)

	var incoming []IncomingCall
	var states []CallStateChange
	unsub := agent.Subscribe(Handlers{
		IncomingCall:     func(e IncomingCall) { incoming = append(incoming, e) },
		CallStateChanged: func(e CallStateChange) { states = append(states, e) },
	})
	defer unsub()

	callID, err := agent.DeliverIncomingCall("8:acs:a_c", "Bob")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(incoming) != 1 || incoming[0].CallID != callID || incoming[0].CallerDisplayName != "Bob" {
		t.Fatalf("unexpected incoming events: %+v", incoming)
	}

	if err := agent.Accept(context.Background(), callID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if len(states) == 0 || states[len(states)-1].State != CallStateConnected {
		t.Fatalf("expected connected after accept, got %v", states)
	}

	// A second accept must fail; the call is no longer ringing.
	if err := agent.Accept(context.Background(), callID); err == nil {
		t.Fatalf("expected error on double accept")
	}
}

func TestReject_EndsCallWithDeclineCode(t *testing.T) {
	agent := newTestAgent(t)

	var ended []CallEnded
	unsub := agent.Subscribe(Handlers{
		CallEnded: func(e CallEnded) { ended = append(ended, e) },
	})
	defer unsub()

	callID, err := agent.DeliverIncomingCall("8:acs:a_c", "Bob")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := agent.Reject(context.Background(), callID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(ended) != 1 || ended[0].Code != 603 {
		t.Fatalf("expected decline code 603, got %+v", ended)
	}
}

func TestDispose_EndsCallsAndDropsSubscribers(t *testing.T) {
	agent := newTestAgent(t)

	var ended int
	agent.Subscribe(Handlers{
		CallEnded: func(CallEnded) { ended++ },
	})

	if _, err := agent.StartCall(context.Background(), UserLocator{CommunicationUserID: "8:acs:a_c"}); err != nil {
		t.Fatalf("start call: %v", err)
	}
	if err := agent.Dispose(context.Background()); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if ended != 1 {
		t.Fatalf("expected one callEnded on dispose, got %d", ended)
	}

	if _, err := agent.StartCall(context.Background(), UserLocator{CommunicationUserID: "8:acs:a_c"}); err == nil {
		t.Fatalf("expected error after dispose")
	}
	// Double dispose is a no-op.
	if err := agent.Dispose(context.Background()); err != nil {
		t.Fatalf("double dispose: %v", err)
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	agent := newTestAgent(t)

	var events int
	unsub := agent.Subscribe(Handlers{
		CallStateChanged: func(CallStateChange) { events++ },
	})
	unsub()

	if _, err := agent.StartCall(context.Background(), RoomLocator{RoomID: "room-1"}); err != nil {
		t.Fatalf("start call: %v", err)
	}
	if events != 0 {
		t.Fatalf("expected no events after unsubscribe, got %d", events)
	}
}
