package acs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExplain_AuthorizationCodePointsAtToken(t *testing.T) {
	msg := Explain(&CallError{Code: 401, Message: "unauthorized"})
	if !strings.Contains(msg, "token") {
		t.Fatalf("expected token guidance, got %q", msg)
	}
}

func TestExplain_CallSetupCodeListsLikelyCauses(t *testing.T) {
	msg := Explain(&CallError{Code: 480, SubCode: 10037, Message: "temporarily unavailable"})
	if !strings.Contains(msg, "Likely causes") {
		t.Fatalf("expected misconfiguration checklist, got %q", msg)
	}
}

func TestExplain_UnrecognizedErrorsShownVerbatim(t *testing.T) {
	raw := errors.New("something exploded")
	if got := Explain(raw); got != raw.Error() {
		t.Fatalf("expected verbatim message, got %q", got)
	}

	ce := &CallError{Code: 999, Message: "weird"}
	if got := Explain(ce); got != ce.Error() {
		t.Fatalf("expected verbatim call error, got %q", got)
	}
}

func TestExplain_UnwrapsWrappedCallErrors(t *testing.T) {
	wrapped := fmt.Errorf("starting call: %w", &CallError{Code: 403, Message: "forbidden"})
	if !strings.Contains(Explain(wrapped), "token") {
		t.Fatalf("expected wrapped CallError to be recognized")
	}
}
