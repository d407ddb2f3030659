package dialing

import (
	"errors"
	"testing"
	"time"

	"acs-call-console/internal/acs"
	"acs-call-console/internal/callconfig"

	"github.com/golang-jwt/jwt/v5"
)

func failureCode(t *testing.T, err error) FailureCode {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Code
}

func TestValidateTarget_Group(t *testing.T) {
	cases := []struct {
		name      string
		callValue string
		wantCode  FailureCode // empty means accepted
	}{
		{"canonical guid", "123e4567-e89b-12d3-a456-426614174000", ""},
		{"uppercase guid", "123E4567-E89B-12D3-A456-426614174000", ""},
		{"not a guid", "not-a-guid", FailInvalidGroupID},
		{"empty", "", FailInvalidGroupID},
		{"braced form", "{123e4567-e89b-12d3-a456-426614174000}", FailInvalidGroupID},
		{"bare hex", "123e4567e89b12d3a456426614174000", FailInvalidGroupID},
		{"bad variant", "123e4567-e89b-12d3-c456-426614174000", FailInvalidGroupID},
		{"bad version", "123e4567-e89b-02d3-a456-426614174000", FailInvalidGroupID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTarget(callconfig.CallConfiguration{
				CallType:  callconfig.CallTypeGroup,
				CallValue: tc.callValue,
			})
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				return
			}
			if got := failureCode(t, err); got != tc.wantCode {
				t.Fatalf("expected %s, got %s", tc.wantCode, got)
			}
		})
	}
}

func TestValidateTarget_OneToOne(t *testing.T) {
	userID := "8:acs:resource_alice"

	err := ValidateTarget(callconfig.CallConfiguration{
		UserID:    userID,
		CallType:  callconfig.CallTypeOneToOne,
		CallValue: "8:acs:resource_bob",
	})
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}

	err = ValidateTarget(callconfig.CallConfiguration{
		UserID:    userID,
		CallType:  callconfig.CallTypeOneToOne,
		CallValue: "resource_bob",
	})
	if got := failureCode(t, err); got != FailInvalidUserID {
		t.Fatalf("expected invalid_user_id, got %s", got)
	}

	// Self-call is rejected even though both sides are valid ACS ids.
	err = ValidateTarget(callconfig.CallConfiguration{
		UserID:    userID,
		CallType:  callconfig.CallTypeOneToOne,
		CallValue: "  " + userID + " ",
	})
	if got := failureCode(t, err); got != FailSelfCallNotAllowed {
		t.Fatalf("expected self_call_not_allowed, got %s", got)
	}
}

func TestValidateTarget_PhoneMissingAlternateCallerIDCheckedFirst(t *testing.T) {
	// The missing alternate caller id must be reported before any
	// phone-format validation runs.
	err := ValidateTarget(callconfig.CallConfiguration{
		CallType:  callconfig.CallTypePhone,
		CallValue: "1234567",
	})
	if got := failureCode(t, err); got != FailMissingAlternateCallerID {
		t.Fatalf("expected missing_alternate_caller_id, got %s", got)
	}
}

func TestValidateTarget_Phone(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		altID    string
		wantCode FailureCode
	}{
		{"valid pair", "+15551234567", "+15557654321", ""},
		{"unprefixed digits", "15551234567", "15557654321", ""},
		{"formatted number", "+1 (555) 123-4567", "+15557654321", ""},
		{"too short", "+123456", "+15557654321", FailInvalidPhoneNumber},
		{"too long", "+1234567890123456", "+15557654321", FailInvalidPhoneNumber},
		{"letters", "call-me-maybe", "+15557654321", FailInvalidPhoneNumber},
		{"bad alternate", "+15551234567", "nope", FailInvalidAlternateCallerID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTarget(callconfig.CallConfiguration{
				CallType:          callconfig.CallTypePhone,
				CallValue:         tc.value,
				AlternateCallerID: tc.altID,
			})
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				return
			}
			if got := failureCode(t, err); got != tc.wantCode {
				t.Fatalf("expected %s, got %s", tc.wantCode, got)
			}
		})
	}
}

func TestValidateTarget_UnsetCallType(t *testing.T) {
	err := ValidateTarget(callconfig.CallConfiguration{})
	if got := failureCode(t, err); got != FailMissingCallType {
		t.Fatalf("expected missing_call_type, got %s", got)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1234567890", "+1234567890"},
		{"+1 (234) 567-890", "+1234567890"},
		{"+15551234567", "+15551234567"},
		{"  555 0100  ", "+5550100"},
		{"", "+"},
	}
	for _, tc := range cases {
		if got := NormalizePhoneNumber(tc.in); got != tc.want {
			t.Fatalf("NormalizePhoneNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func readyConfig(t *testing.T, now time.Time) callconfig.CallConfiguration {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return callconfig.CallConfiguration{
		UserID:      "8:acs:resource_alice",
		Token:       raw,
		DisplayName: "Alice",
		CallType:    callconfig.CallTypeGroup,
		CallValue:   "123e4567-e89b-12d3-a456-426614174000",
	}
}

func TestReady(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cfg := readyConfig(t, now)

	if !Ready(cfg, now) {
		t.Fatalf("expected ready")
	}

	noName := cfg
	noName.DisplayName = "   "
	if Ready(noName, now) {
		t.Fatalf("expected not ready without display name")
	}

	badUser := cfg
	badUser.UserID = "alice"
	if Ready(badUser, now) {
		t.Fatalf("expected not ready without acs-shaped user id")
	}

	badTarget := cfg
	badTarget.CallValue = "nope"
	if Ready(badTarget, now) {
		t.Fatalf("expected not ready with invalid target")
	}

	// The same snapshot stops being ready once the token expires.
	if Ready(cfg, now.Add(2*time.Hour)) {
		t.Fatalf("expected not ready with expired token")
	}
}

func TestBuildLocator_ShapesPerCallType(t *testing.T) {
	group := callconfig.CallConfiguration{
		CallType:  callconfig.CallTypeGroup,
		CallValue: " 123e4567-e89b-12d3-a456-426614174000 ",
	}
	loc, err := BuildLocator(group)
	if err != nil {
		t.Fatalf("group locator: %v", err)
	}
	if g, ok := loc.(acs.GroupLocator); !ok || g.GroupID != "123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("unexpected group locator: %#v", loc)
	}

	phone := callconfig.CallConfiguration{
		CallType:          callconfig.CallTypePhone,
		CallValue:         "+1 (555) 123-4567",
		AlternateCallerID: "1 555 765 4321",
	}
	loc, err = BuildLocator(phone)
	if err != nil {
		t.Fatalf("phone locator: %v", err)
	}
	p, ok := loc.(acs.PhoneLocator)
	if !ok || p.PhoneNumber != "+15551234567" || p.AlternateCallerID != "+15557654321" {
		t.Fatalf("expected normalized phone locator, got %#v", loc)
	}

	if _, err := BuildLocator(callconfig.CallConfiguration{CallType: callconfig.CallTypeGroup, CallValue: "bad"}); err == nil {
		t.Fatalf("expected locator build to fail validation")
	}
}
