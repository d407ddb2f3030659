package dialing

import (
	"fmt"
	"regexp"
	"strings"

	"acs-call-console/internal/callconfig"

	"github.com/google/uuid"
)

// ACSUserPrefix is the identity prefix of communication user ids.
const ACSUserPrefix = "8:acs:"

// FailureCode identifies why a call target was rejected. Codes are stable;
// the browser keys inline messages off them.
type FailureCode string

const (
	FailMissingCallType          FailureCode = "missing_call_type"
	FailInvalidGroupID           FailureCode = "invalid_group_id"
	FailInvalidUserID            FailureCode = "invalid_user_id"
	FailSelfCallNotAllowed       FailureCode = "self_call_not_allowed"
	FailInvalidPhoneNumber       FailureCode = "invalid_phone_number"
	FailMissingAlternateCallerID FailureCode = "missing_alternate_caller_id"
	FailInvalidAlternateCallerID FailureCode = "invalid_alternate_caller_id"
)

// ValidationError is an input validation failure. It blocks submission and
// is fully recoverable by editing the offending field.
type ValidationError struct {
	Code    FailureCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dialing: %s: %s", e.Field, e.Message)
}

var e164Pattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// ValidateTarget checks the call-type-specific fields of a configuration
// snapshot. It is pure: no mutation, deterministic per snapshot.
func ValidateTarget(cfg callconfig.CallConfiguration) error {
	switch cfg.CallType {
	case callconfig.CallTypeGroup:
		return validateGroupTarget(cfg.CallValue)
	case callconfig.CallTypeOneToOne:
		return validateUserTarget(cfg.CallValue, cfg.UserID)
	case callconfig.CallTypePhone:
		return validatePhoneTarget(cfg.CallValue, cfg.AlternateCallerID)
	default:
		return &ValidationError{Code: FailMissingCallType, Field: "callType", Message: "select a call type"}
	}
}

// validateGroupTarget requires canonical GUID form: 8-4-4-4-12 hex with
// RFC 4122 version and variant nibbles. Braced, URN, and bare-hex spellings
// the uuid package would otherwise tolerate are rejected.
func validateGroupTarget(callValue string) error {
	v := strings.TrimSpace(callValue)
	invalid := &ValidationError{Code: FailInvalidGroupID, Field: "callValue", Message: "group id must be a GUID"}
	if len(v) != 36 {
		return invalid
	}
	u, err := uuid.Parse(v)
	if err != nil {
		return invalid
	}
	if u.Variant() != uuid.RFC4122 {
		return invalid
	}
	if v := u.Version(); v < 1 || v > 5 {
		return invalid
	}
	return nil
}

func validateUserTarget(callValue, userID string) error {
	target := strings.TrimSpace(callValue)
	if !strings.HasPrefix(target, ACSUserPrefix) {
		return &ValidationError{Code: FailInvalidUserID, Field: "callValue", Message: "target id must start with " + ACSUserPrefix}
	}
	if target == strings.TrimSpace(userID) {
		return &ValidationError{Code: FailSelfCallNotAllowed, Field: "callValue", Message: "cannot call your own user id"}
	}
	return nil
}

func validatePhoneTarget(callValue, alternateCallerID string) error {
	// Absence of the alternate caller id is its own failure, reported
	// before any format checking.
	if strings.TrimSpace(alternateCallerID) == "" {
		return &ValidationError{Code: FailMissingAlternateCallerID, Field: "alternateCallerId", Message: "alternate caller id is required for phone calls"}
	}
	if !e164Pattern.MatchString(NormalizePhoneNumber(callValue)) {
		return &ValidationError{Code: FailInvalidPhoneNumber, Field: "callValue", Message: "phone number must be E.164 (+ and 7-15 digits)"}
	}
	if !e164Pattern.MatchString(NormalizePhoneNumber(alternateCallerID)) {
		return &ValidationError{Code: FailInvalidAlternateCallerID, Field: "alternateCallerId", Message: "alternate caller id must be E.164 (+ and 7-15 digits)"}
	}
	return nil
}

// NormalizePhoneNumber strips everything except digits and a leading "+",
// then prefixes "+" when absent. "1 (234) 567-890" becomes "+1234567890".
func NormalizePhoneNumber(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if !strings.HasPrefix(out, "+") {
		out = "+" + out
	}
	return out
}
