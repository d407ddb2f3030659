package acs

import (
	"errors"
	"fmt"
)

// CallError is an error surfaced by the calling SDK with its code/subCode
// pair. Codes follow the SDK's SIP-like numbering.
type CallError struct {
	Code    int
	SubCode int
	Message string
}

func (e *CallError) Error() string {
	if e.SubCode != 0 {
		return fmt.Sprintf("acs: call failed (code %d, subCode %d): %s", e.Code, e.SubCode, e.Message)
	}
	return fmt.Sprintf("acs: call failed (code %d): %s", e.Code, e.Message)
}

// Explain maps an SDK error to a best-effort human-readable explanation.
// Recognized codes get actionable guidance; anything else is shown
// verbatim. Never returns an empty string for a non-nil error.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	var ce *CallError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	switch ce.Code {
	case 401, 403:
		return fmt.Sprintf("Authorization failed (code %d). Check that the token is valid, not expired, and issued for the user id in the configuration.", ce.Code)
	case 404:
		return "The call target was not found. Verify the target id or phone number."
	case 480:
		return "Call setup failed (code 480). Likely causes: the callee is not listening for calls, the group id does not exist, or the alternate caller id is not a number owned by the resource."
	case 603:
		return "The call was declined by the remote party."
	default:
		return ce.Error()
	}
}
