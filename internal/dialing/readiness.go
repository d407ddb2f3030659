package dialing

import (
	"strings"
	"time"

	"acs-call-console/internal/acs"
	"acs-call-console/internal/callconfig"
	"acs-call-console/internal/token"
)

// Ready reports whether the configuration snapshot could be submitted right
// now: identity and display name present, a structurally valid unexpired
// token, and a valid call target. It is recomputed on every change; keep it
// side-effect-free and deterministic given (cfg, now).
func Ready(cfg callconfig.CallConfiguration, now time.Time) bool {
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" || !strings.HasPrefix(userID, ACSUserPrefix) {
		return false
	}
	if strings.TrimSpace(cfg.DisplayName) == "" {
		return false
	}
	info := token.Decode(cfg.Token, now)
	if !info.Valid || info.Expired {
		return false
	}
	return ValidateTarget(cfg) == nil
}

// BuildLocator validates the target and shapes it for the SDK. Phone
// numbers and the alternate caller id are handed over normalized.
func BuildLocator(cfg callconfig.CallConfiguration) (acs.Locator, error) {
	if err := ValidateTarget(cfg); err != nil {
		return nil, err
	}
	switch cfg.CallType {
	case callconfig.CallTypeGroup:
		return acs.GroupLocator{GroupID: strings.TrimSpace(cfg.CallValue)}, nil
	case callconfig.CallTypeOneToOne:
		return acs.UserLocator{CommunicationUserID: strings.TrimSpace(cfg.CallValue)}, nil
	case callconfig.CallTypePhone:
		return acs.PhoneLocator{
			PhoneNumber:       NormalizePhoneNumber(cfg.CallValue),
			AlternateCallerID: NormalizePhoneNumber(cfg.AlternateCallerID),
		}, nil
	default:
		// Unreachable: ValidateTarget already rejected unset call types.
		return nil, &ValidationError{Code: FailMissingCallType, Field: "callType", Message: "select a call type"}
	}
}
