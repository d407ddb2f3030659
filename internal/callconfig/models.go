package callconfig

// CallType picks which target field semantics apply to CallValue.
type CallType string

const (
	CallTypeUnset    CallType = ""
	CallTypeGroup    CallType = "group"
	CallTypeOneToOne CallType = "oneToOne"
	CallTypePhone    CallType = "phone"
)

// Valid reports whether t is one of the known call types (unset included).
func (t CallType) Valid() bool {
	switch t {
	case CallTypeUnset, CallTypeGroup, CallTypeOneToOne, CallTypePhone:
		return true
	default:
		return false
	}
}

// CallConfiguration is the full set of parameters the browser console needs
// to place or receive a call. JSON field names match the persisted slot
// layout exactly; the browser reads the record back verbatim.
//
// Semantics of CallValue depend on CallType:
// - group:    a GUID identifying the group call
// - oneToOne: an ACS user id ("8:acs:...")
// - phone:    an E.164 phone number (AlternateCallerID required)
type CallConfiguration struct {
	UserID            string   `json:"userId"`
	Token             string   `json:"token"`
	DisplayName       string   `json:"displayName"`
	CallType          CallType `json:"callType"`
	CallValue         string   `json:"callValue"`
	AlternateCallerID string   `json:"alternateCallerId"`
}

// IsEmpty reports whether every field is empty/unset. Empty records are
// never persisted; Save rejects them with ErrNothingToSave.
func (c CallConfiguration) IsEmpty() bool {
	return c.UserID == "" &&
		c.Token == "" &&
		c.DisplayName == "" &&
		c.CallType == CallTypeUnset &&
		c.CallValue == "" &&
		c.AlternateCallerID == ""
}
