package callconfig

import "encoding/json"

// storedRecord is the on-disk shape of a slot. It carries both the current
// fields and the legacy ones so a single parse handles either schema.
// Legacy fields are pointers: key presence (not just non-emptiness) is what
// marks a record as legacy-shaped.
type storedRecord struct {
	UserID      string   `json:"userId"`
	Token       string   `json:"token"`
	DisplayName string   `json:"displayName"`
	CallType    CallType `json:"callType,omitempty"`
	CallValue   string   `json:"callValue,omitempty"`

	AlternateCallerID string `json:"alternateCallerId,omitempty"`

	// Legacy schema: one field per target kind instead of CallType+CallValue.
	// Never written by current code paths; read-only for migration.
	GroupID        *string `json:"groupId,omitempty"`
	TargetCallerID *string `json:"targetCallerId,omitempty"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
}

func (r storedRecord) isLegacy() bool {
	return r.GroupID != nil || r.TargetCallerID != nil || r.PhoneNumber != nil
}

// migrate collapses a legacy-shaped record into the current schema.
//
// Precedence when several legacy fields are present is groupId, then
// targetCallerId, then phoneNumber. The ordering is a preserved policy
// choice from the original storage code, not a deliberate priority design;
// keep it stable.
func (r storedRecord) migrate() CallConfiguration {
	out := CallConfiguration{
		UserID:            r.UserID,
		Token:             r.Token,
		DisplayName:       r.DisplayName,
		AlternateCallerID: r.AlternateCallerID,
	}
	switch {
	case r.GroupID != nil && *r.GroupID != "":
		out.CallType = CallTypeGroup
		out.CallValue = *r.GroupID
	case r.TargetCallerID != nil && *r.TargetCallerID != "":
		out.CallType = CallTypeOneToOne
		out.CallValue = *r.TargetCallerID
	case r.PhoneNumber != nil && *r.PhoneNumber != "":
		out.CallType = CallTypePhone
		out.CallValue = *r.PhoneNumber
	}
	return out
}

// decodeRecord parses raw slot bytes and reports whether a legacy-schema
// migration was applied. Callers must re-save migrated records so storage
// converges on the current schema.
func decodeRecord(raw []byte) (CallConfiguration, bool, error) {
	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return CallConfiguration{}, false, err
	}
	if rec.isLegacy() {
		return rec.migrate(), true, nil
	}
	return CallConfiguration{
		UserID:            rec.UserID,
		Token:             rec.Token,
		DisplayName:       rec.DisplayName,
		CallType:          rec.CallType,
		CallValue:         rec.CallValue,
		AlternateCallerID: rec.AlternateCallerID,
	}, false, nil
}

func encodeRecord(cfg CallConfiguration) ([]byte, error) {
	return json.Marshal(cfg)
}
