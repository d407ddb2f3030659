package acs

// Locator identifies a call destination. Exactly one concrete shape is
// handed to the SDK per call: {groupId}, {meetingLink}, {roomId}, a target
// user id, or a phone number with caller id.
type Locator interface {
	locator()
}

type GroupLocator struct {
	GroupID string `json:"groupId"`
}

type MeetingLocator struct {
	MeetingLink string `json:"meetingLink"`
}

type RoomLocator struct {
	RoomID string `json:"roomId"`
}

type UserLocator struct {
	CommunicationUserID string `json:"communicationUserId"`
}

type PhoneLocator struct {
	PhoneNumber string `json:"phoneNumber"`

	// AlternateCallerID is the E.164 number presented to the callee.
	// Mandatory for PSTN calls.
	AlternateCallerID string `json:"alternateCallerId"`
}

func (GroupLocator) locator()   {}
func (MeetingLocator) locator() {}
func (RoomLocator) locator()    {}
func (UserLocator) locator()    {}
func (PhoneLocator) locator()   {}
