package model

// MemberStatus is the status Telegram reports for a user inside a chat.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Active reports whether the status grants access to gated actions.
// Restricted members are not considered subscribed.
func (s MemberStatus) Active() bool {
	switch s {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	default:
		return false
	}
}
