package model

import "time"

type EventCategory string

const (
	EventCabinetMeeting      EventCategory = "Cabinet Meeting"
	EventCoordinationMeeting EventCategory = "Coordination Meeting"
	EventReviewSession       EventCategory = "Review and Reporting Session"
	EventOfficialOpening     EventCategory = "Official Opening or Launch"
	EventAnniversary         EventCategory = "Anniversary Event"
	EventDelegation          EventCategory = "International Delegations and Negotiations"
)

func (c EventCategory) Valid() bool {
	switch c {
	case EventCabinetMeeting, EventCoordinationMeeting, EventReviewSession,
		EventOfficialOpening, EventAnniversary, EventDelegation:
		return true
	}
	return false
}

// CabinetEvent is a calendar entry visible to the whole cabinet. Category,
// button label, and external link are optional.
type CabinetEvent struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Category     EventCategory `json:"category,omitempty"`
	Description  string        `json:"description"`
	Venue        string        `json:"venue,omitempty"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	ButtonLabel  string        `json:"button_label,omitempty"`
	ExternalLink string        `json:"external_link,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
