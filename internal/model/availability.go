package model

import "time"

type AbsenceReason string

const (
	AbsenceOnLeave      AbsenceReason = "On leave"
	AbsenceOutOfCountry AbsenceReason = "Out of country"
	AbsenceOutOfKigali  AbsenceReason = "Out of Kigali"
)

func (r AbsenceReason) Valid() bool {
	switch r {
	case AbsenceOnLeave, AbsenceOutOfCountry, AbsenceOutOfKigali:
		return true
	}
	return false
}

type Availability struct {
	ID          string        `json:"id"`
	Reason      AbsenceReason `json:"reason"`
	Description string        `json:"description,omitempty"`
	Destination string        `json:"destination,omitempty"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	UserID      string        `json:"user_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
