package models

import (
	"time"
)

type Reservation struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM, one of TimeSlots
	PartySize int    `json:"partySize"`
	Table     string `json:"table"`
	Status    string `json:"status"` // pending, confirmed, cancelled
	Comments  string `json:"comments"`
	CreatedAt string `json:"createdAt"` // RFC3339
}

// IsActive reports whether the reservation still holds its slot.
func (r Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

// Day parses Date in the given location. The zero time is returned for malformed dates.
func (r Reservation) Day(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Draft holds the user-editable fields of a reservation form.
type Draft struct {
	Date      string `validate:"required"`
	Time      string `validate:"required"`
	PartySize int    `validate:"min=1,max=8"`
	Comments  string `validate:"max=200"`
}

// NewDraft returns an empty form with the default party size.
func NewDraft() Draft {
	return Draft{PartySize: DefaultPartySize}
}

// DraftOf builds a form pre-filled from an existing reservation, used by the edit path.
func DraftOf(r Reservation) Draft {
	return Draft{
		Date:      r.Date,
		Time:      r.Time,
		PartySize: r.PartySize,
		Comments:  r.Comments,
	}
}

// StatusCounts is the per-status summary shown above the list.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Confirmed + c.Cancelled
}

// StatusLabel returns the display text for a status value.
func StatusLabel(status string) string {
	switch status {
	case StatusConfirmed:
		return "Confirmada"
	case StatusPending:
		return "Pendiente"
	case StatusCancelled:
		return "Cancelada"
	default:
		return "Desconocido"
	}
}
