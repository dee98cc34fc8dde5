package models

import "time"

const (
	NotificationOrder       = "pedido"
	NotificationReservation = "reserva"
	NotificationBalance     = "saldo"
	NotificationPromotion   = "promocion"
	NotificationGeneral     = "general"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
	Icon      string    `json:"icon,omitempty"`
	Target    string    `json:"target,omitempty"` // screen to navigate to
}
