package domain

import (
	"context"

	"pensionado/internal/models"
)

// KVStore is the device-level key-value persistence the reservation table lives in.
// Get reports found=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type ReservationStore interface {
	LoadAll(ctx context.Context) ([]models.Reservation, error)
	LoadForUser(ctx context.Context, userID string) ([]models.Reservation, error)
	SaveForUser(ctx context.Context, userID string, reservations []models.Reservation) error
}

type Session interface {
	CurrentUserID() string
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReservationManager is what a front end drives: the list, the draft form
// and the write operations of the signed-in user.
type ReservationManager interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft models.Draft) (*models.Reservation, error)
	BeginEdit(id string) (models.Draft, error)
	Edit(ctx context.Context, id string, draft models.Draft) (*models.Reservation, error)
	Cancel(ctx context.Context, id string) error
	Get(id string) (models.Reservation, bool)
	Reservations() []models.Reservation
	Upcoming() []models.Reservation
	Counts() models.StatusCounts
	ActiveDates() map[string]bool
	Draft() models.Draft
	UpdateDraft(fn func(d *models.Draft)) models.Draft
	SelectDate(date string)
	ResetDraft()
	LastError() error
	ClearError()
	Close()
}

type NotificationCenter interface {
	List() []models.Notification
	UnreadCount() int
	Add(n models.Notification) models.Notification
	MarkRead(id string) bool
	MarkAllRead()
	Remove(id string) bool
}
