package service

import (
	"fmt"
	"sync"
	"time"

	"pensionado/internal/domain"
	"pensionado/internal/events"
	"pensionado/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ domain.NotificationCenter = (*NotificationService)(nil)

// NotificationService is the user's notification inbox, newest first.
type NotificationService struct {
	mu     sync.RWMutex
	items  []models.Notification
	now    func() time.Time
	logger *zerolog.Logger
}

func NewNotificationService(logger *zerolog.Logger) *NotificationService {
	return &NotificationService{now: time.Now, logger: logger}
}

// Restore replaces the inbox with previously saved notifications.
func (s *NotificationService) Restore(items []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.Notification(nil), items...)
}

func (s *NotificationService) List() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification{}, s.items...)
}

func (s *NotificationService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Add stamps id, time and unread state onto n and puts it first.
func (s *NotificationService) Add(n models.Notification) models.Notification {
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()
	n.Read = false
	if n.Kind == "" {
		n.Kind = models.NotificationGeneral
	}

	s.mu.Lock()
	s.items = append([]models.Notification{n}, s.items...)
	s.mu.Unlock()

	s.logger.Debug().Str("notification_id", n.ID).Str("kind", n.Kind).Msg("notification added")
	return n
}

func (s *NotificationService) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return true
		}
	}
	return false
}

func (s *NotificationService) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
}

func (s *NotificationService) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe turns reservation events on bus into inbox entries.
func (s *NotificationService) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, s.onReservationEvent)
	bus.Subscribe(events.EventReservationEdited, s.onReservationEvent)
	bus.Subscribe(events.EventReservationCancelled, s.onReservationEvent)
}

func (s *NotificationService) onReservationEvent(event *events.Event) error {
	var p events.ReservationEventPayload
	if err := event.Decode(&p); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	n := models.Notification{
		Kind:   models.NotificationReservation,
		Icon:   "event",
		Target: "Reservas",
	}
	switch event.Type {
	case events.EventReservationCreated:
		n.Title = "¡Reserva creada! 🎉"
		n.Message = fmt.Sprintf("Tu reserva para %d personas el %s a las %s ha sido creada y está pendiente de confirmación.", p.PartySize, p.Date, p.Time)
	case events.EventReservationEdited:
		n.Title = "Reserva actualizada ✏️"
		n.Message = fmt.Sprintf("Tu reserva ahora es para %d personas el %s a las %s.", p.PartySize, p.Date, p.Time)
	case events.EventReservationCancelled:
		n.Title = "Reserva cancelada"
		n.Message = fmt.Sprintf("Tu reserva del %s a las %s ha sido cancelada exitosamente.", p.Date, p.Time)
		n.Icon = "cancel"
	default:
		return nil
	}

	s.Add(n)
	return nil
}
