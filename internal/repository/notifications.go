package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pensionado/internal/domain"
	"pensionado/internal/models"

	"github.com/rs/zerolog"
)

const notificationsKeyPrefix = "notifications:"

// NotificationRepository keeps each user's inbox as a JSON array under
// "notifications:<userID>".
type NotificationRepository struct {
	kv     domain.KVStore
	logger *zerolog.Logger
}

func NewNotificationRepository(kv domain.KVStore, logger *zerolog.Logger) *NotificationRepository {
	return &NotificationRepository{kv: kv, logger: logger}
}

// Load returns the saved inbox; unreadable data yields an empty inbox.
func (r *NotificationRepository) Load(ctx context.Context, userID string) ([]models.Notification, error) {
	key := notificationsKeyPrefix + userID
	raw, found, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, key, err)
	}
	if !found {
		return []models.Notification{}, nil
	}

	var items []models.Notification
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("stored notifications are corrupt, treating as empty")
		return []models.Notification{}, nil
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

func (r *NotificationRepository) Save(ctx context.Context, userID string, items []models.Notification) error {
	key := notificationsKeyPrefix + userID
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, key, err)
	}
	return nil
}
