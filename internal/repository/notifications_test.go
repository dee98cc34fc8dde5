package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pensionado/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripPerUser", func(t *testing.T) {
		kv := NewMemoryKV()
		repo := NewNotificationRepository(kv, testLogger())

		items := []models.Notification{
			{ID: "b", Title: "Reserva cancelada", Kind: models.NotificationReservation, CreatedAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)},
			{ID: "a", Title: "¡Menú Especial!", Kind: models.NotificationPromotion, Read: true, CreatedAt: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)},
		}
		require.NoError(t, repo.Save(ctx, "1", items))

		got, err := repo.Load(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, items, got)

		other, err := repo.Load(ctx, "2")
		require.NoError(t, err)
		assert.NotNil(t, other)
		assert.Empty(t, other)
	})

	t.Run("CorruptIsEmpty", func(t *testing.T) {
		kv := NewMemoryKV()
		require.NoError(t, kv.Set(ctx, "notifications:1", []byte("{oops")))
		got, err := NewNotificationRepository(kv, testLogger()).Load(ctx, "1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		kv := new(mockKV)
		kv.On("Get", ctx, "notifications:1").Return(nil, false, errors.New("boom")).Once()
		kv.On("Set", ctx, "notifications:1", []byte("[]")).Return(errors.New("boom")).Once()
		repo := NewNotificationRepository(kv, testLogger())

		_, err := repo.Load(ctx, "1")
		assert.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, repo.Save(ctx, "1", []models.Notification{}), ErrPersistence)
		kv.AssertExpectations(t)
	})
}
