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

func newTestRepository(kv *MemoryKV) *ReservationRepository {
	return NewReservationRepository(kv, "", RetryPolicy{}, testLogger())
}

func sampleReservation(id, userID, date, slot string) models.Reservation {
	return models.Reservation{
		ID:        id,
		UserID:    userID,
		Date:      date,
		Time:      slot,
		PartySize: 2,
		Table:     "Mesa 3",
		Status:    models.StatusPending,
		CreatedAt: "2026-10-01T09:00:00Z",
	}
}

func ids(list []models.Reservation) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestReservationRepository_LoadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyStore", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())
		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("CorruptJSON", func(t *testing.T) {
		kv := NewMemoryKV()
		require.NoError(t, kv.Set(ctx, models.DefaultStorageKey, []byte(`[{"id": "1", "userId": `)))
		repo := newTestRepository(kv)

		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("NullJSON", func(t *testing.T) {
		kv := NewMemoryKV()
		require.NoError(t, kv.Set(ctx, models.DefaultStorageKey, []byte(`null`)))
		all, err := newTestRepository(kv).LoadAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		kv := new(mockKV)
		kv.On("Get", ctx, models.DefaultStorageKey).Return(nil, false, errors.New("disk gone")).Once()
		repo := NewReservationRepository(kv, "", RetryPolicy{}, testLogger())

		_, err := repo.LoadAll(ctx)
		assert.ErrorIs(t, err, ErrPersistence)
		kv.AssertExpectations(t)
	})
}

func TestReservationRepository_SaveForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripKeepsOtherUsers", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())

		other := sampleReservation("o1", "2", "2026-10-20", "13:00")
		require.NoError(t, repo.SaveForUser(ctx, "2", []models.Reservation{other}))

		r1 := sampleReservation("r1", "1", "2026-10-20", "12:30")
		r2 := sampleReservation("r2", "1", "2026-10-21", "19:00")
		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{r1, r2}))

		own, err := repo.LoadForUser(ctx, "1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"r1", "r2"}, ids(own))
		assert.ElementsMatch(t, []models.Reservation{r1, r2}, own)

		theirs, err := repo.LoadForUser(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, []models.Reservation{other}, theirs)
	})

	t.Run("ReplacesOwnEntries", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())
		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{sampleReservation("a", "1", "2026-10-20", "12:00")}))
		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{sampleReservation("b", "1", "2026-10-20", "12:30")}))

		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(all))
	})

	t.Run("EmptyListClearsOnlyThatUser", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())
		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{sampleReservation("a", "1", "2026-10-20", "12:00")}))
		require.NoError(t, repo.SaveForUser(ctx, "2", []models.Reservation{sampleReservation("b", "2", "2026-10-20", "12:00")}))
		require.NoError(t, repo.SaveForUser(ctx, "1", nil))

		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(all))
	})

	t.Run("CorruptTableIsOverwritten", func(t *testing.T) {
		kv := NewMemoryKV()
		require.NoError(t, kv.Set(ctx, models.DefaultStorageKey, []byte(`{not json`)))
		repo := newTestRepository(kv)

		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{sampleReservation("a", "1", "2026-10-20", "12:00")}))
		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(all))
	})

	t.Run("WriteFailureAfterRetries", func(t *testing.T) {
		kv := new(mockKV)
		kv.On("Get", ctx, "custom").Return([]byte(`[]`), true, nil).Once()
		kv.On("Set", ctx, "custom", []byte(`[]`)).Return(errors.New("read-only fs")).Times(3)
		repo := NewReservationRepository(kv, "custom", RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, testLogger())

		err := repo.SaveForUser(ctx, "1", nil)
		assert.ErrorIs(t, err, ErrPersistence)
		kv.AssertExpectations(t)
	})

	t.Run("Snapshot", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())
		raw, err := repo.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))

		require.NoError(t, repo.SaveForUser(ctx, "1", []models.Reservation{sampleReservation("a", "1", "2026-10-20", "12:00")}))
		raw, err = repo.Snapshot(ctx)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"userId":"1"`)
	})

	t.Run("Restore", func(t *testing.T) {
		repo := newTestRepository(NewMemoryKV())
		raw := []byte(`[{"id":"x","userId":"2","date":"2026-10-20","time":"19:00","partySize":3,"table":"Mesa 9","status":"pending","comments":"","createdAt":""}]`)
		require.NoError(t, repo.Restore(ctx, raw))

		got, err := repo.LoadForUser(ctx, "2")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Mesa 9", got[0].Table)

		assert.Error(t, repo.Restore(ctx, []byte(`{"not":"a list"}`)))
		got, err = repo.LoadForUser(ctx, "2")
		require.NoError(t, err)
		assert.Len(t, got, 1, "invalid input leaves the table alone")
	})
}
