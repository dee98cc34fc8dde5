package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pensionado/internal/domain"
	"pensionado/internal/metrics"
	"pensionado/internal/models"

	"github.com/rs/zerolog"
)

// ErrPersistence marks storage read/write failures. Callers treat it as
// transient and offer a retry.
var ErrPersistence = errors.New("reservation storage unavailable")

// ReservationRepository persists every user's reservations as one JSON
// array under a single key. Users are partitioned logically by UserID only.
//
// SaveForUser is a read-modify-write on the whole table; two concurrent
// saves for the same key can lose one update.
type ReservationRepository struct {
	kv     domain.KVStore
	key    string
	retry  RetryPolicy
	logger *zerolog.Logger
}

func NewReservationRepository(kv domain.KVStore, key string, retry RetryPolicy, logger *zerolog.Logger) *ReservationRepository {
	if key == "" {
		key = models.DefaultStorageKey
	}
	return &ReservationRepository{
		kv:     kv,
		key:    key,
		retry:  retry,
		logger: logger,
	}
}

// LoadAll returns the full table. A missing or unparseable value yields an
// empty list; only backend failures are reported.
func (r *ReservationRepository) LoadAll(ctx context.Context) ([]models.Reservation, error) {
	raw, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		metrics.IncStoreError("load")
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, r.key, err)
	}
	if !found || len(raw) == 0 {
		return []models.Reservation{}, nil
	}

	var all []models.Reservation
	if err := json.Unmarshal(raw, &all); err != nil {
		metrics.IncCorruptTable()
		r.logger.Warn().Err(err).Str("key", r.key).Int("bytes", len(raw)).Msg("stored reservations are corrupt, treating as empty")
		return []models.Reservation{}, nil
	}
	if all == nil {
		all = []models.Reservation{}
	}
	return all, nil
}

func (r *ReservationRepository) LoadForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	own := make([]models.Reservation, 0, len(all))
	for _, res := range all {
		if res.UserID == userID {
			own = append(own, res)
		}
	}
	return own, nil
}

// SaveForUser replaces userID's entries in the table with reservations and
// writes the table back, leaving other users' entries untouched.
func (r *ReservationRepository) SaveForUser(ctx context.Context, userID string, reservations []models.Reservation) error {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}

	merged := make([]models.Reservation, 0, len(all)+len(reservations))
	for _, res := range all {
		if res.UserID != userID {
			merged = append(merged, res)
		}
	}
	merged = append(merged, reservations...)

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal reservations: %w", err)
	}

	err = r.retry.Do(ctx, func() error {
		return r.kv.Set(ctx, r.key, data)
	})
	if err != nil {
		metrics.IncStoreError("save")
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, r.key, err)
	}

	r.logger.Debug().Str("user_id", userID).Int("own", len(reservations)).Int("total", len(merged)).Msg("reservations saved")
	return nil
}

// Snapshot returns the raw stored table, used by backups.
func (r *ReservationRepository) Snapshot(ctx context.Context) ([]byte, error) {
	raw, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, r.key, err)
	}
	if !found {
		return []byte("[]"), nil
	}
	return raw, nil
}

// Restore overwrites the table with raw, which must be a JSON reservation array.
func (r *ReservationRepository) Restore(ctx context.Context, raw []byte) error {
	var all []models.Reservation
	if err := json.Unmarshal(raw, &all); err != nil {
		return fmt.Errorf("invalid reservation table: %w", err)
	}

	err := r.retry.Do(ctx, func() error {
		return r.kv.Set(ctx, r.key, raw)
	})
	if err != nil {
		metrics.IncStoreError("restore")
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, r.key, err)
	}

	r.logger.Info().Str("key", r.key).Int("total", len(all)).Msg("reservation table restored")
	return nil
}
