package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pensionado/internal/domain"

	"github.com/rs/zerolog"
)

const failoverRecheck = time.Minute

// ErrDegraded is returned by FailoverKV.Set when the value reached only the
// in-memory fallback.
var ErrDegraded = errors.New("primary storage unavailable, value kept in memory only")

// FailoverKV serves from primary and switches to fallback once primary
// fails. Primary is retried after failoverRecheck; values written while
// degraded are copied back to it on recovery.
type FailoverKV struct {
	primary   domain.KVStore
	fallback  domain.KVStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	pending   map[string]struct{}
	now       func() time.Time
}

func NewFailoverKV(primary, fallback domain.KVStore, logger *zerolog.Logger) *FailoverKV {
	return &FailoverKV{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		pending:  make(map[string]struct{}),
		now:      time.Now,
	}
}

func (r *FailoverKV) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary storage failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = r.now()
	r.mu.Unlock()
}

func (r *FailoverKV) shouldRecheck() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Sub(r.lastCheck) <= failoverRecheck {
		return false
	}
	r.lastCheck = r.now()
	return true
}

// replay writes pending fallback values to primary. Primary stays down if
// any of them fails.
func (r *FailoverKV) replay(ctx context.Context) bool {
	r.mu.Lock()
	keys := make([]string, 0, len(r.pending))
	for key := range r.pending {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	for _, key := range keys {
		value, found, err := r.fallback.Get(ctx, key)
		if err == nil && found {
			if err := r.primary.Set(ctx, key, value); err != nil {
				r.logger.Warn().Err(err).Str("key", key).Msg("Primary storage still failing on replay")
				return false
			}
		}
		r.mu.Lock()
		delete(r.pending, key)
		r.mu.Unlock()
	}

	r.isDown.Store(false)
	r.logger.Info().Int("replayed", len(keys)).Msg("Primary storage recovered")
	return true
}

// Degraded reports whether calls are currently served by the fallback.
func (r *FailoverKV) Degraded() bool {
	return r.isDown.Load()
}

func (r *FailoverKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !r.isDown.Load() {
		value, found, err := r.primary.Get(ctx, key)
		if err == nil {
			return value, found, nil
		}
		r.markDown(err)
	} else if r.shouldRecheck() {
		if _, _, err := r.primary.Get(ctx, key); err == nil && r.replay(ctx) {
			return r.primary.Get(ctx, key)
		}
	}

	return r.fallback.Get(ctx, key)
}

// Set keeps value in the fallback when primary is unavailable and reports
// ErrDegraded so the caller knows it is not durable.
func (r *FailoverKV) Set(ctx context.Context, key string, value []byte) error {
	var cause error = errors.New("primary marked down")
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, key, value)
		if err == nil {
			return nil
		}
		r.markDown(err)
		cause = err
	}

	if err := r.fallback.Set(ctx, key, value); err != nil {
		return err
	}
	r.mu.Lock()
	r.pending[key] = struct{}{}
	r.mu.Unlock()
	return fmt.Errorf("%w: %v", ErrDegraded, cause)
}

func (r *FailoverKV) Close() error {
	if err := r.primary.Close(); err != nil {
		return err
	}
	return r.fallback.Close()
}
