package repository

import (
	"context"
	"sync"
)

// MemoryKV keeps values in process memory. Used for tests, the failover
// fallback and the "memory" backend.
type MemoryKV struct {
	values sync.Map
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{}
}

func (r *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := r.values.Load(key)
	if !ok {
		return nil, false, nil
	}
	stored := val.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (r *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	r.values.Store(key, stored)
	return nil
}

func (r *MemoryKV) Close() error {
	return nil
}
