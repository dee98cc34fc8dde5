package repository

import (
	"context"
	"testing"

	"pensionado/internal/config"
	"pensionado/internal/database"
	"pensionado/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv domain.KVStore) {
	ctx := context.Background()

	t.Run("MissingKey", func(t *testing.T) {
		val, found, err := kv.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, val)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "reservations", []byte(`[{"id":"a"}]`)))

		val, found, err := kv.Get(ctx, "reservations")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"a"}]`, string(val))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "reservations", []byte(`[]`)))

		val, _, err := kv.Get(ctx, "reservations")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(val))
	})
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	exerciseKV(t, kv)

	t.Run("ValuesAreCopied", func(t *testing.T) {
		ctx := context.Background()
		buf := []byte("abc")
		require.NoError(t, kv.Set(ctx, "k", buf))
		buf[0] = 'x'

		got, _, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	exerciseKV(t, kv)

	t.Run("SurvivesReopen", func(t *testing.T) {
		again, err := NewFileKV(dir)
		require.NoError(t, err)

		val, found, err := again.Get(context.Background(), "reservations")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[]`, string(val))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, kv.Set(ctx, "k", []byte("v")))
	})
}

func TestRedisKV(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	kv := NewRedisKV(client, "pensionado")
	exerciseKV(t, kv)

	t.Run("KeyIsPrefixed", func(t *testing.T) {
		assert.True(t, s.Exists("pensionado:reservations"))
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("LOADING")
		defer s.SetError("")
		_, _, err := kv.Get(context.Background(), "reservations")
		assert.Error(t, err)
	})

	t.Run("NilClient", func(t *testing.T) {
		kv := NewRedisKV(nil, "")
		_, _, err := kv.Get(context.Background(), "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(context.Background(), client))
	})
}

func TestNewKV(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("Memory", func(t *testing.T) {
		kv, err := NewKV(ctx, &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory, Failover: true}}, logger)
		require.NoError(t, err)
		assert.IsType(t, &MemoryKV{}, kv)
	})

	t.Run("File", func(t *testing.T) {
		kv, err := NewKV(ctx, &config.Config{Storage: config.StorageConfig{Backend: config.BackendFile, Path: t.TempDir()}}, logger)
		require.NoError(t, err)
		assert.IsType(t, &FileKV{}, kv)
	})

	t.Run("SQLiteIsNeverWrapped", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendSQLite, Path: ":memory:", Failover: true}}
		kv, err := NewKV(ctx, cfg, logger)
		require.NoError(t, err)
		defer kv.Close()
		assert.IsType(t, &database.DB{}, kv)
		exerciseKV(t, kv)

		wrapped := WithFailover(cfg, kv, logger)
		assert.IsType(t, &FailoverKV{}, wrapped)
		exerciseKV(t, wrapped)
	})

	t.Run("RedisUnreachable", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.StorageConfig{Backend: config.BackendRedis},
			Redis:   config.RedisConfig{Address: "127.0.0.1:1"},
		}
		_, err := NewKV(ctx, cfg, logger)
		assert.Error(t, err)

		cfg.Storage.Failover = true
		kv, err := NewKV(ctx, cfg, logger)
		require.NoError(t, err)
		defer kv.Close()
		assert.IsType(t, &RedisKV{}, kv)
	})

	t.Run("WithFailoverSkipsMemoryAndDisabled", func(t *testing.T) {
		mem := NewMemoryKV()
		assert.Same(t, mem, WithFailover(&config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory, Failover: true}}, mem, logger))
		assert.Same(t, mem, WithFailover(&config.Config{Storage: config.StorageConfig{Backend: config.BackendFile}}, mem, logger))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := NewKV(ctx, &config.Config{Storage: config.StorageConfig{Backend: "tape"}}, logger)
		assert.Error(t, err)
	})
}
