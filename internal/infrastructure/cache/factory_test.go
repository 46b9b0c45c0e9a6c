package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/soreconcile/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestIdempotencyStoreFactory_MemoryBackend(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis, config.IdempotencyConfig{Backend: "memory"})

	store, err := f.CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestIdempotencyStoreFactory_RedisFallback(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis,
		config.IdempotencyConfig{Backend: "redis", CleanupInterval: time.Minute},
		WithLogger(zap.NewNop()),
	)

	store, err := f.CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestIdempotencyStoreFactory_RedisRequired(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis,
		config.IdempotencyConfig{Backend: "redis"},
		WithInMemoryFallback(false),
	)

	_, err := f.CreateStore(context.Background())
	assert.ErrorContains(t, err, "redis required")
}
