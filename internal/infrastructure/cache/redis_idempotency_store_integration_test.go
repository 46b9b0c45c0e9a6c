//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/soreconcile/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisIdempotencyStore(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisIdempotencyStore(ctx, cfg, "")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(ctx))

	isNew, err := store.MarkProcessed(ctx, "PaymentPosted:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "PaymentPosted:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	processed, err := store.IsProcessed(ctx, "PaymentPosted:abc")
	require.NoError(t, err)
	assert.True(t, processed)

	ttl, err := store.client.TTL(ctx, DefaultKeyPrefix+"PaymentPosted:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestIdempotencyStoreFactory_Redis(t *testing.T) {
	cfg := startRedis(t)

	f := NewIdempotencyStoreFactory(cfg, config.IdempotencyConfig{Backend: "redis"}, WithInMemoryFallback(false))
	store, err := f.CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &RedisIdempotencyStore{}, store)
}
