package cache

import (
	"context"
	"fmt"

	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates the idempotency store selected by configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	idempotencyConfig     config.IdempotencyConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(redisCfg config.RedisConfig, idemCfg config.IdempotencyConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           redisCfg,
		idempotencyConfig:     idemCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore returns the configured store. With the redis backend it falls
// back to memory when Redis is unreachable, if fallback is allowed.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if f.idempotencyConfig.Backend != "redis" {
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(f.idempotencyConfig.CleanupInterval), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, f.redisConfig, f.idempotencyConfig.KeyPrefix)
	if err == nil {
		f.logger.Info("using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"hooks redelivered to another instance may be processed twice",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(f.idempotencyConfig.CleanupInterval), nil
}
