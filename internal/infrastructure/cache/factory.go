package cache

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TenantCacheFactory picks the tenant cache implementation from configuration
type TenantCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TenantCacheFactoryOption configures the factory
type TenantCacheFactoryOption func(*TenantCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TenantCacheFactoryOption {
	return func(f *TenantCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to an
// in-memory cache. The default is true.
func WithInMemoryFallback(allow bool) TenantCacheFactoryOption {
	return func(f *TenantCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTenantCacheFactory creates a factory
func NewTenantCacheFactory(cfg config.RedisConfig, opts ...TenantCacheFactoryOption) *TenantCacheFactory {
	f := &TenantCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed.
func (f *TenantCacheFactory) CreateCache(ctx context.Context) (TenantCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory tenant cache")
		return NewInMemoryTenantCache(0), nil
	}

	redisCache, err := NewRedisTenantCache(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis tenant cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for tenant cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory tenant cache", zap.Error(err))
	return NewInMemoryTenantCache(0), nil
}
