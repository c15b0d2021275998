package cache

import (
	"context"
	"fmt"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FactorStoreFactory creates the factor store the process shares
type FactorStoreFactory struct {
	redisConfig   config.RedisConfig
	pricingConfig config.PricingConfig
	logger        *zap.Logger
	fallbacks     FallbackRecorder
}

// FactorStoreFactoryOption is a functional option for configuring the factory
type FactorStoreFactoryOption func(*FactorStoreFactory)

// WithLogger sets the logger for the factory and the stores it builds
func WithLogger(logger *zap.Logger) FactorStoreFactoryOption {
	return func(f *FactorStoreFactory) {
		f.logger = logger
	}
}

// WithFactorFallbacks reports Redis fallbacks to r
func WithFactorFallbacks(r FallbackRecorder) FactorStoreFactoryOption {
	return func(f *FactorStoreFactory) {
		f.fallbacks = r
	}
}

// NewFactorStoreFactory creates a new factory
func NewFactorStoreFactory(redisCfg config.RedisConfig, pricingCfg config.PricingConfig, opts ...FactorStoreFactoryOption) *FactorStoreFactory {
	f := &FactorStoreFactory{
		redisConfig:   redisCfg,
		pricingConfig: pricingCfg,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// redisOptions makes go-redis honour context deadlines on socket I/O, so the
// store's read and write timeouts bound each call instead of the client's
// 3s default.
func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:                  cfg.Addr(),
		Password:              cfg.Password,
		DB:                    cfg.DB,
		DialTimeout:           cfg.DialTimeout,
		ContextTimeoutEnabled: true,
	}
}

// NewRedisClient opens a client for the configured Redis server and pings it.
// The ping is bounded by the dial timeout when ctx has no deadline.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(redisOptions(cfg))

	if _, ok := ctx.Deadline(); !ok && cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateStore returns a RedisFactorStore when Redis is enabled, otherwise an
// InMemoryFactorStore. An unreachable Redis at startup is not fatal: the
// client reconnects on demand and reads fall back to defaults meanwhile.
// The returned close function releases the client, if any.
func (f *FactorStoreFactory) CreateStore(ctx context.Context) (pricing.FactorStore, func() error) {
	if !f.redisConfig.Enabled {
		f.logger.Warn("Redis disabled, using in-memory factor store. " +
			"Factor table changes will not be shared across instances.")
		return NewInMemoryFactorStore(), func() error { return nil }
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		f.logger.Warn("Redis unreachable at startup, factor reads will use defaults until it recovers",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		client = redis.NewClient(redisOptions(f.redisConfig))
	} else {
		f.logger.Info("Using Redis factor store", zap.String("addr", f.redisConfig.Addr()))
	}

	opts := []RedisFactorStoreOption{
		WithKeyPrefix(f.pricingConfig.FactorKeyPrefix),
		WithReadTimeout(f.pricingConfig.FactorReadTimeout),
		WithWriteTimeout(f.pricingConfig.FactorWriteTimeout),
		WithStoreLogger(f.logger.Named("factor_store")),
	}
	if f.fallbacks != nil {
		opts = append(opts, WithFallbackRecorder(f.fallbacks))
	}
	return NewRedisFactorStoreWithClient(client, opts...), client.Close
}
