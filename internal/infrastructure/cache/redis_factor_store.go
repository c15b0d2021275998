package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FactorTableKey is the key the factor table is stored under
const FactorTableKey = "factores"

// Fallback reasons reported when Get serves the built-in defaults
const (
	FallbackMiss    = "miss"
	FallbackError   = "error"
	FallbackCorrupt = "corrupt"
)

// FallbackRecorder observes factor table reads that fell back to defaults
type FallbackRecorder interface {
	RecordFactorFallback(ctx context.Context, reason string)
}

// RedisFactorStore keeps the factor table as a single JSON value in Redis.
// Reads never fail: a miss, a Redis error, a timeout or an undecodable
// value all yield pricing.DefaultFactorTable(). Writes are validated first
// and replace the whole value with one SET.
type RedisFactorStore struct {
	client       redis.Cmdable
	key          string
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	fallbacks    FallbackRecorder
}

// RedisFactorStoreOption configures a RedisFactorStore
type RedisFactorStoreOption func(*RedisFactorStore)

// WithKeyPrefix namespaces the factor table key
func WithKeyPrefix(prefix string) RedisFactorStoreOption {
	return func(s *RedisFactorStore) {
		s.key = prefix + FactorTableKey
	}
}

// WithReadTimeout bounds a single Get
func WithReadTimeout(d time.Duration) RedisFactorStoreOption {
	return func(s *RedisFactorStore) {
		s.readTimeout = d
	}
}

// WithWriteTimeout bounds a single Set
func WithWriteTimeout(d time.Duration) RedisFactorStoreOption {
	return func(s *RedisFactorStore) {
		s.writeTimeout = d
	}
}

// WithStoreLogger sets the logger cache failures are reported to
func WithStoreLogger(logger *zap.Logger) RedisFactorStoreOption {
	return func(s *RedisFactorStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFallbackRecorder reports every fallback to defaults
func WithFallbackRecorder(r FallbackRecorder) RedisFactorStoreOption {
	return func(s *RedisFactorStore) {
		s.fallbacks = r
	}
}

// NewRedisFactorStoreWithClient creates a store on an existing client
func NewRedisFactorStoreWithClient(client redis.Cmdable, opts ...RedisFactorStoreOption) *RedisFactorStore {
	s := &RedisFactorStore{
		client:       client,
		key:          FactorTableKey,
		readTimeout:  500 * time.Millisecond,
		writeTimeout: 2 * time.Second,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key in use
func (s *RedisFactorStore) Key() string {
	return s.key
}

// Ping reports whether Redis answers within the read timeout. Pricing
// keeps working without it, so health checks treat a failure as degraded.
func (s *RedisFactorStore) Ping(ctx context.Context) error {
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}
	return s.client.Ping(ctx).Err()
}

// Get returns the cached factor table or the built-in defaults
func (s *RedisFactorStore) Get(ctx context.Context) pricing.FactorTable {
	if s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.readTimeout)
		defer cancel()
	}

	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.fallback(ctx, FallbackMiss)
		return pricing.DefaultFactorTable()
	}
	if err != nil {
		s.logger.Warn("Factor table read failed, using defaults",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.fallback(ctx, FallbackError)
		return pricing.DefaultFactorTable()
	}

	var table pricing.FactorTable
	if err := json.Unmarshal(raw, &table); err != nil {
		s.logger.Warn("Factor table value undecodable, using defaults",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.fallback(ctx, FallbackCorrupt)
		return pricing.DefaultFactorTable()
	}
	if err := table.Validate(); err != nil {
		s.logger.Warn("Cached factor table invalid, using defaults",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.fallback(ctx, FallbackCorrupt)
		return pricing.DefaultFactorTable()
	}
	return table
}

// Set validates and stores table, replacing the previous value entirely
func (s *RedisFactorStore) Set(ctx context.Context, table pricing.FactorTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode factor table: %w", err)
	}

	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		s.logger.Error("Factor table write failed",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return shared.NewDomainError(pricing.CodeFactorStoreUnavailable,
			"factor store unavailable: "+err.Error())
	}

	s.logger.Info("Factor table replaced", zap.String("key", s.key))
	return nil
}

func (s *RedisFactorStore) fallback(ctx context.Context, reason string) {
	if s.fallbacks != nil {
		s.fallbacks.RecordFactorFallback(ctx, reason)
	}
}

var _ pricing.FactorStore = (*RedisFactorStore)(nil)
