package cache

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/config"
)

func redisConfigFor(t *testing.T, addr string) config.RedisConfig {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return config.RedisConfig{Enabled: true, Host: host, Port: p, DialTimeout: 200 * time.Millisecond}
}

func TestFactorStoreFactory_ConfiguredTimeoutsBoundStalledRedis(t *testing.T) {
	factory := NewFactorStoreFactory(redisConfigFor(t, stalledListener(t)), config.PricingConfig{
		FactorReadTimeout:  100 * time.Millisecond,
		FactorWriteTimeout: 100 * time.Millisecond,
	})

	store, closeStore := factory.CreateStore(context.Background())
	t.Cleanup(func() { _ = closeStore() })
	require.IsType(t, &RedisFactorStore{}, store)

	start := time.Now()
	table := store.Get(context.Background())
	assert.True(t, table.Equal(pricing.DefaultFactorTable()))
	assert.Less(t, time.Since(start), time.Second)

	start = time.Now()
	err := store.Set(context.Background(), pricing.DefaultFactorTable())
	assert.ErrorIs(t, err, pricing.ErrFactorStoreUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFactorStoreFactory_DisabledRedisUsesMemory(t *testing.T) {
	store, closeStore := NewFactorStoreFactory(config.RedisConfig{}, config.PricingConfig{}).CreateStore(context.Background())

	assert.IsType(t, &InMemoryFactorStore{}, store)
	assert.NoError(t, closeStore())
}

func TestNewRedisClient_StartupPingBoundedByDialTimeout(t *testing.T) {
	start := time.Now()
	_, err := NewRedisClient(context.Background(), redisConfigFor(t, stalledListener(t)))

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
