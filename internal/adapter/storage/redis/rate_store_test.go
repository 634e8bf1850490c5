package redis_test

import (
	"context"
	"testing"

	"ethereum-wallet/internal/adapter/storage/redis"
	"ethereum-wallet/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.RateSource    = (*redis.RateStore)(nil)
	_ ports.HealthChecker = (*redis.HealthCheck)(nil)
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRateStore_SetAndRead(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewRateStore(client, "ewl:rates")
	ctx := context.Background()

	require.NoError(t, store.SetRate(ctx, "BTC_ETH", 16.25))
	require.NoError(t, store.SetRate(ctx, "ETH_BTC", 0.0615))

	assert.Equal(t, "16.25", mr.HGet("ewl:rates", "BTC_ETH"))

	rates, err := store.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC_ETH": 16.25, "ETH_BTC": 0.0615}, rates)
}

func TestRateStore_EmptyHash(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewRateStore(client, "ewl:rates")

	rates, err := store.Rates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestRateStore_MalformedRate(t *testing.T) {
	mr, client := newClient(t)
	mr.HSet("ewl:rates", "BTC_ETH", "fifteen")

	_, err := redis.NewRateStore(client, "ewl:rates").Rates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BTC_ETH")
}

func TestHealthCheck(t *testing.T) {
	mr, client := newClient(t)
	hc := redis.NewHealthCheck(client)

	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, hc.Ping(context.Background()))
}
