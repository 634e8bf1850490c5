package redis

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

// RateStore keeps exchange rates in a Redis hash of pair -> rate. It
// implements ports.RateSource.
type RateStore struct {
	client goredis.UniversalClient
	key    string
}

// NewRateStore creates a rate store backed by the hash at key.
func NewRateStore(client goredis.UniversalClient, key string) *RateStore {
	return &RateStore{client: client, key: key}
}

// Rates returns every stored rate. An absent hash yields an empty map.
func (s *RateStore) Rates(ctx context.Context) (map[string]float64, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get rates: %w", err)
	}

	rates := make(map[string]float64, len(raw))
	for pair, v := range raw {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("redis rate %s: %w", pair, err)
		}
		rates[pair] = rate
	}
	return rates, nil
}

// SetRate stores the rate for pair.
func (s *RateStore) SetRate(ctx context.Context, pair string, rate float64) error {
	if err := s.client.HSet(ctx, s.key, pair, strconv.FormatFloat(rate, 'f', -1, 64)).Err(); err != nil {
		return fmt.Errorf("redis set rate: %w", err)
	}
	return nil
}
