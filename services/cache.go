package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental-pricing-api/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PredictionChannel carries one models.PredictionEvent per served prediction.
const PredictionChannel = "pricing:predictions"

// ErrCacheMiss is returned by GetBytes when the key is absent or Redis
// is not configured.
var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
}

// NewCacheService connects to Redis. An empty host returns a disabled
// service without error; a failed ping returns a disabled service and the
// last ping error so the caller can decide whether to go on without Redis.
func NewCacheService(cfg config.RedisConfig) (*CacheService, error) {
	if cfg.Host == "" {
		return &CacheService{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	attempts := cfg.PingAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client}, nil
		}
		log.Warn().Err(lastErr).Msgf("redis ping attempt %d/%d failed", i+1, attempts)
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}

	client.Close()
	return &CacheService{}, fmt.Errorf("redis ping failed after %d attempts: %w", attempts, lastErr)
}

func (s *CacheService) Available() bool {
	return s != nil && s.client != nil
}

func (s *CacheService) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if !s.Available() {
		return nil, ErrCacheMiss
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *CacheService) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.Available() {
		return nil
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	if !s.Available() {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

func (s *CacheService) Publish(ctx context.Context, channel string, message interface{}) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

// Subscribe returns nil when Redis is not configured.
func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if !s.Available() {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Close() error {
	if !s.Available() {
		return nil
	}
	return s.client.Close()
}
