package cacheinfra

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisService adapts a Redis client to the cache.Service contract for
// multi-process deployments. Values round-trip through JSON, so cached types
// must marshal cleanly; anything that does not is fetched fresh every call.
type redisService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisService builds a Redis-backed cache from a redis:// URL.
func NewRedisService(url string, ttl time.Duration) (*redisService, error) {
	if ttl <= 0 {
		return nil, &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &redisService{client: redis.NewClient(opts), ttl: ttl}, nil
}

// GetOrFetch implements cache.Service. Unlike the sturdyc backend there is
// no cross-caller deduplication: concurrent misses each run the producer
// once, which the contract permits.
func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	resultType := reflect.TypeOf(fetchFn).Out(0)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		ptr := reflect.New(resultType)
		if unmarshalErr := json.Unmarshal(data, ptr.Interface()); unmarshalErr == nil {
			return ptr.Elem().Interface(), nil
		}
		// A payload we cannot decode is treated as a miss and overwritten.
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	result, err := callFetchFn(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(result); marshalErr == nil {
		if setErr := s.client.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
			return nil, setErr
		}
	}

	return result, nil
}

// Delete implements cache.Service.
func (s *redisService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// DeleteByPrefix implements cache.Service using SCAN to avoid blocking the
// server on large keyspaces.
func (s *redisService) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
