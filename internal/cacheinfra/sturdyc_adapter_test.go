package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Capacity:           128,
		NumShards:          4,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{
			"negative refresh",
			func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: -time.Second}
			},
			"EarlyRefresh.MinAsyncRefreshTime",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}

	if err := testConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected valid default config, got %v", err)
	}
}

func TestNewSturdycService_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = -1
	if _, err := NewSturdycService(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestValidateFetchFn(t *testing.T) {
	valid := func(ctx context.Context) (string, error) { return "", nil }
	if err := validateFetchFn(valid); err != nil {
		t.Errorf("expected valid fetchFn, got %v", err)
	}

	invalid := []struct {
		name string
		fn   any
	}{
		{"nil", nil},
		{"not a function", "fetch"},
		{"no params", func() (string, error) { return "", nil }},
		{"wrong first param", func(s string) (string, error) { return "", nil }},
		{"single return", func(ctx context.Context) string { return "" }},
		{"second return not error", func(ctx context.Context) (string, string) { return "", "" }},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateFetchFn(tc.fn); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetOrFetch_MissThenHit(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("NewSturdycService failed: %v", err)
	}

	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	got, err := svc.GetOrFetch(ctx, "k1", fetch)
	if err != nil || got.(string) != "value" {
		t.Fatalf("miss failed: %v %v", got, err)
	}

	got, err = svc.GetOrFetch(ctx, "k1", fetch)
	if err != nil || got.(string) != "value" {
		t.Fatalf("hit failed: %v %v", got, err)
	}
	if calls != 1 {
		t.Errorf("expected a single producer call, got %d", calls)
	}
}

func TestGetOrFetch_ProducerError(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("NewSturdycService failed: %v", err)
	}

	wantErr := errors.New("db down")
	_, err = svc.GetOrFetch(context.Background(), "k1", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if err == nil {
		t.Fatal("expected producer error to propagate")
	}
}

func TestDelete(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("NewSturdycService failed: %v", err)
	}

	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	svc.GetOrFetch(ctx, "k1", fetch)
	if err := svc.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	svc.GetOrFetch(ctx, "k1", fetch)
	if calls != 2 {
		t.Errorf("expected refetch after delete, got %d calls", calls)
	}

	// Absent keys delete cleanly.
	if err := svc.Delete(ctx, "never-set"); err != nil {
		t.Errorf("expected no-op delete, got %v", err)
	}
}

func TestDeleteByPrefix(t *testing.T) {
	svc, err := NewSturdycService(testConfig())
	if err != nil {
		t.Fatalf("NewSturdycService failed: %v", err)
	}

	ctx := context.Background()
	counts := map[string]int{}
	fetchFor := func(key string) func(context.Context) (string, error) {
		return func(ctx context.Context) (string, error) {
			counts[key]++
			return key, nil
		}
	}

	for _, key := range []string{"reviews_all", "reviews_target_1", "cart_u1"} {
		svc.GetOrFetch(ctx, key, fetchFor(key))
	}

	if err := svc.DeleteByPrefix(ctx, "reviews_"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for _, key := range []string{"reviews_all", "reviews_target_1", "cart_u1"} {
		svc.GetOrFetch(ctx, key, fetchFor(key))
	}
	if counts["reviews_all"] != 2 || counts["reviews_target_1"] != 2 {
		t.Errorf("expected review keys refetched, got %v", counts)
	}
	if counts["cart_u1"] != 1 {
		t.Errorf("expected cart key untouched, got %v", counts)
	}
}
