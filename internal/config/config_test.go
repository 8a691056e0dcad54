package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.OrderStreamGroup != "g1" || cfg.OrderStreamConsumer != "c1" {
		t.Errorf("stream identity = %q/%q", cfg.OrderStreamGroup, cfg.OrderStreamConsumer)
	}
	if cfg.CacheWorkers != 10 || cfg.CacheQueueSize != 256 {
		t.Errorf("cache pool = %d/%d", cfg.CacheWorkers, cfg.CacheQueueSize)
	}
	if cfg.ShopCacheTTL != 30*time.Minute {
		t.Errorf("ShopCacheTTL = %v", cfg.ShopCacheTTL)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("SECKILL_RATE_LIMIT", "50")
	t.Setenv("SECKILL_RATE_WINDOW_SEC", "2")
	t.Setenv("AUDIT_INTERVAL_SEC", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d", cfg.RedisDB)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.SeckillRateLimit != 50 || cfg.SeckillRateWindow != 2*time.Second {
		t.Errorf("rate limit = %d/%v", cfg.SeckillRateLimit, cfg.SeckillRateWindow)
	}
	if cfg.AuditInterval != 30*time.Second {
		t.Errorf("AuditInterval = %v", cfg.AuditInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct{ key, value string }{
		{"REDIS_DB", "not-a-number"},
		{"CACHE_WORKERS", "0"},
		{"CACHE_QUEUE_SIZE", "-1"},
		{"SECKILL_RATE_LIMIT", "0"},
		{"SECKILL_RATE_WINDOW_SEC", "abc"},
		{"SHOP_CACHE_TTL_MIN", "0"},
		{"AUDIT_INTERVAL_SEC", "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s should fail", tc.key, tc.value)
			}
		})
	}
}
