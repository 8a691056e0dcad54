package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string
	LogLevel string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）、Topic、消费者组
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// 订单流消费者组与消费者身份（多实例各占一个 consumer 名）
	OrderStreamGroup    string
	OrderStreamConsumer string

	// 缓存重建池与店铺缓存策略
	CacheWorkers   int
	CacheQueueSize int
	ShopCacheTTL   time.Duration
	HotShopTTL     time.Duration

	// 秒杀接口限流
	SeckillRateLimit  int
	SeckillRateWindow time.Duration

	// 库存审计周期
	AuditInterval time.Duration

	// 预热接口的简单管理员令牌（demo 级别保护）
	PreloadAdminToken string
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DBPath:              getEnv("DB_PATH", "voucher_mall.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             0,
		KafkaBrokers:        splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "voucher-order-events"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "voucher-order-audit"),
		OrderStreamGroup:    getEnv("ORDER_STREAM_GROUP", "g1"),
		OrderStreamConsumer: getEnv("ORDER_STREAM_CONSUMER", "c1"),
		CacheWorkers:        10,
		CacheQueueSize:      256,
		ShopCacheTTL:        30 * time.Minute,
		HotShopTTL:          30 * time.Minute,
		SeckillRateLimit:    1000,
		SeckillRateWindow:   time.Second,
		AuditInterval:       time.Minute,
		PreloadAdminToken:   getEnv("PRELOAD_ADMIN_TOKEN", "dev-admin-token"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	workers, err := getEnvInt("CACHE_WORKERS", cfg.CacheWorkers)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CACHE_WORKERS: %w", err)
	}
	if workers <= 0 {
		return AppConfig{}, fmt.Errorf("CACHE_WORKERS must be > 0")
	}
	cfg.CacheWorkers = workers

	queueSize, err := getEnvInt("CACHE_QUEUE_SIZE", cfg.CacheQueueSize)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CACHE_QUEUE_SIZE: %w", err)
	}
	if queueSize <= 0 {
		return AppConfig{}, fmt.Errorf("CACHE_QUEUE_SIZE must be > 0")
	}
	cfg.CacheQueueSize = queueSize

	rateLimit, err := getEnvInt("SECKILL_RATE_LIMIT", cfg.SeckillRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SECKILL_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("SECKILL_RATE_LIMIT must be > 0")
	}
	cfg.SeckillRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("SECKILL_RATE_WINDOW_SEC", int(cfg.SeckillRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SECKILL_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("SECKILL_RATE_WINDOW_SEC must be > 0")
	}
	cfg.SeckillRateWindow = time.Duration(rateWindowSec) * time.Second

	shopTTLMin, err := getEnvInt("SHOP_CACHE_TTL_MIN", int(cfg.ShopCacheTTL.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid SHOP_CACHE_TTL_MIN: %w", err)
	}
	if shopTTLMin <= 0 {
		return AppConfig{}, fmt.Errorf("SHOP_CACHE_TTL_MIN must be > 0")
	}
	cfg.ShopCacheTTL = time.Duration(shopTTLMin) * time.Minute

	hotTTLMin, err := getEnvInt("HOT_SHOP_TTL_MIN", int(cfg.HotShopTTL.Minutes()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid HOT_SHOP_TTL_MIN: %w", err)
	}
	if hotTTLMin <= 0 {
		return AppConfig{}, fmt.Errorf("HOT_SHOP_TTL_MIN must be > 0")
	}
	cfg.HotShopTTL = time.Duration(hotTTLMin) * time.Minute

	auditSec, err := getEnvInt("AUDIT_INTERVAL_SEC", int(cfg.AuditInterval.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid AUDIT_INTERVAL_SEC: %w", err)
	}
	if auditSec <= 0 {
		return AppConfig{}, fmt.Errorf("AUDIT_INTERVAL_SEC must be > 0")
	}
	cfg.AuditInterval = time.Duration(auditSec) * time.Second

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.OrderStreamGroup == "" {
		return AppConfig{}, fmt.Errorf("ORDER_STREAM_GROUP must not be empty")
	}
	if cfg.OrderStreamConsumer == "" {
		return AppConfig{}, fmt.Errorf("ORDER_STREAM_CONSUMER must not be empty")
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
