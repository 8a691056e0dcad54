package redis

import (
	"context"
	"os"
	"testing"

	rd "github.com/redis/go-redis/v9"
)

// getTestClient 连接测试 Redis（DB 15），连不上直接跳过用例。
func getTestClient(t *testing.T) *rd.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := rd.NewClient(&rd.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
