package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

const (
	// beginTimestamp 时间轴起点：2023-01-01 00:00:00 UTC。
	beginTimestamp = 1672531200
	// countBits 序列号占低 32 位。
	countBits = 32
)

// IDWorker 全局唯一 ID 生成器：高 32 位为相对秒数，低 32 位为当天自增序列。
// 序列 key 按天拼接：同业务不会累爆计数器，且可直接按天统计单量。
type IDWorker struct {
	rdb *rd.Client
}

func NewIDWorker(rdb *rd.Client) *IDWorker {
	return &IDWorker{rdb: rdb}
}

// NextID 生成 prefix 业务下的下一个 ID。
// 自增失败没有安全的降级方案，错误必须上抛由调用方中止。
func (w *IDWorker) NextID(ctx context.Context, prefix string) (uint64, error) {
	now := time.Now().UTC()
	timestamp := uint64(now.Unix() - beginTimestamp)

	day := now.Format("2006:01:02")
	count, err := w.rdb.Incr(ctx, IncrKey(prefix, day)).Result()
	if err != nil {
		return 0, fmt.Errorf("idworker incr %s: %w", prefix, err)
	}

	return timestamp<<countBits | uint64(count), nil
}
