package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

const (
	// OrderPending 表示已通过准入、等待异步落单。
	OrderPending = "pending"
	// OrderCreated 表示订单已持久化。
	OrderCreated = "created"
	// OrderFailed 表示落单失败（终态，意向被丢弃）。
	OrderFailed = "failed"
)

// OrderState 订单异步处理状态，供前端轮询，避免每次打到数据库。
type OrderState struct {
	OrderID uint64
	Status  string
	Reason  string
}

// GetOrderState 查询订单当前状态。found=false 表示 key 不存在（已过期或未写入）。
func GetOrderState(ctx context.Context, rdb *rd.Client, orderID uint64) (OrderState, bool, error) {
	m, err := rdb.HGetAll(ctx, OrderStateKey(orderID)).Result()
	if err != nil {
		return OrderState{}, false, err
	}
	if len(m) == 0 {
		return OrderState{}, false, nil
	}

	out := OrderState{
		OrderID: orderID,
		Status:  m["status"],
		Reason:  m["reason"],
	}
	if out.Status == "" {
		out.Status = OrderPending
	}
	return out, true, nil
}

// PutOrderState 更新订单状态并刷新 TTL。
func PutOrderState(ctx context.Context, rdb *rd.Client, orderID uint64, status, reason string, ttl time.Duration) error {
	key := OrderStateKey(orderID)
	pipe := rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"status", status,
		"reason", reason,
	)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
