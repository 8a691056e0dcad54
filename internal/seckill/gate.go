// Package seckill 实现秒杀准入与异步落单。
// Redis 侧只做快速准入（库存计数 + 一人一单集合），权威库存在关系库。
package seckill

import (
	"context"
	"fmt"
	"strconv"

	rd "github.com/redis/go-redis/v9"

	mallredis "voucher_mall/pkg/redis"
)

// AdmitResult 准入结果。库存不足与重复下单是预期结果，不是错误。
type AdmitResult int

const (
	Admitted AdmitResult = iota
	OutOfStock
	DuplicatePurchase
)

func (r AdmitResult) String() string {
	switch r {
	case Admitted:
		return "admitted"
	case OutOfStock:
		return "out_of_stock"
	case DuplicatePurchase:
		return "duplicate"
	default:
		return "unknown"
	}
}

// luaSeckill 一次往返完成：库存判断、一人一单判断、扣减、记名、订单意向入流。
// 拆成多次往返就会在同用户并发或最后一件库存上出现先检查后行动的竞态。
// ARGV[1]=voucherId ARGV[2]=userId ARGV[3]=orderId
const luaSeckill = `
local voucherId = ARGV[1]
local userId = ARGV[2]
local orderId = ARGV[3]

local stockKey = 'seckill:stock:' .. voucherId
local orderKey = 'seckill:order:' .. voucherId

if tonumber(redis.call('GET', stockKey) or '0') <= 0 then
  return 1
end
if redis.call('SISMEMBER', orderKey, userId) == 1 then
  return 2
end

redis.call('INCRBY', stockKey, -1)
redis.call('SADD', orderKey, userId)
redis.call('XADD', 'stream.orders', '*',
  'id', orderId, 'user_id', userId, 'voucher_id', voucherId)
return 0
`

var seckillScript = rd.NewScript(luaSeckill)

// Gate 秒杀准入门：单脚本原子判定 + 订单意向入流。
type Gate struct {
	rdb *rd.Client
}

func NewGate(rdb *rd.Client) *Gate {
	return &Gate{rdb: rdb}
}

// Admit 判定 userID 此刻能否抢购 voucherID。
// 通过时订单意向已写入流，orderID 即最终订单号。
func (g *Gate) Admit(ctx context.Context, voucherID, userID, orderID uint64) (AdmitResult, error) {
	res, err := seckillScript.Run(ctx, g.rdb, []string{},
		strconv.FormatUint(voucherID, 10),
		strconv.FormatUint(userID, 10),
		strconv.FormatUint(orderID, 10),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("seckill admit: %w", err)
	}

	switch res {
	case 0:
		return Admitted, nil
	case 1:
		return OutOfStock, nil
	case 2:
		return DuplicatePurchase, nil
	default:
		return 0, fmt.Errorf("seckill admit: unexpected script result %d", res)
	}
}

// PreloadStock 把数据库权威库存预热到 Redis 准入计数器。
func (g *Gate) PreloadStock(ctx context.Context, voucherID uint64, stock int64) error {
	return g.rdb.Set(ctx, mallredis.SeckillStockKey(voucherID), stock, 0).Err()
}
