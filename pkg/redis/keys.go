package redis

import "fmt"

// OrderStream 秒杀订单意向流（消费者组异步落单）。
const OrderStream = "stream.orders"

// SeckillStockKey 秒杀库存准入计数器键名（Redis 侧，非权威库存）。
func SeckillStockKey(voucherID uint64) string {
	return fmt.Sprintf("seckill:stock:%d", voucherID)
}

// SeckillOrderSetKey 记录某优惠券已下单用户集合，实现一人一单。
func SeckillOrderSetKey(voucherID uint64) string {
	return fmt.Sprintf("seckill:order:%d", voucherID)
}

// CacheShopKey 店铺详情缓存键名。
func CacheShopKey(shopID uint64) string {
	return fmt.Sprintf("cache:shop:%d", shopID)
}

// LockKey 分布式锁键名，name 由调用方按业务拼接（如 order:{userID}）。
func LockKey(name string) string {
	return "lock:" + name
}

// IncrKey 全局 ID 序列号键名，按天切分，顺带支持按天统计单量。
func IncrKey(prefix, day string) string {
	return fmt.Sprintf("incr:%s:%s", prefix, day)
}

// OrderStateKey 存储订单异步处理状态（pending/created/failed）。
func OrderStateKey(orderID uint64) string {
	return fmt.Sprintf("order:state:%d", orderID)
}

// BlogLikedKey 博客点赞 zset，score 为点赞时间戳。
func BlogLikedKey(blogID uint64) string {
	return fmt.Sprintf("blog:liked:%d", blogID)
}

// FeedKey 用户收件箱 zset，存关注者发布的博客 id。
func FeedKey(userID uint64) string {
	return fmt.Sprintf("feed:%d", userID)
}

// FollowsKey 用户关注集合，支撑共同关注求交集。
func FollowsKey(userID uint64) string {
	return fmt.Sprintf("follows:%d", userID)
}

// SignKey 用户某月签到位图，month 格式 yyyyMM。
func SignKey(userID uint64, month string) string {
	return fmt.Sprintf("sign:%d:%s", userID, month)
}

// ShopGeoKey 某类型店铺的 GEO 索引。
func ShopGeoKey(typeID uint64) string {
	return fmt.Sprintf("shop:geo:%d", typeID)
}

// RateLimitKey 秒杀接口限流 zset 键名，by 为 user:{id} 或 ip:{addr}。
func RateLimitKey(by string) string {
	return "rate_limit:seckill:" + by
}
