package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	mallredis "voucher_mall/pkg/redis"
)

// luaSlidingWindow 滑动窗口计数：清理过期成员、计数、未超限则记入本次请求。
// KEYS[1]=限流键 ARGV[1]=当前秒 ARGV[2]=窗口秒数 ARGV[3]=成员 ARGV[4]=上限
// 超限返回 -1，否则返回窗口内计数。
const luaSlidingWindow = `
local now = tonumber(ARGV[1])
local windowSec = tonumber(ARGV[2])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '0', now - windowSec)

local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[4]) then
  return -1
end

redis.call('ZADD', KEYS[1], now, ARGV[3])
redis.call('EXPIRE', KEYS[1], windowSec)
return count + 1
`

var slidingWindowScript = rd.NewScript(luaSlidingWindow)

// RedisRateLimit 秒杀接口的分布式限流，多实例共享同一窗口。
// 身份优先取 body 里的 user_id，取不到退化为按 IP。
func RedisRateLimit(rdb *rd.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		by := "ip:" + c.ClientIP()
		if userID, err := extractUserID(c); err == nil && userID > 0 {
			by = fmt.Sprintf("user:%d", userID)
		}

		member := fmt.Sprintf("%d", time.Now().UnixNano())
		res, err := slidingWindowScript.Run(c.Request.Context(), rdb,
			[]string{mallredis.RateLimitKey(by)},
			time.Now().Unix(), int64(window.Seconds()), member, limit,
		).Int()
		if err != nil {
			// Redis 故障时放行，限流不挡正常交易
			c.Next()
			return
		}

		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": 429,
				"msg":  "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}

// extractUserID 读 body 取 user_id，读完重置 body 供后续 handler 使用。
func extractUserID(c *gin.Context) (uint64, error) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return 0, err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var req struct {
		UserID uint64 `json:"user_id"`
	}
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		return 0, err
	}
	return req.UserID, nil
}
