package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
)

// luaUnlock 仅当锁值仍是自己的 token 时才删除，避免误删已易主的锁。
// 超时释放后锁被他人持有时，Unlock 是静默空操作。
const luaUnlock = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

var unlockScript = rd.NewScript(luaUnlock)

// Lock 基于 SET NX EX 的简单分布式锁。
// 每个 Lock 实例持有独立 token，崩溃持有者只能靠 TTL 过期兜底。
type Lock struct {
	rdb   *rd.Client
	key   string
	token string
}

// NewLock 创建一把以 name 命名的锁，token 进程内每次生成都唯一。
func NewLock(rdb *rd.Client, name string) *Lock {
	return &Lock{
		rdb:   rdb,
		key:   LockKey(name),
		token: uuid.NewString(),
	}
}

// TryLock 非阻塞抢锁：已被占用立刻返回 false，不等待。
func (l *Lock) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, l.key, l.token, ttl).Result()
}

// Unlock 释放锁。token 不匹配（锁已过期易主）时不报错，直接忽略。
func (l *Lock) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}
