// Package cache 封装读路径缓存策略：
// 穿透防护（空值缓存）与热点 key 击穿防护（逻辑过期 + 异步重建）。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	mallredis "voucher_mall/pkg/redis"
)

// ErrNotFound 表示数据确认不存在（含命中空值缓存的场景）。
var ErrNotFound = errors.New("cache: record not found")

const (
	// nullTTL 空值缓存的独立短 TTL，挡住对真实空洞的反复回源。
	nullTTL = 2 * time.Minute
	// rebuildLockTTL 重建锁 TTL，重建异常时靠它兜底解锁。
	rebuildLockTTL = 10 * time.Second
	// rebuildTimeout 单次后台重建的超时，脱离请求上下文独立计时。
	rebuildTimeout = 10 * time.Second
)

// redisData 逻辑过期包装：值本身永不物理过期，过期语义由读方判断。
type redisData struct {
	ExpireAt time.Time       `json:"expire_at"`
	Data     json.RawMessage `json:"data"`
}

// Client 读穿缓存客户端。重建任务投递到有界后台池，请求线程永不阻塞等待重建。
type Client struct {
	rdb  *rd.Client
	jobs chan func()
	done chan struct{}
}

// NewClient 创建客户端并启动 workers 个重建协程。
func NewClient(rdb *rd.Client, workers, queueSize int) *Client {
	c := &Client{
		rdb:  rdb,
		jobs: make(chan func(), queueSize),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go c.rebuildLoop()
	}
	return c
}

func (c *Client) rebuildLoop() {
	for {
		select {
		case job := <-c.jobs:
			job()
		case <-c.done:
			return
		}
	}
}

// Close 停止后台重建池。已入队未执行的任务直接放弃，锁由 TTL 兜底释放。
func (c *Client) Close() {
	close(c.done)
}

// submit 非阻塞投递重建任务，池满返回 false，由调用方善后（释放重建锁）。
func (c *Client) submit(job func()) bool {
	select {
	case c.jobs <- job:
		return true
	default:
		return false
	}
}

// Set 普通写入：JSON 序列化 + 物理 TTL。
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// SetWithLogicalExpire 热点写入：包一层逻辑过期时间，不设物理 TTL。
func (c *Client) SetWithLogicalExpire(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	wrapped, err := json.Marshal(redisData{
		ExpireAt: time.Now().Add(ttl),
		Data:     data,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, wrapped, 0).Err()
}

// Delete 删除缓存 key（写后失效用）。
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// QueryWithPassThrough 缓存穿透防护的读穿查询。
// 回源成功且无数据时写空值标记；回源失败不写任何标记，错误原样上抛。
func QueryWithPassThrough[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID, ttl time.Duration, fallback func(context.Context, ID) (*T, error)) (*T, error) {
	key := keyPrefix + fmt.Sprint(id)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == rd.Nil:
		// 未缓存，走回源
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	case raw == "":
		// 命中空值标记：确认不存在，不打扰数据库
		return nil, ErrNotFound
	default:
		var v T
		if uerr := json.Unmarshal([]byte(raw), &v); uerr == nil {
			return &v, nil
		}
		// 脏数据当作未缓存处理，回源后覆盖
		log.Warn().Str("key", key).Msg("cache payload corrupt, fallback to db")
	}

	v, err := fallback(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		if serr := c.rdb.Set(ctx, key, "", nullTTL).Err(); serr != nil {
			log.Warn().Err(serr).Str("key", key).Msg("write null marker failed")
		}
		return nil, ErrNotFound
	}

	if serr := c.Set(ctx, key, v, ttl); serr != nil {
		// 写缓存失败不影响本次结果
		log.Warn().Err(serr).Str("key", key).Msg("write cache failed")
	}
	return v, nil
}

// QueryWithLogicalExpire 热点 key 的读穿查询：永远立即返回（可能是旧值）。
// 逻辑过期后同一 key 最多一个重建在途，其余读者直接拿旧值走人。
// 该策略假定 key 已预热，未命中不回源。
func QueryWithLogicalExpire[T any, ID any](ctx context.Context, c *Client, keyPrefix string, id ID, ttl time.Duration, fallback func(context.Context, ID) (*T, error)) (*T, error) {
	key := keyPrefix + fmt.Sprint(id)

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == rd.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var wrapped redisData
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		log.Warn().Str("key", key).Msg("logical-expire payload corrupt")
		return nil, ErrNotFound
	}
	var v T
	if err := json.Unmarshal(wrapped.Data, &v); err != nil {
		log.Warn().Str("key", key).Msg("logical-expire inner payload corrupt")
		return nil, ErrNotFound
	}

	if wrapped.ExpireAt.After(time.Now()) {
		return &v, nil
	}

	// 已逻辑过期：抢到重建锁才投递重建，抢不到说明已有人在建
	lock := mallredis.NewLock(c.rdb, "rebuild:"+key)
	ok, lerr := lock.TryLock(ctx, rebuildLockTTL)
	if lerr != nil {
		log.Warn().Err(lerr).Str("key", key).Msg("rebuild lock failed")
	}
	if ok {
		submitted := c.submit(func() {
			rebuildCtx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
			defer cancel()
			defer func() {
				// 无论成败都要放锁，否则该 key 的重建要等满整个锁 TTL
				if uerr := lock.Unlock(rebuildCtx); uerr != nil {
					log.Warn().Err(uerr).Str("key", key).Msg("release rebuild lock failed")
				}
			}()

			fresh, ferr := fallback(rebuildCtx, id)
			if ferr != nil {
				log.Error().Err(ferr).Str("key", key).Msg("cache rebuild fallback failed")
				return
			}
			if fresh == nil {
				// 源数据已删除：保留旧值，交给运营侧显式清理
				log.Warn().Str("key", key).Msg("cache rebuild found no source row")
				return
			}
			if werr := c.SetWithLogicalExpire(rebuildCtx, key, fresh, ttl); werr != nil {
				log.Error().Err(werr).Str("key", key).Msg("cache rebuild write failed")
			}
		})
		if !submitted {
			// 池满放弃本轮重建，立刻还锁让后来者再试
			if uerr := lock.Unlock(ctx); uerr != nil {
				log.Warn().Err(uerr).Str("key", key).Msg("release rebuild lock failed")
			}
		}
	}

	// 拿旧值直接返回，不等重建
	return &v, nil
}
