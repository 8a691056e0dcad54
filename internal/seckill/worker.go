package seckill

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"voucher_mall/internal/model"
	"voucher_mall/internal/queue"
	mallredis "voucher_mall/pkg/redis"
)

const (
	// readBlock 新消息阻塞读的上限，兼做优雅退出的重查周期。
	readBlock = 2 * time.Second
	// userLockTTL 用户级落单锁 TTL，持有者崩溃后靠它解锁。
	userLockTTL = 30 * time.Second
	// orderStateTTL 订单状态在 Redis 中的保留时长。
	orderStateTTL = 24 * time.Hour
)

// locker 抽出最小锁接口，落单逻辑可以脱离 Redis 测试。
type locker interface {
	TryLock(ctx context.Context, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context) error
}

// EventPublisher 订单创建成功后的下游事件出口。
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, evt queue.OrderCreatedEvent) error
}

// Worker 订单流消费者：读意向 → 加用户锁落单 → ACK。
// 处理中途异常不终止循环，转入 pending-list 补偿，保证已准入订单不丢。
type Worker struct {
	rdb      *rd.Client
	store    OrderStore
	producer EventPublisher

	group    string
	consumer string

	// newLock 默认基于 Redis，测试时可替换
	newLock func(name string) locker
}

func NewWorker(rdb *rd.Client, store OrderStore, producer EventPublisher, group, consumer string) *Worker {
	return &Worker{
		rdb:      rdb,
		store:    store,
		producer: producer,
		group:    group,
		consumer: consumer,
		newLock: func(name string) locker {
			return mallredis.NewLock(rdb, name)
		},
	}
}

// Run 启动消费循环，直到 ctx 取消。
func (w *Worker) Run(ctx context.Context) {
	if err := w.ensureGroup(ctx); err != nil {
		log.Error().Err(err).Msg("order worker ensure group")
		return
	}
	log.Info().Str("group", w.group).Str("consumer", w.consumer).Msg("order worker started")

	for ctx.Err() == nil {
		msg, ok, err := w.readOne(ctx, ">", readBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("order worker read")
			time.Sleep(300 * time.Millisecond)
			continue
		}
		if !ok {
			continue // 阻塞超时无新消息
		}

		if err := w.process(ctx, msg); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("order worker process, recovering pending list")
			w.recoverPending(ctx)
		}
	}
}

func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, mallredis.OrderStream, w.group, "0").Err()
	if err == nil || strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// readOne 读一条消息。streamID 为 ">" 读新消息，"0" 读本消费者 pending。
func (w *Worker) readOne(ctx context.Context, streamID string, block time.Duration) (rd.XMessage, bool, error) {
	streams, err := w.rdb.XReadGroup(ctx, &rd.XReadGroupArgs{
		Group:    w.group,
		Consumer: w.consumer,
		Streams:  []string{mallredis.OrderStream, streamID},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return rd.XMessage{}, false, nil
		}
		return rd.XMessage{}, false, err
	}
	for _, s := range streams {
		if len(s.Messages) > 0 {
			return s.Messages[0], true, nil
		}
	}
	return rd.XMessage{}, false, nil
}

// process 解析并落单，成功后 ACK。返回 error 表示消息仍留在 pending-list。
func (w *Worker) process(ctx context.Context, msg rd.XMessage) error {
	intent, err := ParseIntent(msg.Values)
	if err != nil {
		// 脏消息重放也不会成功，ACK 丢弃避免堵死补偿循环
		log.Warn().Err(err).Str("msg_id", msg.ID).Msg("order worker drop malformed intent")
		return w.ack(ctx, msg.ID)
	}

	if err := w.handleIntent(ctx, intent); err != nil {
		return err
	}
	return w.ack(ctx, msg.ID)
}

func (w *Worker) ack(ctx context.Context, id string) error {
	return w.rdb.XAck(ctx, mallredis.OrderStream, w.group, id).Err()
}

// handleIntent 串行化同一用户的落单：跨消费者也靠用户锁互斥。
func (w *Worker) handleIntent(ctx context.Context, intent OrderIntent) error {
	lock := w.newLock("order:" + strconv.FormatUint(intent.UserID, 10))
	ok, err := lock.TryLock(ctx, userLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		// 同用户另一单正在处理，准入层已保证一人一单，这里直接放弃
		log.Debug().Uint64("user_id", intent.UserID).Msg("order worker user lock busy")
		return nil
	}
	defer func() {
		if uerr := lock.Unlock(ctx); uerr != nil {
			log.Warn().Err(uerr).Uint64("user_id", intent.UserID).Msg("order worker unlock failed")
		}
	}()

	return w.createOrder(ctx, intent)
}

// createOrder 落单主体。重复投递靠订单预查询幂等，库存尽了丢弃意向。
func (w *Worker) createOrder(ctx context.Context, intent OrderIntent) error {
	exists, err := w.store.HasOrder(ctx, intent.UserID, intent.VoucherID)
	if err != nil {
		return err
	}
	if exists {
		// pending 重放或重复信号，订单已在库，视为成功
		log.Debug().Uint64("order_id", intent.OrderID).Msg("order worker skip duplicate")
		w.putState(ctx, intent.OrderID, mallredis.OrderCreated, "")
		return nil
	}

	order := &model.VoucherOrder{
		ID:        intent.OrderID,
		UserID:    intent.UserID,
		VoucherID: intent.VoucherID,
	}
	if err := w.store.SaveOrder(ctx, order); err != nil {
		if errors.Is(err, ErrSoldOut) {
			// 准入计数与权威库存漂移：记录并丢弃，重试只会再次失败
			log.Warn().Uint64("voucher_id", intent.VoucherID).Uint64("order_id", intent.OrderID).
				Msg("order worker drop intent: authoritative stock exhausted")
			orderDropped.Inc()
			w.putState(ctx, intent.OrderID, mallredis.OrderFailed, "sold out")
			return nil
		}
		return err
	}

	w.putState(ctx, intent.OrderID, mallredis.OrderCreated, "")
	orderPersisted.Inc()

	if w.producer != nil {
		evt := queue.NewOrderCreatedEvent(intent.OrderID, intent.UserID, intent.VoucherID)
		if perr := w.producer.PublishOrderCreated(ctx, evt); perr != nil {
			// 事件总线是旁路，失败不影响订单本身
			log.Warn().Err(perr).Uint64("order_id", intent.OrderID).Msg("order worker publish event failed")
		}
	}
	return nil
}

func (w *Worker) putState(ctx context.Context, orderID uint64, status, reason string) {
	if err := mallredis.PutOrderState(ctx, w.rdb, orderID, status, reason, orderStateTTL); err != nil {
		log.Warn().Err(err).Uint64("order_id", orderID).Msg("order worker put state failed")
	}
}

// recoverPending 重放本消费者已投递未确认的消息，直到 pending-list 为空。
// 崩溃或中途失败的意向由此找回，重复处理由 createOrder 的幂等检查吸收。
func (w *Worker) recoverPending(ctx context.Context) {
	for ctx.Err() == nil {
		msg, ok, err := w.readOne(ctx, "0", 0)
		if err != nil {
			log.Error().Err(err).Msg("order worker read pending")
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if !ok {
			return // pending-list 已清空
		}
		if err := w.process(ctx, msg); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("order worker reprocess pending")
			time.Sleep(50 * time.Millisecond)
		}
	}
}
