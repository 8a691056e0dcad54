package seckill

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	rd "github.com/redis/go-redis/v9"

	"voucher_mall/internal/model"
	"voucher_mall/internal/queue"
	mallredis "voucher_mall/pkg/redis"
)

type fakeStore struct {
	mu       sync.Mutex
	orders   []model.VoucherOrder
	failNext int  // SaveOrder 先失败这么多次（模拟数据库抖动）
	soldOut  bool // SaveOrder 恒返回 ErrSoldOut
	hasCalls int
}

func (s *fakeStore) HasOrder(ctx context.Context, userID, voucherID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasCalls++
	for _, o := range s.orders {
		if o.UserID == userID && o.VoucherID == voucherID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) SaveOrder(ctx context.Context, order *model.VoucherOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return errors.New("db flaky")
	}
	if s.soldOut {
		return ErrSoldOut
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeLock struct{}

func (fakeLock) TryLock(ctx context.Context, ttl time.Duration) (bool, error) { return true, nil }
func (fakeLock) Unlock(ctx context.Context) error                            { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.OrderCreatedEvent
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, evt queue.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) eventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestWorker(rdb *rd.Client, store OrderStore, pub EventPublisher, group string) *Worker {
	w := NewWorker(rdb, store, pub, group, "c1")
	w.newLock = func(name string) locker { return fakeLock{} }
	return w
}

func pushIntent(t *testing.T, rdb *rd.Client, orderID, userID, voucherID uint64) {
	t.Helper()
	err := rdb.XAdd(context.Background(), &rd.XAddArgs{
		Stream: mallredis.OrderStream,
		Values: map[string]interface{}{
			"id":         strconv.FormatUint(orderID, 10),
			"user_id":    strconv.FormatUint(userID, 10),
			"voucher_id": strconv.FormatUint(voucherID, 10),
		},
	}).Err()
	if err != nil {
		t.Fatalf("XAdd: %v", err)
	}
}

// runWorker 启动消费循环并返回停止函数。
func runWorker(t *testing.T, w *Worker) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("worker did not stop")
		}
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func pendingCount(t *testing.T, rdb *rd.Client, group string) int64 {
	t.Helper()
	p, err := rdb.XPending(context.Background(), mallredis.OrderStream, group).Result()
	if err != nil {
		// 消费组可能尚未创建
		if strings.Contains(err.Error(), "NOGROUP") {
			return -1
		}
		t.Fatalf("XPending: %v", err)
	}
	return p.Count
}

func TestWorkerPersistsIntentAndAcks(t *testing.T) {
	rdb := getTestClient(t)
	ctx := context.Background()
	rdb.Del(ctx, mallredis.OrderStream, mallredis.OrderStateKey(900))

	store := &fakeStore{}
	pub := &fakePublisher{}
	w := newTestWorker(rdb, store, pub, "tg-persist")

	pushIntent(t, rdb, 900, 11, 5)

	stop := runWorker(t, w)
	defer stop()

	waitFor(t, func() bool { return store.orderCount() == 1 }, "order never persisted")
	waitFor(t, func() bool { return pendingCount(t, rdb, "tg-persist") == 0 }, "message never acked")

	state, found, err := mallredis.GetOrderState(ctx, rdb, 900)
	if err != nil || !found {
		t.Fatalf("GetOrderState: found=%v err=%v", found, err)
	}
	if state.Status != mallredis.OrderCreated {
		t.Errorf("order state = %q, want %q", state.Status, mallredis.OrderCreated)
	}
	if pub.eventCount() != 1 {
		t.Errorf("published events = %d, want 1", pub.eventCount())
	}
}

func TestWorkerRecoversPendingAfterFailure(t *testing.T) {
	rdb := getTestClient(t)
	ctx := context.Background()
	rdb.Del(ctx, mallredis.OrderStream, mallredis.OrderStateKey(901))

	// 第一次落单失败，消息留在 pending-list，补偿重放后成功
	store := &fakeStore{failNext: 1}
	w := newTestWorker(rdb, store, &fakePublisher{}, "tg-recover")

	pushIntent(t, rdb, 901, 12, 5)

	stop := runWorker(t, w)
	defer stop()

	waitFor(t, func() bool { return store.orderCount() == 1 }, "order never persisted after retry")
	waitFor(t, func() bool { return pendingCount(t, rdb, "tg-recover") == 0 }, "pending message never acked")
}

func TestWorkerDuplicateDeliveryIsIdempotent(t *testing.T) {
	rdb := getTestClient(t)
	ctx := context.Background()
	rdb.Del(ctx, mallredis.OrderStream)

	store := &fakeStore{orders: []model.VoucherOrder{{ID: 902, UserID: 13, VoucherID: 5}}}
	pub := &fakePublisher{}
	w := newTestWorker(rdb, store, pub, "tg-dup")

	// 同一订单意向重复投递（pending 重放的等价场景）
	pushIntent(t, rdb, 902, 13, 5)

	stop := runWorker(t, w)
	defer stop()

	waitFor(t, func() bool { return pendingCount(t, rdb, "tg-dup") == 0 }, "duplicate never acked")

	if n := store.orderCount(); n != 1 {
		t.Errorf("orders = %d, want 1 (no second insert)", n)
	}
	if pub.eventCount() != 0 {
		t.Errorf("duplicate delivery published %d events, want 0", pub.eventCount())
	}

	state, found, err := mallredis.GetOrderState(ctx, rdb, 902)
	if err != nil || !found {
		t.Fatalf("GetOrderState: found=%v err=%v", found, err)
	}
	if state.Status != mallredis.OrderCreated {
		t.Errorf("order state = %q, want %q", state.Status, mallredis.OrderCreated)
	}
}

func TestWorkerDropsIntentWhenSoldOut(t *testing.T) {
	rdb := getTestClient(t)
	ctx := context.Background()
	rdb.Del(ctx, mallredis.OrderStream, mallredis.OrderStateKey(903))

	store := &fakeStore{soldOut: true}
	w := newTestWorker(rdb, store, &fakePublisher{}, "tg-soldout")

	pushIntent(t, rdb, 903, 14, 5)

	stop := runWorker(t, w)
	defer stop()

	// 权威库存已尽：意向被丢弃并 ACK，不进入无限重试
	waitFor(t, func() bool { return pendingCount(t, rdb, "tg-soldout") == 0 }, "sold-out intent never acked")

	state, found, err := mallredis.GetOrderState(ctx, rdb, 903)
	if err != nil || !found {
		t.Fatalf("GetOrderState: found=%v err=%v", found, err)
	}
	if state.Status != mallredis.OrderFailed {
		t.Errorf("order state = %q, want %q", state.Status, mallredis.OrderFailed)
	}
}

func TestWorkerDropsMalformedMessage(t *testing.T) {
	rdb := getTestClient(t)
	ctx := context.Background()
	rdb.Del(ctx, mallredis.OrderStream)

	store := &fakeStore{}
	w := newTestWorker(rdb, store, &fakePublisher{}, "tg-malformed")

	if err := rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: mallredis.OrderStream,
		Values: map[string]interface{}{"garbage": "yes"},
	}).Err(); err != nil {
		t.Fatalf("XAdd: %v", err)
	}

	stop := runWorker(t, w)
	defer stop()

	waitFor(t, func() bool { return pendingCount(t, rdb, "tg-malformed") == 0 }, "malformed message never acked")

	if n := store.orderCount(); n != 0 {
		t.Errorf("malformed message produced %d orders", n)
	}
}
