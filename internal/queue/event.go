package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KindOrderCreated 订单创建事件类型。
const KindOrderCreated = "order_created"

// OrderCreatedEvent 订单持久化成功后写入 Kafka 的下游事件。
// EventID 是消费端的幂等主键。
type OrderCreatedEvent struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	OrderID   uint64    `json:"order_id"`
	UserID    uint64    `json:"user_id"`
	VoucherID uint64    `json:"voucher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrderCreatedEvent 构造带新 EventID 的订单创建事件。
func NewOrderCreatedEvent(orderID, userID, voucherID uint64) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:   uuid.NewString(),
		Kind:      KindOrderCreated,
		OrderID:   orderID,
		UserID:    userID,
		VoucherID: voucherID,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate 最小字段校验，防止消费者处理脏消息。
func (e OrderCreatedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if e.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if e.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	if e.VoucherID == 0 {
		return fmt.Errorf("voucher_id is required")
	}
	return nil
}
