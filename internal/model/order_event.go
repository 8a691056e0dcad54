package model

import "time"

// OrderEvent 订单事件审计行，由 Kafka 消费端幂等写入。
// EventID 唯一索引：重复消费落库时 UNIQUE 冲突视为已处理。
type OrderEvent struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EventID   string `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	OrderID   uint64 `gorm:"not null;index" json:"order_id"`
	UserID    uint64 `gorm:"not null" json:"user_id"`
	VoucherID uint64 `gorm:"not null" json:"voucher_id"`
	Kind      string `gorm:"size:32;not null" json:"kind"`
}

func (OrderEvent) TableName() string { return "order_events" }
