package model

import "time"

// VoucherOrder 秒杀订单。ID 来自全局 ID 生成器，由准入侧生成。
// (user_id, voucher_id) 唯一索引兜底一人一单，消费侧的预查询是第一道防线。
type VoucherOrder struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_voucher" json:"user_id"`
	VoucherID uint64 `gorm:"not null;uniqueIndex:uk_user_voucher" json:"voucher_id"`
	PayValue  int64  `gorm:"not null;default:0" json:"pay_value"`
	Status    int    `gorm:"not null;default:1" json:"status"` // 1 未支付 2 已支付 3 已取消
}

func (VoucherOrder) TableName() string { return "voucher_orders" }
