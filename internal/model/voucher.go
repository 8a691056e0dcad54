package model

import (
	"time"

	"gorm.io/gorm"
)

// Voucher 优惠券基本信息。
type Voucher struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ShopID   uint64 `gorm:"not null;index" json:"shop_id"`
	Title    string `gorm:"size:128;not null" json:"title"`
	PayValue int64  `gorm:"not null" json:"pay_value"` // 单位：分
	Status   int    `gorm:"not null;default:1" json:"status"`
}

func (Voucher) TableName() string { return "vouchers" }

// SeckillVoucher 秒杀券扩展：权威库存与活动时间窗。
// Stock 是落单时的权威计数，Redis 侧准入计数器与之独立。
type SeckillVoucher struct {
	VoucherID uint64    `gorm:"primarykey" json:"voucher_id"`
	Stock     int64     `gorm:"not null" json:"stock"`
	BeginTime time.Time `gorm:"not null" json:"begin_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SeckillVoucher) TableName() string { return "seckill_vouchers" }
