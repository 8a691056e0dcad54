package seckill

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"voucher_mall/internal/model"
)

// ErrSoldOut 权威库存已为零，条件扣减未命中任何行。
var ErrSoldOut = errors.New("seckill: voucher sold out")

// OrderStore 落单侧需要的持久化能力，便于消费逻辑脱离具体数据库做测试。
type OrderStore interface {
	// HasOrder 判断 (userID, voucherID) 是否已有订单。
	HasOrder(ctx context.Context, userID, voucherID uint64) (bool, error)

	// SaveOrder 在同一事务内完成「stock > 0 守护的扣减 + 订单落库」。
	// 库存已尽返回 ErrSoldOut。
	SaveOrder(ctx context.Context, order *model.VoucherOrder) error
}

// GormStore 基于 gorm 的 OrderStore 实现。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) HasOrder(ctx context.Context, userID, voucherID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.VoucherOrder{}).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveOrder 事务边界只包住这一次落单：扣减失败则回滚，不留下半个订单。
func (s *GormStore) SaveOrder(ctx context.Context, order *model.VoucherOrder) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SeckillVoucher{}).
			Where("voucher_id = ? AND stock > 0", order.VoucherID).
			UpdateColumn("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSoldOut
		}
		return tx.Create(order).Error
	})
}
