package seckill

import (
	"context"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"voucher_mall/internal/model"
	mallredis "voucher_mall/pkg/redis"
)

// ErrVoucherNotFound 秒杀券不存在。
var ErrVoucherNotFound = errors.New("seckill: voucher not found")

// Service 秒杀入口：生成订单号 → 原子准入 → 立即返回。
// 落单不在本路径，由 Worker 异步完成。
type Service struct {
	rdb      *rd.Client
	db       *gorm.DB
	gate     *Gate
	idWorker *mallredis.IDWorker
}

func NewService(rdb *rd.Client, db *gorm.DB) *Service {
	return &Service{
		rdb:      rdb,
		db:       db,
		gate:     NewGate(rdb),
		idWorker: mallredis.NewIDWorker(rdb),
	}
}

// Seckill 尝试为 userID 抢购 voucherID。
// 返回的 orderID 仅在 result == Admitted 时有效；此时订单意向已入流。
func (s *Service) Seckill(ctx context.Context, voucherID, userID uint64) (uint64, AdmitResult, error) {
	orderID, err := s.idWorker.NextID(ctx, "order")
	if err != nil {
		return 0, 0, err
	}

	result, err := s.gate.Admit(ctx, voucherID, userID, orderID)
	if err != nil {
		return 0, 0, err
	}
	admitResults.WithLabelValues(result.String()).Inc()
	if result != Admitted {
		return 0, result, nil
	}

	// 状态写失败不影响准入结果，轮询接口会回落到数据库
	if serr := mallredis.PutOrderState(ctx, s.rdb, orderID, mallredis.OrderPending, "", orderStateTTL); serr != nil {
		log.Warn().Err(serr).Uint64("order_id", orderID).Msg("seckill put pending state failed")
	}
	return orderID, Admitted, nil
}

// Preload 预热：未开始/已结束的活动不加载库存，准入侧自然表现为无库存。
func (s *Service) Preload(ctx context.Context, voucherID uint64) error {
	var sv model.SeckillVoucher
	if err := s.db.WithContext(ctx).First(&sv, "voucher_id = ?", voucherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoucherNotFound
		}
		return err
	}

	now := time.Now()
	if now.Before(sv.BeginTime) || now.After(sv.EndTime) {
		return fmt.Errorf("seckill: voucher %d not in sale window", voucherID)
	}
	return s.gate.PreloadStock(ctx, voucherID, sv.Stock)
}

// OrderResult 订单轮询结果。
type OrderResult struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// QueryOrder 轮询订单处理进度：先看 Redis 状态，状态缺失再回落数据库。
func (s *Service) QueryOrder(ctx context.Context, orderID uint64) (OrderResult, error) {
	state, found, err := mallredis.GetOrderState(ctx, s.rdb, orderID)
	if err == nil && found {
		return OrderResult{OrderID: orderID, Status: state.Status, Reason: state.Reason}, nil
	}
	if err != nil {
		log.Warn().Err(err).Uint64("order_id", orderID).Msg("query order state failed, fallback to db")
	}

	var order model.VoucherOrder
	dberr := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	switch {
	case dberr == nil:
		return OrderResult{OrderID: orderID, Status: mallredis.OrderCreated}, nil
	case errors.Is(dberr, gorm.ErrRecordNotFound):
		return OrderResult{OrderID: orderID, Status: mallredis.OrderPending}, nil
	default:
		return OrderResult{}, dberr
	}
}
