package seckill

import (
	"context"
	"errors"
	"strconv"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"voucher_mall/internal/model"
	mallredis "voucher_mall/pkg/redis"
)

// Reconciler 周期性审计双库存计数：
// Redis 准入计数器应不大于权威库存与在途意向之和，越界即漂移。
// 审计只告警与打点，不做自动回补（回补会与在途落单竞态）。
type Reconciler struct {
	rdb      *rd.Client
	db       *gorm.DB
	interval time.Duration
}

func NewReconciler(rdb *rd.Client, db *gorm.DB, interval time.Duration) *Reconciler {
	return &Reconciler{rdb: rdb, db: db, interval: interval}
}

// Run 启动审计循环，直到 ctx 取消。
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.auditOnce(ctx)
		}
	}
}

func (r *Reconciler) auditOnce(ctx context.Context) {
	var vouchers []model.SeckillVoucher
	if err := r.db.WithContext(ctx).Find(&vouchers).Error; err != nil {
		log.Error().Err(err).Msg("stock audit load vouchers")
		return
	}

	pending, err := r.rdb.XLen(ctx, mallredis.OrderStream).Result()
	if err != nil {
		log.Error().Err(err).Msg("stock audit stream length")
		return
	}

	for _, sv := range vouchers {
		admission, err := r.rdb.Get(ctx, mallredis.SeckillStockKey(sv.VoucherID)).Int64()
		if errors.Is(err, rd.Nil) {
			continue // 未预热，不参与审计
		}
		if err != nil {
			log.Error().Err(err).Uint64("voucher_id", sv.VoucherID).Msg("stock audit read counter")
			continue
		}

		drift := admission - sv.Stock
		stockDrift.WithLabelValues(strconv.FormatUint(sv.VoucherID, 10)).Set(float64(drift))

		// 在途意向使权威库存暂时偏高，容忍 pending 条幅度内的负漂移
		if drift > 0 || drift < -pending {
			log.Warn().
				Uint64("voucher_id", sv.VoucherID).
				Int64("admission_counter", admission).
				Int64("authoritative_stock", sv.Stock).
				Int64("stream_pending", pending).
				Msg("stock counters drifted")
		}
	}
}
