package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"voucher_mall/internal/model"
	"voucher_mall/internal/seckill"
)

// createVoucher 创建秒杀券（含时间窗校验），同时写入基本信息与秒杀扩展。
func createVoucher(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ShopID    uint64 `json:"shop_id" binding:"required,min=1"`
			Title     string `json:"title" binding:"required"`
			PayValue  int64  `json:"pay_value" binding:"required,min=1"`
			Stock     int64  `json:"stock" binding:"required,min=1"`
			BeginTime string `json:"begin_time" binding:"required"`
			EndTime   string `json:"end_time" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		begin, err := time.Parse(time.RFC3339, req.BeginTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "begin_time 格式错误，请用 RFC3339"})
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "end_time 格式错误，请用 RFC3339"})
			return
		}
		if !end.After(begin) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "end_time 必须晚于 begin_time"})
			return
		}

		voucher := &model.Voucher{ShopID: req.ShopID, Title: req.Title, PayValue: req.PayValue}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(voucher).Error; err != nil {
				return err
			}
			return tx.Create(&model.SeckillVoucher{
				VoucherID: voucher.ID,
				Stock:     req.Stock,
				BeginTime: begin,
				EndTime:   end,
			}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": voucher})
	}
}

// preloadSeckill 把权威库存预热到 Redis 准入计数器，要求管理员 token。
func preloadSeckill(svc *seckill.Service, adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != adminToken {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		id, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "优惠券ID无效"})
			return
		}

		if err := svc.Preload(c.Request.Context(), id); err != nil {
			if errors.Is(err, seckill.ErrVoucherNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "优惠券不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "预热成功"})
	}
}

// seckillVoucher 秒杀下单入口：原子准入通过即返回订单号，落单异步完成。
func seckillVoucher(svc *seckill.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		voucherID, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "优惠券ID无效"})
			return
		}
		var req struct {
			UserID uint64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		orderID, result, err := svc.Seckill(c.Request.Context(), voucherID, req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		switch result {
		case seckill.OutOfStock:
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "库存不足"})
		case seckill.DuplicatePurchase:
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "不能重复下单"})
		default:
			c.JSON(http.StatusOK, gin.H{
				"code": 0,
				"data": gin.H{
					"order_id": orderID,
					"status":   "pending",
				},
			})
		}
	}
}

// getOrder 查询订单异步处理状态。
func getOrder(svc *seckill.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "订单ID无效"})
			return
		}

		result, err := svc.QueryOrder(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": result})
	}
}
