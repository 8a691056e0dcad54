package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voucher_mall/internal/cache"
	"voucher_mall/internal/config"
	"voucher_mall/internal/middleware"
	"voucher_mall/internal/seckill"
)

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, cc *cache.Client, svc *seckill.Service, cfg config.AppConfig) {
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Shop
	r.GET("/api/shop/:id", getShop(db, cc, cfg))
	r.GET("/api/shop/hot/:id", getHotShop(db, cc, cfg))
	r.GET("/api/shop/nearby", nearbyShops(db, rdb))
	r.POST("/api/shop", createShop(db))
	r.PUT("/api/shop", updateShop(db, cc))
	r.POST("/api/shop/warm/:id", warmShop(db, rdb, cc, cfg))

	// Seckill
	r.POST("/api/voucher", createVoucher(db))
	r.POST("/api/voucher/preload/:id", preloadSeckill(svc, cfg.PreloadAdminToken))
	r.POST("/api/voucher/seckill/:id",
		middleware.RedisRateLimit(rdb, cfg.SeckillRateLimit, cfg.SeckillRateWindow),
		seckillVoucher(svc))
	r.GET("/api/order/:id", getOrder(svc))

	// Social
	r.POST("/api/blog", createBlog(db, rdb))
	r.GET("/api/blog/feed", readFeed(db, rdb))
	r.POST("/api/blog/like/:id", likeBlog(db, rdb))
	r.GET("/api/blog/likes/:id", topLikers(rdb))
	r.POST("/api/follow/:id", follow(db, rdb))
	r.DELETE("/api/follow/:id", unfollow(db, rdb))
	r.GET("/api/follow/common", commonFollows(rdb))
	r.POST("/api/sign", signIn(rdb))
	r.GET("/api/sign/streak", signStreak(rdb))
}

// paramUint64 解析路径参数为 uint64，失败时由调用方返回 400。
func paramUint64(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// queryUint64 解析 query 参数为 uint64。
func queryUint64(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}
