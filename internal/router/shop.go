package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voucher_mall/internal/cache"
	"voucher_mall/internal/config"
	"voucher_mall/internal/model"
	mallredis "voucher_mall/pkg/redis"
)

// shopFallback 店铺缓存的数据库回源：不存在返回 nil，由缓存层写空值标记。
func shopFallback(db *gorm.DB) func(context.Context, uint64) (*model.Shop, error) {
	return func(ctx context.Context, id uint64) (*model.Shop, error) {
		var shop model.Shop
		if err := db.WithContext(ctx).First(&shop, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &shop, nil
	}
}

// getShop 店铺详情，读穿缓存（空值缓存防穿透）。
func getShop(db *gorm.DB, cc *cache.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "店铺ID无效"})
			return
		}

		shop, err := cache.QueryWithPassThrough(c.Request.Context(), cc, "cache:shop:", id, cfg.ShopCacheTTL, shopFallback(db))
		if err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "店铺不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": shop})
	}
}

// getHotShop 热点店铺详情：逻辑过期策略，要求先预热，永远快速返回。
func getHotShop(db *gorm.DB, cc *cache.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "店铺ID无效"})
			return
		}

		shop, err := cache.QueryWithLogicalExpire(c.Request.Context(), cc, "cache:shop:", id, cfg.HotShopTTL, shopFallback(db))
		if err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "店铺未预热或不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": shop})
	}
}

// createShop 新建店铺。
func createShop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name    string  `json:"name" binding:"required"`
			TypeID  uint64  `json:"type_id" binding:"required,min=1"`
			Address string  `json:"address"`
			X       float64 `json:"x"`
			Y       float64 `json:"y"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		shop := &model.Shop{Name: req.Name, TypeID: req.TypeID, Address: req.Address, X: req.X, Y: req.Y}
		if err := db.Create(shop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": shop})
	}
}

// updateShop 更新店铺：先更新数据库，再删缓存（写后失效）。
func updateShop(db *gorm.DB, cc *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.Shop
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "店铺ID必填"})
			return
		}

		if err := db.Model(&model.Shop{}).Where("id = ?", req.ID).Updates(&req).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := cc.Delete(c.Request.Context(), mallredis.CacheShopKey(req.ID)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": "缓存失效失败: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "更新成功"})
	}
}

// warmShop 热点预热：写逻辑过期缓存 + 写入 GEO 索引。要求管理员 token。
func warmShop(db *gorm.DB, rdb *rd.Client, cc *cache.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != cfg.PreloadAdminToken {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "admin token 无效"})
			return
		}
		id, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "店铺ID无效"})
			return
		}

		var shop model.Shop
		if err := db.First(&shop, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "店铺不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if err := cc.SetWithLogicalExpire(ctx, mallredis.CacheShopKey(id), &shop, cfg.HotShopTTL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		err := mallredis.AddShopGeo(ctx, rdb, shop.TypeID, []*rd.GeoLocation{{
			Name:      strconv.FormatUint(shop.ID, 10),
			Longitude: shop.X,
			Latitude:  shop.Y,
		}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "预热成功"})
	}
}

// nearbyShops 按坐标查附近店铺，GEO 索引出 id 与距离，再回数据库补详情。
func nearbyShops(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		typeID, ok := queryUint64(c, "type_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "type_id 无效"})
			return
		}
		lng, err1 := strconv.ParseFloat(c.Query("x"), 64)
		lat, err2 := strconv.ParseFloat(c.Query("y"), 64)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "坐标无效"})
			return
		}
		radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "radius 无效"})
			return
		}
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
		if err != nil || count <= 0 {
			count = 10
		}

		near, err := mallredis.SearchNearbyShops(c.Request.Context(), rdb, typeID, lng, lat, radius, offset, count)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if len(near) == 0 {
			c.JSON(http.StatusOK, gin.H{"code": 0, "data": []any{}})
			return
		}

		ids := make([]uint64, 0, len(near))
		for _, n := range near {
			ids = append(ids, n.ShopID)
		}
		var shops []model.Shop
		if err := db.Where("id IN ?", ids).Find(&shops).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		byID := make(map[uint64]model.Shop, len(shops))
		for _, s := range shops {
			byID[s.ID] = s
		}

		// 按 GEO 返回的距离升序组装
		type shopWithDist struct {
			model.Shop
			DistKM float64 `json:"dist_km"`
		}
		out := make([]shopWithDist, 0, len(near))
		for _, n := range near {
			s, ok := byID[n.ShopID]
			if !ok {
				continue // GEO 索引里有、库里已删
			}
			out = append(out, shopWithDist{Shop: s, DistKM: n.DistKM})
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": out})
	}
}
