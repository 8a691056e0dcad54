package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voucher_mall/internal/model"
	mallredis "voucher_mall/pkg/redis"
)

// createBlog 发布博客并推流到所有粉丝的收件箱。
func createBlog(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID  uint64 `json:"user_id" binding:"required,min=1"`
			ShopID  uint64 `json:"shop_id" binding:"required,min=1"`
			Title   string `json:"title" binding:"required"`
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		blog := &model.Blog{UserID: req.UserID, ShopID: req.ShopID, Title: req.Title, Content: req.Content}
		if err := db.Create(blog).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		// 推模式：发布即写粉丝收件箱
		var followerIDs []uint64
		if err := db.Model(&model.Follow{}).
			Where("follow_user_id = ?", req.UserID).
			Pluck("user_id", &followerIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := mallredis.PushFeed(c.Request.Context(), rdb, blog.ID, followerIDs, time.Now()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": "推流失败: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": blog})
	}
}

// readFeed 滚动分页读收件箱，返回下一页游标（min_time + offset）。
func readFeed(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUint64(c, "user_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user_id 无效"})
			return
		}
		max, err := strconv.ParseInt(c.DefaultQuery("max", strconv.FormatInt(time.Now().UnixMilli(), 10)), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "max 无效"})
			return
		}
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
		if err != nil || count <= 0 {
			count = 10
		}

		page, err := mallredis.ReadFeed(c.Request.Context(), rdb, userID, max, offset, count)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if len(page.BlogIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"blogs": []any{}}})
			return
		}

		var blogs []model.Blog
		if err := db.Where("id IN ?", page.BlogIDs).Find(&blogs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		// 数据库 IN 查询不保序，按收件箱顺序重排
		byID := make(map[uint64]model.Blog, len(blogs))
		for _, b := range blogs {
			byID[b.ID] = b
		}
		ordered := make([]model.Blog, 0, len(page.BlogIDs))
		for _, id := range page.BlogIDs {
			if b, ok := byID[id]; ok {
				ordered = append(ordered, b)
			}
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"blogs":    ordered,
			"min_time": page.MinTime,
			"offset":   page.Offset,
		}})
	}
}

// likeBlog 点赞/取消点赞，Redis zset 判重，数据库点赞数随动。
func likeBlog(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		blogID, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "博客ID无效"})
			return
		}
		var req struct {
			UserID uint64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		liked, err := mallredis.LikeBlog(c.Request.Context(), rdb, blogID, req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		delta := int64(1)
		if !liked {
			delta = -1
		}
		if err := db.Model(&model.Blog{}).Where("id = ?", blogID).
			UpdateColumn("liked", gorm.Expr("liked + ?", delta)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"liked": liked}})
	}
}

// topLikers 最早点赞的前 5 个用户。
func topLikers(rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		blogID, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "博客ID无效"})
			return
		}

		ids, err := mallredis.TopLikers(c.Request.Context(), rdb, blogID, 5)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": ids})
	}
}

// follow 关注：数据库与 Redis 集合双写。
func follow(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "目标用户ID无效"})
			return
		}
		var req struct {
			UserID uint64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		if err := db.Create(&model.Follow{UserID: req.UserID, FollowUserID: targetID}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := mallredis.Follow(c.Request.Context(), rdb, req.UserID, targetID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "关注成功"})
	}
}

// unfollow 取消关注。
func unfollow(db *gorm.DB, rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, ok := paramUint64(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "目标用户ID无效"})
			return
		}
		var req struct {
			UserID uint64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		if err := db.Where("user_id = ? AND follow_user_id = ?", req.UserID, targetID).
			Delete(&model.Follow{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := mallredis.Unfollow(c.Request.Context(), rdb, req.UserID, targetID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "已取消关注"})
	}
}

// commonFollows 共同关注（集合求交）。
func commonFollows(rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok1 := queryUint64(c, "user_id")
		otherID, ok2 := queryUint64(c, "other_id")
		if !ok1 || !ok2 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user_id/other_id 无效"})
			return
		}

		ids, err := mallredis.CommonFollows(c.Request.Context(), rdb, userID, otherID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": ids})
	}
}

// signIn 每日签到（当月位图打点）。
func signIn(rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID uint64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		if err := mallredis.Sign(c.Request.Context(), rdb, req.UserID, time.Now()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "签到成功"})
	}
}

// signStreak 本月连续签到天数。
func signStreak(rdb *rd.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUint64(c, "user_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user_id 无效"})
			return
		}

		streak, err := mallredis.SignStreak(c.Request.Context(), rdb, userID, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"streak": streak}})
	}
}
