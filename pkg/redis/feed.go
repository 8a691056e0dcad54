package redis

import (
	"context"
	"strconv"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// PushFeed 把新博客推入一批粉丝的收件箱，score 用毫秒时间戳做滚动分页游标。
func PushFeed(ctx context.Context, rdb *rd.Client, blogID uint64, followerIDs []uint64, at time.Time) error {
	score := float64(at.UnixMilli())
	pipe := rdb.Pipeline()
	for _, fid := range followerIDs {
		pipe.ZAdd(ctx, FeedKey(fid), rd.Z{Score: score, Member: strconv.FormatUint(blogID, 10)})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// FeedPage 滚动分页结果。
// MinTime/Offset 作为下一页游标：offset 统计与 MinTime 同分的条数，避免同一毫秒发布的博客被跳过或重复。
type FeedPage struct {
	BlogIDs []uint64
	MinTime int64
	Offset  int
}

// ReadFeed 从收件箱按 score 倒序读一页，max 为上一页游标（首页传当前毫秒时间戳）。
func ReadFeed(ctx context.Context, rdb *rd.Client, userID uint64, max int64, offset, count int) (FeedPage, error) {
	zs, err := rdb.ZRevRangeByScoreWithScores(ctx, FeedKey(userID), &rd.ZRangeBy{
		Min:    "0",
		Max:    strconv.FormatInt(max, 10),
		Offset: int64(offset),
		Count:  int64(count),
	}).Result()
	if err != nil {
		return FeedPage{}, err
	}

	page := FeedPage{BlogIDs: make([]uint64, 0, len(zs))}
	for _, z := range zs {
		id, err := strconv.ParseUint(z.Member.(string), 10, 64)
		if err != nil {
			continue // 脏成员直接跳过
		}
		page.BlogIDs = append(page.BlogIDs, id)

		ts := int64(z.Score)
		if ts == page.MinTime {
			page.Offset++
		} else {
			page.MinTime = ts
			page.Offset = 1
		}
	}
	return page, nil
}

// LikeBlog 点赞/取消点赞切换，返回切换后是否为已点赞。
// zset score 记录点赞时间，支撑最早点赞榜。
func LikeBlog(ctx context.Context, rdb *rd.Client, blogID, userID uint64) (bool, error) {
	key := BlogLikedKey(blogID)
	member := strconv.FormatUint(userID, 10)

	_, err := rdb.ZScore(ctx, key, member).Result()
	switch {
	case err == rd.Nil:
		// 未点赞，新增
		if err := rdb.ZAdd(ctx, key, rd.Z{Score: float64(time.Now().UnixMilli()), Member: member}).Err(); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	default:
		// 已点赞，取消
		if err := rdb.ZRem(ctx, key, member).Err(); err != nil {
			return false, err
		}
		return false, nil
	}
}

// TopLikers 返回最早点赞的前 n 个用户 id。
func TopLikers(ctx context.Context, rdb *rd.Client, blogID uint64, n int) ([]uint64, error) {
	members, err := rdb.ZRange(ctx, BlogLikedKey(blogID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
