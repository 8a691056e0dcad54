package redis

import (
	"context"
	"strconv"

	rd "github.com/redis/go-redis/v9"
)

// Follow 维护关注集合（与数据库双写，集合只做求交集加速）。
func Follow(ctx context.Context, rdb *rd.Client, userID, targetID uint64) error {
	return rdb.SAdd(ctx, FollowsKey(userID), strconv.FormatUint(targetID, 10)).Err()
}

// Unfollow 从关注集合移除。
func Unfollow(ctx context.Context, rdb *rd.Client, userID, targetID uint64) error {
	return rdb.SRem(ctx, FollowsKey(userID), strconv.FormatUint(targetID, 10)).Err()
}

// CommonFollows 求两用户关注集合的交集（共同关注）。
func CommonFollows(ctx context.Context, rdb *rd.Client, userID, otherID uint64) ([]uint64, error) {
	members, err := rdb.SInter(ctx, FollowsKey(userID), FollowsKey(otherID)).Result()
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
