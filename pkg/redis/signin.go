package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// Sign 在当月位图中记录今日签到（day-1 位置 1）。
func Sign(ctx context.Context, rdb *rd.Client, userID uint64, now time.Time) error {
	key := SignKey(userID, now.Format("200601"))
	day := now.Day()
	return rdb.SetBit(ctx, key, int64(day-1), 1).Err()
}

// SignStreak 统计本月截止今天的连续签到天数。
// BITFIELD GET u{day} 0 一次取回月初到今天的所有签到位。
func SignStreak(ctx context.Context, rdb *rd.Client, userID uint64, now time.Time) (int, error) {
	key := SignKey(userID, now.Format("200601"))
	day := now.Day()

	res, err := rdb.BitField(ctx, key, "GET", fmt.Sprintf("u%d", day), 0).Result()
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return trailingStreak(res[0]), nil
}

// trailingStreak 从最低位（今天）往前数连续的 1。
func trailingStreak(bits int64) int {
	n := 0
	for bits&1 == 1 {
		n++
		bits >>= 1
	}
	return n
}
