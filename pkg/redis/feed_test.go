package redis

import (
	"context"
	"testing"
	"time"
)

func TestFeedRollingPagination(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()

	const userID = 7
	client.Del(ctx, FeedKey(userID))

	base := time.Now()
	// 三条消息，其中两条同一毫秒（分页游标必须带 offset 才不漏不重）
	if err := PushFeed(ctx, client, 101, []uint64{userID}, base); err != nil {
		t.Fatalf("PushFeed: %v", err)
	}
	if err := PushFeed(ctx, client, 102, []uint64{userID}, base.Add(time.Millisecond)); err != nil {
		t.Fatalf("PushFeed: %v", err)
	}
	if err := PushFeed(ctx, client, 103, []uint64{userID}, base.Add(time.Millisecond)); err != nil {
		t.Fatalf("PushFeed: %v", err)
	}

	// 第一页：2 条，倒序
	page1, err := ReadFeed(ctx, client, userID, base.Add(time.Second).UnixMilli(), 0, 2)
	if err != nil {
		t.Fatalf("ReadFeed: %v", err)
	}
	if len(page1.BlogIDs) != 2 {
		t.Fatalf("page1 len = %d, want 2", len(page1.BlogIDs))
	}
	if page1.Offset != 2 {
		t.Errorf("page1 offset = %d, want 2 (two entries at same score)", page1.Offset)
	}

	// 第二页用游标续读，应恰好拿到剩下的 1 条
	page2, err := ReadFeed(ctx, client, userID, page1.MinTime, page1.Offset, 2)
	if err != nil {
		t.Fatalf("ReadFeed page2: %v", err)
	}
	if len(page2.BlogIDs) != 1 || page2.BlogIDs[0] != 101 {
		t.Errorf("page2 = %v, want [101]", page2.BlogIDs)
	}
}

func TestLikeBlogToggleAndTopLikers(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()

	const blogID = 55
	client.Del(ctx, BlogLikedKey(blogID))

	liked, err := LikeBlog(ctx, client, blogID, 1)
	if err != nil {
		t.Fatalf("LikeBlog: %v", err)
	}
	if !liked {
		t.Error("first like should report liked=true")
	}

	liked, err = LikeBlog(ctx, client, blogID, 1)
	if err != nil {
		t.Fatalf("LikeBlog: %v", err)
	}
	if liked {
		t.Error("second like should toggle to liked=false")
	}

	// 依次点赞，Top 榜按点赞时间排序
	for _, uid := range []uint64{9, 8, 7} {
		if _, err := LikeBlog(ctx, client, blogID, uid); err != nil {
			t.Fatalf("LikeBlog %d: %v", uid, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	top, err := TopLikers(ctx, client, blogID, 5)
	if err != nil {
		t.Fatalf("TopLikers: %v", err)
	}
	if len(top) != 3 || top[0] != 9 || top[1] != 8 || top[2] != 7 {
		t.Errorf("top likers = %v, want [9 8 7]", top)
	}
}
