package redis

import (
	"context"
	"sort"
	"testing"
)

func TestCommonFollows(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()

	client.Del(ctx, FollowsKey(1), FollowsKey(2))

	for _, target := range []uint64{10, 11, 12} {
		if err := Follow(ctx, client, 1, target); err != nil {
			t.Fatalf("Follow: %v", err)
		}
	}
	for _, target := range []uint64{11, 12, 13} {
		if err := Follow(ctx, client, 2, target); err != nil {
			t.Fatalf("Follow: %v", err)
		}
	}

	common, err := CommonFollows(ctx, client, 1, 2)
	if err != nil {
		t.Fatalf("CommonFollows: %v", err)
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	if len(common) != 2 || common[0] != 11 || common[1] != 12 {
		t.Errorf("common follows = %v, want [11 12]", common)
	}

	// 取关后交集随之缩小
	if err := Unfollow(ctx, client, 1, 11); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	common, err = CommonFollows(ctx, client, 1, 2)
	if err != nil {
		t.Fatalf("CommonFollows: %v", err)
	}
	if len(common) != 1 || common[0] != 12 {
		t.Errorf("common follows after unfollow = %v, want [12]", common)
	}
}
