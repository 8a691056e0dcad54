package redis

import (
	"context"
	"testing"

	rd "github.com/redis/go-redis/v9"
)

func TestSearchNearbyShops(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()

	const typeID = 1
	client.Del(ctx, ShopGeoKey(typeID))

	// 以杭州武林广场为圆心布置三家店，id 3 放在搜索半径外
	center := struct{ lng, lat float64 }{120.16, 30.27}
	err := AddShopGeo(ctx, client, typeID, []*rd.GeoLocation{
		{Name: "1", Longitude: 120.161, Latitude: 30.271},
		{Name: "2", Longitude: 120.17, Latitude: 30.28},
		{Name: "3", Longitude: 120.5, Latitude: 30.6},
	})
	if err != nil {
		t.Fatalf("AddShopGeo: %v", err)
	}

	shops, err := SearchNearbyShops(ctx, client, typeID, center.lng, center.lat, 5, 0, 10)
	if err != nil {
		t.Fatalf("SearchNearbyShops: %v", err)
	}
	if len(shops) != 2 {
		t.Fatalf("got %d shops, want 2", len(shops))
	}
	if shops[0].ShopID != 1 || shops[1].ShopID != 2 {
		t.Errorf("order = [%d %d], want nearest first [1 2]", shops[0].ShopID, shops[1].ShopID)
	}
	if shops[0].DistKM >= shops[1].DistKM {
		t.Errorf("distances not ascending: %v %v", shops[0].DistKM, shops[1].DistKM)
	}

	// 分页：跳过最近一家
	page2, err := SearchNearbyShops(ctx, client, typeID, center.lng, center.lat, 5, 1, 10)
	if err != nil {
		t.Fatalf("SearchNearbyShops page2: %v", err)
	}
	if len(page2) != 1 || page2[0].ShopID != 2 {
		t.Errorf("page2 = %v, want [shop 2]", page2)
	}

	// 偏移超出结果集返回空
	empty, err := SearchNearbyShops(ctx, client, typeID, center.lng, center.lat, 5, 5, 10)
	if err != nil {
		t.Fatalf("SearchNearbyShops offset overflow: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("overflow page = %v, want empty", empty)
	}
}
