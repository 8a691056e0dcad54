package redis

import (
	"context"
	"strconv"

	rd "github.com/redis/go-redis/v9"
)

// AddShopGeo 把一批店铺坐标写入该类型的 GEO 索引（预热时调用）。
func AddShopGeo(ctx context.Context, rdb *rd.Client, typeID uint64, locs []*rd.GeoLocation) error {
	if len(locs) == 0 {
		return nil
	}
	return rdb.GeoAdd(ctx, ShopGeoKey(typeID), locs...).Err()
}

// NearbyShop 附近店铺查询结果。
type NearbyShop struct {
	ShopID uint64
	DistKM float64
}

// SearchNearbyShops 按半径查某类型店铺，按距离升序，带分页。
// GEOSEARCH 只能取前 end 条，分页靠截掉前 offset 条实现。
func SearchNearbyShops(ctx context.Context, rdb *rd.Client, typeID uint64, lng, lat, radiusKM float64, offset, count int) ([]NearbyShop, error) {
	end := offset + count
	locs, err := rdb.GeoSearchLocation(ctx, ShopGeoKey(typeID), &rd.GeoSearchLocationQuery{
		GeoSearchQuery: rd.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKM,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      end,
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(locs) <= offset {
		return nil, nil
	}

	out := make([]NearbyShop, 0, len(locs)-offset)
	for _, loc := range locs[offset:] {
		id, err := strconv.ParseUint(loc.Name, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, NearbyShop{ShopID: id, DistKM: loc.Dist})
	}
	return out, nil
}
