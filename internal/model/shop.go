package model

import (
	"time"

	"gorm.io/gorm"
)

// Shop 店铺：详情读路径走缓存，坐标用于 GEO 附近检索。
type Shop struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"size:128;not null" json:"name"`
	TypeID   uint64  `gorm:"not null;index" json:"type_id"`
	Address  string  `gorm:"size:255" json:"address"`
	X        float64 `gorm:"not null" json:"x"` // 经度
	Y        float64 `gorm:"not null" json:"y"` // 纬度
	AvgScore int     `gorm:"not null;default:0" json:"avg_score"`
}

func (Shop) TableName() string { return "shops" }
