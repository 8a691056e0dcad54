package model

import (
	"time"

	"gorm.io/gorm"
)

// Blog 探店博客，发布后推流到粉丝收件箱。
type Blog struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID  uint64 `gorm:"not null;index" json:"user_id"`
	ShopID  uint64 `gorm:"not null;index" json:"shop_id"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Content string `gorm:"size:2048" json:"content"`
	Liked   int64  `gorm:"not null;default:0" json:"liked"`
}

func (Blog) TableName() string { return "blogs" }

// Follow 关注关系，与 Redis 关注集合双写。
type Follow struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint64 `gorm:"not null;uniqueIndex:uk_user_follow" json:"user_id"`
	FollowUserID uint64 `gorm:"not null;uniqueIndex:uk_user_follow" json:"follow_user_id"`
}

func (Follow) TableName() string { return "follows" }
