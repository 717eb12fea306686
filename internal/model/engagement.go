package model

import "time"

// 点赞/收藏/浏览均为 (user, resource) 唯一记录：存在即状态

type ResourceLike struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     uint      `gorm:"uniqueIndex:idx_like_user_resource;type:bigint unsigned;not null" json:"userId"`
	ResourceID uint      `gorm:"uniqueIndex:idx_like_user_resource;type:bigint unsigned;not null" json:"resourceId"`
}

func (ResourceLike) TableName() string {
	return "resource_likes"
}

type ResourceSave struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     uint      `gorm:"uniqueIndex:idx_save_user_resource;type:bigint unsigned;not null" json:"userId"`
	ResourceID uint      `gorm:"uniqueIndex:idx_save_user_resource;type:bigint unsigned;not null" json:"resourceId"`
}

func (ResourceSave) TableName() string {
	return "resource_saves"
}

// ResourceView 每个 (user, resource) 至多一行，重复浏览仅更新 LastViewedAt
type ResourceView struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UserID       uint      `gorm:"uniqueIndex:idx_view_user_resource;type:bigint unsigned;not null" json:"userId"`
	User         User      `gorm:"foreignKey:UserID" json:"user"`
	ResourceID   uint      `gorm:"uniqueIndex:idx_view_user_resource;type:bigint unsigned;not null" json:"resourceId"`
	LastViewedAt time.Time `json:"lastViewedAt"`
}

func (ResourceView) TableName() string {
	return "resource_views"
}
