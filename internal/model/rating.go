package model

import "time"

// Rating 一个用户对一个资源只能评分一次，创建后不可修改
// swagger:model Rating
type Rating struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      uint      `gorm:"uniqueIndex:idx_rating_user_resource;type:bigint unsigned;not null" json:"userId"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	ResourceID  uint      `gorm:"uniqueIndex:idx_rating_user_resource;type:bigint unsigned;not null" json:"resourceId"`
	Rating      int       `gorm:"not null" json:"rating"` // 1-5
	Comment     string    `gorm:"size:500" json:"comment"`
	TaggedUsers []User    `gorm:"many2many:rating_tagged_users" json:"taggedUsers"`
}

func (Rating) TableName() string {
	return "ratings"
}
