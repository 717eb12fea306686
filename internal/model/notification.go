package model

type NotificationType string

const (
	NotifyView       NotificationType = "view"
	NotifyLike       NotificationType = "like"
	NotifyRating     NotificationType = "rating"
	NotifyTag        NotificationType = "tag"
	NotifyTagComment NotificationType = "tag_comment"
)

// swagger:model Notification
type Notification struct {
	UUIDBase
	RecipientID uint             `gorm:"index;type:bigint unsigned;not null" json:"recipientId"`
	FromID      uint             `gorm:"type:bigint unsigned;not null" json:"fromId"`
	From        User             `gorm:"foreignKey:FromID" json:"from"`
	ResourceID  uint             `gorm:"index;type:bigint unsigned;not null" json:"resourceId"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	Message     string           `gorm:"size:500" json:"message"`
	Read        bool             `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
