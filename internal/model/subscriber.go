package model

import "time"

// Subscriber 上线通知候补名单
type Subscriber struct {
	UUIDBase
	Email      string     `gorm:"size:255;unique;not null" json:"email"`
	Notified   bool       `gorm:"default:false" json:"notified"`
	NotifiedAt *time.Time `json:"notifiedAt"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
