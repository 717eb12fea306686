package repository

import (
	"campus_connect_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.DB.Create(notification).Error
}

func (r *NotificationRepository) FindByRecipient(recipientID uint, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	query := r.DB.Model(&model.Notification{}).Where("recipient_id = ?", recipientID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Preload("From").
		Find(&notifications).Error

	return notifications, total, err
}

// MarkRead 只允许接收者本人标记
func (r *NotificationRepository) MarkRead(id string, recipientID uint) (int64, error) {
	result := r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) MarkAllRead(recipientID uint) error {
	return r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND `read` = ?", recipientID, false).
		Update("read", true).Error
}

func (r *NotificationRepository) CountUnread(recipientID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND `read` = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) DeleteByResource(resourceID uint) error {
	return r.DB.Where("resource_id = ?", resourceID).Delete(&model.Notification{}).Error
}
