package repository

import (
	"campus_connect_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SubscriberRepository struct {
	DB *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{DB: db}
}

func (r *SubscriberRepository) Create(subscriber *model.Subscriber) error {
	return r.DB.Create(subscriber).Error
}

func (r *SubscriberRepository) FindByEmail(email string) (*model.Subscriber, error) {
	var subscriber model.Subscriber
	err := r.DB.Where("email = ?", email).First(&subscriber).Error
	return &subscriber, err
}

func (r *SubscriberRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Subscriber{}).Count(&count).Error
	return count, err
}

func (r *SubscriberRepository) FindAll() ([]model.Subscriber, error) {
	var subscribers []model.Subscriber
	err := r.DB.Order("created_at DESC").Find(&subscribers).Error
	return subscribers, err
}

func (r *SubscriberRepository) FindUnnotified() ([]model.Subscriber, error) {
	var subscribers []model.Subscriber
	err := r.DB.Where("notified = ?", false).Find(&subscribers).Error
	return subscribers, err
}

func (r *SubscriberRepository) MarkNotified(ids []string) error {
	now := time.Now()
	return r.DB.Model(&model.Subscriber{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"notified":    true,
			"notified_at": now,
		}).Error
}
