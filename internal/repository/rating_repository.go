package repository

import (
	"campus_connect_backend/internal/model"

	"gorm.io/gorm"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{DB: db}
}

func (r *RatingRepository) Create(rating *model.Rating) error {
	return r.DB.Create(rating).Error
}

func (r *RatingRepository) FindByUserAndResource(userID, resourceID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&rating).Error
	return &rating, err
}

func (r *RatingRepository) FindByResource(resourceID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.DB.Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Preload("User").
		Preload("TaggedUsers").
		Find(&ratings).Error
	return ratings, err
}

// Aggregate 对资源的全部评分做全量重算，无评分时返回 0
func (r *RatingRepository) Aggregate(resourceID uint) (float64, int64, error) {
	var count int64
	if err := r.DB.Model(&model.Rating{}).Where("resource_id = ?", resourceID).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var average float64
	err := r.DB.Model(&model.Rating{}).
		Where("resource_id = ?", resourceID).
		Select("AVG(rating)").
		Scan(&average).Error

	return average, count, err
}

func (r *RatingRepository) DeleteByResource(resourceID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		// 先清理标记用户关联表，再删评分
		if err := tx.Exec("DELETE FROM rating_tagged_users WHERE rating_id IN (SELECT id FROM ratings WHERE resource_id = ?)", resourceID).Error; err != nil {
			return err
		}
		return tx.Where("resource_id = ?", resourceID).Delete(&model.Rating{}).Error
	})
}
