package repository

import (
	"campus_connect_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// EngagementRepository 管理 (user, resource) 的点赞/收藏/浏览记录，
// 存在即状态，复合唯一索引保证每对至多一条
type EngagementRepository struct {
	DB *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{DB: db}
}

// ---- 点赞 ----

func (r *EngagementRepository) FindLike(userID, resourceID uint) (*model.ResourceLike, error) {
	var like model.ResourceLike
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&like).Error
	return &like, err
}

func (r *EngagementRepository) CreateLike(userID, resourceID uint) error {
	return r.DB.Create(&model.ResourceLike{UserID: userID, ResourceID: resourceID}).Error
}

// DeleteLike 返回删除的行数，并发取消时可能为0
func (r *EngagementRepository) DeleteLike(like *model.ResourceLike) (int64, error) {
	result := r.DB.Delete(like)
	return result.RowsAffected, result.Error
}

func (r *EngagementRepository) CountLikes(resourceID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ResourceLike{}).Where("resource_id = ?", resourceID).Count(&count).Error
	return count, err
}

func (r *EngagementRepository) LikedResourceIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ResourceLike{}).Where("user_id = ?", userID).Pluck("resource_id", &ids).Error
	return ids, err
}

// LikedSubjectsAndGrades 点赞历史中尚存资源的去重学科/年级集合
func (r *EngagementRepository) LikedSubjectsAndGrades(userID uint) ([]string, []string, error) {
	var subjects []string
	err := r.DB.Model(&model.Resource{}).
		Distinct("resources.subject").
		Joins("JOIN resource_likes ON resource_likes.resource_id = resources.id").
		Where("resource_likes.user_id = ?", userID).
		Pluck("resources.subject", &subjects).Error
	if err != nil {
		return nil, nil, err
	}

	var gradeLevels []string
	err = r.DB.Model(&model.Resource{}).
		Distinct("resources.grade_level").
		Joins("JOIN resource_likes ON resource_likes.resource_id = resources.id").
		Where("resource_likes.user_id = ?", userID).
		Pluck("resources.grade_level", &gradeLevels).Error

	return subjects, gradeLevels, err
}

// ListLiked 用户点赞过的资源，按点赞时间倒序分页
func (r *EngagementRepository) ListLiked(userID uint, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	base := r.DB.Model(&model.Resource{}).
		Joins("JOIN resource_likes ON resource_likes.resource_id = resources.id").
		Where("resource_likes.user_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base.Order("resource_likes.created_at DESC").
		Offset(offset).Limit(limit).
		Preload("Uploader").
		Find(&resources).Error

	return resources, total, err
}

// ---- 收藏 ----

func (r *EngagementRepository) FindSave(userID, resourceID uint) (*model.ResourceSave, error) {
	var save model.ResourceSave
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&save).Error
	return &save, err
}

func (r *EngagementRepository) CreateSave(userID, resourceID uint) error {
	return r.DB.Create(&model.ResourceSave{UserID: userID, ResourceID: resourceID}).Error
}

func (r *EngagementRepository) DeleteSave(save *model.ResourceSave) (int64, error) {
	result := r.DB.Delete(save)
	return result.RowsAffected, result.Error
}

func (r *EngagementRepository) ListSaved(userID uint, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	base := r.DB.Model(&model.Resource{}).
		Joins("JOIN resource_saves ON resource_saves.resource_id = resources.id").
		Where("resource_saves.user_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base.Order("resource_saves.created_at DESC").
		Offset(offset).Limit(limit).
		Preload("Uploader").
		Find(&resources).Error

	return resources, total, err
}

// ---- 浏览 ----

func (r *EngagementRepository) FindView(userID, resourceID uint) (*model.ResourceView, error) {
	var view model.ResourceView
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&view).Error
	return &view, err
}

func (r *EngagementRepository) CreateView(userID, resourceID uint) error {
	return r.DB.Create(&model.ResourceView{
		UserID:       userID,
		ResourceID:   resourceID,
		LastViewedAt: time.Now(),
	}).Error
}

// TouchView 重复浏览只刷新时间戳
func (r *EngagementRepository) TouchView(userID, resourceID uint) error {
	return r.DB.Model(&model.ResourceView{}).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Update("last_viewed_at", time.Now()).Error
}

func (r *EngagementRepository) CountViews(resourceID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ResourceView{}).Where("resource_id = ?", resourceID).Count(&count).Error
	return count, err
}

func (r *EngagementRepository) ListViews(resourceID uint) ([]model.ResourceView, error) {
	var views []model.ResourceView
	err := r.DB.Where("resource_id = ?", resourceID).
		Order("last_viewed_at DESC").
		Preload("User").
		Find(&views).Error
	return views, err
}

// ---- 资源删除级联 ----

func (r *EngagementRepository) DeleteLikesByResource(resourceID uint) error {
	return r.DB.Where("resource_id = ?", resourceID).Delete(&model.ResourceLike{}).Error
}

func (r *EngagementRepository) DeleteSavesByResource(resourceID uint) error {
	return r.DB.Where("resource_id = ?", resourceID).Delete(&model.ResourceSave{}).Error
}

func (r *EngagementRepository) DeleteViewsByResource(resourceID uint) error {
	return r.DB.Where("resource_id = ?", resourceID).Delete(&model.ResourceView{}).Error
}
