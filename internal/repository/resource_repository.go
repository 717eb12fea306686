package repository

import (
	"campus_connect_backend/internal/model"

	"gorm.io/gorm"
)

// popularityOrder 人气排序：点赞数、平均评分、浏览数依次降序
const popularityOrder = "like_count DESC, average_rating DESC, view_count DESC"

type ResourceFilter struct {
	Subject      string
	GradeLevel   string
	ResourceType string
	Search       string
}

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.Preload("Uploader").Preload("TaggedUsers").First(&resource, id).Error
	return &resource, err
}

// FindAll 按筛选条件分页查询，按创建时间倒序
func (r *ResourceRepository) FindAll(filter ResourceFilter, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	query := r.DB.Model(&model.Resource{})

	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.GradeLevel != "" {
		query = query.Where("grade_level = ?", filter.GradeLevel)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Preload("Uploader").
		Find(&resources).Error

	return resources, total, err
}

func (r *ResourceRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.DB.Model(&model.Resource{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		// 先清理标记用户关联表，再删资源
		if err := tx.Exec("DELETE FROM resource_tagged_users WHERE resource_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Resource{}, id).Error
	})
}

// 计数器只允许相对增减，避免并发下读改写丢失更新

func (r *ResourceRepository) IncrementLikeCount(id uint, delta int) error {
	return r.DB.Model(&model.Resource{}).
		Where("id = ?", id).
		Update("like_count", gorm.Expr("like_count + ?", delta)).
		Error
}

func (r *ResourceRepository) IncrementViewCount(id uint) error {
	return r.DB.Model(&model.Resource{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).
		Error
}

func (r *ResourceRepository) UpdateRatingStats(id uint, average float64, count int64) error {
	return r.DB.Model(&model.Resource{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": average,
			"ratings_count":  count,
		}).Error
}

// FindPopular 人气榜：排除用户自己上传的资源
func (r *ResourceRepository) FindPopular(excludeUploaderID uint, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	query := r.DB.Model(&model.Resource{}).Where("uploader_id <> ?", excludeUploaderID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order(popularityOrder).
		Offset(offset).Limit(limit).
		Preload("Uploader").
		Find(&resources).Error

	return resources, total, err
}

// FindCandidates 内容推荐候选集：学科或年级命中点赞历史，
// 排除自己上传和已点赞的资源
func (r *ResourceRepository) FindCandidates(subjects, gradeLevels []string, excludeUploaderID uint, excludeIDs []uint, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	query := r.DB.Model(&model.Resource{}).
		Where("subject IN ? OR grade_level IN ?", subjects, gradeLevels).
		Where("uploader_id <> ?", excludeUploaderID)

	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order(popularityOrder).
		Offset(offset).Limit(limit).
		Preload("Uploader").
		Find(&resources).Error

	return resources, total, err
}
