package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"campus_connect_backend/pkg/logger"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validResourceTypes = map[model.ResourceType]bool{
	model.Notes:      true,
	model.Assignment: true,
	model.Textbook:   true,
	model.Video:      true,
	model.Document:   true,
	model.Other:      true,
}

// ResourceService 资源的增删改查与删除级联
type ResourceService struct {
	Repo             *repository.ResourceRepository
	EngagementRepo   *repository.EngagementRepository
	RatingRepo       *repository.RatingRepository
	NotificationRepo *repository.NotificationRepository
	UserRepo         *repository.UserRepository
	Notifier         *NotificationService
}

func NewResourceService(
	repo *repository.ResourceRepository,
	engagementRepo *repository.EngagementRepository,
	ratingRepo *repository.RatingRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *ResourceService {
	return &ResourceService{
		Repo:             repo,
		EngagementRepo:   engagementRepo,
		RatingRepo:       ratingRepo,
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Notifier:         notifier,
	}
}

func (s *ResourceService) List(filter repository.ResourceFilter, page, limit int) ([]model.Resource, int64, error) {
	return s.Repo.FindAll(filter, page, limit)
}

func (s *ResourceService) Get(id uint) (*model.Resource, error) {
	resource, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}
	return resource, nil
}

// Create 发布资源。描述中的 @提及解析为已注册用户并持久化为
// 标记关系，被标记者收到通知（自己@自己不通知）
func (s *ResourceService) Create(resource *model.Resource) error {
	if resource.Title == "" || resource.FileURL == "" || resource.Subject == "" ||
		resource.GradeLevel == "" || resource.ResourceType == "" {
		return util.ErrMissingResourceFields
	}
	if !validResourceTypes[resource.ResourceType] {
		return util.ErrInvalidResourceType
	}

	tagged, err := s.resolveMentions(resource.Description)
	if err != nil {
		return err
	}
	resource.TaggedUsers = tagged

	if err := s.Repo.Create(resource); err != nil {
		return err
	}

	s.notifyTagged(resource)
	return nil
}

func (s *ResourceService) resolveMentions(description string) ([]model.User, error) {
	usernames := util.ParseMentions(description)
	if len(usernames) == 0 {
		return nil, nil
	}
	return s.UserRepo.FindByUsernames(usernames)
}

func (s *ResourceService) notifyTagged(resource *model.Resource) {
	if len(resource.TaggedUsers) == 0 {
		return
	}
	uploader, err := s.UserRepo.FindByID(resource.UploaderID)
	if err != nil {
		logger.Log.Warn("tag notification skipped: uploader lookup failed",
			zap.Uint("resource", resource.ID), zap.Error(err))
		return
	}
	for _, tagged := range resource.TaggedUsers {
		message := fmt.Sprintf("%s tagged you in resource \"%s\"", uploader.Username, resource.Title)
		s.Notifier.Emit(model.NotifyTag, tagged.ID, resource.UploaderID, resource.ID, message)
	}
}

// Update 仅上传者可改；上传者与冗余计数器字段不可变
func (s *ResourceService) Update(id uint, updates map[string]interface{}, actorID uint) (*model.Resource, error) {
	resource, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if resource.UploaderID != actorID {
		return nil, util.ErrPermissionDenied
	}

	allowed := map[string]bool{
		"title": true, "description": true, "tags": true,
		"subject": true, "grade_level": true, "resource_type": true,
		"image_url": true,
	}
	filtered := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}

	if rt, ok := filtered["resource_type"].(string); ok && !validResourceTypes[model.ResourceType(rt)] {
		return nil, util.ErrInvalidResourceType
	}

	if len(filtered) > 0 {
		if err := s.Repo.UpdateFields(id, filtered); err != nil {
			return nil, err
		}
	}

	return s.Get(id)
}

// Delete 仅上传者或管理员可删。先删资源，再尽力清理各互动表；
// 二级清理失败只记日志，不回滚已删除的资源（接受孤儿行，由
// 定期对账清理）
func (s *ResourceService) Delete(id, actorID uint, actorRole model.UserRole) error {
	resource, err := s.Get(id)
	if err != nil {
		return err
	}

	if resource.UploaderID != actorID && actorRole != model.Admin {
		return util.ErrPermissionDenied
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	cascade := []struct {
		name string
		fn   func(uint) error
	}{
		{"ratings", s.RatingRepo.DeleteByResource},
		{"likes", s.EngagementRepo.DeleteLikesByResource},
		{"saves", s.EngagementRepo.DeleteSavesByResource},
		{"views", s.EngagementRepo.DeleteViewsByResource},
		{"notifications", s.NotificationRepo.DeleteByResource},
	}
	for _, step := range cascade {
		if err := step.fn(id); err != nil {
			logger.Log.Error("resource delete cascade failed",
				zap.Uint("resource", id),
				zap.String("collection", step.name),
				zap.Error(err))
		}
	}

	return nil
}
