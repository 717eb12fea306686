package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"campus_connect_backend/pkg/logger"
	"campus_connect_backend/pkg/monitoring"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToggleState 切换操作的结果状态
type ToggleState string

const (
	ToggleAdded   ToggleState = "added"
	ToggleRemoved ToggleState = "removed"
)

// EngagementService 处理资源的点赞/收藏/浏览。并发正确性完全依赖
// 存储层的复合唯一索引与相对增减：两个请求同时创建同一对
// (user, resource) 记录时只有一个成功，失败方视为已达目标状态
type EngagementService struct {
	Repo         *repository.EngagementRepository
	ResourceRepo *repository.ResourceRepository
	RatingRepo   *repository.RatingRepository
	UserRepo     *repository.UserRepository
	Notifier     *NotificationService
}

func NewEngagementService(
	repo *repository.EngagementRepository,
	resourceRepo *repository.ResourceRepository,
	ratingRepo *repository.RatingRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *EngagementService {
	return &EngagementService{
		Repo:         repo,
		ResourceRepo: resourceRepo,
		RatingRepo:   ratingRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
	}
}

// ToggleLike 点赞开关：不存在则创建并 like_count+1，存在则删除并 -1。
// 新增点赞时通知资源上传者（自己给自己点赞不通知）
func (s *EngagementService) ToggleLike(userID, resourceID uint) (ToggleState, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrResourceNotFound
		}
		return "", err
	}

	like, err := s.Repo.FindLike(userID, resourceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.Repo.CreateLike(userID, resourceID); err != nil {
			// 并发下另一请求已创建，视为已点赞
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ToggleAdded, nil
			}
			return "", err
		}
		if err := s.ResourceRepo.IncrementLikeCount(resourceID, 1); err != nil {
			return "", err
		}

		monitoring.EngagementEvents.WithLabelValues("like").Inc()
		s.notifyLike(userID, resource)
		return ToggleAdded, nil
	} else if err != nil {
		return "", err
	}

	affected, err := s.Repo.DeleteLike(like)
	if err != nil {
		return "", err
	}
	// 并发下另一请求已删除并递减，行数为0时不再重复递减
	if affected > 0 {
		if err := s.ResourceRepo.IncrementLikeCount(resourceID, -1); err != nil {
			return "", err
		}
		monitoring.EngagementEvents.WithLabelValues("unlike").Inc()
	}
	return ToggleRemoved, nil
}

// ToggleSave 收藏开关：只影响用户的收藏集合，不改资源计数，不发通知
func (s *EngagementService) ToggleSave(userID, resourceID uint) (ToggleState, error) {
	if _, err := s.ResourceRepo.FindByID(resourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrResourceNotFound
		}
		return "", err
	}

	save, err := s.Repo.FindSave(userID, resourceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.Repo.CreateSave(userID, resourceID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ToggleAdded, nil
			}
			return "", err
		}
		monitoring.EngagementEvents.WithLabelValues("save").Inc()
		return ToggleAdded, nil
	} else if err != nil {
		return "", err
	}

	affected, err := s.Repo.DeleteSave(save)
	if err != nil {
		return "", err
	}
	if affected > 0 {
		monitoring.EngagementEvents.WithLabelValues("unsave").Inc()
	}
	return ToggleRemoved, nil
}

// RecordView 记录浏览。上传者浏览自己的资源不记录；
// 同一用户重复浏览只刷新 lastViewedAt，view_count 统计的是去重人数
func (s *EngagementService) RecordView(viewerID, resourceID uint) error {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrResourceNotFound
		}
		return err
	}

	if resource.UploaderID == viewerID {
		return nil
	}

	_, err = s.Repo.FindView(viewerID, resourceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.Repo.CreateView(viewerID, resourceID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return s.Repo.TouchView(viewerID, resourceID)
			}
			return err
		}
		if err := s.ResourceRepo.IncrementViewCount(resourceID); err != nil {
			return err
		}

		monitoring.EngagementEvents.WithLabelValues("view").Inc()
		s.notifyView(viewerID, resource)
		return nil
	} else if err != nil {
		return err
	}

	return s.Repo.TouchView(viewerID, resourceID)
}

func (s *EngagementService) ListLiked(userID uint, page, limit int) ([]model.Resource, int64, error) {
	return s.Repo.ListLiked(userID, page, limit)
}

func (s *EngagementService) ListSaved(userID uint, page, limit int) ([]model.Resource, int64, error) {
	return s.Repo.ListSaved(userID, page, limit)
}

// ListViews 资源的浏览明细，仅上传者或管理员可见
func (s *EngagementService) ListViews(resourceID, actorID uint, actorRole model.UserRole) ([]model.ResourceView, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}

	if resource.UploaderID != actorID && actorRole != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	return s.Repo.ListViews(resourceID)
}

// Reconcile 从源记录重算资源的全部冗余计数器。
// 维护用途，不在热路径上
func (s *EngagementService) Reconcile(resourceID uint) error {
	if _, err := s.ResourceRepo.FindByID(resourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrResourceNotFound
		}
		return err
	}

	likes, err := s.Repo.CountLikes(resourceID)
	if err != nil {
		return err
	}
	views, err := s.Repo.CountViews(resourceID)
	if err != nil {
		return err
	}
	average, count, err := s.RatingRepo.Aggregate(resourceID)
	if err != nil {
		return err
	}

	return s.ResourceRepo.UpdateFields(resourceID, map[string]interface{}{
		"like_count":     likes,
		"view_count":     views,
		"average_rating": average,
		"ratings_count":  count,
	})
}

func (s *EngagementService) notifyLike(actorID uint, resource *model.Resource) {
	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		logger.Log.Warn("like notification skipped: actor lookup failed", zap.Error(err))
		return
	}
	message := fmt.Sprintf("%s liked your resource \"%s\"", actor.Username, resource.Title)
	s.Notifier.Emit(model.NotifyLike, resource.UploaderID, actorID, resource.ID, message)
}

func (s *EngagementService) notifyView(viewerID uint, resource *model.Resource) {
	viewer, err := s.UserRepo.FindByID(viewerID)
	if err != nil {
		logger.Log.Warn("view notification skipped: viewer lookup failed", zap.Error(err))
		return
	}
	message := fmt.Sprintf("%s viewed your resource \"%s\"", viewer.Username, resource.Title)
	s.Notifier.Emit(model.NotifyView, resource.UploaderID, viewerID, resource.ID, message)
}
