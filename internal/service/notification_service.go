package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"campus_connect_backend/pkg/logger"
	"campus_connect_backend/pkg/monitoring"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const unreadCountKeyPrefix = "notifications:unread:"

// NotificationService 互动事件的旁路通知。写入失败只记日志，
// 绝不反馈到触发它的主操作
type NotificationService struct {
	Repo  *repository.NotificationRepository
	Redis *redis.Client
}

func NewNotificationService(repo *repository.NotificationRepository, rdb *redis.Client) *NotificationService {
	return &NotificationService{Repo: repo, Redis: rdb}
}

// Emit 发出一条通知。自己触发自己（actor == recipient）时静默跳过
func (s *NotificationService) Emit(notifyType model.NotificationType, recipientID, fromID, resourceID uint, message string) {
	if recipientID == fromID {
		return
	}

	notification := &model.Notification{
		RecipientID: recipientID,
		FromID:      fromID,
		ResourceID:  resourceID,
		Type:        notifyType,
		Message:     message,
	}

	if err := s.Repo.Create(notification); err != nil {
		monitoring.NotificationsEmitted.WithLabelValues(string(notifyType), "error").Inc()
		logger.Log.Warn("failed to emit notification",
			zap.String("type", string(notifyType)),
			zap.Uint("recipient", recipientID),
			zap.Uint("resource", resourceID),
			zap.Error(err))
		return
	}

	monitoring.NotificationsEmitted.WithLabelValues(string(notifyType), "ok").Inc()
	s.invalidateUnreadCount(recipientID)
}

func (s *NotificationService) List(userID uint, page, limit int) ([]model.Notification, int64, error) {
	return s.Repo.FindByRecipient(userID, page, limit)
}

func (s *NotificationService) MarkRead(id string, userID uint) error {
	affected, err := s.Repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrNotificationNotFound
	}
	s.invalidateUnreadCount(userID)
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.Repo.MarkAllRead(userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(userID)
	return nil
}

// UnreadCount 未读数走 Redis 缓存，未命中时回源并写缓存
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	ctx := context.Background()
	key := fmt.Sprintf("%s%d", unreadCountKeyPrefix, userID)

	if s.Redis != nil {
		if count, err := s.Redis.Get(ctx, key).Int64(); err == nil {
			return count, nil
		}
	}

	count, err := s.Repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, key, count, 5*time.Minute).Err(); err != nil {
			logger.Log.Warn("failed to cache unread count", zap.Error(err))
		}
	}

	return count, nil
}

func (s *NotificationService) invalidateUnreadCount(userID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d", unreadCountKeyPrefix, userID)
	if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
		logger.Log.Warn("failed to invalidate unread count cache", zap.Error(err))
	}
}
