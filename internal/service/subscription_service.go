package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type SubscriptionService struct {
	Repo   *repository.SubscriberRepository
	Logger *zap.Logger
}

func NewSubscriptionService(repo *repository.SubscriberRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{Repo: repo, Logger: logger}
}

// Subscribe 将邮箱加入候补名单，邮箱统一小写去重
func (s *SubscriptionService) Subscribe(email string) (*model.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, util.ErrInvalidEmail
	}

	if _, err := s.Repo.FindByEmail(email); err == nil {
		return nil, util.ErrAlreadySubscribed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	subscriber := &model.Subscriber{Email: email}
	if err := s.Repo.Create(subscriber); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadySubscribed
		}
		return nil, err
	}

	return subscriber, nil
}

func (s *SubscriptionService) Count() (int64, error) {
	return s.Repo.Count()
}

func (s *SubscriptionService) ListAll() ([]model.Subscriber, error) {
	return s.Repo.FindAll()
}

// NotifyLaunch 向未通知的订阅者发送上线通知。
// 实际投递交给外部邮件渠道，这里记录日志并标记已通知
func (s *SubscriptionService) NotifyLaunch() (int, error) {
	pending, err := s.Repo.FindUnnotified()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(pending))
	for _, sub := range pending {
		s.Logger.Info("launch notification queued", zap.String("email", sub.Email))
		ids = append(ids, sub.ID)
	}

	if err := s.Repo.MarkNotified(ids); err != nil {
		return 0, err
	}

	return len(ids), nil
}
