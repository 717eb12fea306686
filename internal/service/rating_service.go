package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"campus_connect_backend/pkg/monitoring"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RatingService 评分创建后不可修改，一个用户对一个资源只能评一次
type RatingService struct {
	Repo         *repository.RatingRepository
	ResourceRepo *repository.ResourceRepository
	UserRepo     *repository.UserRepository
	Notifier     *NotificationService
}

func NewRatingService(
	repo *repository.RatingRepository,
	resourceRepo *repository.ResourceRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *RatingService {
	return &RatingService{
		Repo:         repo,
		ResourceRepo: resourceRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
	}
}

// Rate 提交评分。评论中的 @提及解析为已注册用户（大小写不敏感），
// 解析不到的直接丢弃。成功后全量重算资源的平均分与评分数
func (s *RatingService) Rate(resourceID, userID uint, value int, comment string) (*model.Rating, error) {
	if value < 1 || value > 5 {
		return nil, util.ErrInvalidRating
	}

	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}

	if _, err := s.Repo.FindByUserAndResource(userID, resourceID); err == nil {
		return nil, util.ErrAlreadyRated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taggedUsers, err := s.resolveMentions(comment)
	if err != nil {
		return nil, err
	}

	rating := &model.Rating{
		UserID:      userID,
		ResourceID:  resourceID,
		Rating:      value,
		Comment:     comment,
		TaggedUsers: taggedUsers,
	}

	if err := s.Repo.Create(rating); err != nil {
		// 并发下同一用户的重复提交由唯一索引拦截
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyRated
		}
		return nil, err
	}

	// 全量重算而非增量累加，避免并发下均值漂移
	average, count, err := s.Repo.Aggregate(resourceID)
	if err != nil {
		return nil, err
	}
	if err := s.ResourceRepo.UpdateRatingStats(resourceID, average, count); err != nil {
		return nil, err
	}

	monitoring.EngagementEvents.WithLabelValues("rating").Inc()
	s.notifyRating(userID, resource, taggedUsers)

	return rating, nil
}

func (s *RatingService) ListRatings(resourceID uint) ([]model.Rating, error) {
	if _, err := s.ResourceRepo.FindByID(resourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}
	return s.Repo.FindByResource(resourceID)
}

func (s *RatingService) resolveMentions(comment string) ([]model.User, error) {
	usernames := util.ParseMentions(comment)
	if len(usernames) == 0 {
		return nil, nil
	}
	return s.UserRepo.FindByUsernames(usernames)
}

func (s *RatingService) notifyRating(raterID uint, resource *model.Resource, taggedUsers []model.User) {
	rater, err := s.UserRepo.FindByID(raterID)
	if err != nil {
		return
	}

	for _, tagged := range taggedUsers {
		message := fmt.Sprintf("%s mentioned you in a comment on \"%s\"", rater.Username, resource.Title)
		s.Notifier.Emit(model.NotifyTagComment, tagged.ID, raterID, resource.ID, message)
	}

	message := fmt.Sprintf("%s rated your resource \"%s\"", rater.Username, resource.Title)
	s.Notifier.Emit(model.NotifyRating, resource.UploaderID, raterID, resource.ID, message)
}
