package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
)

// RecommendationService 基于点赞历史的内容推荐。
// 每次查询在当前互动快照上单趟计算，无缓存、无增量索引
type RecommendationService struct {
	EngagementRepo *repository.EngagementRepository
	ResourceRepo   *repository.ResourceRepository
}

func NewRecommendationService(engagementRepo *repository.EngagementRepository, resourceRepo *repository.ResourceRepository) *RecommendationService {
	return &RecommendationService{
		EngagementRepo: engagementRepo,
		ResourceRepo:   resourceRepo,
	}
}

// Recommend 取用户点赞过资源的学科/年级集合筛选候选资源；
// 没有点赞历史（或点赞的资源已全部删除）时退化为全局人气榜。
// 两种路径都排除用户自己上传的资源
func (s *RecommendationService) Recommend(userID uint, page, limit int) ([]model.Resource, int64, error) {
	subjects, gradeLevels, err := s.EngagementRepo.LikedSubjectsAndGrades(userID)
	if err != nil {
		return nil, 0, err
	}

	if len(subjects) == 0 && len(gradeLevels) == 0 {
		return s.ResourceRepo.FindPopular(userID, page, limit)
	}

	likedIDs, err := s.EngagementRepo.LikedResourceIDs(userID)
	if err != nil {
		return nil, 0, err
	}

	return s.ResourceRepo.FindCandidates(subjects, gradeLevels, userID, likedIDs, page, limit)
}
