package service

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// profileColumns 限定资料更新允许触达的列
var profileColumns = map[string]bool{
	"school":      true,
	"grade_level": true,
	"bio":         true,
	"profile_pic": true,
}

// UpdateProfile 部分更新用户资料，忽略白名单之外的字段
func (s *UserService) UpdateProfile(userID uint, updates map[string]interface{}) (*model.User, error) {
	filtered := make(map[string]interface{}, len(updates))
	for col, val := range updates {
		if profileColumns[col] {
			filtered[col] = val
		}
	}

	if len(filtered) > 0 {
		if err := s.Repo.UpdateFields(userID, filtered); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}
