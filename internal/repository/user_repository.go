package repository

import (
	"campus_connect_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

// FindByEmailOrUsername 注册查重
func (r *UserRepository) FindByEmailOrUsername(email, username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ? OR username = ?", email, username).First(&user).Error
	return &user, err
}

// FindByUsernames 大小写不敏感地批量解析用户名，用于 @提及
func (r *UserRepository) FindByUsernames(usernames []string) ([]model.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(usernames))
	for _, name := range usernames {
		lowered = append(lowered, strings.ToLower(name))
	}

	var users []model.User
	err := r.DB.Where("LOWER(username) IN ?", lowered).Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}
