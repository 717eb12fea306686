package service

import (
	"campus_connect_backend/internal/config"
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/util"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, Config: cfg}
}

type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	School     string
	Role       model.UserRole
	GradeLevel string
}

// Register 创建新用户，用户名和邮箱均不可重复
func (s *AuthService) Register(input RegisterInput) (*model.User, string, error) {
	if _, err := s.UserRepo.FindByEmailOrUsername(input.Email, input.Username); err == nil {
		return nil, "", util.ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	role := input.Role
	if role != model.Student && role != model.Teacher {
		role = model.Student
	}

	user := &model.User{
		Username:   input.Username,
		Email:      input.Email,
		Password:   string(hashed),
		School:     input.School,
		Role:       role,
		GradeLevel: input.GradeLevel,
		LastSeen:   time.Now(),
	}

	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", util.ErrUserExists
		}
		return nil, "", err
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login 校验凭证并签发JWT
func (s *AuthService) Login(email, password string) (*model.User, string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrUserNotFound
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", util.ErrUserNotFound
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
